package session

import (
	"time"

	"github.com/dmitrijs2005/edubd/internal/client/models"
)

type Status int

const (
	// StatusBootstrapping means "unknown yet": dependents must neither
	// redirect nor show signed-out UI.
	StatusBootstrapping Status = iota
	StatusUnauthenticated
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusBootstrapping:
		return "bootstrapping"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the session state. User is non-nil
// exactly when Status is StatusAuthenticated. ExpiresAt is the token's exp
// claim when the token is a JWT, zero otherwise.
type Snapshot struct {
	Status    Status
	User      *models.User
	ExpiresAt time.Time
}

func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated
}
