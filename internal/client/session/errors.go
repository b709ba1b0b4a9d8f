package session

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/edubd/internal/client/client"
)

var (
	// ErrStale is returned by an operation whose result was discarded
	// because the session changed (typically a logout) while it was pending.
	ErrStale = errors.New("session changed while the request was in flight")

	// ErrNoSession is returned by WithToken when nobody is signed in.
	ErrNoSession = errors.New("not signed in")
)

type LoginReason string

const (
	ReasonInvalidCredentials LoginReason = "invalid-credentials"
	ReasonUnavailable        LoginReason = "unavailable"
	ReasonRejected           LoginReason = "rejected"
	ReasonProfile            LoginReason = "profile"
	ReasonStorage            LoginReason = "storage"
)

// LoginError is the structured failure of Store.Login. Detail carries the
// gateway's message when it sent one.
type LoginError struct {
	Reason LoginReason
	Detail string
	Err    error
}

func (e *LoginError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("login failed (%s): %s", e.Reason, e.Detail)
	}
	return fmt.Sprintf("login failed (%s): %v", e.Reason, e.Err)
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

func newLoginError(err error) *LoginError {
	reason := ReasonRejected
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		reason = ReasonInvalidCredentials
	case errors.Is(err, client.ErrUnavailable):
		reason = ReasonUnavailable
	}
	return &LoginError{Reason: reason, Detail: client.Detail(err), Err: err}
}
