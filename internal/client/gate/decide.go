// Package gate decides what a navigation to a client route produces given
// the current session: the page, a loading placeholder, a "forbidden"
// placeholder, or a redirect to the root that opens the login dialog.
//
// Decide is pure. Side effects a decision asks for are returned as
// Effects and run by Router only after the new location is committed.
package gate

import (
	"github.com/dmitrijs2005/edubd/internal/client/dialog"
	"github.com/dmitrijs2005/edubd/internal/client/models"
	"github.com/dmitrijs2005/edubd/internal/client/session"
	"github.com/dmitrijs2005/edubd/internal/common"
)

type Outcome int

const (
	OutcomeLoading Outcome = iota
	OutcomeRender
	OutcomeForbidden
	OutcomeRedirect
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRender:
		return "render"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Requirement is what a route demands of the session. An empty Roles list
// admits every signed-in user.
type Requirement struct {
	RequiresAuth bool
	Roles        []models.Role
}

// Effect is a deferred side effect. The only one is opening a dialog view.
type Effect struct {
	OpenView dialog.View
}

// Decision is the result of gating one location. For redirects To is the
// target and From is the location that was originally requested. A
// redirect always replaces: the requested location never enters history.
type Decision struct {
	Outcome Outcome
	To      string
	From    string
	Effects []Effect
}

// Decide gates location against req.
func Decide(snap session.Snapshot, location string, req Requirement) Decision {
	if !req.RequiresAuth {
		return Decision{Outcome: OutcomeRender}
	}

	switch snap.Status {
	case session.StatusBootstrapping:
		return Decision{Outcome: OutcomeLoading}
	case session.StatusUnauthenticated:
		return Decision{
			Outcome: OutcomeRedirect,
			To:      common.RootPath,
			From:    location,
			Effects: []Effect{{OpenView: dialog.ViewLogin}},
		}
	}

	if len(req.Roles) > 0 && !snap.User.HasRole(req.Roles...) {
		return Decision{Outcome: OutcomeForbidden}
	}
	return Decision{Outcome: OutcomeRender}
}

// DecideVirtual handles /login, /register and /forgot-password. They always
// redirect to the root; the dialog is opened only for a visitor who is
// known to be signed out. While the session is still bootstrapping the
// decision is postponed.
func DecideVirtual(snap session.Snapshot, location string, view dialog.View) Decision {
	if snap.Status == session.StatusBootstrapping {
		return Decision{Outcome: OutcomeLoading}
	}

	d := Decision{
		Outcome: OutcomeRedirect,
		To:      common.RootPath,
		From:    location,
	}
	if !snap.Authenticated() {
		d.Effects = []Effect{{OpenView: view}}
	}
	return d
}
