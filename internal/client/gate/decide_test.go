package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/edubd/internal/client/dialog"
	"github.com/dmitrijs2005/edubd/internal/client/models"
	"github.com/dmitrijs2005/edubd/internal/client/session"
)

func signedIn(role models.Role) session.Snapshot {
	return session.Snapshot{
		Status: session.StatusAuthenticated,
		User:   &models.User{ID: 1, Username: "ada", Role: role},
	}
}

var (
	bootstrapping = session.Snapshot{Status: session.StatusBootstrapping}
	signedOut     = session.Snapshot{Status: session.StatusUnauthenticated}
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		snap session.Snapshot
		req  Requirement
		want Decision
	}{
		{
			name: "public route while bootstrapping renders",
			snap: bootstrapping,
			req:  Requirement{},
			want: Decision{Outcome: OutcomeRender},
		},
		{
			name: "protected route while bootstrapping waits",
			snap: bootstrapping,
			req:  authenticated,
			want: Decision{Outcome: OutcomeLoading},
		},
		{
			name: "signed out on protected route redirects and opens login",
			snap: signedOut,
			req:  authenticated,
			want: Decision{
				Outcome: OutcomeRedirect,
				To:      "/",
				From:    "/dashboard",
				Effects: []Effect{{OpenView: dialog.ViewLogin}},
			},
		},
		{
			name: "signed in without allow-list renders",
			snap: signedIn(models.RoleStudent),
			req:  authenticated,
			want: Decision{Outcome: OutcomeRender},
		},
		{
			name: "role in allow-list renders",
			snap: signedIn(models.RoleInstructor),
			req:  authors,
			want: Decision{Outcome: OutcomeRender},
		},
		{
			name: "role outside allow-list is forbidden without redirect",
			snap: signedIn(models.RoleStudent),
			req:  adminOnly,
			want: Decision{Outcome: OutcomeForbidden},
		},
		{
			name: "signed out on public route renders",
			snap: signedOut,
			req:  Requirement{},
			want: Decision{Outcome: OutcomeRender},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.snap, "/dashboard", tt.req))
		})
	}
}

func TestDecide_RedirectSchedulesExactlyOneLoginOpen(t *testing.T) {
	d := Decide(signedOut, "/profile", authenticated)

	assert.Equal(t, OutcomeRedirect, d.Outcome)
	assert.Equal(t, "/", d.To)
	assert.Equal(t, []Effect{{OpenView: dialog.ViewLogin}}, d.Effects)
}

func TestDecideVirtual(t *testing.T) {
	d := DecideVirtual(signedOut, "/register", dialog.ViewRegister)
	assert.Equal(t, Decision{
		Outcome: OutcomeRedirect,
		To:      "/",
		From:    "/register",
		Effects: []Effect{{OpenView: dialog.ViewRegister}},
	}, d)

	d = DecideVirtual(signedIn(models.RoleStudent), "/login", dialog.ViewLogin)
	assert.Equal(t, OutcomeRedirect, d.Outcome)
	assert.Equal(t, "/", d.To)
	assert.Empty(t, d.Effects, "no dialog for a signed-in user")

	d = DecideVirtual(bootstrapping, "/login", dialog.ViewLogin)
	assert.Equal(t, Decision{Outcome: OutcomeLoading}, d)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "forbidden", OutcomeForbidden.String())
	assert.Equal(t, "not-found", OutcomeNotFound.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
