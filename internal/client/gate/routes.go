package gate

import (
	"github.com/dmitrijs2005/edubd/internal/client/dialog"
	"github.com/dmitrijs2005/edubd/internal/client/models"
)

// Route is one entry of the client's route table. A route with a non-empty
// Virtual view has no page of its own.
type Route struct {
	Pattern     string
	Title       string
	Requirement Requirement
	Virtual     dialog.View
}

func (r Route) IsVirtual() bool {
	return r.Virtual != ""
}

var (
	authenticated = Requirement{RequiresAuth: true}
	adminOnly     = Requirement{RequiresAuth: true, Roles: []models.Role{models.RoleAdmin}}
	authors       = Requirement{RequiresAuth: true, Roles: []models.Role{models.RoleInstructor, models.RoleAdmin}}
)

// DefaultRoutes is the marketplace's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Pattern: "/", Title: "Home"},
		{Pattern: "/courses", Title: "Courses"},
		{Pattern: "/courses/new", Title: "New course", Requirement: authors},
		{Pattern: "/courses/{id}", Title: "Course"},
		{Pattern: "/courses/{id}/edit", Title: "Edit course", Requirement: authors},
		{Pattern: "/reset-password/{uid}/{token}", Title: "Reset password"},
		{Pattern: "/dashboard", Title: "Dashboard", Requirement: authenticated},
		{Pattern: "/profile", Title: "Profile", Requirement: authenticated},
		{Pattern: "/users", Title: "Users", Requirement: adminOnly},

		{Pattern: "/login", Virtual: dialog.ViewLogin},
		{Pattern: "/register", Virtual: dialog.ViewRegister},
		{Pattern: "/forgot-password", Virtual: dialog.ViewForgotPassword},
	}
}
