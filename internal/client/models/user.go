// Package models defines the client-side data models shared by the gateway
// client, the session store and the forms.
package models

import "fmt"

// Role is the marketplace role of a user.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleStudent, RoleInstructor, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts user input into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User is a server-confirmed profile.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatar,omitempty"`
}

// HasRole reports whether u holds one of roles.
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
