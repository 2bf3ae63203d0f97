package model

import "strings"

// Role is the access-control role assigned to a user account.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleTester  Role = "TESTER"
)

// ParseRole normalizes a raw role string from the backend. Unknown
// values are returned as-is so the routing layer can reject them
// explicitly instead of panicking.
func ParseRole(raw string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(raw)))
}

// Known reports whether the role is one of the three recognized roles.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTester:
		return true
	}
	return false
}

// User is the authenticated identity fetched from the backend after
// login. It is owned by the session store; every other component only
// reads it.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName returns the user's full name, falling back to the
// username when no name fields are set.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
