package domain

import "time"

// Role enumerates the actor roles that gate lifecycle transitions.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleTechnician Role = "TECHNICIAN"
	RoleClerk      Role = "CLERK"
)

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTechnician || r == RoleClerk
}

// User is an operator of the tracker: an administrator, a field
// technician, or a back-office clerk.
type User struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
