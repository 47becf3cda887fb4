package domain

import "time"

// Role enumerates the account types in the system.
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleMunicipal Role = "municipal"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleCitizen, RoleMunicipal, RoleAdmin:
		return true
	}
	return false
}

// User is the single identity model; officers and admins are users with the
// corresponding role, not a separate aggregate.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   *string
	Active       bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// IsOfficer reports whether the user is a municipal officer.
func (u *User) IsOfficer() bool {
	return u.Role == RoleMunicipal
}

// IsAdmin reports whether the user is an administrator.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DepartmentName returns the department or "" when unset.
func (u *User) DepartmentName() string {
	if u.Department == nil {
		return ""
	}
	return *u.Department
}
