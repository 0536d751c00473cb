package shared

import "strings"

// Role is the access tier associated with a user account. It is a closed
// enum; RoleUnresolved means the lookup has not produced a role, which is
// distinct from an account that resolved to donor.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleVolunteer  Role = "volunteer"
	RoleDonor      Role = "donor"
	RoleUnresolved Role = ""
)

// ParseRole maps a stored role string onto the closed enum. Unknown values
// come back as RoleUnresolved so they can never grant access.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleVolunteer:
		return RoleVolunteer
	case RoleDonor:
		return RoleDonor
	default:
		return RoleUnresolved
	}
}

// Resolved reports whether the role lookup produced a usable role.
func (r Role) Resolved() bool {
	return r == RoleAdmin || r == RoleVolunteer || r == RoleDonor
}

// AccountStatus is the moderation state of a user account.
type AccountStatus string

const (
	StatusActive  AccountStatus = "active"
	StatusBlocked AccountStatus = "blocked"
)
