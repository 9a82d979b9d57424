// Package tenant provides domain entities for tenant membership.
// A membership ties a user to a tenant with a base role and, optionally,
// a custom role that overrides the static role grants.
package tenant

// Role represents a user's base role within a tenant.
type Role string

const (
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// IsValid checks if the role is valid.
func (r Role) IsValid() bool {
	switch r {
	case RoleMember, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsAdmin reports whether the role bypasses catalog and custom-role checks.
// Admin roles always resolve to the maximal permission set and the widest
// scope everywhere.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// ParseRole parses a string to a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}
