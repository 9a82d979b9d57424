package tenant

import (
	"fmt"
	"time"

	"github.com/clearcrm/authz/pkg/domain/shared"
)

// Membership represents a user's membership in a tenant. There is at most
// one membership per (user, tenant); inactive memberships are invisible to
// permission resolution.
type Membership struct {
	userID       shared.ID
	tenantID     shared.ID
	role         Role
	customRoleID *shared.ID
	active       bool
	joinedAt     time.Time
}

// NewMembership creates a new active Membership.
func NewMembership(userID, tenantID shared.ID, role Role, customRoleID *shared.ID) (*Membership, error) {
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: userID is required", shared.ErrValidation)
	}
	if tenantID.IsZero() {
		return nil, fmt.Errorf("%w: tenantID is required", shared.ErrValidation)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: invalid role %q", shared.ErrValidation, role)
	}

	return &Membership{
		userID:       userID,
		tenantID:     tenantID,
		role:         role,
		customRoleID: customRoleID,
		active:       true,
		joinedAt:     time.Now().UTC(),
	}, nil
}

// ReconstituteMembership recreates a Membership from persistence.
func ReconstituteMembership(
	userID shared.ID,
	tenantID shared.ID,
	role Role,
	customRoleID *shared.ID,
	active bool,
	joinedAt time.Time,
) *Membership {
	return &Membership{
		userID:       userID,
		tenantID:     tenantID,
		role:         role,
		customRoleID: customRoleID,
		active:       active,
		joinedAt:     joinedAt,
	}
}

// UserID returns the member's user ID.
func (m *Membership) UserID() shared.ID {
	return m.userID
}

// TenantID returns the tenant ID.
func (m *Membership) TenantID() shared.ID {
	return m.tenantID
}

// Role returns the member's base role.
func (m *Membership) Role() Role {
	return m.role
}

// CustomRoleID returns the attached custom role ID, nil if none.
func (m *Membership) CustomRoleID() *shared.ID {
	return m.customRoleID
}

// Active reports whether the membership is active.
func (m *Membership) Active() bool {
	return m.active
}

// JoinedAt returns when the member joined.
func (m *Membership) JoinedAt() time.Time {
	return m.joinedAt
}

// IsAdmin reports whether the membership's role bypasses permission checks.
func (m *Membership) IsAdmin() bool {
	return m.role.IsAdmin()
}

// HasCustomRole reports whether a custom role is attached.
func (m *Membership) HasCustomRole() bool {
	return m.customRoleID != nil && !m.customRoleID.IsZero()
}
