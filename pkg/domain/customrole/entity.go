// Package customrole provides the tenant-defined role entity. A custom role
// carries a per-module policy map that overrides the static role grants for
// the membership it is attached to.
package customrole

import (
	"fmt"
	"time"

	"github.com/clearcrm/authz/pkg/domain/shared"
)

// CustomRole represents a tenant-defined role with per-module policies.
type CustomRole struct {
	id        shared.ID
	tenantID  shared.ID
	name      string
	active    bool
	policies  PolicyMap
	createdAt time.Time
	updatedAt time.Time
}

// New creates a new active custom role.
func New(tenantID shared.ID, name string, policies PolicyMap) (*CustomRole, error) {
	if tenantID.IsZero() {
		return nil, fmt.Errorf("%w: tenantID is required", shared.ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	if policies == nil {
		policies = PolicyMap{}
	}

	now := time.Now().UTC()
	return &CustomRole{
		id:        shared.NewID(),
		tenantID:  tenantID,
		name:      name,
		active:    true,
		policies:  policies,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstitute recreates a CustomRole from persistence.
func Reconstitute(
	id shared.ID,
	tenantID shared.ID,
	name string,
	active bool,
	policies PolicyMap,
	createdAt time.Time,
	updatedAt time.Time,
) *CustomRole {
	if policies == nil {
		policies = PolicyMap{}
	}
	return &CustomRole{
		id:        id,
		tenantID:  tenantID,
		name:      name,
		active:    active,
		policies:  policies,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the custom role ID.
func (r *CustomRole) ID() shared.ID {
	return r.id
}

// TenantID returns the owning tenant ID.
func (r *CustomRole) TenantID() shared.ID {
	return r.tenantID
}

// Name returns the role name.
func (r *CustomRole) Name() string {
	return r.name
}

// Active reports whether the role is active. An inactive custom role is
// treated as absent during resolution.
func (r *CustomRole) Active() bool {
	return r.active
}

// Policies returns the per-module policy map keyed by database module.
func (r *CustomRole) Policies() PolicyMap {
	return r.policies
}

// PolicyFor returns the policy for a database module, if one is defined.
func (r *CustomRole) PolicyFor(module string) (ModulePolicy, bool) {
	policy, ok := r.policies[module]
	return policy, ok
}

// CreatedAt returns when the role was created.
func (r *CustomRole) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt returns when the role was last modified.
func (r *CustomRole) UpdatedAt() time.Time {
	return r.updatedAt
}
