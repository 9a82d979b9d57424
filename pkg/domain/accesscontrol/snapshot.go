package accesscontrol

import (
	"github.com/clearcrm/authz/pkg/domain/customrole"
	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
)

// Snapshot is the resolved authorization state of a (user, tenant) pair:
// the effective permission set, the admin flag, and the custom role policy
// map when one applies. It is a pure function of the underlying membership,
// custom role, and grant records, and may be cached for the lifetime of a
// user's tenant session provided the cache is invalidated when any of those
// records change.
type Snapshot struct {
	UserID      shared.ID            `json:"user_id"`
	TenantID    shared.ID            `json:"tenant_id"`
	Admin       bool                 `json:"admin"`
	Permissions PermissionSet        `json:"permissions"`
	Policies    customrole.PolicyMap `json:"policies,omitempty"`
}

// NewSnapshot creates an empty (deny-everything) snapshot for a user.
func NewSnapshot(userID, tenantID shared.ID) *Snapshot {
	return &Snapshot{
		UserID:      userID,
		TenantID:    tenantID,
		Permissions: NewPermissionSet(),
	}
}

// HasPermission checks the snapshot for a permission name. Admins hold
// every permission regardless of the set contents.
func (s *Snapshot) HasPermission(p permission.Permission) bool {
	if s.Admin {
		return true
	}
	return s.Permissions.Has(p)
}

// HasAnyPermission checks the snapshot for any of the given permissions.
func (s *Snapshot) HasAnyPermission(perms ...permission.Permission) bool {
	if s.Admin {
		return true
	}
	return s.Permissions.HasAny(perms...)
}

// PolicyFor returns the custom role policy for a database module.
func (s *Snapshot) PolicyFor(module string) (customrole.ModulePolicy, bool) {
	if s.Policies == nil {
		return customrole.ModulePolicy{}, false
	}
	policy, ok := s.Policies[module]
	return policy, ok
}
