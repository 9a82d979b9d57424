package accesscontrol

import (
	"context"
	"fmt"

	"github.com/clearcrm/authz/pkg/domain/customrole"
	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
	"github.com/clearcrm/authz/pkg/domain/tenant"
)

// RoleResolver computes the effective permission snapshot for a
// (user, tenant) pair: admin bypass, custom role translation, or the static
// role grant fallback, in that order.
type RoleResolver struct {
	memberships tenant.Repository
	customRoles customrole.Repository
	grants      GrantRepository
}

// NewRoleResolver creates a new RoleResolver.
func NewRoleResolver(
	memberships tenant.Repository,
	customRoles customrole.Repository,
	grants GrantRepository,
) *RoleResolver {
	return &RoleResolver{
		memberships: memberships,
		customRoles: customRoles,
		grants:      grants,
	}
}

// Resolve computes the permission snapshot for a user within a tenant.
//
// The returned snapshot is always non-nil and safe to use: on any lookup
// failure it holds the most restrictive result consistent with what was
// loaded. The admin flag is set purely from the membership row, before any
// lookup that could fail, so a catalog outage cannot lock out an admin. For
// non-admin users any failure yields an empty permission set. The error
// reports what failed so the caller can log it; it never widens access.
func (r *RoleResolver) Resolve(ctx context.Context, userID, tenantID shared.ID) (*Snapshot, error) {
	snap := NewSnapshot(userID, tenantID)

	membership, err := r.memberships.GetMembership(ctx, userID, tenantID)
	if err != nil {
		if shared.IsNotFound(err) {
			// No membership means no access, same as an explicit deny.
			return snap, nil
		}
		return snap, fmt.Errorf("membership lookup: %w", err)
	}
	if !membership.Active() {
		return snap, nil
	}

	if membership.IsAdmin() {
		snap.Admin = true
		catalog, err := r.grants.ListCatalog(ctx)
		if err != nil {
			// The admin flag already grants everything; the set is only
			// used for enumeration.
			return snap, fmt.Errorf("catalog lookup: %w", err)
		}
		snap.Permissions = NewPermissionSet(catalog...)
		return snap, nil
	}

	if membership.HasCustomRole() {
		role, err := r.customRoles.GetByID(ctx, *membership.CustomRoleID())
		switch {
		case err == nil && role.Active():
			snap.Policies = role.Policies()
			snap.Permissions = translatePolicies(role.Policies())
			return snap, nil
		case err != nil && !shared.IsNotFound(err):
			return snap, fmt.Errorf("custom role lookup: %w", err)
		}
		// Missing or inactive custom role falls back to static grants.
	}

	perms, err := r.grants.ListRoleGrants(ctx, tenantID, membership.Role())
	if err != nil {
		return snap, fmt.Errorf("role grant lookup: %w", err)
	}
	snap.Permissions = NewPermissionSet(perms...)
	return snap, nil
}

// IsAdmin reports whether the user holds an admin role in the tenant.
// Lookup failures deny.
func (r *RoleResolver) IsAdmin(ctx context.Context, userID, tenantID shared.ID) (bool, error) {
	membership, err := r.memberships.GetMembership(ctx, userID, tenantID)
	if err != nil {
		if shared.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("membership lookup: %w", err)
	}
	return membership.Active() && membership.IsAdmin(), nil
}

// translatePolicies converts a custom role policy map into canonical
// permission names: visibility and assignment scopes become scoped grants
// and each enabled action flag becomes an action permission. The policy map
// is already keyed by database module with action aliases normalized.
func translatePolicies(policies customrole.PolicyMap) PermissionSet {
	set := NewPermissionSet()
	for module, policy := range policies {
		if policy.Visibility != nil {
			set.Add(permission.Visibility(module, *policy.Visibility))
		}
		if policy.AssignmentScope != nil {
			set.Add(permission.Assignment(module, *policy.AssignmentScope))
		}
		for action, allowed := range policy.Actions {
			if allowed {
				set.Add(permission.Action(module, action))
			}
		}
	}
	return set
}
