package accesscontrol

import (
	"context"
	"fmt"

	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
)

// AssignmentResolver decides to whom a user may hand work items. It mirrors
// visibility resolution but scopes that cannot be answered from local custom
// role data are delegated to the injected AssignmentAuthority.
type AssignmentResolver struct {
	authority AssignmentAuthority
}

// NewAssignmentResolver creates a new AssignmentResolver.
func NewAssignmentResolver(authority AssignmentAuthority) *AssignmentResolver {
	return &AssignmentResolver{authority: authority}
}

// Scope returns the assignment scope the snapshot holds for an entity type.
// Admins assign anywhere. A direct custom role assignment setting wins;
// otherwise scoped assignment grants are probed in the fixed precedence
// order. The default is own.
func (r *AssignmentResolver) Scope(snap *Snapshot, entityType string) permission.Scope {
	scope, _ := r.localScope(snap, entityType)
	return scope
}

// localScope resolves the assignment scope from the snapshot alone. The
// second return reports whether any local grant produced the scope; when
// false the own default stands in and the final decision belongs to the
// external authority.
func (r *AssignmentResolver) localScope(snap *Snapshot, entityType string) (permission.Scope, bool) {
	if snap.Admin {
		return permission.ScopeAll, true
	}

	module, known := permission.ModuleForEntity(entityType)
	if !known {
		return permission.ScopeOwn, false
	}

	if policy, ok := snap.PolicyFor(module); ok && policy.AssignmentScope != nil {
		return *policy.AssignmentScope, true
	}
	for _, scope := range permission.ScopePrecedence {
		if snap.Permissions.Has(permission.Assignment(module, scope)) {
			return scope, true
		}
	}
	return permission.ScopeOwn, false
}

// CanAssignTo decides whether the snapshot's user may assign work of the
// given entity type to the target user. Self-assignment is always allowed,
// independent of scope. Lookup failures deny; the error reports what failed
// so the caller can log it.
func (r *AssignmentResolver) CanAssignTo(ctx context.Context, snap *Snapshot, entityType string, targetUserID shared.ID) (bool, error) {
	if snap.Admin {
		return true, nil
	}
	if targetUserID == snap.UserID {
		return true, nil
	}

	scope, resolved := r.localScope(snap, entityType)
	if !resolved {
		// No local grant at all: default role scope rules live in the
		// external authority.
		return r.delegate(ctx, snap, entityType, targetUserID)
	}

	switch scope {
	case permission.ScopeAll:
		return true, nil

	case permission.ScopeSelectedUsers:
		module, ok := permission.ModuleForEntity(entityType)
		if !ok {
			return false, nil
		}
		policy, ok := snap.PolicyFor(module)
		if !ok {
			return false, nil
		}
		return policy.HasAssignmentSelectedUser(targetUserID), nil
	}

	// branch, department, and own scopes are not locally decidable for a
	// foreign target; the authority owns that policy.
	return r.delegate(ctx, snap, entityType, targetUserID)
}

func (r *AssignmentResolver) delegate(ctx context.Context, snap *Snapshot, entityType string, targetUserID shared.ID) (bool, error) {
	if r.authority == nil {
		return false, nil
	}
	allowed, err := r.authority.CanAssign(ctx, snap.UserID, targetUserID, snap.TenantID, entityType)
	if err != nil {
		return false, fmt.Errorf("assignment authority: %w", err)
	}
	return allowed, nil
}
