package accesscontrol

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/clearcrm/authz/pkg/domain/org"
	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
)

// VisibilityResolver decides which records of an entity type a user may
// see. The scope level comes from the permission snapshot; department and
// branch scopes additionally chase the organizational graph.
type VisibilityResolver struct {
	org org.Repository
}

// NewVisibilityResolver creates a new VisibilityResolver.
func NewVisibilityResolver(orgRepo org.Repository) *VisibilityResolver {
	return &VisibilityResolver{org: orgRepo}
}

// Level returns the visibility scope the snapshot holds for an entity type.
//
// Admins see everything. A direct custom role visibility setting for the
// module wins; otherwise scoped visibility grants are probed in the fixed
// precedence order. Todos without a todos-specific grant inherit the
// broadest scope held across the broader entity types. The default is own.
func (r *VisibilityResolver) Level(snap *Snapshot, entityType string) permission.Scope {
	if snap.Admin {
		return permission.ScopeAll
	}

	module, known := permission.ModuleForEntity(entityType)
	if known {
		if policy, ok := snap.PolicyFor(module); ok && policy.Visibility != nil {
			return *policy.Visibility
		}
		for _, scope := range permission.ScopePrecedence {
			if snap.Permissions.Has(permission.Visibility(module, scope)) {
				return scope
			}
		}
	}

	if entityType == permission.EntityTodos {
		for _, scope := range permission.ScopePrecedence {
			for _, inherited := range permission.TodoInheritanceOrder {
				inheritedModule, ok := permission.ModuleForEntity(inherited)
				if !ok {
					continue
				}
				if snap.Permissions.Has(permission.Visibility(inheritedModule, scope)) {
					return scope
				}
			}
		}
	}

	return permission.ScopeOwn
}

// CanView decides whether the snapshot's user may see a record with the
// given ownership. Lookup failures deny; the error reports what failed so
// the caller can log it.
func (r *VisibilityResolver) CanView(ctx context.Context, snap *Snapshot, entityType string, ownership EntityOwnership) (bool, error) {
	if snap.Admin {
		return true, nil
	}

	switch r.Level(snap, entityType) {
	case permission.ScopeAll:
		return true, nil

	case permission.ScopeOwn:
		return ownership.OwnerUserID == snap.UserID, nil

	case permission.ScopeSelectedUsers:
		module, ok := permission.ModuleForEntity(entityType)
		if !ok {
			return false, nil
		}
		policy, ok := snap.PolicyFor(module)
		if !ok {
			return false, nil
		}
		return policy.HasVisibilitySelectedUser(ownership.OwnerUserID), nil

	case permission.ScopeDepartment:
		return r.sameDepartment(ctx, snap, ownership)

	case permission.ScopeBranch:
		return r.sameBranch(ctx, snap, ownership)
	}

	return false, nil
}

// sameDepartment checks that the caller and the record owner resolve to the
// same department. The two positions are independent and fetched in
// parallel. A missing assignment on either side denies.
func (r *VisibilityResolver) sameDepartment(ctx context.Context, snap *Snapshot, ownership EntityOwnership) (bool, error) {
	var callerDept, ownerDept shared.ID

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dept, err := r.departmentOf(gctx, snap.UserID, snap.TenantID)
		if err != nil {
			return err
		}
		callerDept = dept
		return nil
	})
	g.Go(func() error {
		if ownership.OwnerDepartmentID != nil {
			ownerDept = *ownership.OwnerDepartmentID
			return nil
		}
		dept, err := r.departmentOf(gctx, ownership.OwnerUserID, snap.TenantID)
		if err != nil {
			return err
		}
		ownerDept = dept
		return nil
	})

	if err := g.Wait(); err != nil {
		if shared.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return !callerDept.IsZero() && callerDept == ownerDept, nil
}

// sameBranch checks that both parties' department-to-branch chains resolve
// to the same branch. A missing link at any step denies.
func (r *VisibilityResolver) sameBranch(ctx context.Context, snap *Snapshot, ownership EntityOwnership) (bool, error) {
	var callerBranch, ownerBranch shared.ID

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		branch, err := r.branchOf(gctx, snap.UserID, snap.TenantID)
		if err != nil {
			return err
		}
		callerBranch = branch
		return nil
	})
	g.Go(func() error {
		branch, err := r.ownerBranch(gctx, snap.TenantID, ownership)
		if err != nil {
			return err
		}
		ownerBranch = branch
		return nil
	})

	if err := g.Wait(); err != nil {
		if shared.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return !callerBranch.IsZero() && callerBranch == ownerBranch, nil
}

// departmentOf returns the department a user is assigned to.
func (r *VisibilityResolver) departmentOf(ctx context.Context, userID, tenantID shared.ID) (shared.ID, error) {
	assignment, err := r.org.GetAssignment(ctx, userID, tenantID)
	if err != nil {
		return shared.ID{}, fmt.Errorf("assignment lookup for %s: %w", userID, err)
	}
	return assignment.DepartmentID(), nil
}

// branchOf resolves a user's branch through their department assignment.
func (r *VisibilityResolver) branchOf(ctx context.Context, userID, tenantID shared.ID) (shared.ID, error) {
	deptID, err := r.departmentOf(ctx, userID, tenantID)
	if err != nil {
		return shared.ID{}, err
	}
	dept, err := r.org.GetDepartment(ctx, deptID)
	if err != nil {
		return shared.ID{}, fmt.Errorf("department lookup %s: %w", deptID, err)
	}
	return dept.BranchID(), nil
}

// ownerBranch resolves the record owner's branch, using ownership fields
// supplied by the caller before falling back to graph lookups.
func (r *VisibilityResolver) ownerBranch(ctx context.Context, tenantID shared.ID, ownership EntityOwnership) (shared.ID, error) {
	if ownership.OwnerBranchID != nil {
		return *ownership.OwnerBranchID, nil
	}
	if ownership.OwnerDepartmentID != nil {
		dept, err := r.org.GetDepartment(ctx, *ownership.OwnerDepartmentID)
		if err != nil {
			return shared.ID{}, fmt.Errorf("department lookup %s: %w", *ownership.OwnerDepartmentID, err)
		}
		return dept.BranchID(), nil
	}
	return r.branchOf(ctx, ownership.OwnerUserID, tenantID)
}
