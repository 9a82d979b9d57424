package accesscontrol

import (
	"context"
	"errors"
	"testing"

	"github.com/clearcrm/authz/pkg/domain/customrole"
	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
)

func snapshotWithPermissions(perms ...permission.Permission) *Snapshot {
	snap := NewSnapshot(shared.NewID(), shared.NewID())
	snap.Permissions = NewPermissionSet(perms...)
	return snap
}

func TestVisibilityLevel_AdminIsAll(t *testing.T) {
	resolver := NewVisibilityResolver(newFakeOrgRepo())
	snap := NewSnapshot(shared.NewID(), shared.NewID())
	snap.Admin = true

	if got := resolver.Level(snap, "anything"); got != permission.ScopeAll {
		t.Errorf("admin visibility = %s, want all", got)
	}
}

func TestVisibilityLevel_DirectPolicyWins(t *testing.T) {
	resolver := NewVisibilityResolver(newFakeOrgRepo())

	snap := snapshotWithPermissions(permission.Visibility(permission.ModuleDeals, permission.ScopeAll))
	snap.Policies = customrole.PolicyMap{
		permission.ModuleDeals: {Visibility: scopePtr(permission.ScopeDepartment)},
	}

	// The direct custom role setting bypasses permission-string probing.
	if got := resolver.Level(snap, permission.EntityDeals); got != permission.ScopeDepartment {
		t.Errorf("visibility = %s, want department", got)
	}
}

func TestVisibilityLevel_PrecedenceOrder(t *testing.T) {
	resolver := NewVisibilityResolver(newFakeOrgRepo())

	// Both all and department grants seeded: all must win.
	snap := snapshotWithPermissions(
		permission.Visibility(permission.ModuleDeals, permission.ScopeDepartment),
		permission.Visibility(permission.ModuleDeals, permission.ScopeAll),
	)
	if got := resolver.Level(snap, permission.EntityDeals); got != permission.ScopeAll {
		t.Errorf("visibility = %s, want all (first in precedence)", got)
	}

	snap = snapshotWithPermissions(
		permission.Visibility(permission.ModuleDeals, permission.ScopeOwn),
		permission.Visibility(permission.ModuleDeals, permission.ScopeBranch),
	)
	if got := resolver.Level(snap, permission.EntityDeals); got != permission.ScopeBranch {
		t.Errorf("visibility = %s, want branch", got)
	}
}

func TestVisibilityLevel_EntityModuleTranslation(t *testing.T) {
	resolver := NewVisibilityResolver(newFakeOrgRepo())

	// companies and customers share the crm.customers module; leads map
	// onto crm.contacts.
	snap := snapshotWithPermissions(
		permission.Visibility(permission.ModuleCustomers, permission.ScopeBranch),
		permission.Visibility(permission.ModuleContacts, permission.ScopeDepartment),
	)

	if got := resolver.Level(snap, permission.EntityCompanies); got != permission.ScopeBranch {
		t.Errorf("companies visibility = %s, want branch", got)
	}
	if got := resolver.Level(snap, permission.EntityCustomers); got != permission.ScopeBranch {
		t.Errorf("customers visibility = %s, want branch", got)
	}
	if got := resolver.Level(snap, permission.EntityLeads); got != permission.ScopeDepartment {
		t.Errorf("leads visibility = %s, want department", got)
	}
}

func TestVisibilityLevel_TodosInherit(t *testing.T) {
	resolver := NewVisibilityResolver(newFakeOrgRepo())

	// No todos grant; a contacts branch grant is inherited.
	snap := snapshotWithPermissions(permission.Visibility(permission.ModuleContacts, permission.ScopeBranch))
	if got := resolver.Level(snap, permission.EntityTodos); got != permission.ScopeBranch {
		t.Errorf("todos visibility = %s, want inherited branch", got)
	}

	// A todos-specific grant beats inheritance.
	snap = snapshotWithPermissions(
		permission.Visibility(permission.ModuleTodos, permission.ScopeOwn),
		permission.Visibility(permission.ModuleDeals, permission.ScopeAll),
	)
	if got := resolver.Level(snap, permission.EntityTodos); got != permission.ScopeOwn {
		t.Errorf("todos visibility = %s, want own (direct grant)", got)
	}

	// The broadest inherited scope wins across entity types.
	snap = snapshotWithPermissions(
		permission.Visibility(permission.ModuleProjects, permission.ScopeAll),
		permission.Visibility(permission.ModuleContacts, permission.ScopeDepartment),
	)
	if got := resolver.Level(snap, permission.EntityTodos); got != permission.ScopeAll {
		t.Errorf("todos visibility = %s, want broadest inherited all", got)
	}
}

func TestVisibilityLevel_DefaultsToOwn(t *testing.T) {
	resolver := NewVisibilityResolver(newFakeOrgRepo())
	snap := snapshotWithPermissions()

	if got := resolver.Level(snap, permission.EntityDeals); got != permission.ScopeOwn {
		t.Errorf("visibility = %s, want own default", got)
	}
	if got := resolver.Level(snap, "unknown-entity"); got != permission.ScopeOwn {
		t.Errorf("unknown entity visibility = %s, want own default", got)
	}
}

func TestCanView_AdminAlwaysTrue(t *testing.T) {
	resolver := NewVisibilityResolver(newFakeOrgRepo())
	snap := NewSnapshot(shared.NewID(), shared.NewID())
	snap.Admin = true

	ok, err := resolver.CanView(context.Background(), snap, "anything", EntityOwnership{OwnerUserID: shared.NewID()})
	if err != nil || !ok {
		t.Errorf("CanView = %v, %v; want true, nil", ok, err)
	}
}

func TestCanView_OwnScope(t *testing.T) {
	resolver := NewVisibilityResolver(newFakeOrgRepo())
	snap := snapshotWithPermissions(permission.Visibility(permission.ModuleDeals, permission.ScopeOwn))

	ok, err := resolver.CanView(context.Background(), snap, permission.EntityDeals, EntityOwnership{OwnerUserID: snap.UserID})
	if err != nil || !ok {
		t.Errorf("own record: CanView = %v, %v; want true, nil", ok, err)
	}

	ok, err = resolver.CanView(context.Background(), snap, permission.EntityDeals, EntityOwnership{OwnerUserID: shared.NewID()})
	if err != nil || ok {
		t.Errorf("foreign record: CanView = %v, %v; want false, nil", ok, err)
	}
}

func TestCanView_DepartmentScopeSymmetry(t *testing.T) {
	orgRepo := newFakeOrgRepo()
	resolver := NewVisibilityResolver(orgRepo)

	snap := snapshotWithPermissions(permission.Visibility(permission.ModuleDeals, permission.ScopeDepartment))
	owner := shared.NewID()
	dept := shared.NewID()

	orgRepo.assign(snap.UserID, dept)
	orgRepo.assign(owner, dept)

	ok, err := resolver.CanView(context.Background(), snap, permission.EntityDeals, EntityOwnership{OwnerUserID: owner})
	if err != nil || !ok {
		t.Errorf("shared department: CanView = %v, %v; want true, nil", ok, err)
	}

	// Moving the owner to a different department flips the result.
	orgRepo.assign(owner, shared.NewID())
	ok, err = resolver.CanView(context.Background(), snap, permission.EntityDeals, EntityOwnership{OwnerUserID: owner})
	if err != nil || ok {
		t.Errorf("different department: CanView = %v, %v; want false, nil", ok, err)
	}
}

func TestCanView_DepartmentScopeUsesSuppliedOwnership(t *testing.T) {
	orgRepo := newFakeOrgRepo()
	resolver := NewVisibilityResolver(orgRepo)

	snap := snapshotWithPermissions(permission.Visibility(permission.ModuleDeals, permission.ScopeDepartment))
	dept := shared.NewID()
	orgRepo.assign(snap.UserID, dept)

	// Owner has no assignment row, but the record carries its department.
	ownership := EntityOwnership{OwnerUserID: shared.NewID(), OwnerDepartmentID: &dept}
	ok, err := resolver.CanView(context.Background(), snap, permission.EntityDeals, ownership)
	if err != nil || !ok {
		t.Errorf("CanView with supplied department = %v, %v; want true, nil", ok, err)
	}
}

func TestCanView_BranchScope(t *testing.T) {
	orgRepo := newFakeOrgRepo()
	resolver := NewVisibilityResolver(orgRepo)

	snap := snapshotWithPermissions(permission.Visibility(permission.ModuleDeals, permission.ScopeBranch))
	owner := shared.NewID()
	branch := shared.NewID()
	callerDept := shared.NewID()
	ownerDept := shared.NewID()

	orgRepo.assign(snap.UserID, callerDept)
	orgRepo.assign(owner, ownerDept)
	orgRepo.department(callerDept, branch)
	orgRepo.department(ownerDept, branch)

	ok, err := resolver.CanView(context.Background(), snap, permission.EntityDeals, EntityOwnership{OwnerUserID: owner})
	if err != nil || !ok {
		t.Errorf("same branch: CanView = %v, %v; want true, nil", ok, err)
	}

	// Break the owner's department-to-branch link.
	orgRepo.department(ownerDept, shared.NewID())
	ok, err = resolver.CanView(context.Background(), snap, permission.EntityDeals, EntityOwnership{OwnerUserID: owner})
	if err != nil || ok {
		t.Errorf("different branch: CanView = %v, %v; want false, nil", ok, err)
	}
}

func TestCanView_MissingAssignmentFailsClosed(t *testing.T) {
	orgRepo := newFakeOrgRepo()
	resolver := NewVisibilityResolver(orgRepo)

	snap := snapshotWithPermissions(permission.Visibility(permission.ModuleDeals, permission.ScopeDepartment))
	// Caller has an assignment, the owner does not.
	orgRepo.assign(snap.UserID, shared.NewID())

	ok, err := resolver.CanView(context.Background(), snap, permission.EntityDeals, EntityOwnership{OwnerUserID: shared.NewID()})
	if err != nil || ok {
		t.Errorf("missing owner assignment: CanView = %v, %v; want false, nil", ok, err)
	}
}

func TestCanView_LookupErrorDenies(t *testing.T) {
	orgRepo := newFakeOrgRepo()
	orgRepo.assignmentErr = errors.New("store unreachable")
	resolver := NewVisibilityResolver(orgRepo)

	snap := snapshotWithPermissions(permission.Visibility(permission.ModuleDeals, permission.ScopeDepartment))

	ok, err := resolver.CanView(context.Background(), snap, permission.EntityDeals, EntityOwnership{OwnerUserID: shared.NewID()})
	if ok {
		t.Error("lookup error must deny, never grant")
	}
	if err == nil {
		t.Error("lookup error should be reported for logging")
	}
}

func TestCanView_SelectedUsers(t *testing.T) {
	resolver := NewVisibilityResolver(newFakeOrgRepo())

	owner := shared.NewID()
	snap := snapshotWithPermissions(permission.Visibility(permission.ModuleDeals, permission.ScopeSelectedUsers))
	snap.Policies = customrole.PolicyMap{
		permission.ModuleDeals: {
			Visibility:              scopePtr(permission.ScopeSelectedUsers),
			VisibilitySelectedUsers: []shared.ID{owner},
		},
	}

	ok, err := resolver.CanView(context.Background(), snap, permission.EntityDeals, EntityOwnership{OwnerUserID: owner})
	if err != nil || !ok {
		t.Errorf("selected owner: CanView = %v, %v; want true, nil", ok, err)
	}

	ok, err = resolver.CanView(context.Background(), snap, permission.EntityDeals, EntityOwnership{OwnerUserID: shared.NewID()})
	if err != nil || ok {
		t.Errorf("unselected owner: CanView = %v, %v; want false, nil", ok, err)
	}

	// A selected_users grant without a backing list denies.
	snap.Policies = nil
	ok, err = resolver.CanView(context.Background(), snap, permission.EntityDeals, EntityOwnership{OwnerUserID: owner})
	if err != nil || ok {
		t.Errorf("absent list: CanView = %v, %v; want false, nil", ok, err)
	}
}
