package accesscontrol

import (
	"context"

	"github.com/clearcrm/authz/pkg/domain/customrole"
	"github.com/clearcrm/authz/pkg/domain/org"
	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
	"github.com/clearcrm/authz/pkg/domain/tenant"
)

// In-memory store fakes shared by the resolver tests.

type membershipKey struct {
	userID   shared.ID
	tenantID shared.ID
}

type fakeMembershipRepo struct {
	memberships map[membershipKey]*tenant.Membership
	err         error
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{memberships: make(map[membershipKey]*tenant.Membership)}
}

func (f *fakeMembershipRepo) put(m *tenant.Membership) {
	f.memberships[membershipKey{m.UserID(), m.TenantID()}] = m
}

func (f *fakeMembershipRepo) GetMembership(_ context.Context, userID, tenantID shared.ID) (*tenant.Membership, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.memberships[membershipKey{userID, tenantID}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m, nil
}

type fakeCustomRoleRepo struct {
	roles map[shared.ID]*customrole.CustomRole
	err   error
}

func newFakeCustomRoleRepo() *fakeCustomRoleRepo {
	return &fakeCustomRoleRepo{roles: make(map[shared.ID]*customrole.CustomRole)}
}

func (f *fakeCustomRoleRepo) put(r *customrole.CustomRole) {
	f.roles[r.ID()] = r
}

func (f *fakeCustomRoleRepo) GetByID(_ context.Context, id shared.ID) (*customrole.CustomRole, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.roles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return r, nil
}

type grantKey struct {
	tenantID shared.ID
	role     tenant.Role
}

type fakeGrantRepo struct {
	grants     map[grantKey][]permission.Permission
	catalogErr error
	grantsErr  error
}

func newFakeGrantRepo() *fakeGrantRepo {
	return &fakeGrantRepo{grants: make(map[grantKey][]permission.Permission)}
}

func (f *fakeGrantRepo) grant(tenantID shared.ID, role tenant.Role, perms ...permission.Permission) {
	key := grantKey{tenantID, role}
	f.grants[key] = append(f.grants[key], perms...)
}

func (f *fakeGrantRepo) ListCatalog(_ context.Context) ([]permission.Permission, error) {
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return permission.AllPermissions(), nil
}

func (f *fakeGrantRepo) ListRoleGrants(_ context.Context, tenantID shared.ID, role tenant.Role) ([]permission.Permission, error) {
	if f.grantsErr != nil {
		return nil, f.grantsErr
	}
	return f.grants[grantKey{tenantID, role}], nil
}

type fakeOrgRepo struct {
	departments   map[shared.ID]shared.ID // userID -> departmentID
	branches      map[shared.ID]shared.ID // departmentID -> branchID
	assignmentErr error
	departmentErr error
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{
		departments: make(map[shared.ID]shared.ID),
		branches:    make(map[shared.ID]shared.ID),
	}
}

func (f *fakeOrgRepo) assign(userID, departmentID shared.ID) {
	f.departments[userID] = departmentID
}

func (f *fakeOrgRepo) department(departmentID, branchID shared.ID) {
	f.branches[departmentID] = branchID
}

func (f *fakeOrgRepo) GetAssignment(_ context.Context, userID, tenantID shared.ID) (*org.Assignment, error) {
	if f.assignmentErr != nil {
		return nil, f.assignmentErr
	}
	deptID, ok := f.departments[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return org.ReconstituteAssignment(userID, tenantID, deptID), nil
}

func (f *fakeOrgRepo) GetDepartment(_ context.Context, departmentID shared.ID) (*org.Department, error) {
	if f.departmentErr != nil {
		return nil, f.departmentErr
	}
	branchID, ok := f.branches[departmentID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return org.ReconstituteDepartment(departmentID, branchID), nil
}

type fakeAuthority struct {
	allow bool
	err   error
	calls int
}

func (f *fakeAuthority) CanAssign(_ context.Context, _, _, _ shared.ID, _ string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.allow, nil
}

func scopePtr(s permission.Scope) *permission.Scope {
	return &s
}
