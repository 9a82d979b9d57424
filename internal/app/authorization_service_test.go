package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearcrm/authz/pkg/domain/accesscontrol"
	"github.com/clearcrm/authz/pkg/domain/org"
	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
	"github.com/clearcrm/authz/pkg/logger"
)

type stubSnapshotResolver struct {
	snap  *accesscontrol.Snapshot
	err   error
	calls int
}

func (r *stubSnapshotResolver) Resolve(_ context.Context, userID, tenantID shared.ID) (*accesscontrol.Snapshot, error) {
	r.calls++
	if r.snap != nil {
		return r.snap, r.err
	}
	return accesscontrol.NewSnapshot(userID, tenantID), r.err
}

type stubOrgRepo struct{}

func (stubOrgRepo) GetAssignment(context.Context, shared.ID, shared.ID) (*org.Assignment, error) {
	return nil, shared.ErrNotFound
}

func (stubOrgRepo) GetDepartment(context.Context, shared.ID) (*org.Department, error) {
	return nil, shared.ErrNotFound
}

type stubAuthority struct {
	allow bool
	err   error
	calls int
}

func (a *stubAuthority) CanAssign(context.Context, shared.ID, shared.ID, shared.ID, string) (bool, error) {
	a.calls++
	return a.allow, a.err
}

func newTestService(t *testing.T, snapshots SnapshotResolver, authority accesscontrol.AssignmentAuthority) *AuthorizationService {
	t.Helper()
	svc, err := NewAuthorizationService(
		snapshots,
		accesscontrol.NewVisibilityResolver(stubOrgRepo{}),
		accesscontrol.NewAssignmentResolver(authority),
		WithAuthorizationLogger(logger.NewNop()),
	)
	require.NoError(t, err)
	return svc
}

func TestAuthorizationContextDeniesOnResolutionFailure(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	resolver := &stubSnapshotResolver{err: errors.New("db down")}
	svc := newTestService(t, resolver, &stubAuthority{allow: true})

	authz := svc.Context(context.Background(), userID, tenantID)

	assert.False(t, authz.IsAdmin())
	assert.False(t, authz.HasPermission(permission.DealsView))
	assert.Empty(t, authz.Permissions())
	assert.Equal(t, permission.ScopeOwn, authz.GetVisibilityLevel(permission.EntityDeals))
}

func TestAuthorizationContextAdminBypass(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	snap := accesscontrol.NewSnapshot(userID, tenantID)
	snap.Admin = true
	authority := &stubAuthority{}
	svc := newTestService(t, &stubSnapshotResolver{snap: snap}, authority)

	authz := svc.Context(context.Background(), userID, tenantID)

	assert.True(t, authz.IsAdmin())
	assert.True(t, authz.HasPermission(permission.DealsDelete))
	assert.Equal(t, permission.ScopeAll, authz.GetVisibilityLevel(permission.EntityDeals))
	assert.True(t, authz.CanView(context.Background(), permission.EntityDeals, accesscontrol.EntityOwnership{OwnerUserID: shared.NewID()}))
	assert.True(t, authz.CanAssignTo(context.Background(), permission.EntityDeals, shared.NewID()))
	assert.Zero(t, authority.calls)
}

func TestAuthorizationContextGrantedPermissions(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	snap := accesscontrol.NewSnapshot(userID, tenantID)
	snap.Permissions.Add(permission.DealsView)
	snap.Permissions.Add(permission.Visibility(permission.ModuleDeals, permission.ScopeAll))
	svc := newTestService(t, &stubSnapshotResolver{snap: snap}, &stubAuthority{})

	authz := svc.Context(context.Background(), userID, tenantID)

	assert.True(t, authz.HasPermission(permission.DealsView))
	assert.False(t, authz.HasPermission(permission.DealsDelete))
	assert.True(t, authz.HasAnyPermission(permission.DealsDelete, permission.DealsView))
	assert.Equal(t, permission.ScopeAll, authz.GetVisibilityLevel(permission.EntityDeals))
	assert.Contains(t, authz.Permissions(), permission.DealsView.String())
}

func TestAuthorizationContextSelfAssignmentFloor(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	snap := accesscontrol.NewSnapshot(userID, tenantID)
	authority := &stubAuthority{allow: false}
	svc := newTestService(t, &stubSnapshotResolver{snap: snap}, authority)

	authz := svc.Context(context.Background(), userID, tenantID)

	assert.True(t, authz.CanAssignTo(context.Background(), permission.EntityDeals, userID))
	assert.False(t, authz.CanAssignTo(context.Background(), permission.EntityDeals, shared.NewID()))
}

func TestAuthorizationContextAuthorityFailureDenies(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	snap := accesscontrol.NewSnapshot(userID, tenantID)
	snap.Permissions.Add(permission.Assignment(permission.ModuleDeals, permission.ScopeBranch))
	authority := &stubAuthority{allow: true, err: errors.New("authority timeout")}
	svc := newTestService(t, &stubSnapshotResolver{snap: snap}, authority)

	authz := svc.Context(context.Background(), userID, tenantID)

	assert.False(t, authz.CanAssignTo(context.Background(), permission.EntityDeals, shared.NewID()))
	assert.Equal(t, 1, authority.calls)
}

func TestPermissionCacheServiceBypassWithoutRedis(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	resolver := &stubSnapshotResolver{}

	svc, err := NewPermissionCacheService(nil, resolver, time.Minute, logger.NewNop())
	require.NoError(t, err)

	snap, err := svc.Resolve(context.Background(), userID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, userID, snap.UserID)
	assert.Equal(t, 1, resolver.calls)

	snap2, err := svc.Resolve(context.Background(), userID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, snap.TenantID, snap2.TenantID)
	assert.Equal(t, 2, resolver.calls)

	// No cache configured, invalidation is a no-op.
	svc.Invalidate(context.Background(), userID, tenantID)
	svc.InvalidateForTenant(context.Background(), tenantID)
}

func TestPermissionCacheServiceRequiresResolver(t *testing.T) {
	_, err := NewPermissionCacheService(nil, nil, time.Minute, logger.NewNop())
	require.Error(t, err)
}
