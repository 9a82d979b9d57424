package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearcrm/authz/internal/app"
	"github.com/clearcrm/authz/internal/infra/http/middleware"
	"github.com/clearcrm/authz/pkg/domain/accesscontrol"
	"github.com/clearcrm/authz/pkg/domain/org"
	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
	"github.com/clearcrm/authz/pkg/logger"
	"github.com/clearcrm/authz/pkg/validator"
)

type staticSnapshots struct {
	snap *accesscontrol.Snapshot
}

func (s staticSnapshots) Resolve(_ context.Context, userID, tenantID shared.ID) (*accesscontrol.Snapshot, error) {
	if s.snap != nil {
		return s.snap, nil
	}
	return accesscontrol.NewSnapshot(userID, tenantID), nil
}

type emptyOrgRepo struct{}

func (emptyOrgRepo) GetAssignment(context.Context, shared.ID, shared.ID) (*org.Assignment, error) {
	return nil, shared.ErrNotFound
}

func (emptyOrgRepo) GetDepartment(context.Context, shared.ID) (*org.Department, error) {
	return nil, shared.ErrNotFound
}

type denyAuthority struct{}

func (denyAuthority) CanAssign(context.Context, shared.ID, shared.ID, shared.ID, string) (bool, error) {
	return false, nil
}

func newTestHandler(t *testing.T, snap *accesscontrol.Snapshot) *AuthzHandler {
	t.Helper()
	svc, err := app.NewAuthorizationService(
		staticSnapshots{snap: snap},
		accesscontrol.NewVisibilityResolver(emptyOrgRepo{}),
		accesscontrol.NewAssignmentResolver(denyAuthority{}),
	)
	require.NoError(t, err)
	return NewAuthzHandler(svc, validator.New(), logger.NewNop())
}

func newRouter(h *AuthzHandler) chi.Router {
	r := chi.NewRouter()
	r.Route("/api/v1/authz", h.RegisterRoutes)
	return r
}

func authenticated(r *http.Request, userID, tenantID shared.ID) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, middleware.TenantIDKey, tenantID.String())
	return r.WithContext(ctx)
}

func TestPermissionsEndpoint(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	snap := accesscontrol.NewSnapshot(userID, tenantID)
	snap.Permissions.Add(permission.DealsView)
	router := newRouter(newTestHandler(t, snap))

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/authz/permissions", nil), userID, tenantID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PermissionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, userID.String(), resp.UserID)
	assert.False(t, resp.Admin)
	assert.Contains(t, resp.Permissions, "crm.deals.view")
}

func TestPermissionsEndpointLegacyFormat(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	snap := accesscontrol.NewSnapshot(userID, tenantID)
	snap.Permissions.Add(permission.DealsView)
	router := newRouter(newTestHandler(t, snap))

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/authz/permissions?format=legacy", nil), userID, tenantID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PermissionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Permissions, "crm_deals_view")
	assert.NotContains(t, resp.Permissions, "crm.deals.view")
}

func TestPermissionsEndpointRejectsMissingIdentity(t *testing.T) {
	router := newRouter(newTestHandler(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/authz/permissions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVisibilityEndpoint(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	snap := accesscontrol.NewSnapshot(userID, tenantID)
	snap.Permissions.Add(permission.Visibility(permission.ModuleDeals, permission.ScopeBranch))
	router := newRouter(newTestHandler(t, snap))

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/authz/visibility/deals", nil), userID, tenantID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp VisibilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "deals", resp.EntityType)
	assert.Equal(t, "branch", resp.Level)
}

func TestVisibilityEndpointUnknownEntityType(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	router := newRouter(newTestHandler(t, nil))

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/authz/visibility/invoices", nil), userID, tenantID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCanViewEndpointOwnRecord(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	snap := accesscontrol.NewSnapshot(userID, tenantID)
	snap.Permissions.Add(permission.Visibility(permission.ModuleDeals, permission.ScopeOwn))
	router := newRouter(newTestHandler(t, snap))

	body := `{"entity_type":"deals","owner_user_id":"` + userID.String() + `"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/v1/authz/can-view", strings.NewReader(body)), userID, tenantID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DecisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)
	assert.Equal(t, "own", resp.Scope)
}

func TestCanViewEndpointValidation(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	router := newRouter(newTestHandler(t, nil))

	body := `{"entity_type":"spreadsheets","owner_user_id":"not-a-uuid"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/v1/authz/can-view", strings.NewReader(body)), userID, tenantID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCanAssignEndpointSelf(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	router := newRouter(newTestHandler(t, nil))

	body := `{"entity_type":"deals","target_user_id":"` + userID.String() + `"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/v1/authz/can-assign", strings.NewReader(body)), userID, tenantID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DecisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)
}

func TestCatalogEndpoint(t *testing.T) {
	userID := shared.NewID()
	tenantID := shared.NewID()
	router := newRouter(newTestHandler(t, nil))

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/authz/catalog", nil), userID, tenantID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Permissions, "crm.deals.view")
	assert.Contains(t, resp.Permissions, "crm.todos.visibility.branch")
}
