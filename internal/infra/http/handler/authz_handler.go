// Package handler contains the HTTP handlers for the authorization API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearcrm/authz/internal/app"
	"github.com/clearcrm/authz/internal/infra/http/middleware"
	"github.com/clearcrm/authz/pkg/apierror"
	"github.com/clearcrm/authz/pkg/domain/accesscontrol"
	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
	"github.com/clearcrm/authz/pkg/logger"
	"github.com/clearcrm/authz/pkg/validator"
)

// AuthzHandler serves authorization decisions for the authenticated user.
type AuthzHandler struct {
	authz     *app.AuthorizationService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewAuthzHandler creates a new AuthzHandler.
func NewAuthzHandler(authz *app.AuthorizationService, v *validator.Validator, log *logger.Logger) *AuthzHandler {
	return &AuthzHandler{
		authz:     authz,
		validator: v,
		logger:    log.With("handler", "authz"),
	}
}

// RegisterRoutes mounts the authorization endpoints on the router.
func (h *AuthzHandler) RegisterRoutes(r chi.Router) {
	r.Get("/permissions", h.Permissions)
	r.Get("/visibility/{entityType}", h.Visibility)
	r.Post("/can-view", h.CanView)
	r.Post("/can-assign", h.CanAssign)
	r.Get("/catalog", h.Catalog)
}

// subject resolves an authorization context for the authenticated caller.
func (h *AuthzHandler) subject(w http.ResponseWriter, r *http.Request) (*app.AuthorizationContext, bool) {
	userID, err := shared.IDFromString(middleware.GetUserID(r.Context()))
	if err != nil {
		apierror.Unauthorized("Invalid subject").WriteJSON(w, middleware.GetRequestID(r.Context()))
		return nil, false
	}
	tenantID, err := shared.IDFromString(middleware.GetTenantID(r.Context()))
	if err != nil {
		apierror.Unauthorized("Invalid tenant").WriteJSON(w, middleware.GetRequestID(r.Context()))
		return nil, false
	}

	return h.authz.Context(r.Context(), userID, tenantID), true
}

// permissionNames renders permission names in the requested format. The
// legacy underscore format exists only at this boundary for older UI
// consumers.
func permissionNames(r *http.Request, perms []permission.Permission) []string {
	legacy := r.URL.Query().Get("format") == "legacy"
	names := make([]string, len(perms))
	for i, p := range perms {
		if legacy {
			names[i] = permission.LegacyName(p)
		} else {
			names[i] = p.String()
		}
	}
	return names
}

// PermissionsResponse is the body of GET /permissions.
type PermissionsResponse struct {
	UserID      string   `json:"user_id"`
	TenantID    string   `json:"tenant_id"`
	Admin       bool     `json:"admin"`
	Permissions []string `json:"permissions"`
}

// Permissions returns the caller's resolved permission names.
func (h *AuthzHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	authz, ok := h.subject(w, r)
	if !ok {
		return
	}

	names := authz.Permissions()
	perms := make([]permission.Permission, len(names))
	for i, n := range names {
		perms[i] = permission.Permission(n)
	}

	h.respond(w, r, http.StatusOK, PermissionsResponse{
		UserID:      authz.UserID().String(),
		TenantID:    authz.TenantID().String(),
		Admin:       authz.IsAdmin(),
		Permissions: permissionNames(r, perms),
	})
}

// VisibilityResponse is the body of GET /visibility/{entityType}.
type VisibilityResponse struct {
	EntityType string `json:"entity_type"`
	Level      string `json:"level"`
}

// Visibility returns the caller's visibility level for an entity type.
func (h *AuthzHandler) Visibility(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	if _, ok := permission.ModuleForEntity(entityType); !ok {
		apierror.BadRequest("Unknown entity type").WriteJSON(w, middleware.GetRequestID(r.Context()))
		return
	}

	authz, ok := h.subject(w, r)
	if !ok {
		return
	}

	h.respond(w, r, http.StatusOK, VisibilityResponse{
		EntityType: entityType,
		Level:      authz.GetVisibilityLevel(entityType).String(),
	})
}

// CanViewRequest is the body of POST /can-view.
type CanViewRequest struct {
	EntityType        string `json:"entity_type" validate:"required,entity_type"`
	OwnerUserID       string `json:"owner_user_id" validate:"required,uuid"`
	OwnerDepartmentID string `json:"owner_department_id" validate:"omitempty,uuid"`
	OwnerBranchID     string `json:"owner_branch_id" validate:"omitempty,uuid"`
}

// DecisionResponse is the body of the decision endpoints.
type DecisionResponse struct {
	Allowed bool   `json:"allowed"`
	Scope   string `json:"scope,omitempty"`
}

// CanView decides whether the caller may view a specific entity.
func (h *AuthzHandler) CanView(w http.ResponseWriter, r *http.Request) {
	var req CanViewRequest
	if !h.decode(w, r, &req) {
		return
	}

	ownerUserID, err := shared.IDFromString(req.OwnerUserID)
	if err != nil {
		apierror.BadRequest("Invalid owner_user_id").WriteJSON(w, middleware.GetRequestID(r.Context()))
		return
	}

	ownership := accesscontrol.EntityOwnership{OwnerUserID: ownerUserID}
	if req.OwnerDepartmentID != "" {
		if id, err := shared.IDFromString(req.OwnerDepartmentID); err == nil {
			ownership.OwnerDepartmentID = &id
		}
	}
	if req.OwnerBranchID != "" {
		if id, err := shared.IDFromString(req.OwnerBranchID); err == nil {
			ownership.OwnerBranchID = &id
		}
	}

	authz, ok := h.subject(w, r)
	if !ok {
		return
	}

	h.respond(w, r, http.StatusOK, DecisionResponse{
		Allowed: authz.CanView(r.Context(), req.EntityType, ownership),
		Scope:   authz.GetVisibilityLevel(req.EntityType).String(),
	})
}

// CanAssignRequest is the body of POST /can-assign.
type CanAssignRequest struct {
	EntityType   string `json:"entity_type" validate:"required,entity_type"`
	TargetUserID string `json:"target_user_id" validate:"required,uuid"`
}

// CanAssign decides whether the caller may assign an entity to the target
// user.
func (h *AuthzHandler) CanAssign(w http.ResponseWriter, r *http.Request) {
	var req CanAssignRequest
	if !h.decode(w, r, &req) {
		return
	}

	targetUserID, err := shared.IDFromString(req.TargetUserID)
	if err != nil {
		apierror.BadRequest("Invalid target_user_id").WriteJSON(w, middleware.GetRequestID(r.Context()))
		return
	}

	authz, ok := h.subject(w, r)
	if !ok {
		return
	}

	h.respond(w, r, http.StatusOK, DecisionResponse{
		Allowed: authz.CanAssignTo(r.Context(), req.EntityType, targetUserID),
		Scope:   authz.GetAssignmentScope(req.EntityType).String(),
	})
}

// CatalogResponse is the body of GET /catalog.
type CatalogResponse struct {
	Permissions []string `json:"permissions"`
}

// Catalog returns the full permission vocabulary.
func (h *AuthzHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, CatalogResponse{
		Permissions: permissionNames(r, permission.AllPermissions()),
	})
}

// decode parses and validates a JSON request body.
func (h *AuthzHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierror.BadRequest("Invalid request body").WriteJSON(w, middleware.GetRequestID(r.Context()))
		return false
	}

	if err := h.validator.Validate(dst); err != nil {
		var details any
		if verrs, ok := err.(validator.ValidationErrors); ok {
			details = verrs
		}
		apierror.ValidationFailed("Validation failed", details).WriteJSON(w, middleware.GetRequestID(r.Context()))
		return false
	}

	return true
}

func (h *AuthzHandler) respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithContext(r.Context()).Error("failed to encode response", "error", err)
	}
}
