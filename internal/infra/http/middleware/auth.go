package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/clearcrm/authz/pkg/apierror"
	"github.com/clearcrm/authz/pkg/jwt"
	"github.com/clearcrm/authz/pkg/logger"
)

// Auth-related context keys, shared with the logger package so request logs
// carry the authenticated identity.
const (
	UserIDKey   = logger.ContextKeyUserID
	TenantIDKey = logger.ContextKeyTenantID
)

// GetUserID extracts the authenticated user ID from context.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// GetTenantID extracts the tenant ID from context.
func GetTenantID(ctx context.Context) string {
	if tenantID, ok := ctx.Value(TenantIDKey).(string); ok {
		return tenantID
	}
	return ""
}

// Auth validates the bearer token and stores the subject user and tenant in
// the request context.
func Auth(tokens *jwt.Generator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				apierror.Unauthorized("Missing authorization header").WriteJSON(w, GetRequestID(r.Context()))
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				apierror.Unauthorized("Invalid authorization header").WriteJSON(w, GetRequestID(r.Context()))
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				log.WithContext(r.Context()).Debug("token validation failed", "error", err)
				apierror.Unauthorized("Invalid or expired token").WriteJSON(w, GetRequestID(r.Context()))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, TenantIDKey, claims.TenantID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
