package app

import (
	"context"
	"errors"
	"time"

	"github.com/clearcrm/authz/internal/metrics"
	"github.com/clearcrm/authz/pkg/domain/accesscontrol"
	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
	"github.com/clearcrm/authz/pkg/logger"
)

// AuthorizationService builds authorization contexts for (user, tenant)
// pairs. It is the logging boundary for resolution: failures inside the
// resolvers are logged here and surface to callers only as the most
// restrictive decision.
type AuthorizationService struct {
	snapshots  SnapshotResolver
	visibility *accesscontrol.VisibilityResolver
	assignment *accesscontrol.AssignmentResolver
	logger     *logger.Logger
}

// AuthorizationServiceOption configures an AuthorizationService.
type AuthorizationServiceOption func(*AuthorizationService)

// WithAuthorizationLogger overrides the service logger.
func WithAuthorizationLogger(log *logger.Logger) AuthorizationServiceOption {
	return func(s *AuthorizationService) {
		s.logger = log.With("service", "authorization")
	}
}

// NewAuthorizationService creates a new AuthorizationService.
func NewAuthorizationService(
	snapshots SnapshotResolver,
	visibility *accesscontrol.VisibilityResolver,
	assignment *accesscontrol.AssignmentResolver,
	opts ...AuthorizationServiceOption,
) (*AuthorizationService, error) {
	if snapshots == nil {
		return nil, errors.New("snapshot resolver is required")
	}
	if visibility == nil {
		return nil, errors.New("visibility resolver is required")
	}
	if assignment == nil {
		return nil, errors.New("assignment resolver is required")
	}

	svc := &AuthorizationService{
		snapshots:  snapshots,
		visibility: visibility,
		assignment: assignment,
		logger:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Context resolves an AuthorizationContext for a user in a tenant. The
// returned context is always usable: when resolution fails it carries an
// empty snapshot and denies everything, and the failure has been logged.
func (s *AuthorizationService) Context(ctx context.Context, userID, tenantID shared.ID) *AuthorizationContext {
	snap, err := s.snapshots.Resolve(ctx, userID, tenantID)
	if err != nil {
		metrics.ResolutionErrorsTotal.WithLabelValues("snapshot").Inc()
		s.logger.WithContext(ctx).Error("snapshot resolution failed, denying by default",
			"tenant_id", tenantID.String(),
			"user_id", userID.String(),
			"error", err,
		)
	}
	if snap == nil {
		snap = accesscontrol.NewSnapshot(userID, tenantID)
	}

	return &AuthorizationContext{
		snap:       snap,
		visibility: s.visibility,
		assignment: s.assignment,
		logger:     s.logger,
	}
}

// AuthorizationContext answers authorization questions for one user in one
// tenant against a single resolved snapshot. Decisions within one context
// are mutually consistent even if the underlying data changes concurrently.
type AuthorizationContext struct {
	snap       *accesscontrol.Snapshot
	visibility *accesscontrol.VisibilityResolver
	assignment *accesscontrol.AssignmentResolver
	logger     *logger.Logger
}

// UserID returns the subject user.
func (c *AuthorizationContext) UserID() shared.ID {
	return c.snap.UserID
}

// TenantID returns the tenant the context was resolved for.
func (c *AuthorizationContext) TenantID() shared.ID {
	return c.snap.TenantID
}

// IsAdmin reports whether the user holds an admin base role in the tenant.
func (c *AuthorizationContext) IsAdmin() bool {
	return c.snap.Admin
}

// Permissions returns the resolved permission names, sorted. Admins hold
// the full catalog that was loadable at resolution time.
func (c *AuthorizationContext) Permissions() []string {
	return c.snap.Permissions.Names()
}

// HasPermission reports whether the user holds the given permission.
// Admins bypass the check.
func (c *AuthorizationContext) HasPermission(p permission.Permission) bool {
	start := time.Now()
	allowed := c.snap.HasPermission(p)
	metrics.DecisionDuration.WithLabelValues("permission").Observe(time.Since(start).Seconds())
	metrics.DecisionsTotal.WithLabelValues("permission", metrics.DecisionOutcome(allowed)).Inc()
	return allowed
}

// HasAnyPermission reports whether the user holds any of the given
// permissions.
func (c *AuthorizationContext) HasAnyPermission(perms ...permission.Permission) bool {
	allowed := c.snap.HasAnyPermission(perms...)
	metrics.DecisionsTotal.WithLabelValues("permission", metrics.DecisionOutcome(allowed)).Inc()
	return allowed
}

// GetVisibilityLevel returns the effective visibility scope for an entity
// type.
func (c *AuthorizationContext) GetVisibilityLevel(entityType string) permission.Scope {
	return c.visibility.Level(c.snap, entityType)
}

// CanView reports whether the user may view the given entity. Lookup
// failures during org traversal are logged and deny.
func (c *AuthorizationContext) CanView(ctx context.Context, entityType string, ownership accesscontrol.EntityOwnership) bool {
	start := time.Now()
	allowed, err := c.visibility.CanView(ctx, c.snap, entityType, ownership)
	metrics.DecisionDuration.WithLabelValues("visibility").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ResolutionErrorsTotal.WithLabelValues("visibility").Inc()
		c.logger.WithContext(ctx).Error("visibility check failed, denying",
			"tenant_id", c.snap.TenantID.String(),
			"user_id", c.snap.UserID.String(),
			"entity_type", entityType,
			"error", err,
		)
	}
	metrics.DecisionsTotal.WithLabelValues("visibility", metrics.DecisionOutcome(allowed)).Inc()
	return allowed
}

// GetAssignmentScope returns the effective assignment scope for an entity
// type.
func (c *AuthorizationContext) GetAssignmentScope(entityType string) permission.Scope {
	return c.assignment.Scope(c.snap, entityType)
}

// CanAssignTo reports whether the user may assign an entity of the given
// type to the target user. Authority failures are logged and deny.
func (c *AuthorizationContext) CanAssignTo(ctx context.Context, entityType string, targetUserID shared.ID) bool {
	start := time.Now()
	allowed, err := c.assignment.CanAssignTo(ctx, c.snap, entityType, targetUserID)
	metrics.DecisionDuration.WithLabelValues("assignment").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ResolutionErrorsTotal.WithLabelValues("assignment").Inc()
		c.logger.WithContext(ctx).Error("assignment check failed, denying",
			"tenant_id", c.snap.TenantID.String(),
			"user_id", c.snap.UserID.String(),
			"entity_type", entityType,
			"target_user_id", targetUserID.String(),
			"error", err,
		)
	}
	metrics.DecisionsTotal.WithLabelValues("assignment", metrics.DecisionOutcome(allowed)).Inc()
	return allowed
}
