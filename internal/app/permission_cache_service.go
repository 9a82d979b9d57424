package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clearcrm/authz/internal/infra/redis"
	"github.com/clearcrm/authz/internal/metrics"
	"github.com/clearcrm/authz/pkg/domain/accesscontrol"
	"github.com/clearcrm/authz/pkg/domain/shared"
	"github.com/clearcrm/authz/pkg/logger"
)

// SnapshotResolver resolves the effective permission snapshot for a user in
// a tenant. Implemented by accesscontrol.RoleResolver.
type SnapshotResolver interface {
	Resolve(ctx context.Context, userID, tenantID shared.ID) (*accesscontrol.Snapshot, error)
}

// PermissionCacheService provides cached access to resolved permission
// snapshots. Snapshots are cached in Redis with a short TTL; on cache miss
// or any cache error the snapshot is resolved directly. A cache failure can
// therefore slow resolution down but never change its outcome.
//
// Key format: authz_perms:{tenant_id}:{user_id}
// Invalidated when a membership or custom role changes.
type PermissionCacheService struct {
	cache    *redis.Cache[accesscontrol.Snapshot]
	resolver SnapshotResolver
	logger   *logger.Logger
}

const (
	permCachePrefix = "authz_perms"
)

// NewPermissionCacheService creates a new permission cache service.
// A nil redis client disables caching; every lookup then resolves directly.
func NewPermissionCacheService(
	redisClient *redis.Client,
	resolver SnapshotResolver,
	ttl time.Duration,
	log *logger.Logger,
) (*PermissionCacheService, error) {
	if resolver == nil {
		return nil, errors.New("snapshot resolver is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}

	svc := &PermissionCacheService{
		resolver: resolver,
		logger:   log.With("service", "permission_cache"),
	}

	if redisClient != nil {
		cache, err := redis.NewCache[accesscontrol.Snapshot](redisClient, permCachePrefix, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to create permission cache: %w", err)
		}
		svc.cache = cache
	}

	return svc, nil
}

// cacheKey generates the cache key for a user's snapshot.
func (s *PermissionCacheService) cacheKey(tenantID, userID shared.ID) string {
	return fmt.Sprintf("%s:%s", tenantID, userID)
}

// Resolve returns the permission snapshot for a user, consulting the cache
// first. Cache errors degrade to direct resolution.
func (s *PermissionCacheService) Resolve(ctx context.Context, userID, tenantID shared.ID) (*accesscontrol.Snapshot, error) {
	if s.cache == nil {
		metrics.SnapshotCacheTotal.WithLabelValues("bypass").Inc()
		return s.resolver.Resolve(ctx, userID, tenantID)
	}

	key := s.cacheKey(tenantID, userID)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		metrics.SnapshotCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}

	switch {
	case errors.Is(err, redis.ErrCacheMiss):
		metrics.SnapshotCacheTotal.WithLabelValues("miss").Inc()
	default:
		metrics.SnapshotCacheTotal.WithLabelValues("error").Inc()
		s.logger.Warn("snapshot cache get failed, resolving directly",
			"tenant_id", tenantID.String(),
			"user_id", userID.String(),
			"error", err,
		)
	}

	snap, err := s.resolver.Resolve(ctx, userID, tenantID)
	if err != nil {
		// Degraded snapshots are not cached; the next lookup retries.
		return snap, err
	}

	if cacheErr := s.cache.Set(ctx, key, *snap); cacheErr != nil {
		s.logger.Warn("failed to cache snapshot",
			"tenant_id", tenantID.String(),
			"user_id", userID.String(),
			"error", cacheErr,
		)
	}

	return snap, nil
}

// Invalidate removes the cached snapshot for a user.
// Called when the user's membership or custom role assignment changes.
func (s *PermissionCacheService) Invalidate(ctx context.Context, userID, tenantID shared.ID) {
	if s.cache == nil {
		return
	}

	key := s.cacheKey(tenantID, userID)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to invalidate snapshot cache",
			"tenant_id", tenantID.String(),
			"user_id", userID.String(),
			"error", err,
		)
		return
	}

	metrics.SnapshotInvalidationsTotal.Inc()
	s.logger.Debug("snapshot cache invalidated",
		"tenant_id", tenantID.String(),
		"user_id", userID.String(),
	)
}

// InvalidateForTenant removes cached snapshots for all users in a tenant.
// Called when a custom role definition or a role grant set changes.
func (s *PermissionCacheService) InvalidateForTenant(ctx context.Context, tenantID shared.ID) {
	if s.cache == nil {
		return
	}

	pattern := fmt.Sprintf("%s:*", tenantID)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate tenant snapshot cache",
			"tenant_id", tenantID.String(),
			"error", err,
		)
		return
	}

	metrics.SnapshotInvalidationsTotal.Inc()
	s.logger.Info("snapshot cache invalidated for tenant",
		"tenant_id", tenantID.String(),
	)
}
