package accesscontrol

import (
	"context"

	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
	"github.com/clearcrm/authz/pkg/domain/tenant"
)

// GrantRepository defines read access to the permission catalog and the
// static per-role grant table used when no custom role applies.
type GrantRepository interface {
	// ListCatalog returns every permission in the catalog.
	ListCatalog(ctx context.Context) ([]permission.Permission, error)

	// ListRoleGrants returns the static permission grants for a base role
	// within a tenant.
	ListRoleGrants(ctx context.Context, tenantID shared.ID, role tenant.Role) ([]permission.Permission, error)
}

// AssignmentAuthority is the external policy fallback consulted for
// assignment scopes that cannot be resolved from local custom role data.
// Its underlying rules are organization-specific and evolve independently
// of this engine, so it stays an injected collaborator.
type AssignmentAuthority interface {
	CanAssign(ctx context.Context, assignerID, targetID, tenantID shared.ID, entityType string) (bool, error)
}
