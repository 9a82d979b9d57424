package tenant

import (
	"context"

	"github.com/clearcrm/authz/pkg/domain/shared"
)

// Repository defines the persistence interface for memberships.
// Implementations return shared.ErrNotFound when no membership exists for
// the (user, tenant) pair.
type Repository interface {
	// GetMembership returns the membership for a user in a tenant,
	// whether active or not. Resolution treats inactive memberships
	// as absent.
	GetMembership(ctx context.Context, userID, tenantID shared.ID) (*Membership, error)
}
