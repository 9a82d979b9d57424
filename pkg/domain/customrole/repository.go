package customrole

import (
	"context"

	"github.com/clearcrm/authz/pkg/domain/shared"
)

// Repository defines the persistence interface for custom roles.
type Repository interface {
	// GetByID returns a custom role by ID. Implementations return
	// shared.ErrNotFound for unknown IDs. Inactive roles are returned
	// as-is; resolution treats them as absent.
	GetByID(ctx context.Context, id shared.ID) (*CustomRole, error)
}
