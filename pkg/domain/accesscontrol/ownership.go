package accesscontrol

import (
	"github.com/clearcrm/authz/pkg/domain/shared"
)

// EntityOwnership identifies who owns a record being checked: the owning
// user and, when the caller already has them, the owner's department and
// branch. The optional fields save the resolver a lookup; when absent, the
// owner's position is chased through the organizational graph.
type EntityOwnership struct {
	OwnerUserID       shared.ID
	OwnerDepartmentID *shared.ID
	OwnerBranchID     *shared.ID
}
