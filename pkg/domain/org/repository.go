package org

import (
	"context"

	"github.com/clearcrm/authz/pkg/domain/shared"
)

// Repository defines read access to the organizational graph.
// Implementations return shared.ErrNotFound for missing links; visibility
// resolution treats a missing link as a deny.
type Repository interface {
	// GetAssignment returns a user's department assignment within a tenant.
	GetAssignment(ctx context.Context, userID, tenantID shared.ID) (*Assignment, error)

	// GetDepartment returns a department by ID.
	GetDepartment(ctx context.Context, departmentID shared.ID) (*Department, error)
}
