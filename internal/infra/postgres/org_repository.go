package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clearcrm/authz/pkg/domain/org"
	"github.com/clearcrm/authz/pkg/domain/shared"
)

// OrgRepository implements org.Repository using PostgreSQL.
type OrgRepository struct {
	db *DB
}

// NewOrgRepository creates a new OrgRepository.
func NewOrgRepository(db *DB) *OrgRepository {
	return &OrgRepository{db: db}
}

// GetAssignment returns a user's department assignment within a tenant.
func (r *OrgRepository) GetAssignment(ctx context.Context, userID, tenantID shared.ID) (*org.Assignment, error) {
	query := `
		SELECT user_id, tenant_id, department_id
		FROM org_assignments
		WHERE user_id = $1 AND tenant_id = $2
	`

	var rawUserID, rawTenantID, rawDepartmentID string
	err := r.db.QueryRowContext(ctx, query, userID.String(), tenantID.String()).Scan(
		&rawUserID, &rawTenantID, &rawDepartmentID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get org assignment: %w", err)
	}

	scannedUserID, err := shared.IDFromString(rawUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse assignment user id: %w", err)
	}
	scannedTenantID, err := shared.IDFromString(rawTenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse assignment tenant id: %w", err)
	}
	departmentID, err := shared.IDFromString(rawDepartmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse assignment department id: %w", err)
	}

	return org.ReconstituteAssignment(scannedUserID, scannedTenantID, departmentID), nil
}

// GetDepartment returns a department by ID.
func (r *OrgRepository) GetDepartment(ctx context.Context, departmentID shared.ID) (*org.Department, error) {
	query := `
		SELECT id, branch_id
		FROM departments
		WHERE id = $1
	`

	var rawID, rawBranchID string
	err := r.db.QueryRowContext(ctx, query, departmentID.String()).Scan(&rawID, &rawBranchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}

	id, err := shared.IDFromString(rawID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse department id: %w", err)
	}
	branchID, err := shared.IDFromString(rawBranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse department branch id: %w", err)
	}

	return org.ReconstituteDepartment(id, branchID), nil
}
