package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clearcrm/authz/pkg/domain/customrole"
	"github.com/clearcrm/authz/pkg/domain/shared"
)

// CustomRoleRepository implements customrole.Repository using PostgreSQL.
//
// The permissions column is a JSONB policy blob keyed by module. The blob is
// parsed with customrole.ParsePolicyMap so that a row written by an older UI
// (entity-type keys, legacy aliases) still loads.
type CustomRoleRepository struct {
	db *DB
}

// NewCustomRoleRepository creates a new CustomRoleRepository.
func NewCustomRoleRepository(db *DB) *CustomRoleRepository {
	return &CustomRoleRepository{db: db}
}

// GetByID returns a custom role by ID.
func (r *CustomRoleRepository) GetByID(ctx context.Context, id shared.ID) (*customrole.CustomRole, error) {
	query := `
		SELECT id, tenant_id, name, is_active, permissions, created_at, updated_at
		FROM custom_roles
		WHERE id = $1
	`

	var (
		rawID, rawTenantID string
		name               string
		active             bool
		policyBlob         []byte
		createdAt          time.Time
		updatedAt          time.Time
	)

	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&rawID, &rawTenantID, &name, &active, &policyBlob, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get custom role: %w", err)
	}

	roleID, err := shared.IDFromString(rawID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse custom role id: %w", err)
	}
	tenantID, err := shared.IDFromString(rawTenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse custom role tenant id: %w", err)
	}

	policies, err := customrole.ParsePolicyMap(policyBlob)
	if err != nil {
		return nil, fmt.Errorf("failed to parse custom role %s policies: %w", rawID, err)
	}

	return customrole.Reconstitute(roleID, tenantID, name, active, policies, createdAt, updatedAt), nil
}
