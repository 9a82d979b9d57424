package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clearcrm/authz/pkg/domain/shared"
	"github.com/clearcrm/authz/pkg/domain/tenant"
)

// MembershipRepository implements tenant.Repository using PostgreSQL.
type MembershipRepository struct {
	db *DB
}

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository(db *DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// GetMembership returns the membership row for a user in a tenant.
func (r *MembershipRepository) GetMembership(ctx context.Context, userID, tenantID shared.ID) (*tenant.Membership, error) {
	query := `
		SELECT user_id, tenant_id, role, custom_role_id, is_active, joined_at
		FROM tenant_members
		WHERE user_id = $1 AND tenant_id = $2
	`

	var (
		uid, tid     string
		roleName     string
		customRoleID sql.NullString
		active       bool
		joinedAt     sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, userID.String(), tenantID.String()).Scan(
		&uid, &tid, &roleName, &customRoleID, &active, &joinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	scannedUserID, err := shared.IDFromString(uid)
	if err != nil {
		return nil, fmt.Errorf("failed to parse membership user id: %w", err)
	}
	scannedTenantID, err := shared.IDFromString(tid)
	if err != nil {
		return nil, fmt.Errorf("failed to parse membership tenant id: %w", err)
	}

	return tenant.ReconstituteMembership(
		scannedUserID,
		scannedTenantID,
		tenant.Role(roleName),
		parseNullID(customRoleID),
		active,
		joinedAt.Time,
	), nil
}
