package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
	"github.com/clearcrm/authz/pkg/domain/tenant"
)

// GrantRepository implements accesscontrol.GrantRepository using PostgreSQL.
//
// The catalog lives in the permissions table; static per-role grants live in
// role_permissions keyed by tenant and base role. Rows holding names that are
// no longer in the catalog vocabulary are skipped on read.
type GrantRepository struct {
	db *DB
}

// NewGrantRepository creates a new GrantRepository.
func NewGrantRepository(db *DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// ListCatalog returns every active permission in the catalog.
func (r *GrantRepository) ListCatalog(ctx context.Context) ([]permission.Permission, error) {
	query := `
		SELECT name
		FROM permissions
		WHERE is_active = TRUE
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list permission catalog: %w", err)
	}
	defer rows.Close()

	return scanPermissions(rows)
}

// ListRoleGrants returns the static permission grants for a base role within
// a tenant.
func (r *GrantRepository) ListRoleGrants(ctx context.Context, tenantID shared.ID, role tenant.Role) ([]permission.Permission, error) {
	query := `
		SELECT permission_name
		FROM role_permissions
		WHERE tenant_id = $1 AND role = $2
		ORDER BY permission_name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID.String(), role.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list role grants: %w", err)
	}
	defer rows.Close()

	return scanPermissions(rows)
}

// SeedCatalog inserts the given permissions into the catalog, activating any
// that already exist.
func (r *GrantRepository) SeedCatalog(ctx context.Context, perms []permission.Permission) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO permissions (name, is_active)
			VALUES ($1, TRUE)
			ON CONFLICT (name) DO UPDATE SET is_active = TRUE
		`
		for _, p := range perms {
			if _, err := tx.ExecContext(ctx, query, p.String()); err != nil {
				return fmt.Errorf("failed to seed permission %s: %w", p, err)
			}
		}
		return nil
	})
}

// ReplaceRoleGrants replaces the full grant set for a base role within a
// tenant.
func (r *GrantRepository) ReplaceRoleGrants(ctx context.Context, tenantID shared.ID, role tenant.Role, perms []permission.Permission) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		deleteQuery := `
			DELETE FROM role_permissions
			WHERE tenant_id = $1 AND role = $2
		`
		if _, err := tx.ExecContext(ctx, deleteQuery, tenantID.String(), role.String()); err != nil {
			return fmt.Errorf("failed to clear role grants: %w", err)
		}

		insertQuery := `
			INSERT INTO role_permissions (tenant_id, role, permission_name)
			VALUES ($1, $2, $3)
		`
		for _, p := range perms {
			if _, err := tx.ExecContext(ctx, insertQuery, tenantID.String(), role.String(), p.String()); err != nil {
				return fmt.Errorf("failed to insert role grant %s: %w", p, err)
			}
		}
		return nil
	})
}

func scanPermissions(rows *sql.Rows) ([]permission.Permission, error) {
	var perms []permission.Permission
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		p, ok := permission.Parse(name)
		if !ok {
			continue
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
