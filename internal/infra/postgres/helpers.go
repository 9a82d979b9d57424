package postgres

import (
	"database/sql"

	"github.com/clearcrm/authz/pkg/domain/shared"
)

// Helper functions for null handling in PostgreSQL queries

// parseNullID parses a sql.NullString into *shared.ID.
// Returns nil if NULL or if parsing fails.
func parseNullID(ns sql.NullString) *shared.ID {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	id, err := shared.IDFromString(ns.String)
	if err != nil {
		return nil
	}
	return &id
}
