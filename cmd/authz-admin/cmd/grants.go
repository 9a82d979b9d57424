package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clearcrm/authz/internal/infra/postgres"
	"github.com/clearcrm/authz/pkg/domain/shared"
	"github.com/clearcrm/authz/pkg/domain/tenant"
)

var grantsCmd = &cobra.Command{
	Use:   "grants <tenant-id> <role>",
	Short: "List the static permission grants for a base role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tenantID, err := shared.IDFromString(args[0])
		if err != nil {
			return fmt.Errorf("invalid tenant id %q", args[0])
		}
		role, ok := tenant.ParseRole(args[1])
		if !ok {
			return fmt.Errorf("invalid role %q", args[1])
		}

		db, err := connect()
		if err != nil {
			return err
		}
		defer db.Close()

		perms, err := newGrantRepo(db).ListRoleGrants(cmd.Context(), tenantID, role)
		if err != nil {
			return fmt.Errorf("list role grants: %w", err)
		}

		if len(perms) == 0 {
			fmt.Println("(none)")
			return nil
		}
		for _, p := range perms {
			fmt.Println(printName(p))
		}
		return nil
	},
}

func newGrantRepo(db *postgres.DB) *postgres.GrantRepository {
	return postgres.NewGrantRepository(db)
}
