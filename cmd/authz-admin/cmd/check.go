package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clearcrm/authz/internal/infra/postgres"
	"github.com/clearcrm/authz/pkg/domain/accesscontrol"
	"github.com/clearcrm/authz/pkg/domain/permission"
	"github.com/clearcrm/authz/pkg/domain/shared"
)

var checkCmd = &cobra.Command{
	Use:   "check <user-id> <tenant-id>",
	Short: "Show a user's effective permissions in a tenant",
	Long: `Resolve and print the effective permission snapshot for a user in a
tenant: admin flag, granted permissions, and the visibility and assignment
scope per entity type.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := shared.IDFromString(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		tenantID, err := shared.IDFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid tenant id %q", args[1])
		}

		db, err := connect()
		if err != nil {
			return err
		}
		defer db.Close()

		orgRepo := postgres.NewOrgRepository(db)
		resolver := accesscontrol.NewRoleResolver(
			postgres.NewMembershipRepository(db),
			postgres.NewCustomRoleRepository(db),
			newGrantRepo(db),
		)
		visibility := accesscontrol.NewVisibilityResolver(orgRepo)
		assignment := accesscontrol.NewAssignmentResolver(nil)

		snap, err := resolver.Resolve(cmd.Context(), userID, tenantID)
		if err != nil {
			return fmt.Errorf("resolve: %w", err)
		}

		fmt.Printf("user:   %s\n", userID)
		fmt.Printf("tenant: %s\n", tenantID)
		fmt.Printf("admin:  %v\n", snap.Admin)

		fmt.Println("\npermissions:")
		if snap.Permissions.Len() == 0 && !snap.Admin {
			fmt.Println("  (none)")
		}
		for _, name := range snap.Permissions.Names() {
			fmt.Printf("  %s\n", printName(permission.Permission(name)))
		}

		fmt.Println("\nscopes:")
		fmt.Printf("  %-12s %-15s %s\n", "entity", "visibility", "assignment")
		for _, entityType := range permission.EntityTypes() {
			fmt.Printf("  %-12s %-15s %s\n",
				entityType,
				visibility.Level(snap, entityType),
				assignment.Scope(snap, entityType),
			)
		}

		return nil
	},
}
