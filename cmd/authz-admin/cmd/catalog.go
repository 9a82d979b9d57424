package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clearcrm/authz/pkg/domain/permission"
)

var flagFromStore bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the permission catalog",
	Long: `Print the permission vocabulary. By default the built-in vocabulary is
printed; with --from-store the catalog rows currently in the database are
listed instead, which is useful for spotting drift after upgrades.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		perms := permission.AllPermissions()

		if flagFromStore {
			db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			perms, err = newGrantRepo(db).ListCatalog(cmd.Context())
			if err != nil {
				return fmt.Errorf("list catalog: %w", err)
			}
		}

		for _, p := range perms {
			fmt.Println(printName(p))
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().BoolVar(&flagFromStore, "from-store", false, "List the catalog rows stored in the database")
}

func printName(p permission.Permission) string {
	if flagLegacy {
		return permission.LegacyName(p)
	}
	return p.String()
}
