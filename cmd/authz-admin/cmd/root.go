// Package cmd implements the authz-admin CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clearcrm/authz/internal/config"
	"github.com/clearcrm/authz/internal/infra/postgres"
)

var (
	version string

	flagLegacy bool
)

var rootCmd = &cobra.Command{
	Use:   "authz-admin",
	Short: "Authorization service administration CLI",
	Long: `authz-admin inspects the permission catalog and the effective
permissions of users. Database connection settings are read from the
same environment variables as the server (DB_HOST, DB_PORT, ...).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the CLI version from build flags.
func SetVersion(v string) {
	version = v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagLegacy, "legacy", false, "Print permission names in the legacy underscore format")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(grantsCmd)
	rootCmd.AddCommand(migrateCmd)
}

// connect opens a database connection from the environment configuration.
func connect() (*postgres.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return postgres.New(&cfg.Database)
}
