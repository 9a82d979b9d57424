package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clearcrm/authz/pkg/migrations"
)

var flagMigrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, closer, err := newRunner()
		if err != nil {
			return err
		}
		defer closer()
		return runner.Up(cmd.Context())
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last applied migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, closer, err := newRunner()
		if err != nil {
			return err
		}
		defer closer()
		return runner.Down(cmd.Context())
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, closer, err := newRunner()
		if err != nil {
			return err
		}
		defer closer()
		return runner.Status(cmd.Context())
	},
}

func newRunner() (*migrations.Runner, func(), error) {
	db, err := connect()
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	closer := func() { _ = db.Close() }
	return migrations.NewRunner(db.DB, flagMigrationsDir), closer, nil
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&flagMigrationsDir, "dir", "migrations", "Directory containing migration files")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}
