package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alecgard/fiveplanner/internal/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run Postgres migrations",
	Long:  "Apply the embedded Postgres migrations to storage.database_url. Other drivers create their schema on open.",
	RunE:  runMigrate,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback all migrations",
	RunE:  runMigrateDown,
}

func init() {
	migrateCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := postgres.MigrateUp(cfg.DatabaseURLForMigrate()); err != nil {
		return err
	}

	slog.Info("migrations applied successfully")
	return nil
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := postgres.MigrateDown(cfg.DatabaseURLForMigrate()); err != nil {
		return err
	}

	slog.Info("migrations rolled back successfully")
	return nil
}
