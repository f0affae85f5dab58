package main

import (
	"context"
	"fmt"
	"time"

	"github.com/geocoder89/blogspace/internal/config"
	"github.com/geocoder89/blogspace/internal/db"
	"github.com/geocoder89/blogspace/internal/storage"
	"github.com/spf13/cobra"
)

var downSteps int

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to roll back")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations (Postgres) or ensure indexes (Mongo)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		backend, err := storage.Open(ctx, cfg, nil, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		if err := backend.Migrate(ctx); err != nil {
			return err
		}

		logger.Info("migrations applied", "driver", cfg.StorageDriver)
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back Postgres migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePostgres(); err != nil {
			return err
		}
		if err := db.MigrateDown(cfg.DBURL, downSteps); err != nil {
			return err
		}

		logger.Info("migrations rolled back", "steps", downSteps)
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current Postgres schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePostgres(); err != nil {
			return err
		}

		v, dirty, err := db.MigrationVersion(cfg.DBURL)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
		return nil
	},
}

func requirePostgres() error {
	if cfg.StorageDriver != config.DriverPostgres {
		return fmt.Errorf("only available for the %s driver, got %q", config.DriverPostgres, cfg.StorageDriver)
	}
	return nil
}
