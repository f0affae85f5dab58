package main

import (
	"log/slog"

	"github.com/geocoder89/blogspace/internal/config"
	"github.com/geocoder89/blogspace/internal/observability"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger

	driverFlag string
)

var rootCmd = &cobra.Command{
	Use:           "blogctl [command] [flags]",
	Short:         "BlogSpace admin tasks: schema migrations and account seeding",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if driverFlag != "" {
			cfg.StorageDriver = driverFlag
		}

		logger = observability.NewLogger(cfg.Env)
		slog.SetDefault(logger)

		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "storage driver override (postgres|mongo|memory)")
}
