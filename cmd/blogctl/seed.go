package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/blogspace/internal/credentials"
	"github.com/geocoder89/blogspace/internal/storage"
	"github.com/spf13/cobra"
)

var (
	seedName     string
	seedEmail    string
	seedPassword string
)

func init() {
	seedAccountCmd.Flags().StringVar(&seedName, "name", "", "display name (defaults to SEED_NAME)")
	seedAccountCmd.Flags().StringVar(&seedEmail, "email", "", "email (defaults to SEED_EMAIL)")
	seedAccountCmd.Flags().StringVar(&seedPassword, "password", "", "password (defaults to SEED_PASSWORD)")
	rootCmd.AddCommand(seedAccountCmd)
}

var seedAccountCmd = &cobra.Command{
	Use:   "seed-account",
	Short: "Create an account unless its email is already registered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := firstNonEmpty(seedName, cfg.SeedName)
		email := firstNonEmpty(seedEmail, cfg.SeedEmail)
		password := firstNonEmpty(seedPassword, cfg.SeedPassword)

		if email == "" || password == "" {
			return errors.New("email and password are required (flags or SEED_EMAIL/SEED_PASSWORD)")
		}
		if len(password) < 6 {
			return errors.New("password must be at least 6 characters")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		backend, err := storage.Open(ctx, cfg, nil, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		created, err := credentials.NewStore(backend.Accounts).EnsureAccount(ctx, name, email, password)
		if err != nil {
			return err
		}

		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created account %s\n", email)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "account %s already exists\n", email)
		}
		return nil
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
