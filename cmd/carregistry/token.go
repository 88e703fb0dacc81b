package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erazemk/carregistry/internal/auth"
	"github.com/erazemk/carregistry/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for API clients",
	Long: `Issue a bearer token signed with AUTH_SECRET. The gateway only checks
tokens when AUTH_SECRET is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		cfg, err := config.Load(config.New(), envFile)
		if err != nil {
			return err
		}
		if cfg.AuthSecret == "" {
			return errors.New(config.KeyAuthSecret + " is not set")
		}

		client, _ := cmd.Flags().GetString("client")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := auth.GenerateToken(cfg.AuthSecret, client, ttl)
		if err != nil {
			return fmt.Errorf("issuing token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("client", "default", "client name stored as the token subject")
	tokenCmd.Flags().Duration("ttl", auth.DefaultTokenExpiry, "token lifetime")
	tokenCmd.Flags().String("env-file", config.DefaultEnvFile, "dotenv file read when present")
}
