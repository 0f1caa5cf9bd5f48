package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/config"
)

// token_gen prints a signed bearer token for local development. The
// profile row is created by the server on the first request.
func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		id    string
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:          "token_gen",
		Short:        "Print a signed bearer token for a profile",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				id = uuid.NewString()
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			token, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer).Issue(id, email, ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Profile ID: %s\n", id)
			fmt.Fprintf(out, "Token: %s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "profile id (a new uuid when empty)")
	cmd.Flags().StringVar(&email, "email", "", "profile email")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
