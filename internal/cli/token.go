package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"n5-drill-service/internal/auth"
	"n5-drill-service/internal/config"
)

// NewTokenCmd mints an identity token for local testing against a secured server.
func NewTokenCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a signed identity token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Auth.Secret == "" {
				return fmt.Errorf("auth secret not configured")
			}
			tokens := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
			tok, err := tokens.Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
}
