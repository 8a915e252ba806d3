package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"example.com/learning-path/backend/internal/auth"
	"example.com/learning-path/backend/internal/config"
)

type tokenOutput struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

func newTokenCmd() *cobra.Command {
	var (
		userID int
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not configured")
			}
			if userID <= 0 {
				return fmt.Errorf("--user-id must be greater than 0")
			}

			if ttl <= 0 {
				ttl = cfg.Auth.AccessTokenTTL
			}

			manager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, ttl)
			token, expiresAt, err := manager.NewAccessToken(userID)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			return writeJSON(cmd.OutOrStdout(), tokenOutput{
				AccessToken: token,
				ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
			})
		},
	}

	cmd.Flags().IntVar(&userID, "user-id", 0, "User id placed in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_ACCESS_TTL)")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}
