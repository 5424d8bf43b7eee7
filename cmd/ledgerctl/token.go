package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tradebook/internal/config"
	"tradebook/internal/domain/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API access token",
	Example: `  ledgerctl token --user clerk-1 --email clerk@example.com --role clerk --ttl 720h`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("user", "", "User id placed in the token (required)")
	tokenCmd.Flags().String("email", "", "User email")
	tokenCmd.Flags().StringSlice("role", nil, "Role, repeatable")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default from JWT config)")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	user, _ := cmd.Flags().GetString("user")
	email, _ := cmd.Flags().GetString("email")
	roles, _ := cmd.Flags().GetStringSlice("role")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
	if ttl > 0 {
		jwtCfg.AccessTokenTTL = ttl
	}

	token, expires, err := auth.NewJWTService(jwtCfg).GenerateAccessToken(user, email, roles)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format(time.RFC3339))
	return nil
}
