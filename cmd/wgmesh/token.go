package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wgmesh/wgmesh/internal/config"
	"github.com/wgmesh/wgmesh/internal/server"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin token",
		Long: `Mint a JWT admin token signed with the admin secret from the
server configuration. The token authorizes /admin endpoints.`,
		RunE: runToken,
	}

	cmd.Flags().StringVar(&tokenSubject, "subject", "admin", "Token subject")
	cmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.AdminSecret == "" {
		return fmt.Errorf("admin_secret is not configured, admin endpoints are disabled")
	}

	auth := server.NewJWTAuth(cfg.AdminSecret)
	signed, err := auth.GenerateToken(tokenSubject, true, tokenTTL)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	fmt.Println(signed)
	return nil
}
