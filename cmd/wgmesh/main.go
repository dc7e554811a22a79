package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	cfgFile     string
	serverURL   string
	token       string
	timeout     time.Duration
	networkFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wgmesh",
		Short: "WireGuard mesh network coordinator",
		Long: `wgmesh coordinates a WireGuard mesh network: it allocates mesh
addresses, keeps the registry of member hosts, records connect and
disconnect events, and renders wg-quick configuration for each host.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Server configuration file (default: wgmesh.yaml in the search path)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:64001", "Coordination server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "JWT token for admin operations")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&networkFile, "network-file", "network.yaml", "Network state file for local commands")

	rootCmd.AddCommand(newServerCommand())
	rootCmd.AddCommand(newJoinCommand())
	rootCmd.AddCommand(newAddHostCommand())
	rootCmd.AddCommand(newRemoveHostCommand())
	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newTokenCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger at the given level. Unknown levels
// fall back to info.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
