package main

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wgmesh/wgmesh/internal/config"
	"github.com/wgmesh/wgmesh/internal/localhost"
	"github.com/wgmesh/wgmesh/internal/server"
	"github.com/wgmesh/wgmesh/internal/store"
	"github.com/wgmesh/wgmesh/internal/wgkey"
)

func newServerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the coordination server",
		Long: `Start the coordination server daemon. The network state file is
loaded at startup (a fresh default network is created when it is missing)
and saved back so later local commands see the same state.`,
		RunE: runServer,
	}

	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer func() { _ = log.Sync() }()

	st := store.NewFileStore(cfg.NetworkFile)
	network, err := st.LoadOrDefault()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info("no network file, creating a new network",
				zap.String("path", cfg.NetworkFile))
		} else {
			log.Warn("network file unreadable, starting from a fresh network",
				zap.String("path", cfg.NetworkFile),
				zap.Error(err))
		}
		// The configured subnet applies only to freshly generated networks;
		// an existing file keeps its own.
		subnet, perr := netip.ParsePrefix(cfg.Subnet)
		if perr != nil {
			return fmt.Errorf("invalid subnet %q: %w", cfg.Subnet, perr)
		}
		network.Subnet = subnet
	}

	// A freshly created network has no local host identity yet.
	if network.Local.Name == "" {
		builder := localhost.NewBuilder(wgkey.Native{})
		local, err := builder.Build(netip.Addr{})
		if err != nil {
			return fmt.Errorf("build local host identity: %w", err)
		}
		local.Endpoint = cfg.AdvertiseEndpoint
		network.Local = local
		log.Info("synthesized local host identity",
			zap.String("name", local.Name),
			zap.String("mesh_address", local.MeshAddress.String()))
	}

	if err := st.Save(network); err != nil {
		return fmt.Errorf("save network file: %w", err)
	}

	srv := server.New(cfg, network, st, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	log.Info("coordination server started",
		zap.String("bind", cfg.Bind),
		zap.String("network_file", cfg.NetworkFile),
		zap.Int("remote_hosts", len(network.Remotes)))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return <-errCh
}
