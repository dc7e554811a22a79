package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wgmesh/wgmesh/internal/render"
	"github.com/wgmesh/wgmesh/internal/store"
)

var renderListenPort int

func newRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the wg-quick configuration for the local host",
		Long: `Render a wg-quick style WireGuard configuration from the local
network file, with one peer section per remote host, and write it to stdout.`,
		RunE: runRender,
	}

	cmd.Flags().IntVar(&renderListenPort, "listen-port", 51820, "WireGuard listen port for the [Interface] section")

	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	st := store.NewFileStore(networkFile)
	network, err := st.Load()
	if err != nil {
		return fmt.Errorf("load network file: %w", err)
	}

	if err := render.WriteConfig(os.Stdout, network, renderListenPort); err != nil {
		return fmt.Errorf("render configuration: %w", err)
	}
	return nil
}
