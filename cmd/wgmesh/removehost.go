package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wgmesh/wgmesh/internal/registry"
	"github.com/wgmesh/wgmesh/internal/store"
	"github.com/wgmesh/wgmesh/pkg/client"
)

var removeHostRemote bool

func newRemoveHostCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-host <name>",
		Short: "Remove a host from the network",
		Long: `Remove a host by name. By default the local network file is
edited in place; with --remote the request goes to a running coordination
server and requires an admin token.`,
		Args: cobra.ExactArgs(1),
		RunE: runRemoveHost,
	}

	cmd.Flags().BoolVar(&removeHostRemote, "remote", false, "Remove through the coordination server instead of the local file")

	return cmd
}

func runRemoveHost(cmd *cobra.Command, args []string) error {
	name := args[0]

	if removeHostRemote {
		c, err := client.New(serverURL, client.WithTimeout(timeout), client.WithToken(token))
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := c.RemoveHost(ctx, name); err != nil {
			return err
		}
		fmt.Printf("Removed %s from network\n", name)
		return nil
	}

	st := store.NewFileStore(networkFile)
	network, err := st.Load()
	if err != nil {
		return fmt.Errorf("load network file: %w", err)
	}

	reg := registry.FromNetwork(network)
	reg.RemoveByName(name)
	if err := st.Save(reg.Network()); err != nil {
		return fmt.Errorf("save network file: %w", err)
	}

	fmt.Printf("Removed %s from network\n", name)
	return nil
}
