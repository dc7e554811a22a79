package main

import (
	"fmt"
	"net/netip"

	"github.com/spf13/cobra"

	"github.com/wgmesh/wgmesh/internal/registry"
	"github.com/wgmesh/wgmesh/internal/store"
	"github.com/wgmesh/wgmesh/internal/wgkey"
	"github.com/wgmesh/wgmesh/pkg/mesh"
)

var (
	addHostAddress    string
	addHostPublicKey  string
	addHostPrivateKey string
	addHostEndpoint   string
)

func newAddHostCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-host <name>",
		Short: "Add a host to the network file",
		Long: `Add a host directly to the local network file, without going
through a running coordination server. A key pair is generated when no
public key is given.`,
		Args: cobra.ExactArgs(1),
		RunE: runAddHost,
	}

	cmd.Flags().StringVarP(&addHostAddress, "wireguard-address", "a", "", "Mesh address of the host (required)")
	cmd.Flags().StringVarP(&addHostPublicKey, "public-key", "u", "", "WireGuard public key")
	cmd.Flags().StringVarP(&addHostPrivateKey, "private-key", "k", "", "WireGuard private key")
	cmd.Flags().StringVar(&addHostEndpoint, "endpoint", "", "Publicly reachable endpoint (host:port)")
	_ = cmd.MarkFlagRequired("wireguard-address")

	return cmd
}

func runAddHost(cmd *cobra.Command, args []string) error {
	address, err := netip.ParseAddr(addHostAddress)
	if err != nil {
		return fmt.Errorf("invalid mesh address %q: %w", addHostAddress, err)
	}

	host := mesh.Host{
		Name:        args[0],
		MeshAddress: address,
		PublicKey:   addHostPublicKey,
		PrivateKey:  addHostPrivateKey,
		Endpoint:    addHostEndpoint,
	}
	if host.PublicKey == "" {
		keys := wgkey.Native{}
		if host.PrivateKey == "" {
			host.PrivateKey, err = keys.GeneratePrivateKey()
			if err != nil {
				return fmt.Errorf("generate private key: %w", err)
			}
		}
		host.PublicKey, err = keys.PublicKey(host.PrivateKey)
		if err != nil {
			return fmt.Errorf("derive public key: %w", err)
		}
	}

	st := store.NewFileStore(networkFile)
	network, err := st.LoadOrDefault()
	if err != nil {
		fmt.Printf("Network file %s unreadable, starting a new network\n", networkFile)
	}

	reg := registry.FromNetwork(network)
	if err := reg.Add(host); err != nil {
		return err
	}
	if err := st.Save(reg.Network()); err != nil {
		return fmt.Errorf("save network file: %w", err)
	}

	fmt.Printf("Added %s (%s) to network %s\n", host.Name, host.MeshAddress, network.ID)
	return nil
}
