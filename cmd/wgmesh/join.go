package main

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/spf13/cobra"

	"github.com/wgmesh/wgmesh/internal/localhost"
	"github.com/wgmesh/wgmesh/internal/wgkey"
	"github.com/wgmesh/wgmesh/pkg/client"
	"github.com/wgmesh/wgmesh/pkg/mesh"
)

var (
	joinAddress  string
	joinEndpoint string
	joinUseWG    bool
)

func newJoinCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Register this machine with a coordination server",
		Long: `Build the local host identity (hostname, WireGuard key pair,
network interfaces) and register it with the coordination server. The
server-assigned record, including the stamped last-seen time, is printed.`,
		RunE: runJoin,
	}

	cmd.Flags().StringVarP(&joinAddress, "wireguard-address", "a", "", "Mesh address to request (default: generated unique-local address)")
	cmd.Flags().StringVar(&joinEndpoint, "endpoint", "", "Publicly reachable endpoint to advertise (host:port)")
	cmd.Flags().BoolVar(&joinUseWG, "use-wg", false, "Generate keys with the wg binary instead of natively")

	return cmd
}

func runJoin(cmd *cobra.Command, args []string) error {
	var address netip.Addr
	if joinAddress != "" {
		var err error
		address, err = netip.ParseAddr(joinAddress)
		if err != nil {
			return fmt.Errorf("invalid mesh address %q: %w", joinAddress, err)
		}
	}

	var keys mesh.KeyGenerator = wgkey.Native{}
	if joinUseWG {
		keys = wgkey.Exec{}
	}

	builder := localhost.NewBuilder(keys)
	host, err := builder.Build(address)
	if err != nil {
		return fmt.Errorf("build local host identity: %w", err)
	}
	host.Endpoint = joinEndpoint

	c, err := client.New(serverURL, client.WithTimeout(timeout), client.WithToken(token))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	updated, err := c.Connect(ctx, host)
	if err != nil {
		return err
	}

	fmt.Printf("Joined mesh as %s\n", updated.Name)
	fmt.Printf("  Mesh address: %s\n", updated.MeshAddress)
	fmt.Printf("  Public key:   %s\n", updated.PublicKey)
	if updated.LastSeen != nil {
		fmt.Printf("  Registered:   %s\n", updated.LastSeen.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}
