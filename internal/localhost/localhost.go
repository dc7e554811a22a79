// Package localhost synthesizes the HostIdentity of the machine we are
// running on, the way a joining host describes itself before calling the
// coordinator.
package localhost

import (
	"fmt"
	"net/netip"
	"os"

	"github.com/wgmesh/wgmesh/internal/addr"
	"github.com/wgmesh/wgmesh/internal/ifscan"
	"github.com/wgmesh/wgmesh/pkg/mesh"
)

// Builder assembles a local mesh.Host from injected collaborators so every
// piece is testable with fakes.
type Builder struct {
	Keys       mesh.KeyGenerator
	Interfaces mesh.InterfaceSource

	// Hostname resolves the local host name. Nil means os.Hostname.
	Hostname func() (string, error)
}

// NewBuilder returns a builder wired to the real system: native key
// generation, `ip addr show` capture and os.Hostname.
func NewBuilder(keys mesh.KeyGenerator) *Builder {
	return &Builder{
		Keys:       keys,
		Interfaces: ifscan.CommandSource{},
	}
}

// Build produces the local host identity. The mesh address is freshly
// generated in the unique-local scope unless an explicit address is given.
func (b *Builder) Build(address netip.Addr) (mesh.Host, error) {
	hostname := b.Hostname
	if hostname == nil {
		hostname = os.Hostname
	}
	name, err := hostname()
	if err != nil {
		return mesh.Host{}, fmt.Errorf("resolve hostname: %w", err)
	}

	if !address.IsValid() {
		address, err = addr.Generate(0, 0)
		if err != nil {
			return mesh.Host{}, fmt.Errorf("allocate mesh address: %w", err)
		}
	}

	privateKey, err := b.Keys.GeneratePrivateKey()
	if err != nil {
		return mesh.Host{}, err
	}
	publicKey, err := b.Keys.PublicKey(privateKey)
	if err != nil {
		return mesh.Host{}, err
	}

	listing, err := b.Interfaces.Listing()
	if err != nil {
		return mesh.Host{}, err
	}
	ifaces, err := ifscan.Parse(listing)
	if err != nil {
		return mesh.Host{}, fmt.Errorf("parse interface listing: %w", err)
	}

	return mesh.Host{
		Name:        name,
		MeshAddress: address,
		PublicKey:   publicKey,
		PrivateKey:  privateKey,
		Interfaces:  ifaces,
	}, nil
}
