// Package render compiles a network snapshot into per-host tunnel
// configuration. Rendering is deterministic: the same snapshot always
// produces byte-identical output, so repeated renders without registry
// changes never spuriously restart tunnels.
package render

import (
	"fmt"
	"io"
	"net/netip"
	"sort"
	"strings"

	"github.com/wgmesh/wgmesh/pkg/mesh"
)

// IncompleteHostError reports a remote host that cannot be rendered because
// it lacks key material. The host is named rather than silently skipped so
// operators can fix its registration instead of losing connectivity quietly.
type IncompleteHostError struct {
	Host string
}

func (e *IncompleteHostError) Error() string {
	return fmt.Sprintf("host %q has no public key", e.Host)
}

// PeerBlock is the tunnel configuration for a single remote peer.
type PeerBlock struct {
	Name       string         `json:"name"`
	PublicKey  string         `json:"public_key"`
	AllowedIPs []netip.Prefix `json:"allowed_ips"`
	Endpoint   string         `json:"endpoint,omitempty"`
}

// Render produces one PeerBlock per remote host, ordered by mesh address.
// The allowed-address set is the host route for the peer's mesh address.
func Render(n *mesh.Network) ([]PeerBlock, error) {
	addrs := make([]netip.Addr, 0, len(n.Remotes))
	for addr := range n.Remotes {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })

	blocks := make([]PeerBlock, 0, len(addrs))
	for _, addr := range addrs {
		h := n.Remotes[addr]
		if h.PublicKey == "" {
			return nil, &IncompleteHostError{Host: h.Name}
		}
		blocks = append(blocks, PeerBlock{
			Name:       h.Name,
			PublicKey:  h.PublicKey,
			AllowedIPs: []netip.Prefix{hostRoute(addr)},
			Endpoint:   h.Endpoint,
		})
	}
	return blocks, nil
}

// WriteConfig writes a wg-quick style configuration document for the local
// host: an [Interface] section followed by one [Peer] section per block.
func WriteConfig(w io.Writer, n *mesh.Network, listenPort int) error {
	blocks, err := Render(n)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("[Interface]\n")
	fmt.Fprintf(&b, "# Name = %s\n", n.Local.Name)
	if n.Local.MeshAddress.IsValid() {
		fmt.Fprintf(&b, "Address = %s\n", hostRoute(n.Local.MeshAddress))
	}
	if n.Local.PrivateKey != "" {
		fmt.Fprintf(&b, "PrivateKey = %s\n", n.Local.PrivateKey)
	}
	if listenPort > 0 {
		fmt.Fprintf(&b, "ListenPort = %d\n", listenPort)
	}

	for _, p := range blocks {
		b.WriteString("\n[Peer]\n")
		fmt.Fprintf(&b, "# Name = %s\n", p.Name)
		fmt.Fprintf(&b, "PublicKey = %s\n", p.PublicKey)
		ips := make([]string, len(p.AllowedIPs))
		for i, prefix := range p.AllowedIPs {
			ips[i] = prefix.String()
		}
		fmt.Fprintf(&b, "AllowedIPs = %s\n", strings.Join(ips, ", "))
		if p.Endpoint != "" {
			fmt.Fprintf(&b, "Endpoint = %s\n", p.Endpoint)
		}
	}

	_, err = io.WriteString(w, b.String())
	return err
}

func hostRoute(addr netip.Addr) netip.Prefix {
	return netip.PrefixFrom(addr, addr.BitLen())
}
