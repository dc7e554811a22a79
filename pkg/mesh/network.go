package mesh

import (
	"net/netip"

	"github.com/google/uuid"
)

// DefaultSubnet is the address block a freshly generated network draws mesh
// addresses from.
const DefaultSubnet = "10.42.0.0/24"

// Network is the registry root: the network's identity, the subnet all mesh
// addresses are drawn from, the coordinator's own host and every remote host
// keyed by mesh address.
//
// A Network value is plain data. The coordination server owns the single
// authoritative instance and guards it with its own lock; everything else
// works on snapshots.
type Network struct {
	ID      uuid.UUID            `json:"network_id"`
	Subnet  netip.Prefix         `json:"subnet"`
	Local   Host                 `json:"local_host"`
	Remotes map[netip.Addr]*Host `json:"remote_hosts"`
}

// NewNetwork creates an empty network over the given subnet with a freshly
// generated identity.
func NewNetwork(subnet netip.Prefix) *Network {
	return &Network{
		ID:      uuid.New(),
		Subnet:  subnet,
		Remotes: make(map[netip.Addr]*Host),
	}
}

// DefaultNetwork creates an empty network over DefaultSubnet. Used when no
// persisted network file exists yet.
func DefaultNetwork() *Network {
	return NewNetwork(netip.MustParsePrefix(DefaultSubnet))
}

// Clone returns a deep copy of the network, safe to hand to renderers and
// persistence outside the coordination lock.
func (n *Network) Clone() *Network {
	out := &Network{
		ID:      n.ID,
		Subnet:  n.Subnet,
		Local:   n.Local.Clone(),
		Remotes: make(map[netip.Addr]*Host, len(n.Remotes)),
	}
	for addr, h := range n.Remotes {
		hc := h.Clone()
		out.Remotes[addr] = &hc
	}
	return out
}
