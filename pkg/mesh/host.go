package mesh

import (
	"net/netip"
	"time"
)

// Host describes a single mesh participant: its name, key material, the
// mesh address allocated to it, and whatever local interfaces it discovered
// about itself when it registered.
type Host struct {
	// Name uniquely identifies the host within the mesh.
	Name string `json:"name"`

	// MeshAddress is the virtual address allocated to the host. It must be
	// unique across the registry and fall within the network's subnet.
	MeshAddress netip.Addr `json:"mesh_address"`

	// PublicKey and PrivateKey are opaque WireGuard key strings. The
	// coordinator only ever stores what a host submits; a well-behaved host
	// never submits its private key.
	PublicKey  string `json:"public_key,omitempty"`
	PrivateKey string `json:"private_key,omitempty"`

	// Endpoint is the host's publicly reachable "host:port", if it has one.
	Endpoint string `json:"endpoint,omitempty"`

	// Interfaces holds the host's self-reported local network interfaces.
	// Informational only; uniqueness is never derived from them.
	Interfaces []Interface `json:"interfaces,omitempty"`

	// LastSeen is stamped by the coordinator on every successful connect.
	// Hosts never set it themselves.
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

// Interface is one discovered local network interface of a host.
type Interface struct {
	Name      string         `json:"name"`
	MAC       string         `json:"mac"`
	State     string         `json:"state"`
	Addresses []netip.Prefix `json:"addresses,omitempty"`
}

// Clone returns a deep copy of the host.
func (h Host) Clone() Host {
	out := h
	if h.LastSeen != nil {
		ts := *h.LastSeen
		out.LastSeen = &ts
	}
	if h.Interfaces != nil {
		out.Interfaces = make([]Interface, len(h.Interfaces))
		for i, iface := range h.Interfaces {
			out.Interfaces[i] = iface.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the interface record.
func (i Interface) Clone() Interface {
	out := i
	if i.Addresses != nil {
		out.Addresses = append([]netip.Prefix(nil), i.Addresses...)
	}
	return out
}
