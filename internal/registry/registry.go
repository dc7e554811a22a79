// Package registry owns the authoritative set of mesh hosts. It enforces the
// two registry invariants: no two entries share a mesh address and no two
// entries share a name.
//
// A Registry is not safe for concurrent use on its own. The coordination
// server serializes every access through its single exclusive lock, matching
// the single-writer model of the whole control plane.
package registry

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/wgmesh/wgmesh/pkg/mesh"
)

// ConflictError reports an attempted insertion that would violate a
// uniqueness invariant.
type ConflictError struct {
	// Field is "name" or "address".
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("host with %s %q already exists", e.Field, e.Value)
}

// Registry wraps a mesh.Network and mediates every mutation of its host set.
type Registry struct {
	network *mesh.Network
}

// FromNetwork wraps an existing network, typically the one loaded from the
// persisted store at startup.
func FromNetwork(n *mesh.Network) *Registry {
	if n.Remotes == nil {
		n.Remotes = make(map[netip.Addr]*mesh.Host)
	}
	return &Registry{network: n}
}

// Network returns the wrapped network. Callers must hold the coordination
// lock; use Snapshot for anything that escapes it.
func (r *Registry) Network() *mesh.Network {
	return r.network
}

// Snapshot returns a deep copy of the network, safe to use outside the
// coordination lock.
func (r *Registry) Snapshot() *mesh.Network {
	return r.network.Clone()
}

// Len returns the number of remote hosts.
func (r *Registry) Len() int {
	return len(r.network.Remotes)
}

// Add inserts a new remote host. It fails with a ConflictError when the name
// or the address is already taken, leaving the registry unchanged.
func (r *Registry) Add(host mesh.Host) error {
	if _, ok := r.LookupByName(host.Name); ok {
		return &ConflictError{Field: "name", Value: host.Name}
	}
	if _, ok := r.network.Remotes[host.MeshAddress]; ok {
		return &ConflictError{Field: "address", Value: host.MeshAddress.String()}
	}
	h := host.Clone()
	r.network.Remotes[host.MeshAddress] = &h
	return nil
}

// RemoveByName removes the remote host with the given name. Removing an
// absent name is a no-op: storage is keyed by address, so this scans all
// entries.
func (r *Registry) RemoveByName(name string) {
	for addr, h := range r.network.Remotes {
		if h.Name == name {
			delete(r.network.Remotes, addr)
			return
		}
	}
}

// RemoveByAddress removes the remote host registered at the given address.
// Removing an absent address is a no-op.
func (r *Registry) RemoveByAddress(address netip.Addr) {
	delete(r.network.Remotes, address)
}

// UpsertOnConnect registers the host, overwriting any entry already present
// at its address and stamping LastSeen. Overwrite is intentional here: it is
// how a known host re-registers. Callers distinguish re-registration from a
// genuine collision by comparing the existing entry's name before invoking
// this.
func (r *Registry) UpsertOnConnect(host mesh.Host, now time.Time) mesh.Host {
	h := host.Clone()
	h.LastSeen = &now
	r.network.Remotes[h.MeshAddress] = &h
	return h.Clone()
}

// LookupByName returns a copy of the entry with the given name. The local
// host is part of the registry's name space, so it is included.
func (r *Registry) LookupByName(name string) (mesh.Host, bool) {
	if r.network.Local.Name != "" && r.network.Local.Name == name {
		return r.network.Local.Clone(), true
	}
	for _, h := range r.network.Remotes {
		if h.Name == name {
			return h.Clone(), true
		}
	}
	return mesh.Host{}, false
}

// LookupByAddress returns a copy of the remote entry at the given address.
func (r *Registry) LookupByAddress(address netip.Addr) (mesh.Host, bool) {
	h, ok := r.network.Remotes[address]
	if !ok {
		return mesh.Host{}, false
	}
	return h.Clone(), true
}
