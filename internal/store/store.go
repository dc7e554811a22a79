// Package store persists the network as a YAML document, the durable state
// of the whole control plane. It is the only place that knows the on-disk
// shape; the in-memory model stays netip-typed.
package store

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/wgmesh/wgmesh/pkg/mesh"
)

// FileStore reads and writes the network file. Implements mesh.Store. Safe
// for concurrent use: writes are serialized and each goes through its own
// temp file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and decodes the network file.
func (s *FileStore) Load() (*mesh.Network, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read network file: %w", err)
	}
	var doc networkDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode network file %s: %w", s.path, err)
	}
	n, err := doc.toNetwork()
	if err != nil {
		return nil, fmt.Errorf("decode network file %s: %w", s.path, err)
	}
	return n, nil
}

// LoadOrDefault loads the persisted network, falling back to a freshly
// generated default network when no readable file exists. The fallback error
// is returned alongside the default so callers can log it; the returned
// network is always usable.
func (s *FileStore) LoadOrDefault() (*mesh.Network, error) {
	n, err := s.Load()
	if err != nil {
		return mesh.DefaultNetwork(), err
	}
	return n, nil
}

// Save encodes the network and writes it via a temp-file rename so a crash
// mid-write never truncates the previous state. The temp file is created
// fresh per call and writes are serialized, so concurrent saves can never
// interleave into one document.
func (s *FileStore) Save(n *mesh.Network) error {
	data, err := yaml.Marshal(fromNetwork(n))
	if err != nil {
		return fmt.Errorf("encode network: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp network file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write network file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write network file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace network file: %w", err)
	}
	return nil
}

// On-disk document shapes. Addresses are strings here because YAML has no
// notion of netip types.

type networkDoc struct {
	ID      string             `yaml:"network_id"`
	Subnet  string             `yaml:"subnet"`
	Local   hostDoc            `yaml:"local_host"`
	Remotes map[string]hostDoc `yaml:"remote_hosts"`
}

type hostDoc struct {
	Name       string     `yaml:"name"`
	Address    string     `yaml:"mesh_address,omitempty"`
	PublicKey  string     `yaml:"public_key,omitempty"`
	PrivateKey string     `yaml:"private_key,omitempty"`
	Endpoint   string     `yaml:"endpoint,omitempty"`
	LastSeen   *time.Time `yaml:"last_seen,omitempty"`
	Interfaces []ifaceDoc `yaml:"interfaces,omitempty"`
}

type ifaceDoc struct {
	Name      string   `yaml:"name"`
	MAC       string   `yaml:"mac"`
	State     string   `yaml:"state"`
	Addresses []string `yaml:"addresses,omitempty"`
}

func fromNetwork(n *mesh.Network) networkDoc {
	doc := networkDoc{
		ID:      n.ID.String(),
		Subnet:  n.Subnet.String(),
		Local:   fromHost(n.Local),
		Remotes: make(map[string]hostDoc, len(n.Remotes)),
	}
	for addr, h := range n.Remotes {
		doc.Remotes[addr.String()] = fromHost(*h)
	}
	return doc
}

func fromHost(h mesh.Host) hostDoc {
	doc := hostDoc{
		Name:       h.Name,
		PublicKey:  h.PublicKey,
		PrivateKey: h.PrivateKey,
		Endpoint:   h.Endpoint,
		LastSeen:   h.LastSeen,
	}
	if h.MeshAddress.IsValid() {
		doc.Address = h.MeshAddress.String()
	}
	for _, iface := range h.Interfaces {
		id := ifaceDoc{Name: iface.Name, MAC: iface.MAC, State: iface.State}
		for _, p := range iface.Addresses {
			id.Addresses = append(id.Addresses, p.String())
		}
		doc.Interfaces = append(doc.Interfaces, id)
	}
	return doc
}

func (doc networkDoc) toNetwork() (*mesh.Network, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("network id: %w", err)
	}
	subnet, err := netip.ParsePrefix(doc.Subnet)
	if err != nil {
		return nil, fmt.Errorf("subnet: %w", err)
	}
	local, err := doc.Local.toHost()
	if err != nil {
		return nil, fmt.Errorf("local host: %w", err)
	}
	n := &mesh.Network{
		ID:      id,
		Subnet:  subnet,
		Local:   local,
		Remotes: make(map[netip.Addr]*mesh.Host, len(doc.Remotes)),
	}
	for key, hd := range doc.Remotes {
		addr, err := netip.ParseAddr(key)
		if err != nil {
			return nil, fmt.Errorf("remote host key %q: %w", key, err)
		}
		h, err := hd.toHost()
		if err != nil {
			return nil, fmt.Errorf("remote host %q: %w", key, err)
		}
		if !h.MeshAddress.IsValid() {
			h.MeshAddress = addr
		}
		n.Remotes[addr] = &h
	}
	return n, nil
}

func (doc hostDoc) toHost() (mesh.Host, error) {
	h := mesh.Host{
		Name:       doc.Name,
		PublicKey:  doc.PublicKey,
		PrivateKey: doc.PrivateKey,
		Endpoint:   doc.Endpoint,
		LastSeen:   doc.LastSeen,
	}
	if doc.Address != "" {
		addr, err := netip.ParseAddr(doc.Address)
		if err != nil {
			return mesh.Host{}, fmt.Errorf("mesh address: %w", err)
		}
		h.MeshAddress = addr
	}
	for _, id := range doc.Interfaces {
		iface := mesh.Interface{Name: id.Name, MAC: id.MAC, State: id.State}
		for _, a := range id.Addresses {
			p, err := netip.ParsePrefix(a)
			if err != nil {
				return mesh.Host{}, fmt.Errorf("interface %s address %q: %w", id.Name, a, err)
			}
			iface.Addresses = append(iface.Addresses, p)
		}
		h.Interfaces = append(h.Interfaces, iface)
	}
	return h, nil
}
