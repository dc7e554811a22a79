package store

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/wgmesh/wgmesh/pkg/mesh"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.yaml")
	s := NewFileStore(path)

	lastSeen := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	n := mesh.DefaultNetwork()
	n.Local = mesh.Host{
		Name:        "coordinator",
		MeshAddress: netip.MustParseAddr("10.42.0.100"),
		PublicKey:   "local-public",
		PrivateKey:  "local-private",
		Interfaces: []mesh.Interface{{
			Name:      "eth0",
			MAC:       "52:54:00:12:34:56",
			State:     "UP",
			Addresses: []netip.Prefix{netip.MustParsePrefix("192.168.1.17/24")},
		}},
	}
	alice := mesh.Host{
		Name:        "alice",
		MeshAddress: netip.MustParseAddr("10.42.0.1"),
		PublicKey:   "alice-public",
		Endpoint:    "198.51.100.7:51820",
		LastSeen:    &lastSeen,
	}
	n.Remotes[alice.MeshAddress] = &alice

	if err := s.Save(n); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.ID != n.ID {
		t.Errorf("network id: expected %s, got %s", n.ID, got.ID)
	}
	if got.Subnet != n.Subnet {
		t.Errorf("subnet: expected %s, got %s", n.Subnet, got.Subnet)
	}
	if got.Local.Name != "coordinator" || got.Local.PrivateKey != "local-private" {
		t.Errorf("unexpected local host: %+v", got.Local)
	}
	if len(got.Local.Interfaces) != 1 || got.Local.Interfaces[0].MAC != "52:54:00:12:34:56" {
		t.Errorf("unexpected local interfaces: %+v", got.Local.Interfaces)
	}

	gotAlice, ok := got.Remotes[alice.MeshAddress]
	if !ok {
		t.Fatal("alice missing after round trip")
	}
	if gotAlice.Name != "alice" || gotAlice.Endpoint != "198.51.100.7:51820" {
		t.Errorf("unexpected alice: %+v", gotAlice)
	}
	if gotAlice.LastSeen == nil || !gotAlice.LastSeen.Equal(lastSeen) {
		t.Errorf("last seen lost: %v", gotAlice.LastSeen)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing.yaml"))

	n, err := s.LoadOrDefault()
	if err == nil {
		t.Error("expected a load error alongside the default network")
	}
	if n == nil {
		t.Fatal("expected a usable default network")
	}
	if n.Subnet.String() != mesh.DefaultSubnet {
		t.Errorf("expected default subnet, got %s", n.Subnet)
	}
	if len(n.Remotes) != 0 {
		t.Errorf("expected empty remotes, got %d", len(n.Remotes))
	}
}

func TestLoad_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(); err == nil {
		t.Error("expected decode error")
	}
}

func TestSave_ConcurrentWritersKeepFileDecodable(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "network.yaml"))

	// Two documents of very different sizes, so an interleaved write would
	// leave a truncated or mixed YAML body behind.
	big := mesh.DefaultNetwork()
	for i := 1; i <= 40; i++ {
		h := mesh.Host{
			Name:        fmt.Sprintf("host-%d", i),
			MeshAddress: netip.MustParseAddr(fmt.Sprintf("10.42.0.%d", i)),
			PublicKey:   fmt.Sprintf("pub-%d", i),
			Endpoint:    "198.51.100.7:51820",
		}
		big.Remotes[h.MeshAddress] = &h
	}
	small := mesh.DefaultNetwork()

	for round := 0; round < 50; round++ {
		var wg sync.WaitGroup
		for _, n := range []*mesh.Network{big, small} {
			wg.Add(1)
			go func(n *mesh.Network) {
				defer wg.Done()
				if err := s.Save(n); err != nil {
					t.Errorf("save: %v", err)
				}
			}(n)
		}
		wg.Wait()

		if _, err := s.Load(); err != nil {
			t.Fatalf("round %d: persisted network file is corrupt: %v", round, err)
		}
	}
}

func TestSave_LeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "network.yaml"))
	if err := s.Save(mesh.DefaultNetwork()); err != nil {
		t.Fatalf("save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "network.yaml" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}
