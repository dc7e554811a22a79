package localhost

import (
	"net/netip"
	"testing"
)

type fakeKeys struct{}

func (fakeKeys) GeneratePrivateKey() (string, error) { return "fake-private", nil }
func (fakeKeys) PublicKey(string) (string, error)    { return "fake-public", nil }

type fakeSource struct{ text string }

func (f fakeSource) Listing() (string, error) { return f.text, nil }

const listing = `1: lo: <LOOPBACK,UP,LOWER_UP> mtu 65536 state UNKNOWN
    link/loopback 00:00:00:00:00:00 brd 00:00:00:00:00:00
    inet 127.0.0.1/8 scope host lo
`

func TestBuild(t *testing.T) {
	b := &Builder{
		Keys:       fakeKeys{},
		Interfaces: fakeSource{text: listing},
		Hostname:   func() (string, error) { return "testbox", nil },
	}

	h, err := b.Build(netip.Addr{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Name != "testbox" {
		t.Errorf("expected hostname testbox, got %q", h.Name)
	}
	if h.PrivateKey != "fake-private" || h.PublicKey != "fake-public" {
		t.Errorf("unexpected keys: %+v", h)
	}
	if !h.MeshAddress.Is6() {
		t.Errorf("expected generated unique-local IPv6 address, got %s", h.MeshAddress)
	}
	if b := h.MeshAddress.As16(); b[0] != 0xfc {
		t.Errorf("expected fc00::/8 address, got %s", h.MeshAddress)
	}
	if len(h.Interfaces) != 1 || h.Interfaces[0].Name != "lo" {
		t.Errorf("unexpected interfaces: %+v", h.Interfaces)
	}
	if h.LastSeen != nil {
		t.Error("hosts must never stamp their own LastSeen")
	}
}

func TestBuild_ExplicitAddress(t *testing.T) {
	b := &Builder{
		Keys:       fakeKeys{},
		Interfaces: fakeSource{text: listing},
		Hostname:   func() (string, error) { return "testbox", nil },
	}

	want := netip.MustParseAddr("10.42.0.7")
	h, err := b.Build(want)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.MeshAddress != want {
		t.Errorf("expected %s, got %s", want, h.MeshAddress)
	}
}
