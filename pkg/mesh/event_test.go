package mesh

import (
	"encoding/json"
	"net/netip"
	"testing"
	"time"
)

func TestEventJSONCarriesVariantTag(t *testing.T) {
	host := Host{
		Name:        "alice",
		MeshAddress: netip.MustParseAddr("10.42.0.1"),
		PublicKey:   "alice-public",
	}
	ev, err := NewConnect(host, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewConnect() error = %v", err)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal(map) error = %v", err)
	}
	if string(doc["kind"]) != `"connect"` {
		t.Errorf("kind = %s, want \"connect\"", doc["kind"])
	}

	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal(Event) error = %v", err)
	}
	if decoded.ID != ev.ID {
		t.Errorf("ID = %v, want %v", decoded.ID, ev.ID)
	}
	payload, ok := decoded.Payload.(Connect)
	if !ok {
		t.Fatalf("payload type = %T, want Connect", decoded.Payload)
	}
	if payload.Host.Name != "alice" {
		t.Errorf("host name = %q, want %q", payload.Host.Name, "alice")
	}
	if payload.Host.MeshAddress != host.MeshAddress {
		t.Errorf("mesh address = %v, want %v", payload.Host.MeshAddress, host.MeshAddress)
	}
}

func TestEventJSONRejectsUnknownKind(t *testing.T) {
	raw := `{"id":"0195a000-0000-7000-8000-000000000000","created_at":"2026-03-01T12:00:00Z","kind":"reboot","payload":{}}`
	var ev Event
	if err := json.Unmarshal([]byte(raw), &ev); err == nil {
		t.Fatal("expected error for unknown kind, got nil")
	}
}

func TestDisconnectRoundTrip(t *testing.T) {
	ev, err := NewDisconnect(Host{Name: "bob", MeshAddress: netip.MustParseAddr("10.42.0.2")}, time.Now().UTC())
	if err != nil {
		t.Fatalf("NewDisconnect() error = %v", err)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Payload.Kind() != "disconnect" {
		t.Errorf("kind = %q, want %q", decoded.Payload.Kind(), "disconnect")
	}
}
