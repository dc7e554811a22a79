package wgkey

import (
	"encoding/base64"
	"testing"
)

func TestNative_GeneratePrivateKey(t *testing.T) {
	var gen Native

	priv, err := gen.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("key is not valid base64: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32-byte key, got %d", len(raw))
	}
	// Curve25519 clamping.
	if raw[0]&7 != 0 {
		t.Errorf("low bits not cleared: %#x", raw[0])
	}
	if raw[31]&128 != 0 || raw[31]&64 == 0 {
		t.Errorf("high bits not clamped: %#x", raw[31])
	}
}

func TestNative_PublicKeyDeterministic(t *testing.T) {
	var gen Native

	priv, err := gen.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, err := gen.PublicKey(priv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := gen.PublicKey(priv + "\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("public key derivation not deterministic: %s vs %s", a, b)
	}
	if a == priv {
		t.Error("public key equals private key")
	}
}

func TestNative_PublicKeyRejectsGarbage(t *testing.T) {
	var gen Native

	if _, err := gen.PublicKey("not base64!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := gen.PublicKey(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Error("expected error for wrong length")
	}
}
