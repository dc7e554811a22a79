// Package wgkey generates WireGuard key material. The native generator
// derives keys with curve25519 directly; the exec generator shells out to the
// wg tool for deployments that want the reference implementation. Both
// satisfy mesh.KeyGenerator.
package wgkey

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/crypto/curve25519"
)

// Native generates keys in-process.
type Native struct{}

// GeneratePrivateKey returns a fresh clamped curve25519 private key,
// base64-encoded the way wg genkey prints it.
func (Native) GeneratePrivateKey() (string, error) {
	var key [32]byte
	if _, err := rand.Read(key[:]); err != nil {
		return "", fmt.Errorf("generate private key: %w", err)
	}
	key[0] &= 248
	key[31] = (key[31] & 127) | 64
	return base64.StdEncoding.EncodeToString(key[:]), nil
}

// PublicKey derives the base64-encoded public key for a private key.
func (Native) PublicKey(privateKey string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(privateKey))
	if err != nil {
		return "", fmt.Errorf("decode private key: %w", err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("private key must be 32 bytes, got %d", len(raw))
	}
	pub, err := curve25519.X25519(raw, curve25519.Basepoint)
	if err != nil {
		return "", fmt.Errorf("derive public key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(pub), nil
}

// Exec shells out to the wg tool, equivalent to `wg genkey` and
// `wg pubkey < private_key`.
type Exec struct {
	// Path overrides the wg binary location. Empty means "wg" on PATH.
	Path string
}

func (e Exec) binary() string {
	if e.Path != "" {
		return e.Path
	}
	return "wg"
}

// GeneratePrivateKey runs `wg genkey`.
func (e Exec) GeneratePrivateKey() (string, error) {
	out, err := exec.Command(e.binary(), "genkey").Output()
	if err != nil {
		return "", fmt.Errorf("wg genkey: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// PublicKey runs `wg pubkey` with the private key on stdin.
func (e Exec) PublicKey(privateKey string) (string, error) {
	cmd := exec.Command(e.binary(), "pubkey")
	cmd.Stdin = strings.NewReader(privateKey)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("wg pubkey: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}
