package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bind != "0.0.0.0:64001" {
		t.Errorf("unexpected default bind: %q", cfg.Bind)
	}
	if cfg.NetworkFile != "network.yaml" {
		t.Errorf("unexpected default network file: %q", cfg.NetworkFile)
	}
	if cfg.Subnet != "10.42.0.0/24" {
		t.Errorf("unexpected default subnet: %q", cfg.Subnet)
	}
	if cfg.EventLogCapacity != 1000 {
		t.Errorf("unexpected default event log capacity: %d", cfg.EventLogCapacity)
	}
	if cfg.AdminSecret != "" {
		t.Errorf("admin secret should default to empty, got %q", cfg.AdminSecret)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("WGMESH_ADMIN_SECRET", "env-secret")
	t.Setenv("WGMESH_ADVERTISE_ENDPOINT", "coord.example.com:64001")
	t.Setenv("WGMESH_BIND", "127.0.0.1:7000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AdminSecret != "env-secret" {
		t.Errorf("admin secret not taken from environment: %q", cfg.AdminSecret)
	}
	if cfg.AdvertiseEndpoint != "coord.example.com:64001" {
		t.Errorf("advertise endpoint not taken from environment: %q", cfg.AdvertiseEndpoint)
	}
	if cfg.Bind != "127.0.0.1:7000" {
		t.Errorf("bind not taken from environment: %q", cfg.Bind)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wgmesh.yaml")
	content := []byte("bind: 127.0.0.1:9000\nsubnet: 10.99.0.0/16\nlog_level: debug\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bind != "127.0.0.1:9000" {
		t.Errorf("bind not overridden: %q", cfg.Bind)
	}
	if cfg.Subnet != "10.99.0.0/16" {
		t.Errorf("subnet not overridden: %q", cfg.Subnet)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level not overridden: %q", cfg.LogLevel)
	}
	// Untouched keys keep their defaults.
	if cfg.ListenPort != 51820 {
		t.Errorf("listen port default lost: %d", cfg.ListenPort)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Bind:        "0.0.0.0:64001",
		NetworkFile: "network.yaml",
		Subnet:      "10.42.0.0/24",
		ListenPort:  51820,
		LogLevel:    "info",
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := base
	bad.Subnet = "not-a-subnet"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for bad subnet")
	}

	bad = base
	bad.LogLevel = "loud"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for bad log level")
	}

	bad = base
	bad.Bind = ""
	if err := bad.Validate(); err != ErrInvalidBind {
		t.Errorf("expected ErrInvalidBind, got %v", err)
	}
}
