package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Instance != DefaultInstance {
		t.Errorf("instance = %q, want %q", cfg.Instance, DefaultInstance)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("listen addr = %q, want %q", cfg.ListenAddr, DefaultListenAddr)
	}
	if cfg.Client.BaseURL != "http://"+DefaultListenAddr {
		t.Errorf("base url = %q", cfg.Client.BaseURL)
	}
	if cfg.Client.Timeout() != DefaultTimeout {
		t.Errorf("timeout = %s, want %s", cfg.Client.Timeout(), DefaultTimeout)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Instance = "staging"
	cfg.Client.Token = "tok-123"
	cfg.Client.RequestTimeout = duration{3 * time.Second}

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Instance != "staging" {
		t.Errorf("instance = %q", got.Instance)
	}
	if got.Client.Token != "tok-123" {
		t.Errorf("token = %q", got.Client.Token)
	}
	if got.Client.Timeout() != 3*time.Second {
		t.Errorf("timeout = %s, want 3s", got.Client.Timeout())
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("instance = \"alt\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Instance != "alt" {
		t.Errorf("instance = %q, want alt", cfg.Instance)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("listen addr = %q, want default", cfg.ListenAddr)
	}
	if cfg.Client.BaseURL == "" {
		t.Error("base url must be derived from listen addr")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[client]\nrequest_timeout = \"not-a-duration\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed duration")
	}
}
