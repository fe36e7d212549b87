package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Database.Path == "" {
		t.Fatal("empty default db path")
	}
	if cfg.Confirm.TimeoutSeconds != 5 || cfg.Confirm.DisplaySeconds != 3 {
		t.Fatalf("unexpected defaults: %+v", cfg.Confirm)
	}
}

func TestConfirmDurations(t *testing.T) {
	c := ConfirmConfig{TimeoutSeconds: 8, DisplaySeconds: 2}
	if c.Timeout() != 8*time.Second {
		t.Fatalf("Timeout() = %v", c.Timeout())
	}
	if c.DisplayTime() != 2*time.Second {
		t.Fatalf("DisplayTime() = %v", c.DisplayTime())
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "no-such.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Confirm.TimeoutSeconds != 5 {
		t.Fatalf("missing file should yield defaults: %+v", cfg.Confirm)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[database]
path = "/tmp/custom.db"

[confirm]
timeout_seconds = 10
display_seconds = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Path != "/tmp/custom.db" {
		t.Fatalf("db path: %q", cfg.Database.Path)
	}
	if cfg.Confirm.TimeoutSeconds != 10 || cfg.Confirm.DisplaySeconds != 4 {
		t.Fatalf("confirm: %+v", cfg.Confirm)
	}
}

func TestLoadFromPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[confirm]
timeout_seconds = 7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	// Unset values keep their defaults
	if cfg.Confirm.TimeoutSeconds != 7 || cfg.Confirm.DisplaySeconds != 3 {
		t.Fatalf("confirm: %+v", cfg.Confirm)
	}
	if cfg.Database.Path == "" {
		t.Fatal("db path default lost")
	}
}

func TestLoadFromClampsNonPositive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[confirm]
timeout_seconds = 0
display_seconds = -1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Confirm.TimeoutSeconds != 5 || cfg.Confirm.DisplaySeconds != 3 {
		t.Fatalf("non-positive values not clamped: %+v", cfg.Confirm)
	}
}

func TestLoadFromInvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}
