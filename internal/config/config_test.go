package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ludex/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.toml")
	cfg, path, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config")
	}
	if path != missing {
		t.Fatalf("expected resolved path %q, got %q", missing, path)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected default log format, got %q", cfg.Logging.Format)
	}
	if cfg.Scan.QueueDepth <= 0 {
		t.Fatalf("expected positive queue depth, got %d", cfg.Scan.QueueDepth)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	contents := `
[paths]
library_dir = "` + filepath.Join(dir, "roms") + `"
dats_dir = "` + filepath.Join(dir, "dats") + `"
database_path = "` + filepath.Join(dir, "library.db") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[scan]
deep_scan = true
workers = 4

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(cfgPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if !cfg.Scan.DeepScan || cfg.Scan.Workers != 4 {
		t.Fatalf("unexpected scan section: %+v", cfg.Scan)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging format: %q", cfg.Logging.Format)
	}
	if !filepath.IsAbs(cfg.Paths.LibraryDir) {
		t.Fatalf("expected absolute library dir, got %q", cfg.Paths.LibraryDir)
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(cfgPath); err == nil {
		t.Fatal("expected error for invalid log format")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(target); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Fatal("sample config missing [paths] section")
	}
	if err := config.WriteSample(target); err == nil {
		t.Fatal("expected error when overwriting existing config")
	}
}

func TestToolBinaryOverrides(t *testing.T) {
	cfg := config.Default()
	if cfg.ChdmanBinary() != "chdman" {
		t.Fatalf("unexpected default chdman binary: %q", cfg.ChdmanBinary())
	}
	cfg.Tools.Chdman = "/opt/mame/chdman"
	if cfg.ChdmanBinary() != "/opt/mame/chdman" {
		t.Fatalf("override not honored: %q", cfg.ChdmanBinary())
	}
	if cfg.DolphinToolBinary() != "dolphin-tool" {
		t.Fatalf("unexpected default dolphin binary: %q", cfg.DolphinToolBinary())
	}
}
