package confloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yndnr/scand-go/internal/server/config"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scand.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
server:
  wire:
    addr: "0.0.0.0:7000"
device:
  max_open_sessions: 5
`)

	cfg := config.Default()
	loader := NewLoader(WithConfigFile(path))
	if err := loader.Load(cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Wire.Addr != "0.0.0.0:7000" {
		t.Errorf("wire addr = %q", cfg.Server.Wire.Addr)
	}
	if cfg.Device.MaxOpenSessions != 5 {
		t.Errorf("max open sessions = %d", cfg.Device.MaxOpenSessions)
	}
	// Untouched keys keep their defaults.
	if cfg.Log.Level != config.DefaultLogLevel {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeTempConfig(t, `
log:
  level: "info"
`)
	t.Setenv("SCAND_LOG_LEVEL", "debug")

	cfg := config.Default()
	if err := NewLoader(WithConfigFile(path)).Load(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want env override", cfg.Log.Level)
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	cfg := config.Default()
	err := NewLoader(WithConfigFile("/nonexistent/scand.yaml")).Load(cfg)
	if err == nil {
		t.Error("missing config file accepted")
	}
}

func TestLoadMap_Overrides(t *testing.T) {
	cfg := config.Default()
	loader := NewLoader()
	if err := loader.LoadMap(map[string]any{"server.local.path": "/tmp/t.sock"}); err != nil {
		t.Fatal(err)
	}
	if err := loader.Load(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Local.Path != "/tmp/t.sock" {
		t.Errorf("local path = %q", cfg.Server.Local.Path)
	}
}

func TestCustomEnvPrefix(t *testing.T) {
	t.Setenv("SCANTEST_LOG_FORMAT", "text")

	cfg := config.Default()
	if err := NewLoader(WithEnvPrefix("SCANTEST_")).Load(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log format = %q", cfg.Log.Format)
	}
}
