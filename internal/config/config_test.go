package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/weave/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()
	if cfg.Scheduler.FrameBudget != DefaultFrameBudget {
		t.Errorf("FrameBudget = %s, want %s", cfg.Scheduler.FrameBudget, DefaultFrameBudget)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
scheduler:
  frame_budget: 4ms
log:
  level: debug
  format: json
metrics:
  enabled: false
server:
  addr: "127.0.0.1:9000"
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := New()
	want.Scheduler.FrameBudget = 4 * time.Millisecond
	want.Log = LogConfig{Level: "debug", Format: "json"}
	want.Metrics.Enabled = false
	want.Server.Addr = "127.0.0.1:9000"

	if diff := cmp.Diff(want, cfg, cmp.AllowUnexported(Config{})); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "scheduler: [oops"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"negative budget", "scheduler:\n  frame_budget: -1ms\n"},
		{"interval below budget", "scheduler:\n  frame_budget: 20ms\n  frame_interval: 10ms\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.HasCode(err, errors.CodeInvalidConfig) {
				t.Errorf("error = %v, want code %s", err, errors.CodeInvalidConfig)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte("server:\n  addr: \":8080\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); !errors.HasCode(err, errors.CodeConfigRead) {
		t.Errorf("LoadFile(missing) error = %v, want %s", err, errors.CodeConfigRead)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WEAVE_LOG_LEVEL", "warn")
	t.Setenv("WEAVE_ADDR", ":1234")
	t.Setenv("WEAVE_FRAME_BUDGET", "2ms")

	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Log.Level != "warn" || cfg.Server.Addr != ":1234" || cfg.Scheduler.FrameBudget != 2*time.Millisecond {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := New()
	cfg.Log.Format = "json"
	if cfg.NewLogger(os.Stderr) == nil {
		t.Fatal("NewLogger returned nil")
	}
	if got := cfg.SlogLevel().String(); got != "INFO" {
		t.Errorf("SlogLevel = %s, want INFO", got)
	}
}
