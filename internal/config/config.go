package config

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/weave/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "weave.yaml"

	// DefaultFrameBudget is the idle time granted to scheduled tasks per frame.
	DefaultFrameBudget = 8 * time.Millisecond

	// DefaultFrameInterval is the interval between frames when the loop is
	// driven by a ticker.
	DefaultFrameInterval = 16 * time.Millisecond

	// DefaultAddr is the default devtools listen address.
	DefaultAddr = ":7070"

	// DefaultNamespace is the default metrics namespace and tracer name.
	DefaultNamespace = "weave"
)

// Config represents the complete weave.yaml configuration.
type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Server    ServerConfig    `yaml:"server"`

	configPath string
}

// SchedulerConfig configures the cooperative loop.
type SchedulerConfig struct {
	// FrameBudget is how long idle tasks may run per frame.
	FrameBudget time.Duration `yaml:"frame_budget"`

	// FrameInterval is the ticker period used by Loop.Run.
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// LogConfig configures slog output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus collection.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	TracerName string `yaml:"tracer_name"`
}

// ServerConfig configures the devtools server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			FrameBudget:   DefaultFrameBudget,
			FrameInterval: DefaultFrameInterval,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultNamespace,
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
	}
}

// Load reads weave.yaml from dir. A missing file yields the defaults
// (with environment overrides applied).
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	cfg, err := LoadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			cfg = New()
			cfg.applyEnv()
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeConfigRead).
			WithDetail(path).
			Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes a YAML document on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid YAML")
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Scheduler.FrameBudget == 0 {
		c.Scheduler.FrameBudget = DefaultFrameBudget
	}
	if c.Scheduler.FrameInterval == 0 {
		c.Scheduler.FrameInterval = DefaultFrameInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("WEAVE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("WEAVE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("WEAVE_FRAME_BUDGET"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Scheduler.FrameBudget = d
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Scheduler.FrameBudget <= 0 {
		return errors.New(errors.CodeInvalidConfig).
			WithDetailf("scheduler.frame_budget must be positive, got %s", c.Scheduler.FrameBudget)
	}
	if c.Scheduler.FrameInterval < c.Scheduler.FrameBudget {
		return errors.New(errors.CodeInvalidConfig).
			WithDetailf("scheduler.frame_interval (%s) is shorter than frame_budget (%s)",
				c.Scheduler.FrameInterval, c.Scheduler.FrameBudget)
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New(errors.CodeInvalidConfig).
			WithDetailf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New(errors.CodeInvalidConfig).
			WithDetailf("log.format %q is not one of text, json", c.Log.Format)
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

// NewLogger builds a slog.Logger writing to w per the log section.
func (c *Config) NewLogger(w *os.File) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
