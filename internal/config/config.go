package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pedronauck/reworm/internal/errors"
	"github.com/pedronauck/reworm/pkg/reworm"
	"github.com/pedronauck/reworm/pkg/value"
)

// ConfigFileName is the name of the configuration file.
const ConfigFileName = "reworm.json"

// Default values for configuration.
const (
	DefaultDevtoolsAddr = "localhost:7070"
	DefaultNamespace    = "reworm"
	DefaultTracerName   = "reworm"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Config represents the reworm.json configuration file.
type Config struct {
	// Stores maps store identifiers to their initial values.
	Stores map[string]json.RawMessage `json:"stores,omitempty"`

	// Devtools configures the inspector server.
	Devtools DevtoolsConfig `json:"devtools"`

	// Metrics configures the Prometheus observer.
	Metrics MetricsConfig `json:"metrics"`

	// Tracing configures the OpenTelemetry observer.
	Tracing TracingConfig `json:"tracing"`

	// Log configures the slog handler.
	Log LogConfig `json:"log"`

	// configPath is the path to the config file (not serialized).
	configPath string
}

// DevtoolsConfig configures the inspector server.
type DevtoolsConfig struct {
	// Enabled starts the inspector in `reworm serve`.
	Enabled bool `json:"enabled"`

	// Addr is the listen address.
	Addr string `json:"addr,omitempty"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled exposes /metrics on the devtools server.
	Enabled bool `json:"enabled"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`

	// Subsystem is the metrics subsystem.
	Subsystem string `json:"subsystem,omitempty"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled attaches the tracing observer.
	Enabled bool `json:"enabled"`

	// TracerName is the name passed to the global tracer provider.
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Stores: map[string]json.RawMessage{},
		Devtools: DevtoolsConfig{
			Addr: DefaultDevtoolsAddr,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for reworm.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R121").
				WithDetail("No reworm.json found in " + filepath.Dir(path)).
				WithSuggestion("Create reworm.json with a \"stores\" object")
		}
		return nil, errors.New("R120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("R120").
			WithDetail("Failed to parse reworm.json: " + err.Error()).
			WithSuggestion("Check that reworm.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("R120").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("R120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Stores == nil {
		c.Stores = map[string]json.RawMessage{}
	}
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = DefaultDevtoolsAddr
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Devtools.Enabled && c.Devtools.Addr == "" {
		return errors.New("R122").
			WithDetail("devtools.addr must be set when devtools are enabled")
	}

	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("R122").
			WithDetailf("log.level %q is not one of debug, info, warn, error", c.Log.Level).
			WithSuggestion("Use \"info\" unless you need store-level debug output")
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("R122").
			WithDetailf("log.format %q must be \"text\" or \"json\"", c.Log.Format)
	}

	for _, id := range c.StoreIDs() {
		if strings.TrimSpace(id) == "" {
			return errors.New("R122").WithDetail("store identifiers must not be empty")
		}
		if _, err := value.Parse(c.Stores[id]); err != nil {
			return errors.New("R122").WithStore(id).Wrap(err)
		}
	}

	return nil
}

// StoreIDs returns the configured store identifiers in sorted order.
func (c *Config) StoreIDs() []string {
	ids := make([]string, 0, len(c.Stores))
	for id := range c.Stores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Seeds parses every configured store into a value.
func (c *Config) Seeds() (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(c.Stores))
	for _, id := range c.StoreIDs() {
		v, err := value.Parse(c.Stores[id])
		if err != nil {
			return nil, errors.New("R122").WithStore(id).Wrap(err)
		}
		out[id] = v
	}
	return out, nil
}

// Registry builds a registry seeded with the configured stores.
func (c *Config) Registry() (*reworm.Registry, error) {
	seeds, err := c.Seeds()
	if err != nil {
		return nil, err
	}
	reg := reworm.NewRegistry()
	for _, id := range c.StoreIDs() {
		reg.SetInitial(id, seeds[id])
	}
	return reg, nil
}

// NewContainer builds a container seeded from the configuration.
// Options are applied after the seeded registry, so a later WithRegistry
// replaces it.
func (c *Config) NewContainer(opts ...reworm.Option) (*reworm.Container, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}
	all := append([]reworm.Option{reworm.WithRegistry(reg)}, opts...)
	return reworm.NewContainer(all...), nil
}

// Logger builds a slog logger writing to w with the configured level and
// format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing reworm.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("R121").
				WithDetail("No reworm.json found in " + startDir + " or any parent directory").
				WithSuggestion("Create reworm.json at the project root")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
