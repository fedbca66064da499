package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Database locates the SQLite file.
type Database struct {
	Path string `toml:"path"`
}

// Workflow controls the approval engine.
type Workflow struct {
	// DefinitionFile optionally replaces the built-in stage table (.yaml, .yml or .toml).
	DefinitionFile    string `toml:"definition_file"`
	EligibilityCheck  bool   `toml:"eligibility_check"`
	SupersedeSiblings bool   `toml:"supersede_siblings"`
}

// Notifications selects the notification sinks.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Inbox          bool   `toml:"inbox"`
	Log            bool   `toml:"log"`
}

// SLA configures the overdue sweep.
type SLA struct {
	SweepInterval int `toml:"sweep_interval"`
}

// API configures the daemon's HTTP listener.
type API struct {
	Bind            string `toml:"bind"`
	ReadTimeout     int    `toml:"read_timeout"`
	WriteTimeout    int    `toml:"write_timeout"`
	ShutdownTimeout int    `toml:"shutdown_timeout"`
}

// Daemon configures the single-instance lock.
type Daemon struct {
	LockPath string `toml:"lock_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Tracing enables OpenTelemetry spans written to stdout.
type Tracing struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	PrettyPrint bool   `toml:"pretty_print"`
}

// Config encapsulates all configuration values for tollgate.
//
// Roles maps user IDs to role names and seeds the role directory on startup.
type Config struct {
	Database      Database          `toml:"database"`
	Workflow      Workflow          `toml:"workflow"`
	Roles         map[string]string `toml:"roles"`
	Notifications Notifications     `toml:"notifications"`
	SLA           SLA               `toml:"sla"`
	API           API               `toml:"api"`
	Daemon        Daemon            `toml:"daemon"`
	Logging       Logging           `toml:"logging"`
	Tracing       Tracing           `toml:"tracing"`
}

// DefaultConfigPath returns the absolute path of the default configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load parses and validates the configuration file at path. An empty path
// falls back to TOLLGATE_CONFIG and then the default location. A missing
// file is not an error; defaults apply. TOLLGATE_DB overrides database.path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if dbPath := strings.TrimSpace(os.Getenv(EnvDB)); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// Parse decodes TOML data over cfg. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Encode renders cfg as TOML, used by `tollgate config show`.
func Encode(cfg *Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfig))
	}
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Database.Path != ":memory:" {
		if c.Database.Path, err = expandPath(c.Database.Path); err != nil {
			return err
		}
	}
	if c.Workflow.DefinitionFile != "" {
		if c.Workflow.DefinitionFile, err = expandPath(c.Workflow.DefinitionFile); err != nil {
			return err
		}
	}
	if c.Daemon.LockPath, err = expandPath(c.Daemon.LockPath); err != nil {
		return err
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return "", nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}
		pathValue = filepath.Join(home, strings.TrimPrefix(pathValue, "~"))
	}
	return filepath.Abs(pathValue)
}
