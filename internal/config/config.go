package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database string        `yaml:"database"`
	Log      LogConfig     `yaml:"log"`
	Lock     LockConfig    `yaml:"lock"`
	Journal  JournalConfig `yaml:"journal"`
}

type LogConfig struct {
	File     string `yaml:"file"`
	Level    string `yaml:"level"` // debug, info, warn, error
	Journald bool   `yaml:"journald"`
}

type LockConfig struct {
	DefaultHours float64 `yaml:"default_hours"`
}

type JournalConfig struct {
	CountdownMinutes float64 `yaml:"countdown_minutes"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	dir := Dir()
	return &Config{
		Database: filepath.Join(dir, "mirror.db"),
		Log: LogConfig{
			File:     filepath.Join(dir, "mirror.log"),
			Level:    "info",
			Journald: true,
		},
		Lock:    LockConfig{DefaultHours: 12},
		Journal: JournalConfig{CountdownMinutes: 3},
	}
}

// Dir returns ~/.config/mirror, or a relative "mirror" directory when the
// user config dir cannot be determined.
func Dir() string {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "mirror"
	}
	return filepath.Join(cfg, "mirror")
}

// DefaultPath returns ~/.config/mirror/config.yaml
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Database = expandHome(cfg.Database)
	cfg.Log.File = expandHome(cfg.Log.File)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Database == "" {
		return errors.New("database path is empty")
	}
	if c.Lock.DefaultHours <= 0 {
		return fmt.Errorf("lock.default_hours must be positive, got %v", c.Lock.DefaultHours)
	}
	if c.Journal.CountdownMinutes <= 0 {
		return fmt.Errorf("journal.countdown_minutes must be positive, got %v", c.Journal.CountdownMinutes)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

func (c *Config) LockDuration() time.Duration {
	return time.Duration(c.Lock.DefaultHours * float64(time.Hour))
}

func (c *Config) JournalCountdown() time.Duration {
	return time.Duration(c.Journal.CountdownMinutes * float64(time.Minute))
}

// WriteDefault writes a commented default configuration to path.
func WriteDefault(path string) error {
	content := `# mirror configuration

# SQLite database holding all of your state
# database: ~/.config/mirror/mirror.db

log:
  # file: ~/.config/mirror/mirror.log
  level: info      # debug, info, warn, error
  journald: true   # also log to the systemd journal when available

lock:
  # Hours the Mirror Room suggests when you choose not to show up
  default_hours: 12

journal:
  # Soft countdown shown while writing in the shadow journal
  countdown_minutes: 3
`
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
