package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/blendsync/pkg/blendsync/category"
	"github.com/jamesainslie/blendsync/pkg/blendsync/compat"
	"github.com/jamesainslie/blendsync/pkg/blendsync/logging"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// CategoryConfig adds or overrides an exclusion category.
type CategoryConfig struct {
	Label   string   `mapstructure:"label"`
	Names   []string `mapstructure:"names"`
	Aliases []string `mapstructure:"aliases"`
}

// HistoryConfig configures the sync history.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	// SettingsRoot overrides the platform Blender settings directory.
	SettingsRoot string `mapstructure:"settings_root"`

	// IgnoreDirs are extra directory names never treated as versions.
	IgnoreDirs []string `mapstructure:"ignore_dirs"`

	// Exclude holds the categories excluded when no -x flag is given.
	Exclude []string `mapstructure:"exclude"`

	NewerOnly bool `mapstructure:"newer_only"`
	Workers   int  `mapstructure:"workers"`

	Compat struct {
		Policy string `mapstructure:"policy"`
	} `mapstructure:"compat"`

	Categories map[string]CategoryConfig `mapstructure:"categories"`
	History    HistoryConfig             `mapstructure:"history"`
	Logging    LoggingConfig             `mapstructure:"logging"`
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("settings_root", "")
	v.SetDefault("ignore_dirs", []string{})
	v.SetDefault("exclude", []string{})
	v.SetDefault("newer_only", false)
	v.SetDefault("workers", 0)
	v.SetDefault("compat.policy", DefaultPolicy)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.rotation.max_age", 14)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.daily", false)
	v.SetDefault("logging.components", map[string]string{})
}

// Configure points v at the config file locations, enables environment
// overrides, registers defaults and reads the config file if present.
// A non-empty file bypasses the search paths.
func Configure(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, AppName))
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", AppName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// Decode unmarshals v into a Config and expands ~ in paths.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.SettingsRoot, &cfg.History.Path, &cfg.Logging.Path} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}

	return &cfg, nil
}

// Load reads configuration from the default locations and environment.
func Load() (*Config, error) {
	v := viper.New()
	if err := Configure(v, ""); err != nil {
		return nil, err
	}
	return Decode(v)
}

// CategoryTable returns the built-in categories merged with configured ones.
// Configured categories are applied in key order.
func (c *Config) CategoryTable() category.Table {
	keys := make([]string, 0, len(c.Categories))
	for key := range c.Categories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	extra := make([]category.Category, 0, len(keys))
	for _, key := range keys {
		cc := c.Categories[key]
		extra = append(extra, category.Category{
			Key:     key,
			Label:   cc.Label,
			Names:   cc.Names,
			Aliases: cc.Aliases,
		})
	}
	return category.Default().Merge(extra)
}

// Policy parses the configured compatibility policy.
func (c *Config) Policy() (compat.Policy, error) {
	return compat.ParsePolicy(c.Compat.Policy)
}

// HistoryDir returns the configured history directory or the default.
func (c *Config) HistoryDir() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return DefaultHistoryDir()
}

// LoggingConfig converts the logging section for logging.Init.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:      c.Logging.Level,
		Path:       c.Logging.Path,
		Rotation:   c.Logging.Rotation.Logging(),
		Components: c.Logging.Components,
	}
}

// Logging converts human sizes like "10MB" into a logging.RotationConfig.
// An empty or unparsable size falls back to the logging default.
func (r RotationConfig) Logging() logging.RotationConfig {
	out := logging.RotationConfig{
		MaxSize:    logging.DefaultRotationConfig().MaxSize,
		MaxAge:     r.MaxAge,
		MaxBackups: r.MaxBackups,
		Daily:      r.Daily,
	}
	if r.MaxSize != "" {
		if size, err := humanize.ParseBytes(r.MaxSize); err == nil && size > 0 {
			out.MaxSize = int64(size)
		}
	}
	return out
}

// ConfigDir returns the configuration directory.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", AppName), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// WriteDefault writes a commented default config file if none exists and
// returns its path.
func WriteDefault() (string, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# blendsync configuration

# Blender settings directory. Empty means the platform default:
#   Linux/macOS: $XDG_CONFIG_HOME/blender or ~/.config/blender
#   Windows:     %%APPDATA%%\Blender Foundation\Blender
settings_root: ""

# Extra directory names under the settings root that are never versions.
ignore_dirs: []

# Categories excluded when sync is run without -x.
# Built in: recent, addons, presets, startup, userprefs
exclude: []

# Only copy files whose target copy is older than the source.
newer_only: false

compat:
  # version: warn from version numbers alone
  # exclusion-aware: skip a warning when its category is excluded
  policy: %s

# Extra or overridden exclusion categories.
# categories:
#   autosave:
#     label: Autosave
#     names: ["*.blend1", "quit.blend"]

history:
  enabled: true
  # Empty means $XDG_DATA_HOME/blendsync/history
  path: ""
  retention_days: %d

logging:
  # debug, info, warn, error
  level: info
  # Empty means $XDG_STATE_HOME/blendsync/blendsync.log
  path: ""
  rotation:
    max_size: %s
    max_age: 14
    max_backups: 3
    daily: false
  components: {}
`, DefaultPolicy, DefaultRetentionDays, DefaultLogMaxSize)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/blendsync.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// StateDir returns $XDG_STATE_HOME/blendsync.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// DefaultHistoryDir returns the default sync history directory.
func DefaultHistoryDir() string {
	return filepath.Join(DataDir(), "history")
}
