// Package config handles river's runtime configuration using Viper.
// All actual window-management configuration happens at runtime via the
// control protocol (spec.md §6 "Persisted state: none"); this package
// only covers the handful of process-level settings spec.md §9 calls
// out as needing a configurable default (transaction timeout, socket
// paths, cursor theme) plus logging.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is river's process-level configuration.
type Config struct {
	// TransactionTimeoutMS bounds how long the transaction engine waits
	// for configure acks before committing best-effort (spec.md §4.7,
	// §9).
	TransactionTimeoutMS int `mapstructure:"transaction_timeout_ms"`

	// DefaultLayoutNamespace is the layout namespace an output selects
	// when no per-output override has been set (spec.md §3).
	DefaultLayoutNamespace string `mapstructure:"default_layout_namespace"`

	// ControlSocketPath is the Unix socket the control protocol listens
	// on (spec.md §6).
	ControlSocketPath string `mapstructure:"control_socket_path"`

	// LayoutSocketDir holds the layout protocol's Unix sockets, one per
	// namespace, named <namespace>.sock (spec.md §6).
	LayoutSocketDir string `mapstructure:"layout_socket_dir"`

	// SpawnTagMask is loaded with the rest of the configuration, but
	// nothing reads it: a newly mapped view without a tags rule takes its
	// output's pending tags unmasked.
	SpawnTagMask uint32 `mapstructure:"spawn_tag_mask"`

	XCursorTheme string `mapstructure:"xcursor_theme"`
	XCursorSize  int    `mapstructure:"xcursor_size"`

	LogLevel string `mapstructure:"log_level"`
}

// TransactionTimeout returns the configured transaction timeout as a
// time.Duration.
func (c *Config) TransactionTimeout() time.Duration {
	if c.TransactionTimeoutMS <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(c.TransactionTimeoutMS) * time.Millisecond
}

// Default provides river's out-of-the-box configuration.
var Default = Config{
	TransactionTimeoutMS:   200,
	DefaultLayoutNamespace: "",
	ControlSocketPath:      "",
	LayoutSocketDir:        "",
	SpawnTagMask:           0xffffffff,
	XCursorTheme:           "",
	XCursorSize:            24,
	LogLevel:               "info",
}

var cfg *Config

// Init loads configuration from XDG_CONFIG_HOME/river/river.toml
// (falling back to ~/.config/river/river.toml), environment overrides
// (RIVER_ prefix), and Default. Environment values take precedence over
// the file, and the file over Default; the same layered-source shape
// the teacher's config.Init uses.
func Init() error {
	v := viper.New()
	v.SetConfigName("river")
	v.SetConfigType("toml")

	if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("RIVER")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	c := Default
	if err := v.Unmarshal(&c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	cfg = &c
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("transaction_timeout_ms", Default.TransactionTimeoutMS)
	v.SetDefault("default_layout_namespace", Default.DefaultLayoutNamespace)
	v.SetDefault("control_socket_path", Default.ControlSocketPath)
	v.SetDefault("layout_socket_dir", Default.LayoutSocketDir)
	v.SetDefault("spawn_tag_mask", Default.SpawnTagMask)
	v.SetDefault("xcursor_theme", Default.XCursorTheme)
	v.SetDefault("xcursor_size", Default.XCursorSize)
	v.SetDefault("log_level", Default.LogLevel)
}

// configDir returns XDG_CONFIG_HOME/river, falling back to
// ~/.config/river (spec.md §6).
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "river"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "river"), nil
}

// InitPath returns the path to the init executable spec.md §6 describes:
// XDG_CONFIG_HOME/river/init, falling back to ~/.config/river/init.
func InitPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "init"), nil
}

// Get returns the loaded configuration. Init must be called first; Get
// panics otherwise, matching the teacher's package-singleton contract.
func Get() *Config {
	if cfg == nil {
		panic("config: Get called before Init")
	}
	return cfg
}

// Reset clears the loaded configuration. Used by tests.
func Reset() {
	cfg = nil
}
