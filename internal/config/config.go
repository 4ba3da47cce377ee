// Package config handles herald configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for herald.
type Config struct {
	// Feed settings
	Feed FeedConfig `yaml:"feed" mapstructure:"feed"`

	// Cache settings
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Notify settings
	Notify NotifyConfig `yaml:"notify" mapstructure:"notify"`
}

// FeedConfig contains feed connection settings.
type FeedConfig struct {
	// URL is the websocket endpoint of the client service feed.
	URL string `yaml:"url" mapstructure:"url"`

	// ReconnectBackoff is the initial delay before re-dialing a
	// dropped feed connection.
	ReconnectBackoff time.Duration `yaml:"reconnect_backoff" mapstructure:"reconnect_backoff"`

	// MaxReconnectBackoff caps the exponential re-dial delay.
	MaxReconnectBackoff time.Duration `yaml:"max_reconnect_backoff" mapstructure:"max_reconnect_backoff"`
}

// CacheConfig contains icon cache settings.
type CacheConfig struct {
	// Dir is where fetched icon files are stored (default:
	// ~/.cache/herald/icons).
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// NotifyConfig contains notification delivery settings.
type NotifyConfig struct {
	// Backend selects the delivery backend (desktop, none).
	Backend string `yaml:"backend" mapstructure:"backend"`

	// AppName is the application name reported to the desktop
	// notification service.
	AppName string `yaml:"app_name" mapstructure:"app_name"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Feed: FeedConfig{
			URL:                 "ws://127.0.0.1:7310/feed",
			ReconnectBackoff:    time.Second,
			MaxReconnectBackoff: 30 * time.Second,
		},
		Cache: CacheConfig{
			Dir: filepath.Join(homeDir, ".cache", "herald", "icons"),
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		Notify: NotifyConfig{
			Backend: "desktop",
			AppName: "herald",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Feed.URL == "" {
		return fmt.Errorf("feed.url is required")
	}

	if c.Feed.ReconnectBackoff < 100*time.Millisecond {
		return fmt.Errorf("feed.reconnect_backoff must be at least 100ms")
	}

	if c.Feed.MaxReconnectBackoff < c.Feed.ReconnectBackoff {
		return fmt.Errorf("feed.max_reconnect_backoff must be at least feed.reconnect_backoff")
	}

	if c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required")
	}

	switch c.Notify.Backend {
	case "desktop", "none":
		// ok
	default:
		return fmt.Errorf("notify.backend must be one of desktop, none")
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Cache.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.Cache.Dir, err)
	}
	return nil
}
