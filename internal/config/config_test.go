package config

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults pass",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing feed url",
			mutate:  func(c *Config) { c.Feed.URL = "" },
			wantErr: true,
		},
		{
			name:    "tiny reconnect backoff",
			mutate:  func(c *Config) { c.Feed.ReconnectBackoff = time.Millisecond },
			wantErr: true,
		},
		{
			name: "max backoff below initial",
			mutate: func(c *Config) {
				c.Feed.ReconnectBackoff = 10 * time.Second
				c.Feed.MaxReconnectBackoff = time.Second
			},
			wantErr: true,
		},
		{
			name:    "missing cache dir",
			mutate:  func(c *Config) { c.Cache.Dir = "" },
			wantErr: true,
		},
		{
			name:    "unknown notify backend",
			mutate:  func(c *Config) { c.Notify.Backend = "carrier-pigeon" },
			wantErr: true,
		},
		{
			name:   "none backend allowed",
			mutate: func(c *Config) { c.Notify.Backend = "none" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoaderDefaults(t *testing.T) {
	loader := NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Feed.URL == "" {
		t.Error("feed url default missing")
	}
	if cfg.Notify.Backend != "desktop" {
		t.Errorf("notify backend = %q, want desktop", cfg.Notify.Backend)
	}
}

func TestExpandTilde(t *testing.T) {
	if got := expandTilde(""); got != "" {
		t.Errorf("empty path expanded to %q", got)
	}
	if got := expandTilde("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed to %q", got)
	}
	if got := expandTilde("~/cache"); got == "~/cache" {
		t.Error("tilde path not expanded")
	}
}
