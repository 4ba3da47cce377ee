// Package main is the entry point for the heraldd daemon.
// heraldd watches the client-service event feed and reconciles
// conversation and invitation state into desktop notifications.
// Invoked with -activate it instead dispatches a single notification
// activation action back into the service and exits; desktop
// notification handlers call it that way.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tOgg1/herald/internal/activation"
	"github.com/tOgg1/herald/internal/assets"
	"github.com/tOgg1/herald/internal/config"
	"github.com/tOgg1/herald/internal/engine"
	"github.com/tOgg1/herald/internal/feed"
	"github.com/tOgg1/herald/internal/logging"
	"github.com/tOgg1/herald/internal/notify"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configFile := flag.String("config", "", "config file (default is $HOME/.config/herald/config.yaml)")
	feedURL := flag.String("feed-url", "", "override feed websocket URL")
	cacheDir := flag.String("cache-dir", "", "override icon cache directory")
	logLevel := flag.String("log-level", "", "override logging level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "override logging format (json, console)")
	activate := flag.String("activate", "", "dispatch an activation action (e.g. 'invite|<id>|accept') and exit")
	content := flag.String("content", "", "message body for '-activate reply|<id>'")
	flag.Parse()

	cfg, loader, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *feedURL != "" {
		cfg.Feed.URL = *feedURL
	}
	if *cacheDir != "" {
		cfg.Cache.Dir = *cacheDir
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}

	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		EnableCaller: cfg.Logging.EnableCaller,
	})
	logger := logging.Component("heraldd")

	if cfgUsed := loader.ConfigFileUsed(); cfgUsed != "" {
		logger.Debug().Str("config_file", cfgUsed).Msg("loaded config file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *activate != "" {
		if err := runActivation(ctx, cfg, *activate, *content); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger.Info().
		Str("version", version).
		Str("commit", commit).
		Str("built", date).
		Str("feed_url", cfg.Feed.URL).
		Msg("heraldd starting")

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Warn().Err(err).Msg("failed to create directories")
	}

	if err := runDaemon(ctx, cfg); err != nil {
		logger.Error().Err(err).Msg("heraldd exiting with error")
		os.Exit(1)
	}
	logger.Info().Msg("heraldd stopped")
}

// loadConfig loads configuration from file, env, and defaults.
func loadConfig(configFile string) (*config.Config, *config.Loader, error) {
	loader := config.NewLoader()
	if configFile != "" {
		loader.SetConfigFile(configFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}

// runDaemon runs the reconciliation engine against the feed until ctx
// is cancelled, re-dialing dropped connections with exponential
// backoff. The engine itself carries no reconnect logic; a reconnect
// simply fires its connect handler again.
func runDaemon(ctx context.Context, cfg *config.Config) error {
	logger := logging.Component("heraldd")

	backend, err := notify.NewBackend(cfg.Notify.Backend, cfg.Notify.AppName)
	if err != nil {
		return err
	}
	center := notify.NewCenter(backend)

	client := feed.NewWSClient(cfg.Feed.URL)
	cache := assets.NewCache(client, cfg.Cache.Dir)
	engine.New(client, center, cache).Start()

	backoff := cfg.Feed.ReconnectBackoff
	for {
		start := time.Now()
		err := client.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		// A session that lived a while earns a fresh backoff.
		if time.Since(start) > cfg.Feed.MaxReconnectBackoff {
			backoff = cfg.Feed.ReconnectBackoff
		}

		logger.Warn().Err(err).Dur("retry_in", backoff).Msg("feed connection lost")
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil
		}

		backoff *= 2
		if backoff > cfg.Feed.MaxReconnectBackoff {
			backoff = cfg.Feed.MaxReconnectBackoff
		}
	}
}

// runActivation connects, dispatches one activation action, and exits.
func runActivation(ctx context.Context, cfg *config.Config, action, content string) error {
	fields := map[string]string{}
	if content != "" {
		fields["content"] = content
	}
	act, err := activation.Parse(action, fields)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client := feed.NewWSClient(cfg.Feed.URL)
	dispatcher := activation.NewDispatcher(client)

	result := make(chan error, 1)
	client.OnConnect(func() {
		// Dispatch on its own task: connect callbacks run before the
		// read loop and a request needs the read loop for its response.
		go func() {
			result <- dispatcher.Dispatch(ctx, act)
			cancel()
		}()
	})

	runErr := client.Run(ctx)
	select {
	case err := <-result:
		return err
	default:
		return runErr
	}
}
