// Package cmd wires the empleomatch CLI: CV extraction, job search and
// matching over one shared configuration.
package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/empleomatch/empleomatch/internal/config"
	"github.com/empleomatch/empleomatch/internal/enrich"
	"github.com/empleomatch/empleomatch/internal/occ"
)

const app = "empleomatch"

var (
	cfgFile  string
	flagJSON bool
	debug    bool

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "empleomatch matches CV profiles against job-board offers",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return boot(cmd)
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default empleomatch.yaml in . or ~/.empleomatch)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json-logs", "j", false, "json format for logging")
}

// boot loads configuration and installs the process logger. Configuration
// errors are fatal here, before any command body runs.
func boot(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}
	if debug {
		cfg.Log.Debug = true
	}
	if flagJSON {
		cfg.Log.JSON = true
	}

	level := slog.LevelInfo
	if cfg.Log.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("configuration loaded", slog.String("command", cmd.Name()))
	return nil
}

// newScraper builds the job-board client from configuration.
func newScraper() *occ.Scraper {
	return occ.NewScraper(occ.Config{
		BaseURL:       cfg.Scraper.BaseURL,
		OfferHost:     cfg.Scraper.OfferHost,
		MaxConcurrent: cfg.Scraper.MaxConcurrent,
		DelayFloor:    cfg.Scraper.DelayFloor(),
		Timeout:       cfg.Scraper.Timeout(),
		RetryBase:     time.Duration(cfg.Scraper.Retry.BaseMs) * time.Millisecond,
		RetryFactor:   cfg.Scraper.Retry.Factor,
		RetryJitter:   cfg.Scraper.Retry.Jitter,
		RetryCap:      time.Duration(cfg.Scraper.Retry.CapMs) * time.Millisecond,
		RetryMax:      cfg.Scraper.Retry.MaxAttempts,
	})
}

// newEnrichment builds the cache-backed enrichment service around a scraper.
// The SQLite store is best-effort: a failure to open it degrades to the
// in-memory tiers.
func newEnrichment(scraper *occ.Scraper) (*enrich.Service, func()) {
	var store *enrich.Store
	if cfg.Cache.Persist {
		var err error
		store, err = enrich.OpenStore(cfg.Cache.DBPath)
		if err != nil {
			slog.Warn("persistent cache unavailable", slog.Any("error", err))
			store = nil
		}
	}
	cache := enrich.NewCache(enrich.CacheOptions{
		RedisURL:   cfg.Cache.RedisURL,
		Store:      store,
		TTL:        cfg.Cache.TTL(),
		MaxEntries: cfg.Cache.MaxEntries,
	})
	svc := enrich.NewService(cache, scraper, enrich.ServiceOptions{
		Workers:   cfg.Scraper.MaxConcurrent,
		QueueSize: cfg.Scraper.QueueSize,
	})
	cleanup := func() {
		cache.Close()
		if store != nil {
			store.Close()
		}
	}
	return svc, cleanup
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
