// Package config loads and validates application configuration from YAML
// files and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Scraper Scraper `mapstructure:"scraper"`
	Cache   Cache   `mapstructure:"cache"`
	Match   Match   `mapstructure:"match"`
	Extract Extract `mapstructure:"extract"`
	Log     Log     `mapstructure:"log"`
}

// Scraper configures the job-board client.
type Scraper struct {
	BaseURL           string  `mapstructure:"base_url"`
	OfferHost         string  `mapstructure:"offer_host"`
	MaxConcurrent     int     `mapstructure:"max_concurrent"`
	DelayFloorSeconds float64 `mapstructure:"delay_floor_seconds"`
	TimeoutSeconds    float64 `mapstructure:"timeout_seconds"`
	Retry             Retry   `mapstructure:"retry"`
	QueueSize         int     `mapstructure:"queue_size"`
}

// Retry shapes the exponential backoff on scraper requests.
type Retry struct {
	BaseMs      int     `mapstructure:"base_ms"`
	Factor      float64 `mapstructure:"factor"`
	Jitter      float64 `mapstructure:"jitter"`
	CapMs       int     `mapstructure:"cap_ms"`
	MaxAttempts int     `mapstructure:"max_attempts"`
}

// Cache configures the enrichment cache tiers.
type Cache struct {
	TTLSeconds int    `mapstructure:"ttl_seconds"`
	RedisURL   string `mapstructure:"redis_url"`
	DBPath     string `mapstructure:"db_path"`
	MaxEntries int    `mapstructure:"max_entries"`
	Persist    bool   `mapstructure:"persist"`
}

// Match configures the scoring kernel.
type Match struct {
	MinScore float64 `mapstructure:"min_score"`
	Weights  struct {
		Skills   float64 `mapstructure:"skills"`
		Projects float64 `mapstructure:"projects"`
		Title    float64 `mapstructure:"title"`
	} `mapstructure:"weights"`
	Boosts struct {
		Location  float64 `mapstructure:"location"`
		Activity  float64 `mapstructure:"activity"`
		Projects  float64 `mapstructure:"projects"`
		Diversity float64 `mapstructure:"diversity"`
	} `mapstructure:"boosts"`
}

// Extract configures the CV extraction pipeline.
type Extract struct {
	LanguagePreference string `mapstructure:"language_preference"`
	MaxSkills          int    `mapstructure:"max_skills"`
}

// Log configures logging output.
type Log struct {
	Debug bool `mapstructure:"debug"`
	JSON  bool `mapstructure:"json"`
}

// DelayFloor returns the scraper delay floor as a duration.
func (s Scraper) DelayFloor() time.Duration {
	return time.Duration(s.DelayFloorSeconds * float64(time.Second))
}

// Timeout returns the HTTP request timeout as a duration.
func (s Scraper) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds * float64(time.Second))
}

// TTL returns the cache TTL as a duration.
func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// setDefaults registers the recognized option set with its defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("scraper.base_url", "https://www.occ.com.mx")
	v.SetDefault("scraper.offer_host", "https://www.occ.com.mx")
	v.SetDefault("scraper.max_concurrent", 3)
	v.SetDefault("scraper.delay_floor_seconds", 1.0)
	v.SetDefault("scraper.timeout_seconds", 30.0)
	v.SetDefault("scraper.retry.base_ms", 500)
	v.SetDefault("scraper.retry.factor", 2.0)
	v.SetDefault("scraper.retry.jitter", 0.2)
	v.SetDefault("scraper.retry.cap_ms", 8000)
	v.SetDefault("scraper.retry.max_attempts", 4)
	v.SetDefault("scraper.queue_size", 256)

	v.SetDefault("cache.ttl_seconds", 604800) // 7 days
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.db_path", "")
	v.SetDefault("cache.max_entries", 10000)
	v.SetDefault("cache.persist", true)

	v.SetDefault("match.min_score", 0.10)
	v.SetDefault("match.weights.skills", 0.55)
	v.SetDefault("match.weights.projects", 0.25)
	v.SetDefault("match.weights.title", 0.20)
	v.SetDefault("match.boosts.location", 0.10)
	v.SetDefault("match.boosts.activity", 0.05)
	v.SetDefault("match.boosts.projects", 0.15)
	v.SetDefault("match.boosts.diversity", 0.10)

	v.SetDefault("extract.language_preference", "auto")
	v.SetDefault("extract.max_skills", 30)

	v.SetDefault("log.debug", false)
	v.SetDefault("log.json", false)
}

// Load reads configuration from the given file (optional) plus EMPLEOMATCH_*
// environment variables and validates it. A missing file is fine; a broken
// one is not.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EMPLEOMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("empleomatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.empleomatch")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the process cannot run with. Called once
// at boot; failures are fatal.
func (c *Config) Validate() error {
	if c.Scraper.BaseURL == "" {
		return fmt.Errorf("config: scraper.base_url is required")
	}
	if c.Scraper.MaxConcurrent <= 0 {
		return fmt.Errorf("config: scraper.max_concurrent must be positive, got %d", c.Scraper.MaxConcurrent)
	}
	if c.Scraper.DelayFloorSeconds < 0 {
		return fmt.Errorf("config: scraper.delay_floor_seconds must not be negative")
	}
	if c.Scraper.Retry.MaxAttempts < 1 {
		return fmt.Errorf("config: scraper.retry.max_attempts must be at least 1, got %d", c.Scraper.Retry.MaxAttempts)
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("config: cache.ttl_seconds must be positive, got %d", c.Cache.TTLSeconds)
	}
	if c.Match.MinScore < 0 || c.Match.MinScore > 1 {
		return fmt.Errorf("config: match.min_score must be in [0,1], got %g", c.Match.MinScore)
	}
	sum := c.Match.Weights.Skills + c.Match.Weights.Projects + c.Match.Weights.Title
	if sum <= 0 {
		return fmt.Errorf("config: match.weights must sum to a positive value")
	}
	switch c.Extract.LanguagePreference {
	case "auto", "es", "en":
	default:
		return fmt.Errorf("config: extract.language_preference must be auto, es or en, got %q", c.Extract.LanguagePreference)
	}
	if c.Extract.MaxSkills <= 0 {
		return fmt.Errorf("config: extract.max_skills must be positive, got %d", c.Extract.MaxSkills)
	}
	return nil
}
