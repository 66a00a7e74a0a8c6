// Package models defines data structures shared by the extraction pipeline,
// its cache and its configuration.
package models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath   = "linkmeta.yaml"
	DefaultFetchTimeout = 10 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultServerAddr   = ":8080"
	DefaultCacheDir     = "linkmeta-cache"
	DefaultSQLitePath   = "linkmeta.db"

	EnvSocialToken = "LINKMETA_SOCIAL_TOKEN"
	EnvRedisAddr   = "LINKMETA_REDIS_ADDR"
)

// Cache backends understood by the CLI and server.
const (
	CacheBackendMemory = "memory"
	CacheBackendFile   = "file"
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
)

// Config is the on-disk configuration, normally linkmeta.yaml.
type Config struct {
	Fetch     FetchConfig     `yaml:"fetch"`
	Cache     CacheConfig     `yaml:"cache"`
	SocialAPI SocialAPIConfig `yaml:"social_api"`
	Reader    ReaderConfig    `yaml:"reader"`
	Server    ServerConfig    `yaml:"server"`
}

// FetchConfig controls page retrieval.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// CacheConfig selects and configures the result cache backend.
type CacheConfig struct {
	Backend       string                        `yaml:"backend"`
	Dir           string                        `yaml:"dir"`
	SQLitePath    string                        `yaml:"sqlite_path"`
	RedisAddr     string                        `yaml:"redis_addr"`
	RedisPassword string                        `yaml:"redis_password"`
	RedisDB       int                           `yaml:"redis_db"`
	MaxAge        map[ContentType]time.Duration `yaml:"max_age"`
}

// SocialAPIConfig configures the optional social platform API.
type SocialAPIConfig struct {
	BaseURL       string  `yaml:"base_url"`
	BearerToken   string  `yaml:"bearer_token"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// ReaderConfig toggles the local content extraction service.
type ReaderConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ServerConfig configures the HTTP API. A zero RatePerSecond disables
// request limiting.
type ServerConfig struct {
	Addr          string  `yaml:"addr"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			Timeout:   DefaultFetchTimeout,
			UserAgent: DefaultUserAgent,
		},
		Cache: CacheConfig{
			Backend:    CacheBackendMemory,
			Dir:        DefaultCacheDir,
			SQLitePath: DefaultSQLitePath,
		},
		SocialAPI: SocialAPIConfig{
			RatePerSecond: 1,
			Burst:         5,
		},
		Reader: ReaderConfig{Enabled: true},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
}

// LoadConfig reads path on top of the defaults. A missing file is not an
// error. Environment variables override the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if token := os.Getenv(EnvSocialToken); token != "" {
		cfg.SocialAPI.BearerToken = token
	}
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		cfg.Cache.RedisAddr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fills zero values with defaults and rejects unusable settings.
func (c *Config) Validate() error {
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = DefaultFetchTimeout
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = DefaultUserAgent
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.RatePerSecond < 0 {
		return fmt.Errorf("server rate_per_second must not be negative")
	}
	if c.Server.RatePerSecond > 0 && c.Server.Burst <= 0 {
		c.Server.Burst = 1
	}

	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = CacheBackendMemory
	case CacheBackendMemory, CacheBackendFile, CacheBackendSQLite, CacheBackendRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheBackendRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache backend redis requires redis_addr or %s", EnvRedisAddr)
	}

	for t, age := range c.Cache.MaxAge {
		if !t.Valid() {
			return fmt.Errorf("max_age: unknown content type %q", t)
		}
		if age <= 0 {
			return fmt.Errorf("max_age for %s must be positive", t)
		}
	}
	return nil
}
