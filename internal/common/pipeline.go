package common

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/caching"
	"github.com/dtnitsch/linkmeta/pkg/db"
	"github.com/dtnitsch/linkmeta/pkg/extractors"
	"github.com/dtnitsch/linkmeta/pkg/fetcher"
	"github.com/dtnitsch/linkmeta/pkg/metrics"
	"github.com/dtnitsch/linkmeta/pkg/reader"
	"github.com/dtnitsch/linkmeta/pkg/registry"
	"github.com/dtnitsch/linkmeta/pkg/socialapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
)

// LoadConfig reads --config and applies the flags that override it.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("cache-backend") {
		cfg.Cache.Backend = c.String("cache-backend")
	}
	if c.IsSet("cache-dir") {
		cfg.Cache.Dir = c.String("cache-dir")
	}
	if c.IsSet("timeout") {
		cfg.Fetch.Timeout = c.Duration("timeout")
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Pipeline is a configured registry plus the resources it holds open.
type Pipeline struct {
	Registry *registry.Registry
	Metrics  *metrics.Metrics
	closers  []func() error
}

// NewPipeline wires fetcher, API clients, extractors, cache and metrics
// from cfg. Metrics are registered on reg.
func NewPipeline(cfg *models.Config, logger *slog.Logger, reg prometheus.Registerer) (*Pipeline, error) {
	p := &Pipeline{}

	backend, closer, err := NewCacheBackend(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		p.closers = append(p.closers, closer)
	}

	f := fetcher.NewFetcher(cfg.Fetch)
	deps := extractors.Deps{
		Fetcher: f,
		Social:  socialapi.NewClient(cfg.SocialAPI),
		Reader:  reader.NewClient(f, cfg.Reader.Enabled, cfg.Fetch.Timeout),
		Log:     logger,
	}

	p.Metrics = metrics.New(reg)
	cache := caching.New(backend, caching.WithLogger(logger), caching.WithMaxAge(cfg.Cache.MaxAge))

	p.Registry, err = registry.New(registry.Config{
		Extractors: extractors.All(deps),
		Fetcher:    f,
		Cache:      cache,
		Metrics:    p.Metrics,
		Log:        logger,
	})
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

// Close releases the cache backend.
func (p *Pipeline) Close() error {
	var errs []error
	for _, closer := range p.closers {
		errs = append(errs, closer())
	}
	p.closers = nil
	return errors.Join(errs...)
}

// NewCacheBackend opens the backend cfg selects. The returned closer may
// be nil.
func NewCacheBackend(cfg models.CacheConfig) (caching.Backend, func() error, error) {
	switch cfg.Backend {
	case "", models.CacheBackendMemory:
		return caching.NewMemoryBackend(), nil, nil
	case models.CacheBackendFile:
		dir := cfg.Dir
		if dir == "" {
			dir = models.DefaultCacheDir
		}
		b, err := caching.NewFileBackend(dir)
		if err != nil {
			return nil, nil, err
		}
		return b, nil, nil
	case models.CacheBackendSQLite:
		database, err := db.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open cache database: %w", err)
		}
		return db.NewCacheBackend(database), database.Close, nil
	case models.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return caching.NewRedisBackend(client), client.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}
