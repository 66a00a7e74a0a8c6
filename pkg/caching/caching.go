// Package caching stores extraction results keyed by normalized URL, with
// a maximum age that depends on how quickly each content type goes stale.
package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/detector"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "linkmeta:"

const (
	SocialMaxAge   = 6 * time.Hour
	LongFormMaxAge = 48 * time.Hour
	DefaultMaxAge  = 24 * time.Hour
)

// Lookup outcomes, also used as metric labels.
const (
	Hit     = "hit"
	Miss    = "miss"
	Expired = "expired"
)

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// Backend is a string key-value store. Implementations must be safe for
// concurrent use; a missing key is reported with ok false and no error.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// Entry is what gets stored for each URL.
type Entry struct {
	Result   models.ExtractorResult `json:"result"`
	CachedAt time.Time              `json:"cached_at"`
}

// Stats summarize the cache contents.
type Stats struct {
	Total   int   `json:"total" yaml:"total"`
	Expired int   `json:"expired" yaml:"expired"`
	Size    int64 `json:"size" yaml:"size"` // bytes of stored values
}

// MaxAge is the default freshness window for content type t.
func MaxAge(t models.ContentType) time.Duration {
	switch {
	case t.IsSocialPost():
		return SocialMaxAge
	case t.IsLongForm():
		return LongFormMaxAge
	}
	return DefaultMaxAge
}

// Key is the storage key for rawURL.
func Key(rawURL string) string {
	return KeyPrefix + detector.NormalizeURL(rawURL)
}

// Cache wraps a Backend with serialization and expiry. Backend failures
// are logged and treated as misses so a broken cache never fails an
// extraction.
type Cache struct {
	backend   Backend
	now       Clock
	overrides map[models.ContentType]time.Duration
	log       *slog.Logger
}

type Option func(*Cache)

func WithClock(now Clock) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// WithMaxAge overrides the freshness window of individual content types.
func WithMaxAge(overrides map[models.ContentType]time.Duration) Option {
	return func(c *Cache) {
		for t, d := range overrides {
			if d > 0 {
				c.overrides[t] = d
			}
		}
	}
}

func New(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend:   backend,
		now:       time.Now,
		overrides: make(map[models.ContentType]time.Duration),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "cache")
	return c
}

// MaxAge is the freshness window for t including configured overrides.
func (c *Cache) MaxAge(t models.ContentType) time.Duration {
	if d, ok := c.overrides[t]; ok {
		return d
	}
	return MaxAge(t)
}

// Get returns the cached result for rawURL if present and fresh.
func (c *Cache) Get(ctx context.Context, rawURL string) (*models.ExtractorResult, bool) {
	res, outcome := c.Lookup(ctx, rawURL)
	return res, outcome == Hit
}

// Lookup is Get reporting whether the entry was a hit, a miss or expired.
// Expired and unreadable entries are removed.
func (c *Cache) Lookup(ctx context.Context, rawURL string) (*models.ExtractorResult, string) {
	key := Key(rawURL)
	raw, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", "key", key, "error", err)
		return nil, Miss
	}
	if !ok {
		return nil, Miss
	}

	entry, err := decode(raw)
	if err != nil {
		c.log.Warn("dropping unreadable cache entry", "key", key, "error", err)
		c.remove(ctx, key)
		return nil, Miss
	}
	if c.expired(entry) {
		c.remove(ctx, key)
		return nil, Expired
	}
	return &entry.Result, Hit
}

// Set stores res for rawURL, stamped with the current time.
func (c *Cache) Set(ctx context.Context, rawURL string, res *models.ExtractorResult) {
	if res == nil {
		return
	}
	key := Key(rawURL)
	data, err := json.Marshal(Entry{Result: *res, CachedAt: c.now().UTC()})
	if err != nil {
		c.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, string(data)); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// Remove drops the entry for rawURL.
func (c *Cache) Remove(ctx context.Context, rawURL string) {
	c.remove(ctx, Key(rawURL))
}

// Clear drops every entry and returns how many were removed.
func (c *Cache) Clear(ctx context.Context) int {
	keys, err := c.backend.ListKeys(ctx, KeyPrefix)
	if err != nil {
		c.log.Warn("cache list failed", "error", err)
		return 0
	}
	removed := 0
	for _, key := range keys {
		if c.remove(ctx, key) {
			removed++
		}
	}
	return removed
}

// CleanExpired drops stale and unreadable entries and returns how many
// were removed.
func (c *Cache) CleanExpired(ctx context.Context) int {
	removed := 0
	c.scan(ctx, func(key, raw string, entry *Entry) {
		if entry == nil || c.expired(entry) {
			if c.remove(ctx, key) {
				removed++
			}
		}
	})
	return removed
}

// Stats counts entries, expired entries and stored bytes.
func (c *Cache) Stats(ctx context.Context) Stats {
	var s Stats
	c.scan(ctx, func(key, raw string, entry *Entry) {
		s.Total++
		s.Size += int64(len(raw))
		if entry == nil || c.expired(entry) {
			s.Expired++
		}
	})
	return s
}

// scan visits every entry; entry is nil when the value cannot be decoded.
func (c *Cache) scan(ctx context.Context, visit func(key, raw string, entry *Entry)) {
	keys, err := c.backend.ListKeys(ctx, KeyPrefix)
	if err != nil {
		c.log.Warn("cache list failed", "error", err)
		return
	}
	for _, key := range keys {
		raw, ok, err := c.backend.Get(ctx, key)
		if err != nil {
			c.log.Warn("cache read failed", "key", key, "error", err)
			continue
		}
		if !ok {
			continue
		}
		entry, err := decode(raw)
		if err != nil {
			entry = nil
		}
		visit(key, raw, entry)
	}
}

func (c *Cache) expired(e *Entry) bool {
	return c.now().Sub(e.CachedAt) > c.MaxAge(e.Result.Metadata.ContentType)
}

func (c *Cache) remove(ctx context.Context, key string) bool {
	if err := c.backend.Remove(ctx, key); err != nil {
		c.log.Warn("cache remove failed", "key", key, "error", err)
		return false
	}
	return true
}

func decode(raw string) (*Entry, error) {
	var e Entry
	if err := json.NewDecoder(strings.NewReader(raw)).Decode(&e); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	if e.CachedAt.IsZero() {
		return nil, fmt.Errorf("decode cache entry: missing cached_at")
	}
	return &e, nil
}
