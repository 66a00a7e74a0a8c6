// Package registry selects an extractor for a URL and owns the result
// cache.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/caching"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"github.com/dtnitsch/linkmeta/pkg/extractors"
	"github.com/dtnitsch/linkmeta/pkg/fetcher"
	"github.com/dtnitsch/linkmeta/pkg/metrics"
	"github.com/dtnitsch/linkmeta/pkg/parser"
)

const (
	UnknownTitle      = "Unknown Content"
	ConfidenceUnknown = 0.1
)

// ErrNoExtractors means the registry was built without extractors.
var ErrNoExtractors = errors.New("registry has no extractors")

// Config wires a Registry. Cache, Metrics and Log are optional. Fetcher is
// used for pages that no dedicated extractor claims.
type Config struct {
	Extractors []extractor.Extractor
	Fetcher    fetcher.HTMLFetcher
	Cache      *caching.Cache
	Metrics    *metrics.Metrics
	Log        *slog.Logger
	Now        func() time.Time
}

// Registry holds extractors ordered by descending priority.
type Registry struct {
	mu         sync.RWMutex
	extractors []extractor.Extractor

	fetcher fetcher.HTMLFetcher
	cache   *caching.Cache
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
}

func New(cfg Config) (*Registry, error) {
	if len(cfg.Extractors) == 0 {
		return nil, ErrNoExtractors
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	r := &Registry{
		fetcher: cfg.Fetcher,
		cache:   cfg.Cache,
		metrics: cfg.Metrics,
		log:     log.With("component", "registry"),
		now:     now,
	}
	r.Register(cfg.Extractors...)
	return r, nil
}

// Register adds extractors and re-sorts by priority. Equal priorities keep
// registration order.
func (r *Registry) Register(es ...extractor.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range es {
		if e != nil {
			r.extractors = append(r.extractors, e)
		}
	}
	sort.SliceStable(r.extractors, func(i, j int) bool {
		return r.extractors[i].Priority() > r.extractors[j].Priority()
	})
}

// Extractors returns the registered extractors in selection order.
func (r *Registry) Extractors() []extractor.Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]extractor.Extractor(nil), r.extractors...)
}

// FindExtractor returns the highest priority extractor that can handle
// rawURL, or nil.
func (r *Registry) FindExtractor(rawURL string) extractor.Extractor {
	for _, e := range r.Extractors() {
		if e.CanHandle(rawURL) {
			return e
		}
	}
	return nil
}

func (r *Registry) byType(t models.ContentType) extractor.Extractor {
	for _, e := range r.Extractors() {
		if e.Type() == t {
			return e
		}
	}
	return nil
}

// Extract runs the matching extractor. Pages no dedicated extractor claims
// are fetched once, checked for product markup and handed to the fallback
// with the fetched HTML. An error is returned only when the page could not
// be reached and no content was supplied.
func (r *Registry) Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	opts.URL = strings.TrimSpace(opts.URL)
	start := r.now()

	res, name, err := r.extract(ctx, opts)
	if err != nil {
		r.log.Warn("extraction failed", "url", opts.URL, "extractor", name, "error", err)
		return nil, err
	}

	elapsed := r.now().Sub(start)
	r.metrics.ObserveExtraction(name, string(res.Metadata.ContentType), string(res.Source), elapsed)
	r.log.Info("extracted",
		"url", opts.URL,
		"extractor", name,
		"content_type", res.Metadata.ContentType,
		"source", res.Source,
		"confidence", res.Confidence,
		"duration_ms", elapsed.Milliseconds())
	return res, nil
}

func (r *Registry) extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, string, error) {
	e := r.FindExtractor(opts.URL)
	if e != nil && e.Priority() > extractor.FallbackPriority {
		res, err := e.Extract(ctx, opts)
		return res, string(e.Type()), err
	}
	if e == nil && !detector.IsHTTPURL(opts.URL) {
		r.metrics.ObserveFallback(metrics.FallbackUnknown)
		return r.unknown(opts.URL), "unknown", nil
	}

	if !opts.HasInput() {
		html, err := r.fetch(ctx, opts)
		if err != nil {
			if extractor.IsUnreachable(err) {
				return nil, "fetch", err
			}
			r.log.Warn("page fetch failed", "url", opts.URL, "error", err)
			r.metrics.ObserveFallback(metrics.FallbackFetch)
			return r.unknown(opts.URL), "unknown", nil
		}
		opts.HTML = html
		opts.Prefetched = true
	}
	if opts.Document == nil {
		if doc, err := parser.Parse(opts.HTML); err == nil {
			opts.Document = doc
		}
	}

	if product := r.byType(models.ContentTypeProduct); product != nil && isProduct(opts.Document) {
		r.log.Debug("product markup found", "url", opts.URL)
		r.metrics.ObserveFallback(metrics.FallbackProduct)
		res, err := product.Extract(ctx, opts)
		return res, string(product.Type()), err
	}
	if e == nil {
		r.metrics.ObserveFallback(metrics.FallbackUnknown)
		return r.unknown(opts.URL), "unknown", nil
	}
	res, err := e.Extract(ctx, opts)
	return res, string(e.Type()), err
}

func (r *Registry) fetch(ctx context.Context, opts extractor.Options) (string, error) {
	if r.fetcher == nil {
		return "", errors.New("registry has no fetcher")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = models.DefaultFetchTimeout
	}
	return r.fetcher.Fetch(ctx, opts.URL, nil, timeout)
}

func isProduct(doc *goquery.Document) bool {
	return doc != nil && extractors.LooksLikeProduct(doc)
}

// unknown is the minimal record for URLs nothing could read.
func (r *Registry) unknown(rawURL string) *models.ExtractorResult {
	t := detector.Classify(rawURL).Type
	meta := models.ContentMetadata{
		URL:     rawURL,
		Title:   UnknownTitle,
		Details: models.NewDetails(t),
	}
	meta.Clean(t, r.now())
	return &models.ExtractorResult{Metadata: meta, Confidence: ConfidenceUnknown, Source: models.SourceScraping}
}

// ExtractWithCache serves fresh cache entries with source hybrid and
// otherwise extracts and stores the result. Degraded and unknown results
// are not stored so the next call tries again.
func (r *Registry) ExtractWithCache(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	if r.cache != nil {
		cached, outcome := r.cache.Lookup(ctx, opts.URL)
		r.metrics.ObserveCache(outcome)
		if outcome == caching.Hit {
			res := *cached
			res.Source = models.SourceHybrid
			r.log.Debug("cache hit", "url", opts.URL, "content_type", res.Metadata.ContentType)
			return &res, nil
		}
	}

	res, err := r.Extract(ctx, opts)
	if err != nil {
		return nil, err
	}
	if r.cache != nil && res.Confidence > extractor.ConfidenceDegraded {
		r.cache.Set(ctx, opts.URL, res)
	}
	return res, nil
}

// ClearCache drops the cached result for rawURL.
func (r *Registry) ClearCache(ctx context.Context, rawURL string) {
	if r.cache != nil {
		r.cache.Remove(ctx, rawURL)
	}
}

// ClearAllCache drops every cached result and returns how many were removed.
func (r *Registry) ClearAllCache(ctx context.Context) int {
	if r.cache == nil {
		return 0
	}
	return r.cache.Clear(ctx)
}

// CleanExpiredCache drops stale results and returns how many were removed.
func (r *Registry) CleanExpiredCache(ctx context.Context) int {
	if r.cache == nil {
		return 0
	}
	return r.cache.CleanExpired(ctx)
}

func (r *Registry) CacheStats(ctx context.Context) caching.Stats {
	if r.cache == nil {
		return caching.Stats{}
	}
	return r.cache.Stats(ctx)
}
