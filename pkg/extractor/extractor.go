// Package extractor defines the contract every content extractor implements
// and the toolkit they share: fetching, meta tag harvesting, structured data
// and cleaning.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"github.com/dtnitsch/linkmeta/pkg/fetcher"
	"github.com/dtnitsch/linkmeta/pkg/parser"
)

const (
	DefaultPriority  = 1
	FallbackPriority = 0

	// ConfidenceAPI is used for results read from an authoritative API.
	ConfidenceAPI = 1.0
	// ConfidenceDegraded is used when only the URL itself could be read.
	ConfidenceDegraded = 0.3
)

// ErrNoStrategy is returned by FirstSuccess when it was given nothing to run.
var ErrNoStrategy = errors.New("no extraction strategy available")

// Extractor turns a URL into typed metadata for one content family.
type Extractor interface {
	Type() models.ContentType
	CanHandle(rawURL string) bool
	Priority() int
	Extract(ctx context.Context, opts Options) (*models.ExtractorResult, error)
}

// Options is the input of Extract. HTML and Document are optional and let a
// caller that already fetched the page skip the network. Prefetched marks
// HTML the registry fetched itself rather than content the caller supplied.
type Options struct {
	URL        string
	HTML       string
	Document   *goquery.Document
	Timeout    time.Duration
	Prefetched bool
}

// HasInput reports whether page content is at hand.
func (o Options) HasInput() bool {
	return o.HTML != "" || o.Document != nil
}

// Supplied reports whether the caller handed in the page content.
func (o Options) Supplied() bool {
	return o.HasInput() && !o.Prefetched
}

// Base carries the shared toolkit. Concrete extractors embed it.
type Base struct {
	ContentType models.ContentType
	Fetcher     fetcher.HTMLFetcher
	Log         *slog.Logger
	Now         func() time.Time
}

// NewBase returns a Base for content type t. A nil logger uses slog.Default.
func NewBase(t models.ContentType, f fetcher.HTMLFetcher, log *slog.Logger) Base {
	if log == nil {
		log = slog.Default()
	}
	return Base{
		ContentType: t,
		Fetcher:     f,
		Log:         log.With("extractor", string(t)),
		Now:         time.Now,
	}
}

func (b *Base) Type() models.ContentType {
	return b.ContentType
}

func (b *Base) Priority() int {
	return DefaultPriority
}

// CanHandle is true when the classifier agrees with the extractor's type.
func (b *Base) CanHandle(rawURL string) bool {
	return detector.Classify(rawURL).Type == b.ContentType
}

// Fetch retrieves rawURL with the toolkit fetcher.
func (b *Base) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	if b.Fetcher == nil {
		return "", fmt.Errorf("no fetcher configured for %s", b.ContentType)
	}
	if timeout <= 0 {
		timeout = models.DefaultFetchTimeout
	}
	return b.Fetcher.Fetch(ctx, rawURL, nil, timeout)
}

// Document returns a parsed page for opts, preferring the pre-parsed
// document, then supplied HTML, then a fresh fetch. The raw HTML is
// returned when known.
func (b *Base) Document(ctx context.Context, opts Options) (*goquery.Document, string, error) {
	if opts.Document != nil {
		return opts.Document, opts.HTML, nil
	}
	html := opts.HTML
	if html == "" {
		var err error
		html, err = b.Fetch(ctx, opts.URL, opts.Timeout)
		if err != nil {
			return nil, "", err
		}
	}
	doc, err := parser.Parse(html)
	if err != nil {
		return nil, "", err
	}
	return doc, html, nil
}

// CleanMetadata enforces the output invariants on meta and stamps it.
func (b *Base) CleanMetadata(meta *models.ContentMetadata, t models.ContentType) {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	meta.Clean(t, now())
}

// Result cleans meta and wraps it.
func (b *Base) Result(meta models.ContentMetadata, confidence float64, source models.Source) *models.ExtractorResult {
	b.CleanMetadata(&meta, b.ContentType)
	return &models.ExtractorResult{Metadata: meta, Confidence: confidence, Source: source}
}

// Degrade turns a failed extraction into a best-effort result built from
// meta, which should hold what the URL alone reveals. The error is only
// passed on when the page was unreachable and the caller gave no content.
func (b *Base) Degrade(opts Options, meta models.ContentMetadata, err error) (*models.ExtractorResult, error) {
	if !opts.HasInput() && IsUnreachable(err) {
		return nil, err
	}
	b.Log.Warn("extraction degraded", "url", opts.URL, "error", err)
	return b.Result(meta, ConfidenceDegraded, models.SourceScraping), nil
}

// IsUnreachable reports whether err means the server could not be reached
// at all, as opposed to answering with an error status.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *fetcher.StatusError
	if errors.As(err, &statusErr) {
		return false
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded)
}
