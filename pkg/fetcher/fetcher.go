package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dtnitsch/linkmeta/models"
	"golang.org/x/net/html/charset"
)

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 10 << 20

// HTMLFetcher retrieves a page as decoded HTML text.
type HTMLFetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (string, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s, status code: %d", e.URL, e.StatusCode)
}

type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// NewFetcher builds a Fetcher from the fetch section of the config.
func NewFetcher(cfg models.FetchConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = models.DefaultFetchTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = models.DefaultUserAgent
	}
	return &Fetcher{
		client:    &http.Client{},
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
	}
}

// Fetch GETs url and returns the body decoded to UTF-8. A zero timeout uses
// the configured default.
func (f *Fetcher) Fetch(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = f.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(bodyBytes), nil
}
