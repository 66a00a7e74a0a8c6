// Package socialapi is a small client for a syndication style social post
// API. It tracks the server's rate limit headers so callers can skip it
// once the quota is spent.
package socialapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"golang.org/x/time/rate"
)

var (
	ErrUnavailable = errors.New("social api unavailable")
	ErrRateLimited = errors.New("social api rate limited")
)

// Variant is one encoding of a video attachment.
type Variant struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Bitrate     int    `json:"bitrate"`
}

// Media is a post attachment.
type Media struct {
	Type       string    `json:"type"` // photo, video, animated_gif
	URL        string    `json:"url"`
	PreviewURL string    `json:"preview_image_url"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	DurationMS int       `json:"duration_ms"`
	AltText    string    `json:"alt_text"`
	Variants   []Variant `json:"variants"`
}

// User is the post author.
type User struct {
	Name         string `json:"name"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image_url"`
	Verified     bool   `json:"verified"`
}

// Metrics are the public engagement counters.
type Metrics struct {
	Likes     *int64 `json:"like_count"`
	Retweets  *int64 `json:"retweet_count"`
	Replies   *int64 `json:"reply_count"`
	Quotes    *int64 `json:"quote_count"`
	Views     *int64 `json:"impression_count"`
	Bookmarks *int64 `json:"bookmark_count"`
}

// Post is the API representation of a single post.
type Post struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Author    User      `json:"author"`
	Metrics   Metrics   `json:"public_metrics"`
	Media     []Media   `json:"media"`
	Hashtags  []string  `json:"hashtags"`
}

// Client calls the post API. The zero value is unusable, use NewClient.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	now     func() time.Time

	mu        sync.Mutex
	remaining int // -1 until the server reports a quota
	reset     time.Time
}

// NewClient builds a client from config. Without a token or base URL the
// client reports itself unavailable.
func NewClient(cfg models.SocialAPIConfig) *Client {
	limit := rate.Limit(cfg.RatePerSecond)
	if cfg.RatePerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		token:     cfg.BearerToken,
		http:      &http.Client{Timeout: models.DefaultFetchTimeout},
		limiter:   rate.NewLimiter(limit, burst),
		now:       time.Now,
		remaining: -1,
	}
}

// IsAvailable is false when the client is not configured or the server
// said the quota is spent and the reset time has not passed.
func (c *Client) IsAvailable() bool {
	if c == nil || c.token == "" || c.baseURL == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.exhausted()
}

func (c *Client) exhausted() bool {
	return c.remaining == 0 && c.now().Before(c.reset)
}

// FetchPost loads the post behind a status URL.
func (c *Client) FetchPost(ctx context.Context, rawURL string) (*Post, error) {
	if !c.IsAvailable() {
		return nil, ErrUnavailable
	}
	id, ok := detector.ExtractPlatformID(rawURL, models.ContentTypeTwitter)
	if !ok {
		return nil, fmt.Errorf("no post id in %s", rawURL)
	}
	if !c.limiter.Allow() {
		return nil, ErrRateLimited
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/posts/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call social api: %w", err)
	}
	defer resp.Body.Close()

	c.trackLimits(resp)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("social api returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data *Post `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode social api response: %w", err)
	}
	if payload.Data == nil || payload.Data.ID == "" {
		return nil, fmt.Errorf("social api returned no post for %s", id)
	}
	return payload.Data, nil
}

func (c *Client) trackLimits(resp *http.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := resp.Header.Get("x-rate-limit-remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.remaining = n
		}
	}
	if v := resp.Header.Get("x-rate-limit-reset"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.reset = time.Unix(secs, 0)
		}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		c.remaining = 0
		if c.reset.IsZero() || !c.reset.After(c.now()) {
			c.reset = c.now().Add(15 * time.Minute)
		}
	}
}
