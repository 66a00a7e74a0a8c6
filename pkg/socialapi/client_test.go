package socialapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dtnitsch/linkmeta/models"
)

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.SocialAPIConfig
		want bool
	}{
		{"no token", models.SocialAPIConfig{BaseURL: "https://api.example"}, false},
		{"no base url", models.SocialAPIConfig{BearerToken: "t"}, false},
		{"configured", models.SocialAPIConfig{BaseURL: "https://api.example", BearerToken: "t"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewClient(tt.cfg).IsAvailable(); got != tt.want {
				t.Errorf("IsAvailable() = %v, want %v", got, tt.want)
			}
		})
	}

	var nilClient *Client
	if nilClient.IsAvailable() {
		t.Error("nil client should be unavailable")
	}
}

func TestFetchPost(t *testing.T) {
	reset := time.Now().Add(time.Hour).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/posts/42" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("x-rate-limit-remaining", "0")
		w.Header().Set("x-rate-limit-reset", strconv.FormatInt(reset, 10))
		_, _ = w.Write([]byte(`{"data":{"id":"42","text":"hello","author":{"username":"alice"},
			"public_metrics":{"like_count":7,"retweet_count":0}}}`))
	}))
	defer srv.Close()

	c := NewClient(models.SocialAPIConfig{BaseURL: srv.URL, BearerToken: "secret"})
	post, err := c.FetchPost(context.Background(), "https://twitter.com/alice/status/42")
	if err != nil {
		t.Fatalf("FetchPost() error = %v", err)
	}
	if post.Text != "hello" || post.Author.Username != "alice" {
		t.Errorf("post = %+v", post)
	}
	if post.Metrics.Likes == nil || *post.Metrics.Likes != 7 {
		t.Errorf("likes = %v", post.Metrics.Likes)
	}
	if post.Metrics.Retweets == nil || *post.Metrics.Retweets != 0 {
		t.Errorf("retweets = %v, want 0", post.Metrics.Retweets)
	}
	if post.Metrics.Views != nil {
		t.Errorf("views = %v, want nil", *post.Metrics.Views)
	}

	// the server reported an exhausted quota
	if c.IsAvailable() {
		t.Error("client should be unavailable after quota is exhausted")
	}
	if _, err := c.FetchPost(context.Background(), "https://twitter.com/alice/status/42"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}

	// quota resets
	c.now = func() time.Time { return time.Unix(reset+1, 0) }
	if !c.IsAvailable() {
		t.Error("client should be available after reset")
	}
}

func TestFetchPostTooManyRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(models.SocialAPIConfig{BaseURL: srv.URL, BearerToken: "secret"})
	_, err := c.FetchPost(context.Background(), "https://twitter.com/alice/status/42")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
	if c.IsAvailable() {
		t.Error("client should back off after 429")
	}
}

func TestLocalRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":"42"}}`))
	}))
	defer srv.Close()

	c := NewClient(models.SocialAPIConfig{BaseURL: srv.URL, BearerToken: "secret", RatePerSecond: 0.001, Burst: 1})
	ctx := context.Background()
	if _, err := c.FetchPost(ctx, "https://twitter.com/alice/status/42"); err != nil {
		t.Fatalf("first FetchPost() error = %v", err)
	}
	if _, err := c.FetchPost(ctx, "https://twitter.com/alice/status/42"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("second FetchPost() error = %v, want ErrRateLimited", err)
	}
}
