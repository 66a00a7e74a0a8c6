package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/linkmeta/models"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if r.Header.Get("User-Agent") != "test-agent" {
				t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
			}
			if r.Header.Get("X-Extra") != "1" {
				t.Errorf("X-Extra header missing")
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><head><title>ok</title></head></html>"))
		case "/latin1":
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write([]byte("<p>caf\xe9</p>"))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(models.FetchConfig{UserAgent: "test-agent"})
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		html, err := f.Fetch(ctx, srv.URL+"/ok", map[string]string{"X-Extra": "1"}, 0)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if !strings.Contains(html, "<title>ok</title>") {
			t.Errorf("unexpected body %q", html)
		}
	})

	t.Run("charset decoding", func(t *testing.T) {
		html, err := f.Fetch(ctx, srv.URL+"/latin1", nil, 0)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if !strings.Contains(html, "café") {
			t.Errorf("body not decoded: %q", html)
		}
	})

	t.Run("status error", func(t *testing.T) {
		_, err := f.Fetch(ctx, srv.URL+"/missing", nil, 0)
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("error = %v, want *StatusError", err)
		}
		if statusErr.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		_, err := f.Fetch(ctx, srv.URL+"/slow", nil, 20*time.Millisecond)
		if err == nil {
			t.Fatal("expected timeout error")
		}
	})
}
