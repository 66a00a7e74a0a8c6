package common

import (
	"bytes"
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dtnitsch/linkmeta/models"
	"github.com/prometheus/client_golang/prometheus"
)

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"whitespace", "  https://example.com  ", "https://example.com"},
		{"markdown link", "[click here](https://example.com/a)", "https://example.com/a"},
		{"trailing comma", "https://example.com,", "https://example.com"},
		{"wrapped in parens", "(https://example.com)", "https://example.com"},
		{"angle brackets", "<https://example.com>", "https://example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeURL(tt.in); got != tt.want {
				t.Errorf("SanitizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitURLs(t *testing.T) {
	urls, invalid := SplitURLs("https://a.example.com, ,https://b.example.com,", []string{"notes.txt", "https://c.example.com"})
	want := []string{"https://a.example.com", "https://b.example.com", "notes.txt", "https://c.example.com"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("urls = %v, want %v", urls, want)
	}
	if !reflect.DeepEqual(invalid, []string{"notes.txt"}) {
		t.Errorf("invalid = %v", invalid)
	}
}

func TestFilterFields(t *testing.T) {
	record := map[string]any{"url": "u", "title": "t", "likes": int64(3)}
	if got := FilterFields(record, ""); len(got) != 3 {
		t.Errorf("empty filter dropped fields: %v", got)
	}
	got := FilterFields(record, "title, likes,missing")
	want := map[string]any{"title": "t", "likes": int64(3)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterFields() = %v, want %v", got, want)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name           string
		quiet, verbose bool
		wantInfo       bool
		wantDebug      bool
	}{
		{name: "default", wantInfo: true},
		{name: "quiet", quiet: true},
		{name: "verbose", verbose: true, wantInfo: true, wantDebug: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := newLogger(&buf, tt.quiet, tt.verbose)
			log.Debug("debug line")
			log.Info("info line")
			out := buf.String()
			if strings.Contains(out, "info line") != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", !tt.wantInfo, tt.wantInfo)
			}
			if strings.Contains(out, "debug line") != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", !tt.wantDebug, tt.wantDebug)
			}
		})
	}
}

func TestNewCacheBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     models.CacheConfig
		wantErr bool
	}{
		{name: "memory", cfg: models.CacheConfig{Backend: models.CacheBackendMemory}},
		{name: "file", cfg: models.CacheConfig{Backend: models.CacheBackendFile, Dir: filepath.Join(dir, "files")}},
		{name: "sqlite", cfg: models.CacheConfig{Backend: models.CacheBackendSQLite, SQLitePath: filepath.Join(dir, "cache.db")}},
		{name: "redis", cfg: models.CacheConfig{Backend: models.CacheBackendRedis, RedisAddr: mr.Addr()}},
		{name: "unknown", cfg: models.CacheConfig{Backend: "etcd"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, closer, err := NewCacheBackend(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCacheBackend() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if closer != nil {
				defer closer()
			}

			ctx := context.Background()
			if err := b.Set(ctx, "linkmeta:k", "v"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if v, ok, err := b.Get(ctx, "linkmeta:k"); err != nil || !ok || v != "v" {
				t.Errorf("Get() = %q, %v, %v", v, ok, err)
			}
		})
	}
}

func TestNewPipeline(t *testing.T) {
	cfg := models.DefaultConfig()
	p, err := NewPipeline(cfg, newLogger(&bytes.Buffer{}, true, false), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	defer p.Close()

	if e := p.Registry.FindExtractor("https://github.com/golang/go"); e == nil || e.Type() != models.ContentTypeGitHub {
		t.Errorf("FindExtractor() = %v", e)
	}
	if s := p.Registry.CacheStats(context.Background()); s.Total != 0 {
		t.Errorf("fresh cache stats = %+v", s)
	}
}
