package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
)

type fakeExtractor struct {
	mu        sync.Mutex
	cached    []string
	inFlight  atomic.Int32
	maxFlight atomic.Int32
}

func (f *fakeExtractor) Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxFlight.Load()
		if n <= m || f.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	if strings.Contains(opts.URL, "down") {
		return nil, errors.New("connection refused")
	}
	return &models.ExtractorResult{
		Metadata: models.ContentMetadata{
			URL:         opts.URL,
			Title:       "Title of " + opts.URL,
			ContentType: models.ContentTypeArticle,
			Details:     &models.ArticleDetails{WordCount: 300},
		},
		Confidence: 0.75,
		Source:     models.SourceScraping,
	}, nil
}

func (f *fakeExtractor) ExtractWithCache(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	f.mu.Lock()
	f.cached = append(f.cached, opts.URL)
	f.mu.Unlock()
	return f.Extract(ctx, opts)
}

func urls(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "https://example.com/" + string(rune('a'+i))
	}
	return out
}

func TestRunKeepsOrderAndLimit(t *testing.T) {
	f := &fakeExtractor{}
	job := Job{URLs: urls(10), Workers: 3}

	results := Run(context.Background(), f, job)
	if len(results) != 10 {
		t.Fatalf("len = %d", len(results))
	}
	for i, r := range results {
		if r.URL != job.URLs[i] || r.Result == nil || r.Result.Metadata.URL != job.URLs[i] {
			t.Errorf("result %d = %+v", i, r)
		}
	}
	if m := f.maxFlight.Load(); m > 3 {
		t.Errorf("max in flight = %d, want <= 3", m)
	}
	if len(f.cached) != 0 {
		t.Errorf("cache used without UseCache: %v", f.cached)
	}
}

func TestRunCacheAndFailures(t *testing.T) {
	f := &fakeExtractor{}
	results := Run(context.Background(), f, Job{
		URLs:     []string{"https://a.example.com", "https://down.example.com", "https://b.example.com"},
		UseCache: true,
	})
	if len(f.cached) != 3 {
		t.Errorf("cached calls = %d, want 3", len(f.cached))
	}
	if Failures(results) != 1 || results[1].Err == nil {
		t.Errorf("failures = %d", Failures(results))
	}
	if results[2].Result == nil {
		t.Error("a failure stopped later URLs")
	}
}

func TestRecords(t *testing.T) {
	results := Run(context.Background(), &fakeExtractor{}, Job{
		URLs: []string{"https://a.example.com", "https://down.example.com"},
	})

	tests := []struct {
		name  string
		opts  OutputOptions
		check func(t *testing.T, r Record)
	}{
		{
			name: "envelope",
			check: func(t *testing.T, r Record) {
				if r.Result == nil || r.Legacy != nil {
					t.Errorf("record = %+v", r)
				}
			},
		},
		{
			name: "legacy",
			opts: OutputOptions{Legacy: true},
			check: func(t *testing.T, r Record) {
				if r.Result != nil || r.Legacy["word_count"] != 300 {
					t.Errorf("legacy = %v", r.Legacy)
				}
			},
		},
		{
			name: "legacy fields",
			opts: OutputOptions{Legacy: true, Fields: "title"},
			check: func(t *testing.T, r Record) {
				if len(r.Legacy) != 1 || r.Legacy["title"] == nil {
					t.Errorf("legacy = %v", r.Legacy)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Records(results, tt.opts)
			tt.check(t, records[0])
			if records[1].Error == "" || records[1].Result != nil || records[1].Legacy != nil {
				t.Errorf("failed record = %+v", records[1])
			}
		})
	}
}

func TestWrite(t *testing.T) {
	records := []Record{{URL: "https://example.com", Error: "boom"}}

	var buf bytes.Buffer
	if err := Write(&buf, records, "json"); err != nil {
		t.Fatal(err)
	}
	var decoded []Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || len(decoded) != 1 || decoded[0].Error != "boom" {
		t.Errorf("json = %q, %v", buf.String(), err)
	}

	buf.Reset()
	if err := Write(&buf, records, "yaml"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "error: boom") {
		t.Errorf("yaml = %q", buf.String())
	}

	if err := Write(&buf, records, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
