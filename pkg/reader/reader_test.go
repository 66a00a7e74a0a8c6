package reader

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type staticFetcher struct {
	html  string
	calls int
}

func (f *staticFetcher) Fetch(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (string, error) {
	f.calls++
	return f.html, nil
}

const page = `<html><head><title>Deep Sea Creatures | Ocean Blog</title>
<meta name="author" content="Sam Diver"></head>
<body><article><h1>Deep Sea Creatures</h1>
<p>The deep sea is home to some of the strangest animals on the planet, adapted to crushing pressure and total darkness.
Anglerfish lure their prey with glowing appendages while giant squid hunt in the cold water far below the surface.</p>
<p>Scientists continue to discover new species every year as submersibles reach deeper trenches and record behaviour never seen before.
Each expedition returns with samples that reshape what we know about life in extreme environments.</p>
</article></body></html>`

func TestExtractContent(t *testing.T) {
	f := &staticFetcher{html: page}
	c := NewClient(f, true, time.Second)

	if !c.IsAvailable() {
		t.Fatal("client should be available")
	}
	content, err := c.ExtractContent(context.Background(), "https://www.ocean.example/creatures")
	if err != nil {
		t.Fatalf("ExtractContent() error = %v", err)
	}
	if f.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", f.calls)
	}
	if !strings.Contains(content.TextContent, "Anglerfish") {
		t.Errorf("TextContent = %q", content.TextContent)
	}
	if content.Domain != "ocean.example" {
		t.Errorf("Domain = %q", content.Domain)
	}
	if content.Title == "" {
		t.Error("Title is empty")
	}
}

func TestExtractHTML(t *testing.T) {
	f := &staticFetcher{}
	c := NewClient(f, true, time.Second)

	content, err := c.ExtractHTML(context.Background(), "https://ocean.example/creatures", page)
	if err != nil {
		t.Fatalf("ExtractHTML() error = %v", err)
	}
	if f.calls != 0 {
		t.Errorf("fetch calls = %d, want 0", f.calls)
	}
	if !strings.Contains(content.TextContent, "Anglerfish") {
		t.Errorf("TextContent = %q", content.TextContent)
	}

	if _, err := NewClient(f, false, time.Second).ExtractHTML(context.Background(), "https://example.com", page); !errors.Is(err, ErrDisabled) {
		t.Errorf("error = %v, want ErrDisabled", err)
	}
}

func TestDisabled(t *testing.T) {
	c := NewClient(&staticFetcher{}, false, time.Second)
	if c.IsAvailable() {
		t.Error("disabled client reports available")
	}
	if _, err := c.ExtractContent(context.Background(), "https://example.com"); !errors.Is(err, ErrDisabled) {
		t.Errorf("error = %v, want ErrDisabled", err)
	}
}
