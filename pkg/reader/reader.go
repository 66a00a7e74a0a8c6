// Package reader extracts the readable body of a page with go-readability.
package reader

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/dtnitsch/linkmeta/pkg/fetcher"
	"github.com/dtnitsch/linkmeta/pkg/parser"
)

var ErrDisabled = errors.New("reader disabled")

// Content is what the reader found on a page.
type Content struct {
	Title        string
	Description  string
	Content      string // cleaned HTML of the main article
	TextContent  string
	ThumbnailURL string
	Favicon      string
	Author       string
	SiteName     string
	Domain       string
	PublishedAt  *time.Time
}

type Client struct {
	fetcher fetcher.HTMLFetcher
	enabled bool
	timeout time.Duration
}

func NewClient(f fetcher.HTMLFetcher, enabled bool, timeout time.Duration) *Client {
	return &Client{fetcher: f, enabled: enabled, timeout: timeout}
}

func (c *Client) IsAvailable() bool {
	return c != nil && c.enabled && c.fetcher != nil
}

// ExtractContent fetches rawURL and runs readability over it.
func (c *Client) ExtractContent(ctx context.Context, rawURL string) (*Content, error) {
	if !c.IsAvailable() {
		return nil, ErrDisabled
	}
	html, err := c.fetcher.Fetch(ctx, rawURL, nil, c.timeout)
	if err != nil {
		return nil, err
	}
	return FromHTML(rawURL, html)
}

// ExtractHTML runs readability over html fetched by someone else.
func (c *Client) ExtractHTML(ctx context.Context, rawURL, html string) (*Content, error) {
	if !c.IsAvailable() {
		return nil, ErrDisabled
	}
	return FromHTML(rawURL, html)
}

// FromHTML runs readability over already fetched HTML.
func FromHTML(rawURL, html string) (*Content, error) {
	article, err := parser.Readable(rawURL, html)
	if err != nil {
		return nil, err
	}

	content := &Content{
		Title:        parser.NormalizeText(article.Title),
		Description:  parser.NormalizeText(article.Excerpt),
		Content:      article.Content,
		TextContent:  strings.TrimSpace(article.TextContent),
		ThumbnailURL: article.Image,
		Favicon:      article.Favicon,
		Author:       parser.NormalizeText(article.Byline),
		SiteName:     article.SiteName,
		PublishedAt:  article.PublishedTime,
	}
	if u, err := url.Parse(rawURL); err == nil {
		content.Domain = strings.TrimPrefix(u.Hostname(), "www.")
	}
	return content, nil
}
