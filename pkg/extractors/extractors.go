// Package extractors holds one extractor per content family. Each prefers an
// authoritative API when one is configured and falls back to scraping.
package extractors

import (
	"context"
	"log/slog"

	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"github.com/dtnitsch/linkmeta/pkg/fetcher"
	"github.com/dtnitsch/linkmeta/pkg/reader"
	"github.com/dtnitsch/linkmeta/pkg/socialapi"
)

// Scrape confidences per family.
const (
	ConfidenceSocialScrape = 0.7
	ConfidenceVideoScrape  = 0.8
	ConfidenceAcademic     = 0.85
	ConfidenceWikipedia    = 0.8
	ConfidenceRepository   = 0.75
	ConfidenceFile         = 0.6
)

// SocialAPI is an optional authoritative source for social posts.
type SocialAPI interface {
	IsAvailable() bool
	FetchPost(ctx context.Context, url string) (*socialapi.Post, error)
}

// ReaderAPI is an optional content extraction service for articles.
type ReaderAPI interface {
	IsAvailable() bool
	ExtractContent(ctx context.Context, url string) (*reader.Content, error)
}

// HTMLReader is a ReaderAPI that can work on a page already fetched.
type HTMLReader interface {
	ExtractHTML(ctx context.Context, url, html string) (*reader.Content, error)
}

// Deps are the capabilities extractors are built from. Social and Reader
// may be nil.
type Deps struct {
	Fetcher fetcher.HTMLFetcher
	Social  SocialAPI
	Reader  ReaderAPI
	Log     *slog.Logger
}

// All returns every extractor, the article fallback included.
func All(d Deps) []extractor.Extractor {
	return []extractor.Extractor{
		NewTwitter(d.Fetcher, d.Social, d.Log),
		NewReddit(d.Fetcher, d.Log),
		NewTikTok(d.Fetcher, d.Log),
		NewInstagram(d.Fetcher, d.Log),
		NewYouTube(d.Fetcher, d.Log),
		NewGitHub(d.Fetcher, d.Log),
		NewProduct(d.Fetcher, d.Log),
		NewWikipedia(d.Fetcher, d.Log),
		NewAcademic(d.Fetcher, d.Log),
		NewFile(d.Log),
		NewArticle(d.Fetcher, d.Reader, d.Log),
	}
}

// fromBasic seeds metadata with the fields every page offers.
func fromBasic(rawURL string, f extractor.BasicFields) models.ContentMetadata {
	meta := models.ContentMetadata{
		URL:         rawURL,
		Title:       f.Title,
		Description: f.Description,
		Thumbnail:   f.Thumbnail,
		Favicon:     f.Favicon,
		SiteName:    f.SiteName,
		PublishedAt: f.PublishedAt,
	}
	if f.Author != "" {
		meta.Author = &models.Author{Name: f.Author}
	}
	if f.Thumbnail != "" {
		meta.Media = &models.Media{Images: []models.MediaItem{{URL: f.Thumbnail, Type: "image"}}}
	}
	return meta
}

func ensureAuthor(meta *models.ContentMetadata) *models.Author {
	if meta.Author == nil {
		meta.Author = &models.Author{}
	}
	return meta.Author
}

func ensureEngagement(meta *models.ContentMetadata) *models.Engagement {
	if meta.Engagement == nil {
		meta.Engagement = &models.Engagement{}
	}
	return meta.Engagement
}

func ensureMedia(meta *models.ContentMetadata) *models.Media {
	if meta.Media == nil {
		meta.Media = &models.Media{}
	}
	return meta.Media
}
