package extractors

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/analytics"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"github.com/dtnitsch/linkmeta/pkg/fetcher"
	"github.com/dtnitsch/linkmeta/pkg/parser"
	"github.com/dtnitsch/linkmeta/pkg/reader"
)

const (
	ConfidenceArticle     = 0.6
	ConfidenceArticleBody = 0.75

	wordsPerMinute  = 200
	minArticleWords = 150
	maxKeywords     = 10
)

var errNoContent = errors.New("reader returned no content")

// Article is the fallback for every http(s) page without a dedicated
// extractor. It prefers the reader service unless the caller supplied the
// page and otherwise runs readability over the page itself.
type Article struct {
	extractor.Base
	reader ReaderAPI
}

func NewArticle(f fetcher.HTMLFetcher, r ReaderAPI, log *slog.Logger) *Article {
	return &Article{Base: extractor.NewBase(models.ContentTypeArticle, f, log), reader: r}
}

func (e *Article) Priority() int {
	return extractor.FallbackPriority
}

func (e *Article) CanHandle(rawURL string) bool {
	return detector.IsHTTPURL(rawURL)
}

// ReadingTime is whole minutes at 200 words per minute, at least one for
// any text.
func ReadingTime(words int) int {
	if words <= 0 {
		return 0
	}
	return max(1, int(math.Ceil(float64(words)/wordsPerMinute)))
}

func (e *Article) Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	res, err := extractor.FirstSuccess(ctx, e.Log,
		extractor.Strategy{Name: "reader", Run: e.fromReader(opts)},
		extractor.Strategy{Name: "scrape", Run: e.scrape(opts)},
	)
	if err != nil {
		meta := models.ContentMetadata{URL: opts.URL, Details: &models.ArticleDetails{}}
		res, err := e.Degrade(opts, meta, err)
		if res != nil {
			e.CleanMetadata(&res.Metadata, resultType(opts.URL, 0))
		}
		return res, err
	}
	return res, nil
}

// fromReader is skipped when the caller supplied the page. HTML the
// registry prefetched is handed to readers that can take it.
func (e *Article) fromReader(opts extractor.Options) func(context.Context) (*models.ExtractorResult, error) {
	if opts.Supplied() || e.reader == nil || !e.reader.IsAvailable() {
		return nil
	}
	return func(ctx context.Context) (*models.ExtractorResult, error) {
		var content *reader.Content
		var err error
		if hr, ok := e.reader.(HTMLReader); ok && opts.HTML != "" {
			content, err = hr.ExtractHTML(ctx, opts.URL, opts.HTML)
		} else {
			content, err = e.reader.ExtractContent(ctx, opts.URL)
		}
		if err != nil {
			return nil, err
		}
		if content == nil {
			return nil, errNoContent
		}
		meta := models.ContentMetadata{
			URL:         opts.URL,
			Title:       content.Title,
			Description: content.Description,
			Thumbnail:   content.ThumbnailURL,
			Favicon:     content.Favicon,
			SiteName:    extractor.FirstNonEmpty(content.SiteName, content.Domain),
			PublishedAt: content.PublishedAt,
		}
		if content.Author != "" {
			meta.Author = &models.Author{Name: content.Author}
		}
		words := e.enrich(&meta, content, nil)
		e.CleanMetadata(&meta, resultType(opts.URL, words))
		return &models.ExtractorResult{Metadata: meta, Confidence: extractor.ConfidenceAPI, Source: models.SourceAPI}, nil
	}
}

func (e *Article) scrape(opts extractor.Options) func(context.Context) (*models.ExtractorResult, error) {
	return func(ctx context.Context) (*models.ExtractorResult, error) {
		doc, html, err := e.Document(ctx, opts)
		if err != nil {
			return nil, err
		}
		if html == "" {
			html, _ = doc.Html()
		}

		fields := extractor.ExtractBasicFields(doc, opts.URL)
		meta := fromBasic(opts.URL, fields)
		meta.Tags = articleTags(doc)
		meta.Keywords = splitKeywords(extractor.Meta(doc, "keywords", "news_keywords"))

		content, err := reader.FromHTML(opts.URL, html)
		if err != nil {
			e.Log.Debug("readability failed", "url", opts.URL, "error", err)
			content = nil
		}
		if content != nil {
			meta.Title = extractor.FirstNonEmpty(meta.Title, content.Title)
			meta.Description = extractor.FirstNonEmpty(meta.Description, content.Description)
			meta.Thumbnail = extractor.FirstNonEmpty(meta.Thumbnail, content.ThumbnailURL)
			if meta.PublishedAt == nil {
				meta.PublishedAt = content.PublishedAt
			}
			if meta.Author == nil && content.Author != "" {
				meta.Author = &models.Author{Name: content.Author}
			}
		}

		words := e.enrich(&meta, content, doc.Find("body"))
		confidence := ConfidenceArticle
		if content != nil && content.TextContent != "" {
			confidence = ConfidenceArticleBody
		}
		e.CleanMetadata(&meta, resultType(opts.URL, words))
		return &models.ExtractorResult{Metadata: meta, Confidence: confidence, Source: models.SourceScraping}, nil
	}
}

// enrich computes the article details from the readable content, or from
// body when readability found nothing. It returns the word count.
func (e *Article) enrich(meta *models.ContentMetadata, content *reader.Content, body *goquery.Selection) int {
	details := &models.ArticleDetails{}
	var text string
	var outline *goquery.Selection

	if content != nil && content.TextContent != "" {
		text = content.TextContent
		details.Excerpt = content.Description
		if doc, err := parser.Parse(content.Content); err == nil {
			outline = doc.Selection
		}
	} else if body != nil {
		body = body.Clone()
		body.Find("script, style, noscript, nav, header, footer").Remove()
		text = parser.NormalizeText(body.Text())
		outline = body
	}

	details.WordCount = parser.WordCount(text)
	details.ReadingTime = ReadingTime(details.WordCount)
	if outline != nil {
		details.Sections = parser.Outline(outline)
	}
	if code, confidence, ok := analytics.DetectLanguage(text); ok {
		details.Language = code
		details.LanguageConfidence = math.Round(confidence*100) / 100
	}
	if len(meta.Keywords) == 0 {
		meta.Keywords = analytics.Keywords(text, maxKeywords)
	}
	meta.Details = details
	return details.WordCount
}

// articleTags reads article:tag and rel=tag links.
func articleTags(doc *goquery.Document) []string {
	var tags []string
	doc.Find(`meta[property="article:tag"]`).Each(func(i int, s *goquery.Selection) {
		tags = append(tags, s.AttrOr("content", ""))
	})
	doc.Find(`a[rel="tag"]`).Each(func(i int, s *goquery.Selection) {
		tags = append(tags, strings.TrimSpace(s.Text()))
	})
	return tags
}

// resultType keeps the classifier's verdict for page types that share the
// article shape. A plain bookmark is promoted to article once it has a
// real body.
func resultType(rawURL string, words int) models.ContentType {
	t := detector.Classify(rawURL).Type
	if _, ok := models.NewDetails(t).(*models.ArticleDetails); !ok {
		return models.ContentTypeArticle
	}
	switch t {
	case models.ContentTypeBookmark, models.ContentTypeUnknown:
		if words >= minArticleWords {
			return models.ContentTypeArticle
		}
		return models.ContentTypeBookmark
	}
	return t
}
