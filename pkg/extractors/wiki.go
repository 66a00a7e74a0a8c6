package extractors

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"github.com/dtnitsch/linkmeta/pkg/fetcher"
	"github.com/dtnitsch/linkmeta/pkg/parser"
)

const maxExcerptLen = 500

// Wikipedia reads MediaWiki article pages: the lead paragraph, the heading
// outline and the category links.
type Wikipedia struct {
	extractor.Base
}

func NewWikipedia(f fetcher.HTMLFetcher, log *slog.Logger) *Wikipedia {
	return &Wikipedia{Base: extractor.NewBase(models.ContentTypeWikipedia, f, log)}
}

func (e *Wikipedia) Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	doc, _, err := e.Document(ctx, opts)
	if err != nil {
		return e.Degrade(opts, e.fromURL(opts.URL), err)
	}

	fields := extractor.ExtractBasicFields(doc, opts.URL)
	meta := e.fromURL(opts.URL)
	details := meta.Details.(*models.ArticleDetails)

	meta.Title = extractor.FirstNonEmpty(
		parser.NormalizeText(doc.Find("#firstHeading").First().Text()),
		strings.TrimSuffix(fields.Title, " - Wikipedia"),
		meta.Title,
	)
	meta.Favicon = fields.Favicon
	meta.PublishedAt = fields.PublishedAt
	meta.Thumbnail = extractor.FirstNonEmpty(fields.Thumbnail, infoboxImage(doc, opts.URL))

	body := doc.Find("#mw-content-text .mw-parser-output").First()
	if body.Length() == 0 {
		body = doc.Find("#mw-content-text, #bodyContent, main").First()
	}
	details.Excerpt = leadParagraph(body)
	meta.Description = extractor.FirstNonEmpty(fields.Description, shorten(details.Excerpt, maxExcerptLen))

	content := body.Clone()
	content.Find("table, .navbox, .reflist, .mw-editsection, style, script, sup.reference").Remove()
	details.WordCount = parser.WordCount(content.Text())
	details.ReadingTime = ReadingTime(details.WordCount)
	details.Sections = parser.Outline(content)
	meta.Tags = categories(doc)

	return e.Result(meta, ConfidenceWikipedia, models.SourceScraping), nil
}

// leadParagraph is the first paragraph with text, skipping the empty
// placeholders MediaWiki emits before the infobox.
func leadParagraph(body *goquery.Selection) string {
	var lead string
	body.ChildrenFiltered("p").EachWithBreak(func(i int, p *goquery.Selection) bool {
		if p.HasClass("mw-empty-elt") {
			return true
		}
		p = p.Clone()
		p.Find("sup.reference, .mw-ref").Remove()
		lead = parser.NormalizeText(p.Text())
		return lead == ""
	})
	return lead
}

func infoboxImage(doc *goquery.Document, pageURL string) string {
	src := doc.Find(".infobox img").First().AttrOr("src", "")
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	return extractor.ResolveURL(pageURL, src)
}

// categories reads the visible category links at the foot of the page.
func categories(doc *goquery.Document) []string {
	var cats []string
	doc.Find("#mw-normal-catlinks ul li a").Each(func(i int, s *goquery.Selection) {
		if cat := strings.TrimSpace(s.Text()); cat != "" {
			cats = append(cats, cat)
		}
	})
	return cats
}

func (e *Wikipedia) fromURL(rawURL string) models.ContentMetadata {
	details := &models.ArticleDetails{}
	meta := models.ContentMetadata{URL: rawURL, SiteName: "Wikipedia", Details: details}
	if title, ok := detector.ExtractPlatformID(rawURL, models.ContentTypeWikipedia); ok {
		meta.Title = title
	}
	if u, err := url.Parse(rawURL); err == nil {
		// en.wikipedia.org, de.m.wikipedia.org
		if lang, _, ok := strings.Cut(u.Hostname(), "."); ok && lang != "www" && lang != "wikipedia" && lang != "m" {
			details.Language = strings.ToLower(lang)
		}
	}
	return meta
}
