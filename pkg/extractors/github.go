package extractors

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"github.com/dtnitsch/linkmeta/pkg/fetcher"
	"github.com/dtnitsch/linkmeta/pkg/parser"
)

// GitHub scrapes repository landing pages.
type GitHub struct {
	extractor.Base
}

func NewGitHub(f fetcher.HTMLFetcher, log *slog.Logger) *GitHub {
	return &GitHub{Base: extractor.NewBase(models.ContentTypeGitHub, f, log)}
}

func (e *GitHub) Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	doc, _, err := e.Document(ctx, opts)
	if err != nil {
		return e.Degrade(opts, e.fromURL(opts.URL), err)
	}

	fields := extractor.ExtractBasicFields(doc, opts.URL)
	meta := e.fromURL(opts.URL)
	details := meta.Details.(*models.RepositoryDetails)

	// "GitHub - owner/repo: description"
	title := strings.TrimPrefix(fields.Title, "GitHub - ")
	if name, desc, ok := strings.Cut(title, ": "); ok && strings.Contains(name, "/") {
		title = name
		meta.Description = desc
	}
	meta.Title = extractor.FirstNonEmpty(title, meta.Title)
	meta.Description = extractor.FirstNonEmpty(
		parser.NormalizeText(doc.Find(`.BorderGrid p.f4, [itemprop="about"]`).First().Text()),
		meta.Description,
		fields.Description,
	)
	meta.Thumbnail = fields.Thumbnail
	meta.Favicon = fields.Favicon
	meta.SiteName = "GitHub"

	details.Language = extractor.FirstNonEmpty(
		doc.Find(`[itemprop="programmingLanguage"]`).First().Text(),
		doc.Find(`.repository-content .BorderGrid-cell ul li a span.text-bold`).First().Text(),
	)
	details.Stars = repoStars(doc)

	doc.Find("a.topic-tag").Each(func(i int, s *goquery.Selection) {
		if topic := strings.TrimSpace(s.Text()); topic != "" {
			meta.Tags = append(meta.Tags, topic)
		}
	})
	if forks := doc.Find("#repo-network-counter").First(); forks.Length() > 0 {
		ensureEngagement(&meta).Shares = extractor.CountPtr(forks.AttrOr("title", forks.Text()))
	}

	return e.Result(meta, ConfidenceRepository, models.SourceScraping), nil
}

// repoStars prefers the exact count GitHub keeps in the counter's title.
func repoStars(doc *goquery.Document) *int64 {
	counter := doc.Find("#repo-stars-counter-star").First()
	if counter.Length() > 0 {
		if n := extractor.CountPtr(counter.AttrOr("title", "")); n != nil {
			return n
		}
		return extractor.CountPtr(counter.Text())
	}
	return extractor.CountPtr(doc.Find(`a[href$="/stargazers"] strong`).First().Text())
}

func (e *GitHub) fromURL(rawURL string) models.ContentMetadata {
	details := &models.RepositoryDetails{}
	meta := models.ContentMetadata{URL: rawURL, SiteName: "GitHub", Details: details}
	if id, ok := detector.ExtractPlatformID(rawURL, models.ContentTypeGitHub); ok {
		details.Owner, details.Repo, _ = strings.Cut(id, "/")
		meta.Title = id
		meta.Author = &models.Author{Username: details.Owner, ProfileURL: "https://github.com/" + details.Owner}
	}
	return meta
}
