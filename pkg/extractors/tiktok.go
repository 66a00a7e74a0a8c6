package extractors

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"github.com/dtnitsch/linkmeta/pkg/fetcher"
)

var (
	tiktokUserRe = regexp.MustCompile(`(?i)tiktok\.com/@([A-Za-z0-9_.]+)`)

	// counters embedded in the page's hydration state
	tiktokStatRes = map[string]*regexp.Regexp{
		"likes":    regexp.MustCompile(`"diggCount"\s*:\s*"?(\d+)`),
		"shares":   regexp.MustCompile(`"shareCount"\s*:\s*"?(\d+)`),
		"comments": regexp.MustCompile(`"commentCount"\s*:\s*"?(\d+)`),
		"views":    regexp.MustCompile(`"playCount"\s*:\s*"?(\d+)`),
		"saves":    regexp.MustCompile(`"collectCount"\s*:\s*"?(\d+)`),
	}

	tiktokDurationRe = regexp.MustCompile(`"duration"\s*:\s*(\d+)`)
)

type TikTok struct {
	extractor.Base
}

func NewTikTok(f fetcher.HTMLFetcher, log *slog.Logger) *TikTok {
	return &TikTok{Base: extractor.NewBase(models.ContentTypeTikTok, f, log)}
}

func (e *TikTok) Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	doc, html, err := e.Document(ctx, opts)
	if err != nil {
		return e.Degrade(opts, e.fromURL(opts.URL), err)
	}
	if html == "" {
		html, _ = doc.Html()
	}

	fields := extractor.ExtractBasicFields(doc, opts.URL)
	og := extractor.OpenGraph(doc)
	meta := e.fromURL(opts.URL)
	meta.Title = extractor.FirstNonEmpty(fields.Title, meta.Title)
	meta.Description = fields.Description
	meta.Thumbnail = fields.Thumbnail
	meta.Favicon = fields.Favicon
	meta.PublishedAt = fields.PublishedAt
	if fields.Author != "" {
		ensureAuthor(&meta).Name = fields.Author
	}

	engagement := ensureEngagement(&meta)
	engagement.Likes = tiktokStat(html, "likes")
	engagement.Shares = tiktokStat(html, "shares")
	engagement.Comments = tiktokStat(html, "comments")
	engagement.Views = tiktokStat(html, "views")
	engagement.Saves = tiktokStat(html, "saves")

	details := meta.Details.(*models.SocialPostDetails)
	details.Hashtags = hashtags(fields.Description)
	details.VideoVariants = RankVariants(ogVideoVariants(og))
	if item, ok := videoItem(details.VideoVariants, og); ok {
		if m := tiktokDurationRe.FindStringSubmatch(html); m != nil {
			item.Duration = atoi(m[1])
		}
		ensureMedia(&meta).Videos = []models.MediaItem{item}
	}

	return e.Result(meta, ConfidenceSocialScrape, models.SourceScraping), nil
}

func tiktokStat(html, name string) *int64 {
	m := tiktokStatRes[name].FindStringSubmatch(html)
	if m == nil {
		return nil
	}
	return extractor.CountPtr(m[1])
}

func (e *TikTok) fromURL(rawURL string) models.ContentMetadata {
	details := &models.SocialPostDetails{PostType: models.PostTypeVideo}
	if id, ok := detector.ExtractPlatformID(rawURL, models.ContentTypeTikTok); ok {
		details.PostID = id
	}
	meta := models.ContentMetadata{URL: rawURL, SiteName: "TikTok", Details: details}
	if m := tiktokUserRe.FindStringSubmatch(rawURL); m != nil {
		username := strings.TrimSuffix(m[1], ".")
		meta.Author = &models.Author{Username: username, ProfileURL: "https://www.tiktok.com/@" + username}
		meta.Title = "TikTok by @" + username
	}
	return meta
}
