package extractors

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"github.com/dtnitsch/linkmeta/pkg/fetcher"
)

var (
	instagramStoryRe = regexp.MustCompile(`(?i)/stories/([A-Za-z0-9_.]+)/`)
	instagramPathRe  = regexp.MustCompile(`(?i)instagram\.com/(?:([A-Za-z0-9_.]+)/)?(p|reel|reels|tv|stories)/`)
)

// instagramSummaryRe matches "1,234 likes, 56 comments - alice on March 1, 2024: caption".
var instagramSummaryRe = regexp.MustCompile(`(?s)^\s*([\d.,]+[KMB]?) likes?, ([\d.,]+[KMB]?) comments? - ([A-Za-z0-9_.]+) on ([^:]+?):\s*(.*)$`)

// Instagram scrapes posts, reels and stories.
type Instagram struct {
	extractor.Base
}

func NewInstagram(f fetcher.HTMLFetcher, log *slog.Logger) *Instagram {
	return &Instagram{Base: extractor.NewBase(models.ContentTypeInstagram, f, log)}
}

func (e *Instagram) Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	doc, _, err := e.Document(ctx, opts)
	if err != nil {
		return e.Degrade(opts, e.fromURL(opts.URL), err)
	}

	fields := extractor.ExtractBasicFields(doc, opts.URL)
	og := extractor.OpenGraph(doc)
	meta := e.fromURL(opts.URL)
	meta.Title = extractor.FirstNonEmpty(fields.Title, meta.Title)
	meta.Description = fields.Description
	meta.Thumbnail = fields.Thumbnail
	meta.Favicon = fields.Favicon
	meta.PublishedAt = fields.PublishedAt

	details := meta.Details.(*models.ImagePostDetails)
	for _, candidate := range []string{fields.Title, fields.Description} {
		summary, ok := parseInstagramSummary(candidate)
		if !ok {
			continue
		}
		engagement := ensureEngagement(&meta)
		engagement.Likes = summary.likes
		engagement.Comments = summary.comments
		ensureAuthor(&meta).Username = summary.username
		meta.Author.ProfileURL = "https://www.instagram.com/" + summary.username + "/"
		if summary.date != nil {
			meta.PublishedAt = summary.date
		}
		details.Caption = summary.caption
		if summary.caption != "" {
			meta.Title = shorten(summary.caption, maxPostTitle)
		}
		break
	}
	meta.Tags = hashtags(details.Caption)

	images := ogImages(og, opts.URL)
	if len(images) > 1 {
		details.Carousel = images
	}
	media := ensureMedia(&meta)
	media.Images = images
	if item, ok := videoItem(RankVariants(ogVideoVariants(og)), og); ok {
		media.Videos = []models.MediaItem{item}
		if details.PostType == models.PostTypePost {
			details.PostType = models.PostTypeVideo
		}
	}

	return e.Result(meta, ConfidenceSocialScrape, models.SourceScraping), nil
}

type instagramSummary struct {
	likes, comments *int64
	username        string
	date            *time.Time
	caption         string
}

// parseInstagramSummary reads the engagement line Instagram puts in its
// titles and descriptions.
func parseInstagramSummary(s string) (instagramSummary, bool) {
	m := instagramSummaryRe.FindStringSubmatch(s)
	if m == nil {
		return instagramSummary{}, false
	}
	caption := strings.TrimSpace(m[5])
	caption = strings.Trim(caption, "\"“”")
	return instagramSummary{
		likes:    extractor.CountPtr(m[1]),
		comments: extractor.CountPtr(m[2]),
		username: m[3],
		date:     extractor.ParseDate(m[4]),
		caption:  strings.TrimSpace(caption),
	}, true
}

// instagramPostType maps the URL path segment to a post type.
func instagramPostType(segment string) string {
	switch strings.ToLower(segment) {
	case "reel", "reels", "tv":
		return models.PostTypeReel
	case "stories":
		return models.PostTypeStory
	}
	return models.PostTypePost
}

func (e *Instagram) fromURL(rawURL string) models.ContentMetadata {
	details := &models.ImagePostDetails{PostType: models.PostTypePost}
	if id, ok := detector.ExtractPlatformID(rawURL, models.ContentTypeInstagram); ok {
		details.ShortCode = id
	}
	meta := models.ContentMetadata{URL: rawURL, SiteName: "Instagram", Details: details}
	if m := instagramPathRe.FindStringSubmatch(rawURL); m != nil {
		details.PostType = instagramPostType(m[2])
		if m[1] != "" {
			meta.Author = &models.Author{Username: m[1], ProfileURL: "https://www.instagram.com/" + m[1] + "/"}
		}
	}
	if m := instagramStoryRe.FindStringSubmatch(rawURL); m != nil {
		meta.Author = &models.Author{Username: m[1], ProfileURL: "https://www.instagram.com/" + m[1] + "/"}
	}
	return meta
}
