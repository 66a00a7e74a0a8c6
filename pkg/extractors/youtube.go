package extractors

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"github.com/dtnitsch/linkmeta/pkg/fetcher"
)

var (
	ytViewCountRe = regexp.MustCompile(`"viewCount"\s*:\s*"(\d+)"`)
	ytChannelIDRe = regexp.MustCompile(`"channelId"\s*:\s*"(UC[A-Za-z0-9_-]{22})"`)
	ytLengthRe    = regexp.MustCompile(`"lengthSeconds"\s*:\s*"(\d+)"`)
	ytCategoryRe  = regexp.MustCompile(`"category"\s*:\s*"([^"]+)"`)
)

// YouTube reads the VideoObject a watch page embeds and falls back to the
// microdata and player configuration.
type YouTube struct {
	extractor.Base
}

func NewYouTube(f fetcher.HTMLFetcher, log *slog.Logger) *YouTube {
	return &YouTube{Base: extractor.NewBase(models.ContentTypeYouTube, f, log)}
}

func (e *YouTube) Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	doc, html, err := e.Document(ctx, opts)
	if err != nil {
		return e.Degrade(opts, e.fromURL(opts.URL), err)
	}
	if html == "" {
		html, _ = doc.Html()
	}

	fields := extractor.ExtractBasicFields(doc, opts.URL)
	meta := e.fromURL(opts.URL)
	meta.Title = extractor.FirstNonEmpty(strings.TrimSuffix(fields.Title, " - YouTube"), meta.Title)
	meta.Description = fields.Description
	meta.Thumbnail = extractor.FirstNonEmpty(fields.Thumbnail, meta.Thumbnail)
	meta.Favicon = fields.Favicon
	meta.SiteName = "YouTube"
	meta.PublishedAt = fields.PublishedAt
	meta.Keywords = splitKeywords(extractor.Meta(doc, "keywords"))

	details := meta.Details.(*models.VideoDetails)
	if video := extractor.FindLD(extractor.JSONLD(doc), "VideoObject"); video != nil {
		readVideoObject(video, &meta, details)
	}
	readMicrodata(doc, &meta, details)

	if details.ChannelID == "" {
		if m := ytChannelIDRe.FindStringSubmatch(html); m != nil {
			details.ChannelID = m[1]
		}
	}
	if details.Duration == 0 {
		if m := ytLengthRe.FindStringSubmatch(html); m != nil {
			details.Duration = atoi(m[1])
		}
	}
	if details.Category == "" {
		if m := ytCategoryRe.FindStringSubmatch(html); m != nil {
			details.Category = m[1]
		}
	}
	engagement := ensureEngagement(&meta)
	if engagement.Views == nil {
		if m := ytViewCountRe.FindStringSubmatch(html); m != nil {
			engagement.Views = extractor.CountPtr(m[1])
		}
	}
	if details.ChannelName != "" {
		author := ensureAuthor(&meta)
		author.Name = details.ChannelName
		if author.ProfileURL == "" && details.ChannelID != "" {
			author.ProfileURL = "https://www.youtube.com/channel/" + details.ChannelID
		}
	}
	if details.Duration > 0 {
		ensureMedia(&meta).Videos = []models.MediaItem{{
			URL:      opts.URL,
			Type:     "video",
			Duration: details.Duration,
		}}
	}

	return e.Result(meta, ConfidenceVideoScrape, models.SourceScraping), nil
}

func readVideoObject(video map[string]any, meta *models.ContentMetadata, details *models.VideoDetails) {
	meta.Title = extractor.FirstNonEmpty(extractor.LDString(video, "name"), meta.Title)
	meta.Description = extractor.FirstNonEmpty(extractor.LDString(video, "description"), meta.Description)
	meta.Thumbnail = extractor.FirstNonEmpty(extractor.LDString(video, "thumbnailUrl"), meta.Thumbnail)
	if published := extractor.ParseDate(extractor.FirstNonEmpty(
		extractor.LDString(video, "uploadDate"),
		extractor.LDString(video, "datePublished"),
	)); published != nil {
		meta.PublishedAt = published
	}
	if secs, ok := extractor.ParseISODuration(extractor.LDString(video, "duration")); ok {
		details.Duration = secs
	}
	details.ChannelName = extractor.FirstNonEmpty(extractor.LDString(video, "author"), details.ChannelName)
	details.Category = extractor.FirstNonEmpty(extractor.LDString(video, "genre"), details.Category)
	if url := extractor.LDString(video, "author", "url"); url != "" {
		ensureAuthor(meta).ProfileURL = url
	}

	// interactionStatistic lists one counter per interaction type
	stats, _ := video["interactionStatistic"].([]any)
	if single, ok := video["interactionStatistic"].(map[string]any); ok {
		stats = append(stats, single)
	}
	for _, raw := range stats {
		stat, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		count := extractor.CountPtr(extractor.LDString(stat, "userInteractionCount"))
		kind := strings.ToLower(extractor.LDString(stat, "interactionType"))
		if kind == "" {
			kind = strings.ToLower(extractor.LDString(stat, "interactionType", "@type"))
		}
		switch {
		case strings.Contains(kind, "watch"):
			ensureEngagement(meta).Views = count
		case strings.Contains(kind, "like"):
			ensureEngagement(meta).Likes = count
		case strings.Contains(kind, "comment"):
			ensureEngagement(meta).Comments = count
		}
	}
}

func readMicrodata(doc *goquery.Document, meta *models.ContentMetadata, details *models.VideoDetails) {
	if details.ChannelID == "" {
		details.ChannelID = extractor.Meta(doc, "channelId")
	}
	if details.Duration == 0 {
		if secs, ok := extractor.ParseISODuration(extractor.Meta(doc, "duration")); ok {
			details.Duration = secs
		}
	}
	if details.Category == "" {
		details.Category = extractor.Meta(doc, "genre")
	}
	if details.ChannelName == "" {
		details.ChannelName = doc.Find(`[itemprop="author"] link[itemprop="name"]`).AttrOr("content", "")
	}
	if meta.PublishedAt == nil {
		meta.PublishedAt = extractor.ParseDate(extractor.Meta(doc, "uploadDate", "datePublished"))
	}
	if views := extractor.Meta(doc, "interactionCount"); views != "" {
		ensureEngagement(meta).Views = extractor.CountPtr(views)
	}
}

func splitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func (e *YouTube) fromURL(rawURL string) models.ContentMetadata {
	details := &models.VideoDetails{IsShort: strings.Contains(strings.ToLower(rawURL), "/shorts/")}
	meta := models.ContentMetadata{URL: rawURL, SiteName: "YouTube", Details: details}
	if id, ok := detector.ExtractPlatformID(rawURL, models.ContentTypeYouTube); ok {
		details.VideoID = id
		meta.Thumbnail = "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"
	}
	return meta
}
