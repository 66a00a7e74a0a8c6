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
	subredditRe      = regexp.MustCompile(`(?i)reddit\.com/r/([A-Za-z0-9_]+)`)
	redditTitleSubRe = regexp.MustCompile(`\s*:\s*r/[A-Za-z0-9_]+\s*$`)
	redditTitlePreRe = regexp.MustCompile(`^r/[A-Za-z0-9_]+\s+-\s+`)
)

// Reddit scrapes posts. Current pages describe the post in a
// shreddit-post element whose attributes carry the counters.
type Reddit struct {
	extractor.Base
}

func NewReddit(f fetcher.HTMLFetcher, log *slog.Logger) *Reddit {
	return &Reddit{Base: extractor.NewBase(models.ContentTypeReddit, f, log)}
}

func (e *Reddit) Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	doc, _, err := e.Document(ctx, opts)
	if err != nil {
		return e.Degrade(opts, e.fromURL(opts.URL), err)
	}

	fields := extractor.ExtractBasicFields(doc, opts.URL)
	og := extractor.OpenGraph(doc)
	meta := e.fromURL(opts.URL)
	meta.Title = extractor.FirstNonEmpty(cleanRedditTitle(fields.Title), meta.Title)
	meta.Description = fields.Description
	meta.Thumbnail = fields.Thumbnail
	meta.Favicon = fields.Favicon
	meta.SiteName = "Reddit"
	meta.PublishedAt = fields.PublishedAt

	details := meta.Details.(*models.SocialPostDetails)
	post := doc.Find("shreddit-post").First()
	if post.Length() > 0 {
		e.readPost(post, &meta, details)
	}
	if details.PostType == "" {
		details.PostType = redditPostType(og)
	}

	if videos := RankVariants(ogVideoVariants(og)); len(videos) > 0 {
		details.VideoVariants = videos
		if item, ok := videoItem(videos, og); ok {
			ensureMedia(&meta).Videos = append(ensureMedia(&meta).Videos, item)
		}
	}
	if details.PostType == models.PostTypeImage {
		ensureMedia(&meta).Images = ogImages(og, opts.URL)
	}

	return e.Result(meta, ConfidenceSocialScrape, models.SourceScraping), nil
}

func (e *Reddit) readPost(post *goquery.Selection, meta *models.ContentMetadata, details *models.SocialPostDetails) {
	if title := strings.TrimSpace(post.AttrOr("post-title", "")); title != "" {
		meta.Title = title
	}
	if author := strings.TrimSpace(post.AttrOr("author", "")); author != "" && author != "[deleted]" {
		meta.Author = &models.Author{
			Username:   author,
			ProfileURL: "https://www.reddit.com/user/" + author,
		}
	}
	if sub := strings.TrimPrefix(post.AttrOr("subreddit-prefixed-name", ""), "r/"); sub != "" {
		details.Subreddit = sub
	}
	if created := extractor.ParseDate(post.AttrOr("created-timestamp", "")); created != nil {
		meta.PublishedAt = created
	}
	switch post.AttrOr("post-type", "") {
	case "image", "gallery":
		details.PostType = models.PostTypeImage
	case "video":
		details.PostType = models.PostTypeVideo
	case "text", "self":
		details.PostType = models.PostTypeText
	case "link":
		details.PostType = models.PostTypePost
	}

	engagement := ensureEngagement(meta)
	engagement.Likes = extractor.CountPtr(post.AttrOr("score", ""))
	engagement.Comments = extractor.CountPtr(post.AttrOr("comment-count", ""))
}

func redditPostType(og *extractor.TagTree) string {
	switch {
	case og.Get("video") != "" || strings.HasPrefix(og.Get("type"), "video"):
		return models.PostTypeVideo
	case strings.Contains(og.Get("image"), "i.redd.it"):
		return models.PostTypeImage
	}
	return models.PostTypeText
}

// cleanRedditTitle strips the subreddit Reddit adds to page titles.
func cleanRedditTitle(title string) string {
	title = redditTitleSubRe.ReplaceAllString(title, "")
	return redditTitlePreRe.ReplaceAllString(title, "")
}

func (e *Reddit) fromURL(rawURL string) models.ContentMetadata {
	details := &models.SocialPostDetails{}
	if id, ok := detector.ExtractPlatformID(rawURL, models.ContentTypeReddit); ok {
		details.PostID = id
	}
	if m := subredditRe.FindStringSubmatch(rawURL); m != nil {
		details.Subreddit = m[1]
	}
	meta := models.ContentMetadata{URL: rawURL, SiteName: "Reddit", Details: details}
	if details.Subreddit != "" {
		meta.Title = "Post in r/" + details.Subreddit
	}
	return meta
}
