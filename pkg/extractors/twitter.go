package extractors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"github.com/dtnitsch/linkmeta/pkg/fetcher"
	"github.com/dtnitsch/linkmeta/pkg/socialapi"
)

const maxPostTitle = 100

var errNoPost = errors.New("social api returned no post")

var (
	tweetUserRe  = regexp.MustCompile(`(?i)^https?://(?:www\.|mobile\.)?(?:twitter|x)\.com/([A-Za-z0-9_]{1,15})/status`)
	tweetTitleRe = regexp.MustCompile(`^(.+?) on (?:X|Twitter)\s*:`)
)

// Twitter reads posts from the social API and falls back to the page's
// cards.
type Twitter struct {
	extractor.Base
	api SocialAPI
}

func NewTwitter(f fetcher.HTMLFetcher, api SocialAPI, log *slog.Logger) *Twitter {
	return &Twitter{Base: extractor.NewBase(models.ContentTypeTwitter, f, log), api: api}
}

func (e *Twitter) Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	res, err := extractor.FirstSuccess(ctx, e.Log,
		extractor.Strategy{Name: "api", Run: e.fromAPI(opts)},
		extractor.Strategy{Name: "scrape", Run: e.scrape(opts)},
	)
	if err != nil {
		return e.Degrade(opts, e.fromURL(opts.URL), err)
	}
	return res, nil
}

func (e *Twitter) fromAPI(opts extractor.Options) func(context.Context) (*models.ExtractorResult, error) {
	if e.api == nil || !e.api.IsAvailable() {
		return nil
	}
	return func(ctx context.Context) (*models.ExtractorResult, error) {
		post, err := e.api.FetchPost(ctx, opts.URL)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, errNoPost
		}
		return e.Result(postMetadata(opts.URL, post), extractor.ConfidenceAPI, models.SourceAPI), nil
	}
}

// postMetadata maps an API post onto metadata.
func postMetadata(rawURL string, post *socialapi.Post) models.ContentMetadata {
	meta := models.ContentMetadata{
		URL:         rawURL,
		Title:       shorten(post.Text, maxPostTitle),
		Description: post.Text,
		SiteName:    "X",
	}
	if !post.CreatedAt.IsZero() {
		created := post.CreatedAt.UTC()
		meta.PublishedAt = &created
	}
	meta.Author = &models.Author{
		Name:         post.Author.Name,
		Username:     post.Author.Username,
		ProfileImage: post.Author.ProfileImage,
		Verified:     post.Author.Verified,
	}
	if post.Author.Username != "" {
		meta.Author.ProfileURL = "https://x.com/" + post.Author.Username
	}
	meta.Engagement = &models.Engagement{
		Likes:     post.Metrics.Likes,
		Retweets:  post.Metrics.Retweets,
		Replies:   post.Metrics.Replies,
		Quotes:    post.Metrics.Quotes,
		Views:     post.Metrics.Views,
		Bookmarks: post.Metrics.Bookmarks,
	}

	details := &models.SocialPostDetails{PostID: post.ID, PostType: models.PostTypeText}
	details.Hashtags = post.Hashtags
	if len(details.Hashtags) == 0 {
		details.Hashtags = hashtags(post.Text)
	}

	media := &models.Media{}
	for _, m := range post.Media {
		switch m.Type {
		case "photo":
			media.Images = append(media.Images, models.MediaItem{
				URL: m.URL, Type: "image", Width: m.Width, Height: m.Height, Alt: m.AltText,
			})
			if details.PostType == models.PostTypeText {
				details.PostType = models.PostTypeImage
			}
		case "video", "animated_gif":
			var variants []models.VideoVariant
			for _, v := range m.Variants {
				variants = append(variants, models.VideoVariant{URL: v.URL, ContentType: v.ContentType, Bitrate: v.Bitrate})
			}
			variants = RankVariants(variants)
			details.VideoVariants = append(details.VideoVariants, variants...)
			if item, ok := videoItem(variants, nil); ok {
				item.Width, item.Height = m.Width, m.Height
				item.Duration = m.DurationMS / 1000
				media.Videos = append(media.Videos, item)
			}
			if m.PreviewURL != "" {
				meta.Thumbnail = m.PreviewURL
			}
			details.PostType = models.PostTypeVideo
		}
	}
	if meta.Thumbnail == "" && len(media.Images) > 0 {
		meta.Thumbnail = media.Images[0].URL
	}
	meta.Media = media
	meta.Details = details
	return meta
}

func (e *Twitter) scrape(opts extractor.Options) func(context.Context) (*models.ExtractorResult, error) {
	return func(ctx context.Context) (*models.ExtractorResult, error) {
		doc, _, err := e.Document(ctx, opts)
		if err != nil {
			return nil, err
		}
		return e.Result(e.fromPage(opts.URL, doc), ConfidenceSocialScrape, models.SourceScraping), nil
	}
}

func (e *Twitter) fromPage(rawURL string, doc *goquery.Document) models.ContentMetadata {
	fields := extractor.ExtractBasicFields(doc, rawURL)
	og := extractor.OpenGraph(doc)
	card := extractor.TwitterCard(doc)

	meta := e.fromURL(rawURL)
	meta.Title = extractor.FirstNonEmpty(fields.Title, meta.Title)
	meta.Description = fields.Description
	meta.Favicon = fields.Favicon
	meta.SiteName = fields.SiteName
	meta.PublishedAt = fields.PublishedAt

	author := ensureAuthor(&meta)
	if m := tweetTitleRe.FindStringSubmatch(fields.Title); m != nil {
		author.Name = strings.TrimSpace(m[1])
	}
	if author.Name == "" {
		author.Name = fields.Author
	}

	engagement := ensureEngagement(&meta)
	for i := 1; i <= 4; i++ {
		label := strings.ToLower(card.Get(fmt.Sprintf("label%d", i)))
		value := card.Get(fmt.Sprintf("data%d", i))
		if label == "" || value == "" {
			continue
		}
		count := extractor.CountPtr(value)
		switch {
		case strings.Contains(label, "like"):
			engagement.Likes = count
		case strings.Contains(label, "retweet") || strings.Contains(label, "repost"):
			engagement.Retweets = count
		case strings.Contains(label, "repl"):
			engagement.Replies = count
		case strings.Contains(label, "quote"):
			engagement.Quotes = count
		case strings.Contains(label, "view"):
			engagement.Views = count
		case strings.Contains(label, "bookmark"):
			engagement.Bookmarks = count
		}
	}

	details := meta.Details.(*models.SocialPostDetails)
	details.Hashtags = hashtags(fields.Description)
	details.VideoVariants = RankVariants(ogVideoVariants(og))

	media := ensureMedia(&meta)
	switch {
	case len(details.VideoVariants) > 0 || card.Get("card") == "player":
		details.PostType = models.PostTypeVideo
		if item, ok := videoItem(details.VideoVariants, og); ok {
			media.Videos = append(media.Videos, item)
		}
	case card.Get("card") == "summary_large_image":
		details.PostType = models.PostTypeImage
	default:
		details.PostType = models.PostTypeText
	}
	if details.PostType != models.PostTypeText {
		media.Images = ogImages(og, rawURL)
		meta.Thumbnail = fields.Thumbnail
	} else if author.ProfileImage == "" {
		// text posts carry the author's avatar as their only image
		author.ProfileImage = fields.Thumbnail
	}
	return meta
}

// fromURL is everything the post URL alone tells us.
func (e *Twitter) fromURL(rawURL string) models.ContentMetadata {
	meta := models.ContentMetadata{URL: rawURL, SiteName: "X"}
	details := &models.SocialPostDetails{}
	if id, ok := detector.ExtractPlatformID(rawURL, models.ContentTypeTwitter); ok {
		details.PostID = id
	}
	meta.Details = details
	if m := tweetUserRe.FindStringSubmatch(rawURL); m != nil {
		meta.Author = &models.Author{Username: m[1], ProfileURL: "https://x.com/" + m[1]}
		meta.Title = "Post by @" + m[1]
	}
	return meta
}

func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
