// Package transform flattens extraction metadata into the column-oriented
// record the storage layer and older clients read.
package transform

import (
	"time"

	"github.com/dtnitsch/linkmeta/models"
)

// FlatRecord is keyed by storage column name. Absent values are omitted,
// never stored as nil or "".
type FlatRecord map[string]any

// ToLegacyShape maps meta to a FlatRecord. Fields are selected per
// content family; meta is not modified.
func ToLegacyShape(meta models.ContentMetadata) FlatRecord {
	r := FlatRecord{}
	r.set("url", meta.URL)
	r.set("title", meta.Title)
	r.set("content_type", string(meta.ContentType))
	r.set("description", meta.Description)
	r.set("thumbnail_url", meta.Thumbnail)
	r.set("favicon_url", meta.Favicon)
	r.set("site_name", meta.SiteName)
	r.set("published_at", meta.PublishedAt)
	r.set("extracted_at", meta.ExtractedAt)
	r.set("tags", meta.Tags)
	r.set("keywords", meta.Keywords)

	if a := meta.Author; a != nil {
		r.set("author_name", a.Name)
		r.set("author_username", a.Username)
		r.set("author_url", a.ProfileURL)
		r.set("author_avatar", a.ProfileImage)
		r.set("author_verified", a.Verified)
	}
	if m := meta.Media; m != nil {
		r.set("image_urls", urls(m.Images))
		r.set("video_urls", urls(m.Videos))
		r.set("audio_urls", urls(m.Audio))
	}

	e := meta.Engagement
	if e == nil {
		e = &models.Engagement{}
	}

	switch d := meta.Details.(type) {
	case *models.SocialPostDetails:
		r.set("platform_id", d.PostID)
		r.set("post_type", d.PostType)
		r.set("subreddit", d.Subreddit)
		r.set("hashtags", d.Hashtags)
		r.set("video_variants", variants(d.VideoVariants))
		r.set("likes", e.Likes)
		r.set("shares", e.Shares)
		r.set("comments", e.Comments)
		r.set("views", e.Views)
		r.set("retweets", e.Retweets)
		r.set("quotes", e.Quotes)
		r.set("replies", e.Replies)
		r.set("bookmarks", e.Bookmarks)
		r.set("saves", e.Saves)
	case *models.ImagePostDetails:
		r.set("platform_id", d.ShortCode)
		r.set("post_type", d.PostType)
		r.set("caption", d.Caption)
		r.set("carousel_urls", urls(d.Carousel))
		r.set("likes", e.Likes)
		r.set("comments", e.Comments)
		r.set("views", e.Views)
	case *models.VideoDetails:
		r.set("platform_id", d.VideoID)
		r.set("channel_id", d.ChannelID)
		r.set("channel_name", d.ChannelName)
		r.set("duration", d.Duration)
		r.set("is_short", d.IsShort)
		r.set("category", d.Category)
		r.set("views", e.Views)
		r.set("likes", e.Likes)
		r.set("comments", e.Comments)
	case *models.ArticleDetails:
		r.set("word_count", d.WordCount)
		r.set("reading_time", d.ReadingTime)
		r.set("language", d.Language)
		r.set("language_confidence", d.LanguageConfidence)
		r.set("excerpt", d.Excerpt)
		r.set("sections", sections(d.Sections))
	case *models.ProductDetails:
		r.set("product_id", d.ProductID)
		r.set("price", d.Price)
		r.set("currency", d.Currency)
		r.set("availability", d.Availability)
		r.set("brand", d.Brand)
		r.set("condition", d.Condition)
		if d.Rating != nil {
			r.set("rating", d.Rating.Value)
			r.set("rating_best", d.Rating.Best)
		}
		r.set("rating_count", e.RatingCount)
	case *models.AcademicDetails:
		r.set("arxiv_id", d.ArXivID)
		r.set("doi", d.DOI)
		r.set("authors", d.Authors)
		r.set("pdf_url", d.PDFURL)
		r.set("abstract", d.Abstract)
		r.set("categories", d.Categories)
	case *models.RepositoryDetails:
		r.set("owner", d.Owner)
		r.set("repo", d.Repo)
		r.set("language", d.Language)
		r.set("stars", d.Stars)
		r.set("forks", e.Shares)
	case nil:
		// nothing family specific was extracted
	}
	return r
}

// set stores v under key unless it is empty. Observed counters are kept
// even when zero.
func (r FlatRecord) set(key string, v any) {
	switch v := v.(type) {
	case string:
		if v != "" {
			r[key] = v
		}
	case int:
		if v != 0 {
			r[key] = v
		}
	case float64:
		if v != 0 {
			r[key] = v
		}
	case bool:
		if v {
			r[key] = v
		}
	case *int64:
		if v != nil {
			r[key] = *v
		}
	case time.Time:
		if !v.IsZero() {
			r[key] = v.UTC().Format(time.RFC3339)
		}
	case *time.Time:
		if v != nil && !v.IsZero() {
			r[key] = v.UTC().Format(time.RFC3339)
		}
	case []string:
		if len(v) > 0 {
			r[key] = append([]string(nil), v...)
		}
	case []map[string]any:
		if len(v) > 0 {
			r[key] = v
		}
	}
}

func urls(items []models.MediaItem) []string {
	var out []string
	for _, it := range items {
		if it.URL != "" {
			out = append(out, it.URL)
		}
	}
	return out
}

func variants(vs []models.VideoVariant) []map[string]any {
	var out []map[string]any
	for _, v := range vs {
		rec := FlatRecord{}
		rec.set("url", v.URL)
		rec.set("content_type", v.ContentType)
		rec.set("bitrate", v.Bitrate)
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out
}

func sections(hs []models.Heading) []map[string]any {
	var out []map[string]any
	for _, h := range hs {
		if h.Text == "" {
			continue
		}
		out = append(out, map[string]any{"level": h.Level, "text": h.Text})
	}
	return out
}
