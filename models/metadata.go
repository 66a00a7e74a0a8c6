package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// UntitledTitle is used when extraction yields no title at all.
const UntitledTitle = "Untitled"

// Source records where an extraction result came from.
type Source string

const (
	SourceAPI      Source = "api"
	SourceScraping Source = "scraping"
	SourceHybrid   Source = "hybrid" // served from cache
)

// Author describes who published a piece of content.
type Author struct {
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	Username     string `json:"username,omitempty" yaml:"username,omitempty"`
	ProfileURL   string `json:"profile_url,omitempty" yaml:"profile_url,omitempty"`
	ProfileImage string `json:"profile_image,omitempty" yaml:"profile_image,omitempty"`
	Verified     bool   `json:"verified,omitempty" yaml:"verified,omitempty"`
}

// Engagement holds platform counters. Nil means the counter was not observed.
type Engagement struct {
	Likes       *int64 `json:"likes,omitempty" yaml:"likes,omitempty"`
	Shares      *int64 `json:"shares,omitempty" yaml:"shares,omitempty"`
	Comments    *int64 `json:"comments,omitempty" yaml:"comments,omitempty"`
	Views       *int64 `json:"views,omitempty" yaml:"views,omitempty"`
	Retweets    *int64 `json:"retweets,omitempty" yaml:"retweets,omitempty"`
	Quotes      *int64 `json:"quotes,omitempty" yaml:"quotes,omitempty"`
	Replies     *int64 `json:"replies,omitempty" yaml:"replies,omitempty"`
	Bookmarks   *int64 `json:"bookmarks,omitempty" yaml:"bookmarks,omitempty"`
	Saves       *int64 `json:"saves,omitempty" yaml:"saves,omitempty"`
	RatingCount *int64 `json:"rating_count,omitempty" yaml:"rating_count,omitempty"`
}

// Count returns a pointer to n, for populating Engagement.
func Count(n int64) *int64 {
	return &n
}

// IsEmpty reports whether no counter was observed.
func (e *Engagement) IsEmpty() bool {
	if e == nil {
		return true
	}
	return e.Likes == nil && e.Shares == nil && e.Comments == nil && e.Views == nil &&
		e.Retweets == nil && e.Quotes == nil && e.Replies == nil && e.Bookmarks == nil &&
		e.Saves == nil && e.RatingCount == nil
}

// MediaItem is a single image, video or audio asset.
type MediaItem struct {
	URL         string `json:"url" yaml:"url"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"` // image, video, audio, gif
	Width       int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height      int    `json:"height,omitempty" yaml:"height,omitempty"`
	Duration    int    `json:"duration,omitempty" yaml:"duration,omitempty"` // seconds
	Bitrate     int    `json:"bitrate,omitempty" yaml:"bitrate,omitempty"`
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Alt         string `json:"alt,omitempty" yaml:"alt,omitempty"`
}

// Media groups the assets attached to a piece of content.
type Media struct {
	Images []MediaItem `json:"images,omitempty" yaml:"images,omitempty"`
	Videos []MediaItem `json:"videos,omitempty" yaml:"videos,omitempty"`
	Audio  []MediaItem `json:"audio,omitempty" yaml:"audio,omitempty"`
}

// IsEmpty reports whether m holds no assets.
func (m *Media) IsEmpty() bool {
	return m == nil || (len(m.Images) == 0 && len(m.Videos) == 0 && len(m.Audio) == 0)
}

// ContentMetadata is the normalized metadata envelope produced for every URL.
// Family specific fields live in Details.
type ContentMetadata struct {
	URL         string      `json:"url" yaml:"url"`
	Title       string      `json:"title" yaml:"title"`
	ContentType ContentType `json:"content_type" yaml:"content_type"`
	ExtractedAt time.Time   `json:"extracted_at" yaml:"extracted_at"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Thumbnail   string      `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Favicon     string      `json:"favicon,omitempty" yaml:"favicon,omitempty"`
	SiteName    string      `json:"site_name,omitempty" yaml:"site_name,omitempty"`
	PublishedAt *time.Time  `json:"published_at,omitempty" yaml:"published_at,omitempty"`
	Author      *Author     `json:"author,omitempty" yaml:"author,omitempty"`
	Engagement  *Engagement `json:"engagement,omitempty" yaml:"engagement,omitempty"`
	Media       *Media      `json:"media,omitempty" yaml:"media,omitempty"`
	Tags        []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	Keywords    []string    `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	Details Details `json:"-" yaml:"details,omitempty"`
}

// ExtractorResult is what every extractor and the registry return.
type ExtractorResult struct {
	Metadata   ContentMetadata `json:"metadata" yaml:"metadata"`
	Confidence float64         `json:"confidence" yaml:"confidence"`
	Source     Source          `json:"source" yaml:"source"`
}

type metadataAlias ContentMetadata

type metadataEnvelope struct {
	metadataAlias
	Details json.RawMessage `json:"details,omitempty"`
}

// MarshalJSON writes Details as a nested object.
func (m ContentMetadata) MarshalJSON() ([]byte, error) {
	env := metadataEnvelope{metadataAlias: metadataAlias(m)}
	if m.Details != nil {
		raw, err := json.Marshal(m.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s details: %w", m.ContentType, err)
		}
		env.Details = raw
	}
	return json.Marshal(env)
}

// UnmarshalJSON restores the Details variant that belongs to content_type.
func (m *ContentMetadata) UnmarshalJSON(data []byte) error {
	var env metadataEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*m = ContentMetadata(env.metadataAlias)
	m.Details = nil

	if len(env.Details) == 0 || string(env.Details) == "null" {
		return nil
	}
	details := NewDetails(m.ContentType)
	if err := json.Unmarshal(env.Details, details); err != nil {
		return fmt.Errorf("failed to unmarshal %s details: %w", m.ContentType, err)
	}
	m.Details = details
	return nil
}
