package models

import (
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// CleanText trims s and strips any HTML markup from it.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if strings.ContainsRune(s, '<') {
		// StrictPolicy escapes what it keeps, undo that for plain text fields
		s = strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
	}
	return s
}

// Clean enforces the output invariants of an extraction: every optional field
// is either populated or absent, Title is never empty, and ContentType and
// ExtractedAt are stamped. t overrides the content type when non-empty.
func (m *ContentMetadata) Clean(t ContentType, now time.Time) {
	m.URL = strings.TrimSpace(m.URL)
	m.Title = strings.Join(strings.Fields(CleanText(m.Title)), " ")
	if m.Title == "" {
		m.Title = UntitledTitle
	}
	if t != "" {
		m.ContentType = t
	}
	if !m.ContentType.Valid() {
		m.ContentType = ContentTypeUnknown
	}
	m.ExtractedAt = now.UTC()

	m.Description = CleanText(m.Description)
	m.SiteName = CleanText(m.SiteName)
	m.Thumbnail = strings.TrimSpace(m.Thumbnail)
	m.Favicon = strings.TrimSpace(m.Favicon)

	if m.PublishedAt != nil && m.PublishedAt.IsZero() {
		m.PublishedAt = nil
	}

	if a := m.Author; a != nil {
		a.Name = CleanText(a.Name)
		a.Username = strings.TrimPrefix(CleanText(a.Username), "@")
		a.ProfileURL = strings.TrimSpace(a.ProfileURL)
		a.ProfileImage = strings.TrimSpace(a.ProfileImage)
		if a.Name == "" && a.Username == "" && a.ProfileURL == "" && a.ProfileImage == "" && !a.Verified {
			m.Author = nil
		}
	}

	if e := m.Engagement; e != nil {
		for _, c := range []**int64{&e.Likes, &e.Shares, &e.Comments, &e.Views, &e.Retweets,
			&e.Quotes, &e.Replies, &e.Bookmarks, &e.Saves, &e.RatingCount} {
			if *c != nil && **c < 0 {
				*c = nil
			}
		}
		if e.IsEmpty() {
			m.Engagement = nil
		}
	}

	if md := m.Media; md != nil {
		md.Images = cleanItems(md.Images, CleanText)
		md.Videos = cleanItems(md.Videos, CleanText)
		md.Audio = cleanItems(md.Audio, CleanText)
		if md.IsEmpty() {
			m.Media = nil
		}
	}

	m.Tags = cleanList(m.Tags, CleanText)
	m.Keywords = cleanList(m.Keywords, CleanText)

	if m.Details != nil {
		m.Details.clean(CleanText)
		if m.Details.isEmpty() {
			m.Details = nil
		}
	}
}

// cleanList trims entries, drops empty ones and removes case-insensitive
// duplicates while keeping the first spelling.
func cleanList(in []string, text func(string) string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = text(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func cleanItems(in []MediaItem, text func(string) string) []MediaItem {
	var out []MediaItem
	seen := make(map[string]bool, len(in))
	for _, item := range in {
		item.URL = strings.TrimSpace(item.URL)
		if item.URL == "" || seen[item.URL] {
			continue
		}
		seen[item.URL] = true
		item.Type = text(item.Type)
		item.ContentType = text(item.ContentType)
		item.Alt = text(item.Alt)
		out = append(out, item)
	}
	return out
}
