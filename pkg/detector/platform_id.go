package detector

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/dtnitsch/linkmeta/models"
)

type idExtractor func(rawURL string) (string, bool)

var (
	tweetIDRe       = regexp.MustCompile(`(?i)(?:twitter|x)\.com/[^/]+/status(?:es)?/(\d+)`)
	youtubeIDRe     = regexp.MustCompile(`(?i)(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/|live/|v/)|youtu\.be/)([A-Za-z0-9_-]{11})`)
	instagramCodeRe = regexp.MustCompile(`(?i)instagram\.com/(?:[^/]+/)?(?:p|reel|reels|tv)/([A-Za-z0-9_-]+)`)
	instagramStory  = regexp.MustCompile(`(?i)instagram\.com/stories/[^/]+/(\d+)`)
	tiktokIDRe      = regexp.MustCompile(`(?i)tiktok\.com/@[^/]+/video/(\d+)`)
	redditPostRe    = regexp.MustCompile(`(?i)reddit\.com/r/[^/]+/comments/([a-z0-9]+)`)
	redditShortRe   = regexp.MustCompile(`(?i)redd\.it/([a-z0-9]+)`)
	githubRepoRe    = regexp.MustCompile(`(?i)github\.com/([A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+)`)
	questionIDRe    = regexp.MustCompile(`(?i)(?:stackoverflow\.com|stackexchange\.com)/(?:questions|q)/(\d+)`)
	asinRe          = regexp.MustCompile(`(?i)/(?:dp|gp/product|gp/aw/d)/([A-Z0-9]{10})`)
	arxivIDRe       = regexp.MustCompile(`(?i)arxiv\.org/(?:abs|pdf)/(\d{4}\.\d{4,5}|[a-z-]+(?:\.[A-Z]{2})?/\d{7})`)
	wikiTitleRe     = regexp.MustCompile(`(?i)wikipedia\.org/wiki/([^?#]+)`)
)

var platformIDExtractors = map[models.ContentType]idExtractor{
	models.ContentTypeTwitter:       firstGroup(tweetIDRe),
	models.ContentTypeYouTube:       firstGroup(youtubeIDRe),
	models.ContentTypeInstagram:     firstGroup(instagramCodeRe, instagramStory),
	models.ContentTypeTikTok:        firstGroup(tiktokIDRe),
	models.ContentTypeReddit:        firstGroup(redditPostRe, redditShortRe),
	models.ContentTypeStackOverflow: firstGroup(questionIDRe),
	models.ContentTypeArXiv:         firstGroup(arxivIDRe),
	models.ContentTypeGitHub: func(rawURL string) (string, bool) {
		id, ok := firstGroup(githubRepoRe)(rawURL)
		return strings.TrimSuffix(id, ".git"), ok
	},
	models.ContentTypeAmazon: func(rawURL string) (string, bool) {
		id, ok := firstGroup(asinRe)(rawURL)
		return strings.ToUpper(id), ok
	},
	models.ContentTypeWikipedia: func(rawURL string) (string, bool) {
		raw, ok := firstGroup(wikiTitleRe)(rawURL)
		if !ok {
			return "", false
		}
		title, err := url.PathUnescape(raw)
		if err != nil {
			title = raw
		}
		return strings.ReplaceAll(title, "_", " "), true
	},
}

// ExtractPlatformID returns the platform native identifier of rawURL for
// content type t: a tweet id, video id, shortcode, owner/repo and so on.
// The second result is false when t has no identifier or nothing matched.
func ExtractPlatformID(rawURL string, t models.ContentType) (string, bool) {
	extract, ok := platformIDExtractors[t]
	if !ok {
		return "", false
	}
	id, ok := extract(strings.TrimSpace(rawURL))
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func firstGroup(res ...*regexp.Regexp) idExtractor {
	return func(rawURL string) (string, bool) {
		for _, re := range res {
			if m := re.FindStringSubmatch(rawURL); len(m) > 1 {
				return m[1], true
			}
		}
		return "", false
	}
}
