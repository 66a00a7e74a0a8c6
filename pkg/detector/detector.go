// Package detector classifies URLs into content types, pulls platform
// identifiers out of them and canonicalizes them for caching.
package detector

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/dtnitsch/linkmeta/models"
)

// Confidence tiers, highest first. Only their order is a contract.
const (
	ConfidencePattern    = 1.0
	ConfidenceExtension  = 0.9
	ConfidenceDomain     = 0.8
	ConfidenceStorefront = 0.6
	ConfidenceGeneric    = 0.5
	ConfidenceNonHTTP    = 0.3
	ConfidenceMalformed  = 0.1
)

// ContentDescriptor carries display hints for a content type.
type ContentDescriptor struct {
	Label  string        `json:"label" yaml:"label"`
	Family models.Family `json:"family" yaml:"family"`
	Icon   string        `json:"icon" yaml:"icon"`
}

// DetectionResult is the outcome of Classify.
type DetectionResult struct {
	Type       models.ContentType `json:"type" yaml:"type"`
	Confidence float64            `json:"confidence" yaml:"confidence"`
	Descriptor ContentDescriptor  `json:"descriptor" yaml:"descriptor"`
}

type patternFamily struct {
	contentType models.ContentType
	patterns    []*regexp.Regexp
}

// platformPatterns is matched against the lower-cased URL in order. The
// first family with a matching pattern wins, so broader families go last.
var platformPatterns = []patternFamily{
	{models.ContentTypeTwitter, compile(
		`^https?://(www\.|mobile\.)?(twitter|x)\.com/[^/]+/status(es)?/\d+`,
	)},
	{models.ContentTypeReddit, compile(
		`^https?://([a-z0-9-]+\.)?reddit\.com/r/[^/]+`,
		`^https?://redd\.it/[a-z0-9]+`,
	)},
	{models.ContentTypeTikTok, compile(
		`^https?://(www\.|m\.)?tiktok\.com/@[^/]+/video/\d+`,
		`^https?://(vm|vt)\.tiktok\.com/[a-z0-9]+`,
	)},
	{models.ContentTypeInstagram, compile(
		`^https?://(www\.)?instagram\.com/([^/]+/)?(p|reel|reels|tv)/[a-z0-9_-]+`,
		`^https?://(www\.)?instagram\.com/stories/[^/]+/\d+`,
	)},
	{models.ContentTypeYouTube, compile(
		`^https?://(www\.|m\.|music\.)?youtube\.com/(watch\?(.*&)?v=|shorts/|embed/|live/|v/)[a-z0-9_-]{11}`,
		`^https?://(www\.)?youtu\.be/[a-z0-9_-]{11}`,
	)},
	{models.ContentTypeGitHub, compile(
		`^https?://(www\.)?github\.com/[a-z0-9_.-]+/[a-z0-9_.-]+`,
	)},
	{models.ContentTypeStackOverflow, compile(
		`^https?://(www\.)?stackoverflow\.com/(questions|q)/\d+`,
		`^https?://[a-z0-9-]+\.stackexchange\.com/(questions|q)/\d+`,
	)},
	{models.ContentTypeAmazon, compile(
		`^https?://(www\.|smile\.)?amazon\.[a-z.]+/(.+/)?(dp|gp/product|gp/aw/d)/[a-z0-9]{10}`,
		`^https?://(www\.)?(amzn\.to|amzn\.eu|a\.co)/`,
	)},
	{models.ContentTypeWikipedia, compile(
		`^https?://([a-z-]+\.)?(m\.)?wikipedia\.org/wiki/.+`,
	)},
	{models.ContentTypeArXiv, compile(
		`^https?://(www\.|export\.)?arxiv\.org/(abs|pdf)/(\d{4}\.\d{4,5}|[a-z-]+(\.[a-z]{2})?/\d{7})`,
	)},
	{models.ContentTypeProduct, compile(
		`^https?://(www\.)?ebay\.[a-z.]+/itm/`,
		`^https?://(www\.)?etsy\.com/([a-z]{2}/)?listing/\d+`,
		`^https?://(www\.)?walmart\.com/ip/`,
		`^https?://(www\.)?target\.com/p/`,
		`^https?://(www\.)?bestbuy\.com/site/.+\.p`,
		`^https?://([a-z]+\.)?aliexpress\.[a-z]+/item/`,
		`^https?://[^/]+\.myshopify\.com/products/`,
	)},
}

// storefrontPath is a shop-looking path on an otherwise unknown host. It is
// only consulted after extensions and known domains.
var storefrontPath = regexp.MustCompile(`^/(.+/)?(product|products|p|item|dp)/[^/]+`)

var extensionTypes = map[string]models.ContentType{
	".jpg": models.ContentTypeImage, ".jpeg": models.ContentTypeImage, ".png": models.ContentTypeImage,
	".gif": models.ContentTypeImage, ".webp": models.ContentTypeImage, ".svg": models.ContentTypeImage,
	".bmp": models.ContentTypeImage, ".tif": models.ContentTypeImage, ".tiff": models.ContentTypeImage,
	".avif": models.ContentTypeImage, ".heic": models.ContentTypeImage, ".ico": models.ContentTypeImage,

	".mp4": models.ContentTypeVideo, ".webm": models.ContentTypeVideo, ".mov": models.ContentTypeVideo,
	".avi": models.ContentTypeVideo, ".mkv": models.ContentTypeVideo, ".m4v": models.ContentTypeVideo,
	".m3u8": models.ContentTypeVideo,

	".mp3": models.ContentTypeAudio, ".wav": models.ContentTypeAudio, ".ogg": models.ContentTypeAudio,
	".flac": models.ContentTypeAudio, ".m4a": models.ContentTypeAudio, ".aac": models.ContentTypeAudio,
	".opus": models.ContentTypeAudio,

	".pdf": models.ContentTypePDF,

	// documents read like articles
	".doc": models.ContentTypeArticle, ".docx": models.ContentTypeArticle, ".odt": models.ContentTypeArticle,
	".rtf": models.ContentTypeArticle, ".txt": models.ContentTypeArticle, ".md": models.ContentTypeArticle,
	".epub": models.ContentTypeArticle,
}

type domainHeuristic struct {
	contentType models.ContentType
	domains     []string
}

var domainHeuristics = []domainHeuristic{
	// academic preprints and indexes
	{models.ContentTypeArXiv, []string{"arxiv.org", "biorxiv.org", "medrxiv.org", "ssrn.com",
		"researchgate.net", "semanticscholar.org", "doi.org", "pubmed.ncbi.nlm.nih.gov"}},
	// long-form writing platforms
	{models.ContentTypeArticle, []string{"medium.com", "substack.com", "dev.to", "hashnode.dev",
		"hashnode.com", "ghost.io", "wordpress.com", "blogspot.com"}},
	// collaborative docs and note taking
	{models.ContentTypeNote, []string{"docs.google.com", "notion.so", "notion.site", "quip.com",
		"coda.io", "evernote.com", "keep.google.com", "obsidian.md", "onenote.com"}},
	{models.ContentTypeVideo, []string{"vimeo.com", "dailymotion.com", "twitch.tv"}},
	{models.ContentTypeAudio, []string{"soundcloud.com", "open.spotify.com", "podcasts.apple.com"}},
	{models.ContentTypeImage, []string{"imgur.com", "flickr.com", "unsplash.com"}},
}

var descriptors = map[models.ContentType]ContentDescriptor{
	models.ContentTypeTwitter:       {Label: "Post", Icon: "message-circle"},
	models.ContentTypeReddit:        {Label: "Thread", Icon: "messages-square"},
	models.ContentTypeTikTok:        {Label: "Short video", Icon: "clapperboard"},
	models.ContentTypeInstagram:     {Label: "Photo post", Icon: "camera"},
	models.ContentTypeYouTube:       {Label: "Video", Icon: "youtube"},
	models.ContentTypeGitHub:        {Label: "Repository", Icon: "github"},
	models.ContentTypeStackOverflow: {Label: "Question", Icon: "circle-help"},
	models.ContentTypeProduct:       {Label: "Product", Icon: "shopping-bag"},
	models.ContentTypeAmazon:        {Label: "Product", Icon: "shopping-cart"},
	models.ContentTypeWikipedia:     {Label: "Encyclopedia", Icon: "book-open"},
	models.ContentTypeArXiv:         {Label: "Paper", Icon: "graduation-cap"},
	models.ContentTypeArticle:       {Label: "Article", Icon: "newspaper"},
	models.ContentTypePDF:           {Label: "PDF", Icon: "file-text"},
	models.ContentTypeImage:         {Label: "Image", Icon: "image"},
	models.ContentTypeVideo:         {Label: "Video", Icon: "film"},
	models.ContentTypeAudio:         {Label: "Audio", Icon: "music"},
	models.ContentTypeNote:          {Label: "Note", Icon: "notebook-pen"},
	models.ContentTypeBookmark:      {Label: "Bookmark", Icon: "bookmark"},
	models.ContentTypeUnknown:       {Label: "Unknown", Icon: "circle-dashed"},
}

func compile(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// Classify maps any string to a content type. It is total: garbage input
// yields ContentTypeUnknown with a low confidence.
func Classify(rawURL string) DetectionResult {
	lowered := strings.ToLower(strings.TrimSpace(rawURL))

	for _, family := range platformPatterns {
		for _, re := range family.patterns {
			if re.MatchString(lowered) {
				return newResult(family.contentType, ConfidencePattern)
			}
		}
	}

	u, err := url.Parse(lowered)
	if err != nil || u.Scheme == "" {
		return newResult(models.ContentTypeUnknown, ConfidenceMalformed)
	}

	if t, ok := extensionTypes[path.Ext(u.Path)]; ok {
		return newResult(t, ConfidenceExtension)
	}

	if t, ok := matchDomain(u.Hostname()); ok {
		return newResult(t, ConfidenceDomain)
	}

	if IsHTTP(u) && storefrontPath.MatchString(u.Path) {
		return newResult(models.ContentTypeProduct, ConfidenceStorefront)
	}

	if IsHTTP(u) {
		return newResult(models.ContentTypeBookmark, ConfidenceGeneric)
	}

	return newResult(models.ContentTypeUnknown, ConfidenceNonHTTP)
}

// Describe returns the display descriptor for t.
func Describe(t models.ContentType) ContentDescriptor {
	d, ok := descriptors[t]
	if !ok {
		d = descriptors[models.ContentTypeUnknown]
	}
	d.Family = t.Family()
	return d
}

// IsHTTP reports whether u is an absolute http(s) URL with a host.
func IsHTTP(u *url.URL) bool {
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsHTTPURL is IsHTTP for raw strings.
func IsHTTPURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return IsHTTP(u)
}

func newResult(t models.ContentType, confidence float64) DetectionResult {
	return DetectionResult{Type: t, Confidence: confidence, Descriptor: Describe(t)}
}

// matchDomain checks host against the heuristic table. A domain matches
// itself and any of its subdomains.
func matchDomain(host string) (models.ContentType, bool) {
	if host == "" {
		return "", false
	}
	for _, h := range domainHeuristics {
		for _, d := range h.domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return h.contentType, true
			}
		}
	}
	return "", false
}
