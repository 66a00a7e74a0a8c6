package models

// Details is the family specific part of ContentMetadata. The set of
// implementations is closed; NewDetails maps a content type to its variant.
type Details interface {
	clean(text func(string) string)
	isEmpty() bool
}

// NewDetails returns an empty variant for t. Types without a dedicated
// variant share ArticleDetails.
func NewDetails(t ContentType) Details {
	switch t {
	case ContentTypeTwitter, ContentTypeReddit, ContentTypeTikTok:
		return &SocialPostDetails{}
	case ContentTypeInstagram:
		return &ImagePostDetails{}
	case ContentTypeYouTube:
		return &VideoDetails{}
	case ContentTypeProduct, ContentTypeAmazon:
		return &ProductDetails{}
	case ContentTypeArXiv:
		return &AcademicDetails{}
	case ContentTypeGitHub:
		return &RepositoryDetails{}
	default:
		return &ArticleDetails{}
	}
}

// Post types for social posts.
const (
	PostTypeText  = "text"
	PostTypeImage = "image"
	PostTypeVideo = "video"

	PostTypePost  = "post"
	PostTypeReel  = "reel"
	PostTypeStory = "story"
)

// VideoVariant is one encoding of a posted video.
type VideoVariant struct {
	URL         string `json:"url" yaml:"url"`
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Bitrate     int    `json:"bitrate,omitempty" yaml:"bitrate,omitempty"`
}

// SocialPostDetails covers twitter, reddit and tiktok posts.
type SocialPostDetails struct {
	PostID        string         `json:"post_id,omitempty" yaml:"post_id,omitempty"`
	PostType      string         `json:"post_type,omitempty" yaml:"post_type,omitempty"`
	VideoVariants []VideoVariant `json:"video_variants,omitempty" yaml:"video_variants,omitempty"`
	Subreddit     string         `json:"subreddit,omitempty" yaml:"subreddit,omitempty"`
	Hashtags      []string       `json:"hashtags,omitempty" yaml:"hashtags,omitempty"`
}

func (d *SocialPostDetails) clean(text func(string) string) {
	d.PostID = text(d.PostID)
	d.PostType = text(d.PostType)
	d.Subreddit = text(d.Subreddit)
	d.Hashtags = cleanList(d.Hashtags, text)

	variants := d.VideoVariants[:0]
	for _, v := range d.VideoVariants {
		v.URL = text(v.URL)
		v.ContentType = text(v.ContentType)
		if v.URL != "" {
			variants = append(variants, v)
		}
	}
	d.VideoVariants = nilIfEmpty(variants)
}

func (d *SocialPostDetails) isEmpty() bool {
	return d.PostID == "" && d.PostType == "" && len(d.VideoVariants) == 0 &&
		d.Subreddit == "" && len(d.Hashtags) == 0
}

// ImagePostDetails covers instagram style image grids.
type ImagePostDetails struct {
	ShortCode string      `json:"short_code,omitempty" yaml:"short_code,omitempty"`
	PostType  string      `json:"post_type,omitempty" yaml:"post_type,omitempty"`
	Carousel  []MediaItem `json:"carousel,omitempty" yaml:"carousel,omitempty"`
	Caption   string      `json:"caption,omitempty" yaml:"caption,omitempty"`
}

func (d *ImagePostDetails) clean(text func(string) string) {
	d.ShortCode = text(d.ShortCode)
	d.PostType = text(d.PostType)
	d.Caption = text(d.Caption)
	d.Carousel = cleanItems(d.Carousel, text)
}

func (d *ImagePostDetails) isEmpty() bool {
	return d.ShortCode == "" && d.PostType == "" && len(d.Carousel) == 0 && d.Caption == ""
}

// VideoDetails covers long-form video. VideoID is always set by the
// extractor; channel and duration are omitted when the page hides them.
type VideoDetails struct {
	VideoID     string `json:"video_id" yaml:"video_id"`
	ChannelID   string `json:"channel_id,omitempty" yaml:"channel_id,omitempty"`
	Duration    int    `json:"duration,omitempty" yaml:"duration,omitempty"` // seconds
	ChannelName string `json:"channel_name,omitempty" yaml:"channel_name,omitempty"`
	IsShort     bool   `json:"is_short,omitempty" yaml:"is_short,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
}

func (d *VideoDetails) clean(text func(string) string) {
	d.VideoID = text(d.VideoID)
	d.ChannelID = text(d.ChannelID)
	d.ChannelName = text(d.ChannelName)
	d.Category = text(d.Category)
	if d.Duration < 0 {
		d.Duration = 0
	}
}

func (d *VideoDetails) isEmpty() bool {
	return d.VideoID == ""
}

// Heading is one entry of an article outline.
type Heading struct {
	Level int    `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
}

// ArticleDetails covers articles and every type without its own variant.
type ArticleDetails struct {
	WordCount          int       `json:"word_count,omitempty" yaml:"word_count,omitempty"`
	ReadingTime        int       `json:"reading_time,omitempty" yaml:"reading_time,omitempty"` // minutes
	Sections           []Heading `json:"sections,omitempty" yaml:"sections,omitempty"`
	Language           string    `json:"language,omitempty" yaml:"language,omitempty"`
	LanguageConfidence float64   `json:"language_confidence,omitempty" yaml:"language_confidence,omitempty"`
	Excerpt            string    `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
}

func (d *ArticleDetails) clean(text func(string) string) {
	d.Language = text(d.Language)
	d.Excerpt = text(d.Excerpt)

	sections := d.Sections[:0]
	for _, h := range d.Sections {
		h.Text = text(h.Text)
		if h.Text != "" {
			sections = append(sections, h)
		}
	}
	d.Sections = nilIfEmpty(sections)
}

func (d *ArticleDetails) isEmpty() bool {
	return d.WordCount == 0 && d.ReadingTime == 0 && len(d.Sections) == 0 &&
		d.Language == "" && d.Excerpt == ""
}

// Rating is an aggregate review score.
type Rating struct {
	Value float64 `json:"value" yaml:"value"`
	Count int64   `json:"count,omitempty" yaml:"count,omitempty"`
	Best  float64 `json:"best,omitempty" yaml:"best,omitempty"`
}

// ProductDetails covers product pages.
type ProductDetails struct {
	ProductID    string  `json:"product_id,omitempty" yaml:"product_id,omitempty"`
	Price        string  `json:"price,omitempty" yaml:"price,omitempty"`
	Currency     string  `json:"currency,omitempty" yaml:"currency,omitempty"`
	Availability string  `json:"availability,omitempty" yaml:"availability,omitempty"`
	Brand        string  `json:"brand,omitempty" yaml:"brand,omitempty"`
	Rating       *Rating `json:"rating,omitempty" yaml:"rating,omitempty"`
	Condition    string  `json:"condition,omitempty" yaml:"condition,omitempty"`
}

func (d *ProductDetails) clean(text func(string) string) {
	d.ProductID = text(d.ProductID)
	d.Price = text(d.Price)
	d.Currency = text(d.Currency)
	d.Availability = text(d.Availability)
	d.Brand = text(d.Brand)
	d.Condition = text(d.Condition)
	if d.Rating != nil && d.Rating.Value <= 0 {
		d.Rating = nil
	}
}

func (d *ProductDetails) isEmpty() bool {
	return d.ProductID == "" && d.Price == "" && d.Currency == "" && d.Availability == "" &&
		d.Brand == "" && d.Rating == nil && d.Condition == ""
}

// AcademicDetails covers preprints and papers.
type AcademicDetails struct {
	ArXivID    string   `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
	DOI        string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	Authors    []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	PDFURL     string   `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`
	Abstract   string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
}

func (d *AcademicDetails) clean(text func(string) string) {
	d.ArXivID = text(d.ArXivID)
	d.DOI = text(d.DOI)
	d.PDFURL = text(d.PDFURL)
	d.Abstract = text(d.Abstract)
	d.Authors = cleanList(d.Authors, text)
	d.Categories = cleanList(d.Categories, text)
}

func (d *AcademicDetails) isEmpty() bool {
	return d.ArXivID == "" && d.DOI == "" && len(d.Authors) == 0 && d.PDFURL == "" &&
		d.Abstract == "" && len(d.Categories) == 0
}

// RepositoryDetails covers code hosting pages.
type RepositoryDetails struct {
	Owner    string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Repo     string `json:"repo,omitempty" yaml:"repo,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Stars    *int64 `json:"stars,omitempty" yaml:"stars,omitempty"`
}

func (d *RepositoryDetails) clean(text func(string) string) {
	d.Owner = text(d.Owner)
	d.Repo = text(d.Repo)
	d.Language = text(d.Language)
}

func (d *RepositoryDetails) isEmpty() bool {
	return d.Owner == "" && d.Repo == "" && d.Language == "" && d.Stars == nil
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
