package models

// ContentType classifies a URL into a content family.
type ContentType string

const (
	// Social platforms
	ContentTypeTwitter   ContentType = "twitter"
	ContentTypeReddit    ContentType = "reddit"
	ContentTypeTikTok    ContentType = "tiktok"
	ContentTypeInstagram ContentType = "instagram"
	ContentTypeYouTube   ContentType = "youtube"

	// Development
	ContentTypeGitHub        ContentType = "github"
	ContentTypeStackOverflow ContentType = "stackoverflow"

	// Commerce
	ContentTypeProduct ContentType = "product"
	ContentTypeAmazon  ContentType = "amazon"

	// Knowledge
	ContentTypeWikipedia ContentType = "wikipedia"
	ContentTypeArXiv     ContentType = "arxiv"

	// Media
	ContentTypeArticle ContentType = "article"
	ContentTypePDF     ContentType = "pdf"
	ContentTypeImage   ContentType = "image"
	ContentTypeVideo   ContentType = "video"
	ContentTypeAudio   ContentType = "audio"

	// Personal
	ContentTypeNote     ContentType = "note"
	ContentTypeBookmark ContentType = "bookmark"

	ContentTypeUnknown ContentType = "unknown"
)

// Family groups content types for UI filters and cache lifetimes.
type Family string

const (
	FamilySocial      Family = "social"
	FamilyDevelopment Family = "development"
	FamilyCommerce    Family = "commerce"
	FamilyKnowledge   Family = "knowledge"
	FamilyMedia       Family = "media"
	FamilyPersonal    Family = "personal"
	FamilyUnknown     Family = "unknown"
)

var contentFamilies = map[ContentType]Family{
	ContentTypeTwitter:       FamilySocial,
	ContentTypeReddit:        FamilySocial,
	ContentTypeTikTok:        FamilySocial,
	ContentTypeInstagram:     FamilySocial,
	ContentTypeYouTube:       FamilySocial,
	ContentTypeGitHub:        FamilyDevelopment,
	ContentTypeStackOverflow: FamilyDevelopment,
	ContentTypeProduct:       FamilyCommerce,
	ContentTypeAmazon:        FamilyCommerce,
	ContentTypeWikipedia:     FamilyKnowledge,
	ContentTypeArXiv:         FamilyKnowledge,
	ContentTypeArticle:       FamilyMedia,
	ContentTypePDF:           FamilyMedia,
	ContentTypeImage:         FamilyMedia,
	ContentTypeVideo:         FamilyMedia,
	ContentTypeAudio:         FamilyMedia,
	ContentTypeNote:          FamilyPersonal,
	ContentTypeBookmark:      FamilyPersonal,
	ContentTypeUnknown:       FamilyUnknown,
}

// AllContentTypes returns every content type in declaration order.
func AllContentTypes() []ContentType {
	return []ContentType{
		ContentTypeTwitter, ContentTypeReddit, ContentTypeTikTok, ContentTypeInstagram, ContentTypeYouTube,
		ContentTypeGitHub, ContentTypeStackOverflow,
		ContentTypeProduct, ContentTypeAmazon,
		ContentTypeWikipedia, ContentTypeArXiv,
		ContentTypeArticle, ContentTypePDF, ContentTypeImage, ContentTypeVideo, ContentTypeAudio,
		ContentTypeNote, ContentTypeBookmark,
		ContentTypeUnknown,
	}
}

// Valid reports whether t is one of the declared content types.
func (t ContentType) Valid() bool {
	_, ok := contentFamilies[t]
	return ok
}

// Family returns the family of t, or FamilyUnknown for undeclared values.
func (t ContentType) Family() Family {
	if f, ok := contentFamilies[t]; ok {
		return f
	}
	return FamilyUnknown
}

// IsSocialPost reports whether t is a short-lived social feed item.
// Long-form video is social by family but not by freshness.
func (t ContentType) IsSocialPost() bool {
	switch t {
	case ContentTypeTwitter, ContentTypeReddit, ContentTypeTikTok, ContentTypeInstagram:
		return true
	}
	return false
}

// IsLongForm reports whether t is slow-changing content.
func (t ContentType) IsLongForm() bool {
	switch t {
	case ContentTypeArticle, ContentTypeYouTube, ContentTypeProduct, ContentTypeAmazon,
		ContentTypeWikipedia, ContentTypeArXiv, ContentTypePDF:
		return true
	}
	return false
}

func (t ContentType) String() string {
	return string(t)
}
