package detector

import (
	"testing"

	"github.com/dtnitsch/linkmeta/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		wantType       models.ContentType
		wantConfidence float64
	}{
		{"tweet", "https://twitter.com/alice/status/42", models.ContentTypeTwitter, ConfidencePattern},
		{"x.com tweet", "https://x.com/alice/status/42", models.ContentTypeTwitter, ConfidencePattern},
		{"reddit thread", "https://www.reddit.com/r/golang/comments/abc123/title/", models.ContentTypeReddit, ConfidencePattern},
		{"tiktok", "https://www.tiktok.com/@bob/video/7234567890123456789", models.ContentTypeTikTok, ConfidencePattern},
		{"instagram post", "https://www.instagram.com/p/Cabc123_x/", models.ContentTypeInstagram, ConfidencePattern},
		{"instagram reel", "https://instagram.com/reel/Cxyz987/", models.ContentTypeInstagram, ConfidencePattern},
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", models.ContentTypeYouTube, ConfidencePattern},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", models.ContentTypeYouTube, ConfidencePattern},
		{"youtube shorts", "https://youtube.com/shorts/dQw4w9WgXcQ", models.ContentTypeYouTube, ConfidencePattern},
		{"github repo", "https://github.com/golang/go", models.ContentTypeGitHub, ConfidencePattern},
		{"stackoverflow", "https://stackoverflow.com/questions/11227809/why-is-it-faster", models.ContentTypeStackOverflow, ConfidencePattern},
		{"amazon", "https://www.amazon.com/Some-Book/dp/B08N5WRWNW/ref=sr_1_1", models.ContentTypeAmazon, ConfidencePattern},
		{"ebay", "https://www.ebay.com/itm/1234567890", models.ContentTypeProduct, ConfidencePattern},
		{"storefront path", "https://shop.example.com/products/blue-widget", models.ContentTypeProduct, ConfidenceStorefront},
		{"substack post", "https://someauthor.substack.com/p/why-go-generics", models.ContentTypeArticle, ConfidenceDomain},
		{"image under /p/", "https://cdn.example.com/p/photo.jpg", models.ContentTypeImage, ConfidenceExtension},
		{"manual under /products/", "https://example.com/products/manual.pdf", models.ContentTypePDF, ConfidenceExtension},
		{"target listing", "https://www.target.com/p/desk-lamp/-/A-12345", models.ContentTypeProduct, ConfidencePattern},
		{"wikipedia", "https://en.wikipedia.org/wiki/Go_(programming_language)", models.ContentTypeWikipedia, ConfidencePattern},
		{"arxiv abstract", "https://arxiv.org/abs/2401.12345", models.ContentTypeArXiv, ConfidencePattern},
		{"arxiv pdf beats extension", "https://arxiv.org/pdf/2401.12345v2.pdf", models.ContentTypeArXiv, ConfidencePattern},
		{"image extension with query", "https://cdn.example.com/assets/photo.JPG?x=1", models.ContentTypeImage, ConfidenceExtension},
		{"pdf extension", "https://example.com/files/report.pdf", models.ContentTypePDF, ConfidenceExtension},
		{"audio extension", "https://example.com/ep1.mp3", models.ContentTypeAudio, ConfidenceExtension},
		{"video extension", "https://example.com/clip.webm", models.ContentTypeVideo, ConfidenceExtension},
		{"preprint domain", "https://www.biorxiv.org/content/10.1101/2020.01.01.123456v1", models.ContentTypeArXiv, ConfidenceDomain},
		{"long-form domain", "https://someone.substack.com/p-my-essay", models.ContentTypeArticle, ConfidenceDomain},
		{"docs domain", "https://docs.google.com/document/d/abc/edit", models.ContentTypeNote, ConfidenceDomain},
		{"bare domain", "https://my-personal-blog.example/posts/42", models.ContentTypeBookmark, ConfidenceGeneric},
		{"non-http scheme", "ftp://files.example.com/readme", models.ContentTypeUnknown, ConfidenceNonHTTP},
		{"mailto", "mailto:alice@example.com", models.ContentTypeUnknown, ConfidenceNonHTTP},
		{"empty", "", models.ContentTypeUnknown, ConfidenceMalformed},
		{"garbage", "not a url at all", models.ContentTypeUnknown, ConfidenceMalformed},
		{"broken escape", "http://[::1", models.ContentTypeUnknown, ConfidenceMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.url)
			if got.Type != tt.wantType {
				t.Errorf("Classify(%q).Type = %s, want %s", tt.url, got.Type, tt.wantType)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Classify(%q).Confidence = %v, want %v", tt.url, got.Confidence, tt.wantConfidence)
			}
			if got.Descriptor.Family != got.Type.Family() {
				t.Errorf("Descriptor.Family = %s, want %s", got.Descriptor.Family, got.Type.Family())
			}
		})
	}
}

func TestClassifyTotal(t *testing.T) {
	inputs := []string{
		"", " ", "://", "http://", "https://", "%%%", "\x00\x01", "http://a b.com",
		"https://[bad", "//no-scheme.example/path", "?q=1", "#frag", "javascript:alert(1)",
		"HTTPS://EXAMPLE.COM/PHOTO.PNG", "data:text/plain,hello", "https://🙂.example/🙂",
	}
	for _, in := range inputs {
		got := Classify(in)
		if !got.Type.Valid() {
			t.Errorf("Classify(%q).Type = %q, not a declared content type", in, got.Type)
		}
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Errorf("Classify(%q).Confidence = %v, out of range", in, got.Confidence)
		}
		if again := Classify(in); again != got {
			t.Errorf("Classify(%q) not deterministic: %+v then %+v", in, got, again)
		}
	}
}

func TestConfidenceOrdering(t *testing.T) {
	tiers := []string{
		"https://twitter.com/alice/status/42",
		"https://example.com/a.png",
		"https://medium.com/@someone/essay-123",
		"https://shop.example.com/item/blue-widget",
		"https://example.com/posts/42",
		"gopher://example.com",
		"garbage",
	}
	prev := 2.0
	for _, u := range tiers {
		c := Classify(u).Confidence
		if c > prev {
			t.Errorf("Classify(%q).Confidence = %v, higher than previous tier %v", u, c, prev)
		}
		prev = c
	}
}

func TestExtractPlatformID(t *testing.T) {
	tests := []struct {
		url    string
		typ    models.ContentType
		want   string
		wantOK bool
	}{
		{"https://twitter.com/alice/status/42?s=20", models.ContentTypeTwitter, "42", true},
		{"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", models.ContentTypeYouTube, "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ?t=10", models.ContentTypeYouTube, "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/aBcDeFgHiJk", models.ContentTypeYouTube, "aBcDeFgHiJk", true},
		{"https://www.instagram.com/p/Cabc123_x/", models.ContentTypeInstagram, "Cabc123_x", true},
		{"https://www.instagram.com/stories/bob/3141592653/", models.ContentTypeInstagram, "3141592653", true},
		{"https://www.tiktok.com/@bob/video/7234567890123456789", models.ContentTypeTikTok, "7234567890123456789", true},
		{"https://www.reddit.com/r/golang/comments/abc123/title/", models.ContentTypeReddit, "abc123", true},
		{"https://github.com/golang/go.git", models.ContentTypeGitHub, "golang/go", true},
		{"https://stackoverflow.com/questions/11227809/x", models.ContentTypeStackOverflow, "11227809", true},
		{"https://www.amazon.com/Some-Book/dp/b08n5wrwnw", models.ContentTypeAmazon, "B08N5WRWNW", true},
		{"https://arxiv.org/abs/2401.12345v3", models.ContentTypeArXiv, "2401.12345", true},
		{"https://arxiv.org/abs/hep-th/9901001", models.ContentTypeArXiv, "hep-th/9901001", true},
		{"https://en.wikipedia.org/wiki/Go_(programming_language)", models.ContentTypeWikipedia, "Go (programming language)", true},
		{"https://twitter.com/alice", models.ContentTypeTwitter, "", false},
		{"https://example.com/a.png", models.ContentTypeImage, "", false},
		{"", models.ContentTypeYouTube, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := ExtractPlatformID(tt.url, tt.typ)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ExtractPlatformID(%q, %s) = %q, %v; want %q, %v", tt.url, tt.typ, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "https://youtube.com/watch?v=dQw4w9WgXcQ"},
		{"https://x.com/alice/status/42", "https://twitter.com/alice/status/42"},
		{"https://mobile.twitter.com/alice/status/42?ref_src=twsrc", "https://twitter.com/alice/status/42"},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ&utm_source=x", "https://youtube.com/watch?v=dQw4w9WgXcQ"},
		{"https://old.reddit.com/r/golang/", "https://reddit.com/r/golang"},
		{"https://Example.com/post/?utm_medium=a&id=7&fbclid=z", "https://example.com/post?id=7"},
		{"https://example.com/", "https://example.com"},
		{"  https://example.com/a  ", "https://example.com/a"},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeURL(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	inputs := []string{
		"https://youtu.be/dQw4w9WgXcQ?t=42&si=x",
		"https://example.com/a//",
		"https://example.com/?b=2&a=1&utm_campaign=c",
		"https://example.com/path%2Fwith%2Fslashes/",
		"https://example.com/#frag",
		"https://example.com/?flag",
		"mailto:someone@example.com",
		"",
		"%%%",
	}
	for _, in := range inputs {
		once := NormalizeURL(in)
		twice := NormalizeURL(once)
		if once != twice {
			t.Errorf("NormalizeURL not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestDomainSignals(t *testing.T) {
	s := DomainSignals("https://arxiv.org/abs/2401.12345")
	if !s.HasArXiv || s.ArXivID != "2401.12345" {
		t.Errorf("arXiv signal = %v %q", s.HasArXiv, s.ArXivID)
	}
	if s.DomainType != "academic" {
		t.Errorf("DomainType = %q, want academic", s.DomainType)
	}

	s = DomainSignals("https://doi.org/10.1145/3290605.3300857")
	if !s.HasDOI || s.DOI != "10.1145/3290605.3300857" {
		t.Errorf("DOI signal = %v %q", s.HasDOI, s.DOI)
	}

	s = DomainSignals("https://www.cdc.gov/flu").ContentSignals("Abstract ... Smith et al. showed [1] and [2]. References")
	if s.DomainType != "gov" || !s.HasCitations || !s.HasReferences || !s.HasAbstract {
		t.Errorf("content signals = %+v", s)
	}
	if s.AcademicScore != 2.5 {
		t.Errorf("AcademicScore = %v, want 2.5", s.AcademicScore)
	}
}
