package extractors

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"github.com/dtnitsch/linkmeta/pkg/parser"
	"github.com/dtnitsch/linkmeta/pkg/reader"
)

func extractPage(t *testing.T, e extractor.Extractor, rawURL, page string) *models.ExtractorResult {
	t.Helper()
	res, err := e.Extract(context.Background(), extractor.Options{URL: rawURL, HTML: page})
	if err != nil {
		t.Fatalf("Extract(%s) error = %v", rawURL, err)
	}
	return res
}

func TestYouTube(t *testing.T) {
	const videoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	page := `<html><head><title>Gopher Talk - YouTube</title>
<meta property="og:title" content="Gopher Talk">
<meta name="keywords" content="go, concurrency">
<script type="application/ld+json">{"@context":"https://schema.org","@type":"VideoObject","name":"Gopher Talk",
"description":"A talk about channels","duration":"PT4M13S","uploadDate":"2024-02-10T08:00:00Z",
"author":{"@type":"Person","name":"GopherCon","url":"https://www.youtube.com/@gophercon"},"genre":"Education",
"interactionStatistic":[{"@type":"InteractionCounter","interactionType":"https://schema.org/WatchAction","userInteractionCount":12345}]}</script>
</head><body><script>var ytInitialPlayerResponse = {"videoDetails":{"channelId":"UCx9QVEApa5BKLw9r8cnOFEA"}};</script></body></html>`

	res := extractPage(t, NewYouTube(nil, nil), videoURL, page)
	if res.Confidence != ConfidenceVideoScrape {
		t.Errorf("Confidence = %v", res.Confidence)
	}
	meta := res.Metadata
	details, ok := meta.Details.(*models.VideoDetails)
	if !ok {
		t.Fatalf("Details = %T", meta.Details)
	}
	want := &models.VideoDetails{
		VideoID:     "dQw4w9WgXcQ",
		ChannelID:   "UCx9QVEApa5BKLw9r8cnOFEA",
		Duration:    253,
		ChannelName: "GopherCon",
		Category:    "Education",
	}
	if !reflect.DeepEqual(details, want) {
		t.Errorf("Details = %+v, want %+v", details, want)
	}
	if meta.Engagement == nil || *meta.Engagement.Views != 12345 {
		t.Errorf("Engagement = %+v", meta.Engagement)
	}
	if meta.Author == nil || meta.Author.Name != "GopherCon" {
		t.Errorf("Author = %+v", meta.Author)
	}
	if !reflect.DeepEqual(meta.Keywords, []string{"go", "concurrency"}) {
		t.Errorf("Keywords = %v", meta.Keywords)
	}
	if meta.Thumbnail == "" {
		t.Error("Thumbnail is empty")
	}
}

func TestYouTubeShort(t *testing.T) {
	res := extractPage(t, NewYouTube(nil, nil), "https://www.youtube.com/shorts/abcdefghijk", "<html><title>x</title></html>")
	details := res.Metadata.Details.(*models.VideoDetails)
	if !details.IsShort || details.VideoID != "abcdefghijk" {
		t.Errorf("Details = %+v", details)
	}
}

func TestGitHub(t *testing.T) {
	page := `<html><head>
<meta property="og:title" content="GitHub - golang/go: The Go programming language">
<meta property="og:image" content="https://opengraph.githubassets.com/1/golang/go">
</head><body>
<span itemprop="programmingLanguage">Go</span>
<span id="repo-stars-counter-star" title="123,456">123k</span>
<a class="topic-tag">go</a><a class="topic-tag">language</a>
</body></html>`

	res := extractPage(t, NewGitHub(nil, nil), "https://github.com/golang/go", page)
	meta := res.Metadata
	if meta.Title != "golang/go" || meta.Description != "The Go programming language" {
		t.Errorf("Title, Description = %q, %q", meta.Title, meta.Description)
	}
	details := meta.Details.(*models.RepositoryDetails)
	if details.Owner != "golang" || details.Repo != "go" || details.Language != "Go" {
		t.Errorf("Details = %+v", details)
	}
	if details.Stars == nil || *details.Stars != 123456 {
		t.Errorf("Stars = %v", details.Stars)
	}
	if !reflect.DeepEqual(meta.Tags, []string{"go", "language"}) {
		t.Errorf("Tags = %v", meta.Tags)
	}
}

func TestWikipedia(t *testing.T) {
	page := `<html><head><title>Go (programming language) - Wikipedia</title></head><body>
<h1 id="firstHeading">Go (programming language)</h1>
<div id="mw-content-text"><div class="mw-parser-output">
<p class="mw-empty-elt"></p>
<p>Go is a statically typed, compiled programming language designed at Google.<sup class="reference">[1]</sup></p>
<h2>History</h2><p>Go was designed in 2007.</p>
<h2>Design</h2><p>Go is influenced by C.</p>
</div></div>
<div id="mw-normal-catlinks"><ul><li><a>Programming languages</a></li><li><a>Google software</a></li></ul></div>
</body></html>`

	res := extractPage(t, NewWikipedia(nil, nil), "https://en.wikipedia.org/wiki/Go_(programming_language)", page)
	meta := res.Metadata
	if meta.ContentType != models.ContentTypeWikipedia || meta.Title != "Go (programming language)" {
		t.Errorf("ContentType, Title = %q, %q", meta.ContentType, meta.Title)
	}
	details := meta.Details.(*models.ArticleDetails)
	if details.Excerpt != "Go is a statically typed, compiled programming language designed at Google." {
		t.Errorf("Excerpt = %q", details.Excerpt)
	}
	wantSections := []models.Heading{{Level: 2, Text: "History"}, {Level: 2, Text: "Design"}}
	if !reflect.DeepEqual(details.Sections, wantSections) {
		t.Errorf("Sections = %+v", details.Sections)
	}
	if details.Language != "en" || details.ReadingTime != 1 {
		t.Errorf("Language, ReadingTime = %q, %d", details.Language, details.ReadingTime)
	}
	if !reflect.DeepEqual(meta.Tags, []string{"Programming languages", "Google software"}) {
		t.Errorf("Tags = %v", meta.Tags)
	}
}

func TestAcademic(t *testing.T) {
	page := `<html><head>
<meta name="citation_title" content="Attention Is Still All You Need">
<meta name="citation_author" content="Doe, Jane">
<meta name="citation_author" content="Roe, Richard">
<meta name="citation_date" content="2024/01/22">
<meta name="citation_pdf_url" content="https://arxiv.org/pdf/2401.12345">
</head><body>
<blockquote class="abstract"><span class="descriptor">Abstract:</span> We revisit attention.</blockquote>
<table><tr><td class="tablecell subjects">Computation and Language (cs.CL); Machine Learning (cs.LG)</td></tr></table>
</body></html>`

	res := extractPage(t, NewAcademic(nil, nil), "https://arxiv.org/abs/2401.12345", page)
	if res.Confidence != ConfidenceAcademic {
		t.Errorf("Confidence = %v", res.Confidence)
	}
	meta := res.Metadata
	if meta.Title != "Attention Is Still All You Need" || meta.ContentType != models.ContentTypeArXiv {
		t.Errorf("Title, ContentType = %q, %q", meta.Title, meta.ContentType)
	}
	want := &models.AcademicDetails{
		ArXivID:    "2401.12345",
		Authors:    []string{"Jane Doe", "Richard Roe"},
		PDFURL:     "https://arxiv.org/pdf/2401.12345",
		Abstract:   "We revisit attention.",
		Categories: []string{"cs.CL", "cs.LG"},
	}
	if got := meta.Details.(*models.AcademicDetails); !reflect.DeepEqual(got, want) {
		t.Errorf("Details = %+v, want %+v", got, want)
	}
	if meta.PublishedAt == nil || meta.PublishedAt.Day() != 22 {
		t.Errorf("PublishedAt = %v", meta.PublishedAt)
	}
	if meta.Author == nil || meta.Author.Name != "Jane Doe" {
		t.Errorf("Author = %+v", meta.Author)
	}
}

const storePage = `<html><head>
<meta property="og:type" content="product">
<meta property="og:title" content="Trail Shoe">
<meta property="product:price:amount" content="89.99">
<meta property="product:price:currency" content="USD">
<meta property="product:availability" content="instock">
<script type="application/ld+json">{"@type":"Product","name":"Trail Shoe","sku":"TS-100",
"brand":{"@type":"Brand","name":"Peak"},
"aggregateRating":{"@type":"AggregateRating","ratingValue":"4.6","reviewCount":"212"}}</script>
</head><body></body></html>`

func TestProduct(t *testing.T) {
	res := extractPage(t, NewProduct(nil, nil), "https://shop.example.com/products/trail-shoe", storePage)
	if res.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1", res.Confidence)
	}
	meta := res.Metadata
	if meta.ContentType != models.ContentTypeProduct {
		t.Errorf("ContentType = %q", meta.ContentType)
	}
	want := &models.ProductDetails{
		ProductID:    "TS-100",
		Price:        "89.99",
		Currency:     "USD",
		Availability: "in stock",
		Brand:        "Peak",
		Rating:       &models.Rating{Value: 4.6, Count: 212},
	}
	if got := meta.Details.(*models.ProductDetails); !reflect.DeepEqual(got, want) {
		t.Errorf("Details = %+v, want %+v", got, want)
	}
	if meta.Engagement == nil || *meta.Engagement.RatingCount != 212 {
		t.Errorf("Engagement = %+v", meta.Engagement)
	}
}

func TestAmazon(t *testing.T) {
	page := `<html><head><title>Amazon.com: Widget</title></head><body>
<span id="productTitle"> Acme Widget, Blue </span>
<a id="bylineInfo">Visit the Acme Store</a>
<span class="a-price"><span class="a-offscreen">$19.99</span></span>
<span id="acrPopover" title="4.5 out of 5 stars"></span>
<span id="acrCustomerReviewText">1,234 ratings</span>
</body></html>`

	res := extractPage(t, NewProduct(nil, nil), "https://www.amazon.com/dp/B08N5WRWNW", page)
	meta := res.Metadata
	if meta.ContentType != models.ContentTypeAmazon || meta.Title != "Acme Widget, Blue" {
		t.Errorf("ContentType, Title = %q, %q", meta.ContentType, meta.Title)
	}
	want := &models.ProductDetails{
		ProductID: "B08N5WRWNW",
		Price:     "$19.99",
		Brand:     "Acme",
		Rating:    &models.Rating{Value: 4.5, Count: 1234, Best: 5},
	}
	if got := meta.Details.(*models.ProductDetails); !reflect.DeepEqual(got, want) {
		t.Errorf("Details = %+v, want %+v", got, want)
	}
	if res.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", res.Confidence)
	}
}

func TestProductConfidence(t *testing.T) {
	tests := []struct {
		name    string
		details models.ProductDetails
		want    float64
	}{
		{"nothing", models.ProductDetails{}, 0.5},
		{"price", models.ProductDetails{Price: "1"}, 0.6},
		{"price and brand", models.ProductDetails{Price: "1", Brand: "b"}, 0.7},
		{"everything", models.ProductDetails{
			Price: "1", Brand: "b", Availability: "in stock", ProductID: "x", Rating: &models.Rating{Value: 4},
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := productConfidence(&tt.details); got != tt.want {
				t.Errorf("productConfidence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLooksLikeProduct(t *testing.T) {
	tests := []struct {
		name string
		page string
		want bool
	}{
		{"og type", `<meta property="og:type" content="product">`, true},
		{"price tag", `<meta property="product:price:amount" content="5">`, true},
		{"article", `<meta property="og:type" content="article"><p>hello</p>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parser.Parse("<html><head>" + tt.page + "</head></html>")
			if err != nil {
				t.Fatal(err)
			}
			if got := LooksLikeProduct(doc); got != tt.want {
				t.Errorf("LooksLikeProduct() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeAvailability(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://schema.org/InStock", "in stock"},
		{"http://schema.org/OutOfStock", "out of stock"},
		{"instock", "in stock"},
		{"out of stock", "out of stock"},
		{"https://schema.org/PreOrder", "preorder"},
		{"Only 3 left", "Only 3 left"},
		{"https://schema.org/UsedCondition", "used"},
	}
	for _, tt := range tests {
		if got := normalizeAvailability(tt.in); got != tt.want {
			t.Errorf("normalizeAvailability(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadingTime(t *testing.T) {
	tests := []struct{ words, want int }{
		{0, 0}, {1, 1}, {200, 1}, {201, 2}, {1000, 5},
	}
	for _, tt := range tests {
		if got := ReadingTime(tt.words); got != tt.want {
			t.Errorf("ReadingTime(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}
}

const longArticle = `<html><head><title>Life in the Deep Sea</title>
<meta property="article:tag" content="ocean"></head>
<body><nav>Home About</nav><article><h1>Life in the Deep Sea</h1>
<h2>Pressure</h2><p>%s</p><h2>Darkness</h2><p>%s</p></article></body></html>`

func articlePage() string {
	para := strings.Repeat("The deep ocean hides remarkable animals that survive crushing pressure and complete darkness every single day. ", 8)
	return strings.Replace(strings.Replace(longArticle, "%s", para, 1), "%s", para, 1)
}

func TestArticleScrape(t *testing.T) {
	res := extractPage(t, NewArticle(nil, nil, nil), "https://blog.example.com/posts/deep-sea", articlePage())
	if res.Source != models.SourceScraping || res.Confidence < ConfidenceArticle {
		t.Errorf("Source, Confidence = %q, %v", res.Source, res.Confidence)
	}
	meta := res.Metadata
	if meta.ContentType != models.ContentTypeArticle {
		t.Errorf("ContentType = %q, want article", meta.ContentType)
	}
	details, ok := meta.Details.(*models.ArticleDetails)
	if !ok {
		t.Fatalf("Details = %T", meta.Details)
	}
	if details.WordCount < minArticleWords {
		t.Errorf("WordCount = %d", details.WordCount)
	}
	if details.ReadingTime != ReadingTime(details.WordCount) {
		t.Errorf("ReadingTime = %d for %d words", details.ReadingTime, details.WordCount)
	}
	if details.Language != "en" {
		t.Errorf("Language = %q", details.Language)
	}
	if !reflect.DeepEqual(meta.Tags, []string{"ocean"}) {
		t.Errorf("Tags = %v", meta.Tags)
	}
	if len(meta.Keywords) == 0 {
		t.Error("Keywords is empty")
	}
}

func TestArticleBookmark(t *testing.T) {
	res := extractPage(t, NewArticle(nil, nil, nil), "https://example.com", "<html><title>Home</title><p>Hi</p></html>")
	if res.Metadata.ContentType != models.ContentTypeBookmark {
		t.Errorf("ContentType = %q, want bookmark", res.Metadata.ContentType)
	}
	if res.Metadata.Title != "Home" {
		t.Errorf("Title = %q", res.Metadata.Title)
	}
}

type fakeReader struct {
	content *reader.Content
	calls   int
}

func (f *fakeReader) IsAvailable() bool { return true }

func (f *fakeReader) ExtractContent(ctx context.Context, rawURL string) (*reader.Content, error) {
	f.calls++
	return f.content, nil
}

func TestArticleReader(t *testing.T) {
	r := &fakeReader{content: &reader.Content{
		Title:       "Deep Sea",
		Content:     "<div><h2>Pressure</h2><p>Animals adapt.</p></div>",
		TextContent: "Pressure Animals adapt.",
		Author:      "Sam Diver",
		Domain:      "ocean.example",
	}}
	f := &fakeFetcher{}
	e := NewArticle(f, r, nil)

	res, err := e.Extract(context.Background(), extractor.Options{URL: "https://ocean.example/deep"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Source != models.SourceAPI || res.Confidence != extractor.ConfidenceAPI {
		t.Errorf("Source, Confidence = %q, %v", res.Source, res.Confidence)
	}
	if f.calls != 0 || r.calls != 1 {
		t.Errorf("fetch calls = %d, reader calls = %d", f.calls, r.calls)
	}
	meta := res.Metadata
	if meta.Author == nil || meta.Author.Name != "Sam Diver" || meta.SiteName != "ocean.example" {
		t.Errorf("Author, SiteName = %+v, %q", meta.Author, meta.SiteName)
	}
	details := meta.Details.(*models.ArticleDetails)
	if details.WordCount != 3 || len(details.Sections) != 1 {
		t.Errorf("Details = %+v", details)
	}

	// a caller supplied page skips the reader
	if _, err := e.Extract(context.Background(), extractor.Options{URL: "https://ocean.example/deep", HTML: articlePage()}); err != nil {
		t.Fatalf("Extract(html) error = %v", err)
	}
	if r.calls != 1 {
		t.Errorf("reader calls = %d after supplied HTML, want 1", r.calls)
	}
}

func TestArticleReaderNoContent(t *testing.T) {
	r := &fakeReader{}
	f := &fakeFetcher{pages: map[string]string{"https://ocean.example/deep": articlePage()}}

	res, err := NewArticle(f, r, nil).Extract(context.Background(), extractor.Options{URL: "https://ocean.example/deep"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if r.calls != 1 || f.calls != 1 || res.Source != models.SourceScraping {
		t.Errorf("reader calls = %d, fetch calls = %d, source = %q", r.calls, f.calls, res.Source)
	}
}

type htmlReader struct {
	fakeReader
	html []string
}

func (h *htmlReader) ExtractHTML(ctx context.Context, rawURL, html string) (*reader.Content, error) {
	h.html = append(h.html, html)
	return reader.FromHTML(rawURL, html)
}

func TestArticleReaderPrefetched(t *testing.T) {
	tests := []struct {
		name      string
		r         *htmlReader
		opts      extractor.Options
		wantHTML  int
		wantCalls int
	}{
		{"prefetched", &htmlReader{}, extractor.Options{HTML: articlePage(), Prefetched: true}, 1, 0},
		{"supplied", &htmlReader{}, extractor.Options{HTML: articlePage()}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{}
			tt.opts.URL = "https://ocean.example/deep"
			res, err := NewArticle(f, tt.r, nil).Extract(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if len(tt.r.html) != tt.wantHTML || tt.r.calls != tt.wantCalls || f.calls != 0 {
				t.Errorf("html calls = %d, reader calls = %d, fetch calls = %d", len(tt.r.html), tt.r.calls, f.calls)
			}
			wantSource := models.SourceScraping
			if tt.wantHTML > 0 {
				wantSource = models.SourceAPI
			}
			if res.Source != wantSource {
				t.Errorf("Source = %q, want %q", res.Source, wantSource)
			}
		})
	}
}

func TestFile(t *testing.T) {
	e := NewFile(nil)
	const imageURL = "https://cdn.example.com/photos/sunset%20beach.jpg"
	if !e.CanHandle(imageURL) {
		t.Fatalf("CanHandle(%s) = false", imageURL)
	}
	if e.CanHandle("https://vimeo.com/12345") {
		t.Error("CanHandle(vimeo page) = true")
	}

	res, err := e.Extract(context.Background(), extractor.Options{URL: imageURL})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	meta := res.Metadata
	if meta.ContentType != models.ContentTypeImage || meta.Title != "sunset beach" {
		t.Errorf("ContentType, Title = %q, %q", meta.ContentType, meta.Title)
	}
	if meta.Media == nil || len(meta.Media.Images) != 1 || meta.Media.Images[0].ContentType != "image/jpeg" {
		t.Errorf("Media = %+v", meta.Media)
	}
	if meta.Thumbnail != imageURL {
		t.Errorf("Thumbnail = %q", meta.Thumbnail)
	}
}

func TestAllExtractors(t *testing.T) {
	all := All(Deps{})
	seen := make(map[models.ContentType]bool)
	fallbacks := 0
	for _, e := range all {
		if seen[e.Type()] {
			t.Errorf("duplicate extractor for %q", e.Type())
		}
		seen[e.Type()] = true
		if e.Priority() == extractor.FallbackPriority {
			fallbacks++
		}
	}
	if fallbacks != 1 {
		t.Errorf("fallback extractors = %d, want 1", fallbacks)
	}
}
