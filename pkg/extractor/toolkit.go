package extractor

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/dtnitsch/linkmeta/pkg/parser"
)

// BasicFields are the fields every page can offer.
type BasicFields struct {
	Title       string
	Description string
	Thumbnail   string
	Favicon     string
	SiteName    string
	PublishedAt *time.Time
	Author      string
}

const maxDescriptionLen = 300

// ExtractBasicFields reads the common fields from doc. Each field tries Open
// Graph first, then the social card, then generic meta tags, then the DOM.
func ExtractBasicFields(doc *goquery.Document, pageURL string) BasicFields {
	og := OpenGraph(doc)
	card := TwitterCard(doc)

	var f BasicFields
	f.Title = FirstNonEmpty(
		og.Get("title"),
		card.Get("title"),
		Meta(doc, "title"),
		parser.NormalizeText(doc.Find("title").First().Text()),
		parser.NormalizeText(doc.Find("h1").First().Text()),
	)
	f.Description = FirstNonEmpty(
		og.Get("description"),
		card.Get("description"),
		Meta(doc, "description"),
		truncate(parser.NormalizeText(doc.Find("p").First().Text()), maxDescriptionLen),
	)
	f.Thumbnail = ResolveURL(pageURL, FirstNonEmpty(
		FirstImage(og),
		card.Get("image"),
		card.Get("image", "src"),
		Meta(doc, "image", "thumbnail"),
		doc.Find(`link[rel="image_src"]`).AttrOr("href", ""),
		doc.Find("img[src]").First().AttrOr("src", ""),
	))
	f.Favicon = Favicon(doc, pageURL)
	f.SiteName = FirstNonEmpty(
		og.Get("site_name"),
		strings.TrimPrefix(card.Get("site"), "@"),
		Meta(doc, "application-name"),
		hostName(pageURL),
	)
	f.PublishedAt = ParseDate(FirstNonEmpty(
		Meta(doc, "article:published_time", "og:published_time"),
		Meta(doc, "datePublished", "date", "pubdate", "publish-date", "dc.date"),
		doc.Find("time[datetime]").First().AttrOr("datetime", ""),
	))
	author := Meta(doc, "article:author")
	if strings.HasPrefix(author, "http") {
		author = ""
	}
	f.Author = FirstNonEmpty(
		author,
		card.Get("creator"),
		Meta(doc, "author"),
		parser.NormalizeText(doc.Find(`[rel="author"],[itemprop="author"]`).First().Text()),
	)
	return f
}

// Favicon finds the page icon, falling back to /favicon.ico on the host.
func Favicon(doc *goquery.Document, pageURL string) string {
	selectors := []string{
		`link[rel="icon"]`,
		`link[rel="shortcut icon"]`,
		`link[rel="apple-touch-icon"]`,
		`link[rel~="icon"]`,
	}
	for _, sel := range selectors {
		if href := doc.Find(sel).First().AttrOr("href", ""); href != "" {
			return ResolveURL(pageURL, href)
		}
	}
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/favicon.ico"
}

// JSONLD decodes every application/ld+json block, flattening top-level
// arrays and @graph containers. Invalid blocks are skipped.
func JSONLD(doc *goquery.Document) []map[string]any {
	var out []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		var raw any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &raw); err != nil {
			return
		}
		out = appendLD(out, raw)
	})
	return out
}

func appendLD(out []map[string]any, raw any) []map[string]any {
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			out = appendLD(out, item)
		}
	case map[string]any:
		out = append(out, v)
		if graph, ok := v["@graph"]; ok {
			out = appendLD(out, graph)
		}
	}
	return out
}

// FindLD returns the first object whose @type is one of types.
func FindLD(objects []map[string]any, types ...string) map[string]any {
	for _, obj := range objects {
		for _, t := range LDTypes(obj) {
			for _, want := range types {
				if strings.EqualFold(t, want) {
					return obj
				}
			}
		}
	}
	return nil
}

// LDTypes returns @type as a list.
func LDTypes(obj map[string]any) []string {
	switch v := obj["@type"].(type) {
	case string:
		return []string{v}
	case []any:
		var types []string
		for _, t := range v {
			if s, ok := t.(string); ok {
				types = append(types, s)
			}
		}
		return types
	}
	return nil
}

// LDString reads a string at path, descending through objects and taking
// the first element of arrays. Numbers are formatted.
func LDString(obj map[string]any, path ...string) string {
	var cur any = obj
	for _, key := range path {
		cur = firstOf(cur)
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[key]
	}
	switch v := firstOf(cur).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any:
		// schema.org often nests {"@type": "Person", "name": ...}
		if name, ok := v["name"].(string); ok {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

func firstOf(v any) any {
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return nil
		}
		return arr[0]
	}
	return v
}

var countRe = regexp.MustCompile(`(?i)^([\d.,]+)\s*([kmb])?`)

// ParseCount reads human counts such as "1,234", "12K" or "3.4M".
func ParseCount(s string) (int64, bool) {
	m := countRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	digits := strings.ReplaceAll(m[1], ",", "")
	n, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(m[2]) {
	case "k":
		n *= 1e3
	case "m":
		n *= 1e6
	case "b":
		n *= 1e9
	}
	return int64(math.Round(n)), true
}

// CountPtr is ParseCount returning nil when s holds no count.
func CountPtr(s string) *int64 {
	if n, ok := ParseCount(s); ok {
		return &n
	}
	return nil
}

// ParseDate accepts the many date formats found in the wild.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil || t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseISODuration converts an ISO-8601 duration like PT1H2M3S to seconds.
func ParseISODuration(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, false
	}
	atoi := func(v string) float64 {
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	secs := atoi(m[1])*86400 + atoi(m[2])*3600 + atoi(m[3])*60 + atoi(m[4])
	return int(secs), true
}

// ResolveURL makes ref absolute against base. Unparseable input is
// returned unchanged.
func ResolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func hostName(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// FirstNonEmpty returns the first value that is not blank, trimmed.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
