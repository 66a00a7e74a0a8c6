package extractors

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/linkmeta/models"
	"github.com/dtnitsch/linkmeta/pkg/detector"
	"github.com/dtnitsch/linkmeta/pkg/extractor"
	"github.com/dtnitsch/linkmeta/pkg/fetcher"
	"github.com/dtnitsch/linkmeta/pkg/parser"
)

// subjectCodeRe matches arXiv subject classes such as cs.CL or hep-th.
var subjectCodeRe = regexp.MustCompile(`\(([a-z-]+(?:\.[A-Za-z]{2})?)\)`)

// Academic reads preprint and paper landing pages through the Highwire
// citation_* tags that arXiv, bioRxiv and most journals emit.
type Academic struct {
	extractor.Base
}

func NewAcademic(f fetcher.HTMLFetcher, log *slog.Logger) *Academic {
	return &Academic{Base: extractor.NewBase(models.ContentTypeArXiv, f, log)}
}

func (e *Academic) Extract(ctx context.Context, opts extractor.Options) (*models.ExtractorResult, error) {
	doc, _, err := e.Document(ctx, opts)
	if err != nil {
		return e.Degrade(opts, e.fromURL(opts.URL), err)
	}

	fields := extractor.ExtractBasicFields(doc, opts.URL)
	meta := e.fromURL(opts.URL)
	details := meta.Details.(*models.AcademicDetails)

	meta.Title = extractor.FirstNonEmpty(extractor.Meta(doc, "citation_title"), fields.Title, meta.Title)
	meta.Favicon = fields.Favicon
	meta.Thumbnail = fields.Thumbnail
	meta.SiteName = extractor.FirstNonEmpty(extractor.Meta(doc, "citation_publisher"), fields.SiteName)
	meta.PublishedAt = extractor.ParseDate(extractor.FirstNonEmpty(
		extractor.Meta(doc, "citation_publication_date", "citation_date", "citation_online_date"),
		extractor.Meta(doc, "dc.date"),
	))
	if meta.PublishedAt == nil {
		meta.PublishedAt = fields.PublishedAt
	}

	doc.Find(`meta[name="citation_author"]`).Each(func(i int, s *goquery.Selection) {
		if name := strings.TrimSpace(s.AttrOr("content", "")); name != "" {
			details.Authors = append(details.Authors, authorName(name))
		}
	})
	if len(details.Authors) > 0 {
		meta.Author = &models.Author{Name: details.Authors[0]}
	}

	details.Abstract = extractor.FirstNonEmpty(
		extractor.Meta(doc, "citation_abstract"),
		abstractText(doc),
		fields.Description,
	)
	meta.Description = shorten(details.Abstract, maxExcerptLen)
	details.DOI = extractor.FirstNonEmpty(extractor.Meta(doc, "citation_doi", "dc.identifier"), details.DOI)
	details.PDFURL = extractor.FirstNonEmpty(extractor.Meta(doc, "citation_pdf_url"), details.PDFURL)
	details.Categories = subjects(doc)

	signals := detector.DomainSignals(opts.URL).ContentSignals(details.Abstract)
	if details.DOI == "" && signals.HasDOI {
		details.DOI = signals.DOI
	}
	if details.ArXivID == "" {
		if id := extractor.FirstNonEmpty(extractor.Meta(doc, "citation_arxiv_id"), signals.ArXivID); id != "" {
			details.ArXivID = id
			details.PDFURL = extractor.FirstNonEmpty(details.PDFURL, "https://arxiv.org/pdf/"+id)
		}
	}
	meta.Tags = details.Categories
	meta.Keywords = splitKeywords(extractor.Meta(doc, "citation_keywords", "keywords"))

	return e.Result(meta, ConfidenceAcademic, models.SourceScraping), nil
}

// authorName turns "Last, First" into "First Last".
func authorName(name string) string {
	last, first, ok := strings.Cut(name, ",")
	if !ok {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// abstractText finds the abstract block, or the paragraph following an
// "Abstract" heading.
func abstractText(doc *goquery.Document) string {
	block := doc.Find("blockquote.abstract, div.abstract, section.abstract, #abstract").First()
	if block.Length() > 0 {
		block = block.Clone()
		block.Find(".descriptor").Remove()
		return strings.TrimPrefix(parser.NormalizeText(block.Text()), "Abstract:")
	}

	var abstract string
	doc.Find("h1,h2,h3,h4").EachWithBreak(func(i int, h *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(h.Text()), "abstract") {
			return true
		}
		abstract = parser.NormalizeText(h.NextFiltered("p").Text())
		return abstract == ""
	})
	return abstract
}

// subjects returns the subject codes listed on an arXiv abstract page.
func subjects(doc *goquery.Document) []string {
	var codes []string
	for _, m := range subjectCodeRe.FindAllStringSubmatch(doc.Find("td.subjects").Text(), -1) {
		codes = append(codes, m[1])
	}
	return codes
}

func (e *Academic) fromURL(rawURL string) models.ContentMetadata {
	details := &models.AcademicDetails{}
	meta := models.ContentMetadata{URL: rawURL, Details: details}
	signals := detector.DomainSignals(rawURL)
	if signals.HasArXiv {
		details.ArXivID = signals.ArXivID
		details.PDFURL = "https://arxiv.org/pdf/" + signals.ArXivID
		meta.Title = "arXiv:" + signals.ArXivID
		meta.SiteName = "arXiv"
	}
	if signals.HasDOI {
		details.DOI = signals.DOI
	}
	return meta
}
