package detector

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/dtnitsch/linkmeta/models"
)

// Signals are cheap hints derived from a URL and, optionally, page text.
type Signals struct {
	DomainType string // gov, edu, academic, mobile, commercial

	HasDOI   bool
	DOI      string
	HasArXiv bool
	ArXivID  string

	HasLaTeX      bool
	HasCitations  bool
	HasReferences bool
	HasAbstract   bool
	AcademicScore float64 // 0-10
}

var (
	doiRe        = regexp.MustCompile(`10\.\d{4,}/[^\s"'<>?#]+`)
	arxivTextRe  = regexp.MustCompile(`(?i)arXiv:\s*(\d{4}\.\d{4,5})`)
	latexMarkers = []string{"\\begin{", "\\end{", "\\cite{", "\\ref{", "\\label{"}
	citeMarkers  = []string{"et al.", "et al ", "[1]", "[2]", "(1)", "(2)"}
)

var academicDomains = []string{
	"arxiv.org", "doi.org", "pubmed.ncbi.nlm.nih.gov",
	"scholar.google.com", "researchgate.net", "academia.edu",
	"biorxiv.org", "medrxiv.org", "ssrn.com",
}

// DomainSignals reports DOI and arXiv identifiers found in the URL itself
// along with a coarse domain type.
func DomainSignals(rawURL string) Signals {
	var s Signals
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return s
	}
	s.DomainType = domainType(u)

	decoded, err := url.PathUnescape(u.Path)
	if err != nil {
		decoded = u.Path
	}
	if m := doiRe.FindString(decoded); m != "" {
		s.HasDOI = true
		s.DOI = strings.TrimSuffix(m, ".pdf")
	}
	if id, ok := ExtractPlatformID(rawURL, models.ContentTypeArXiv); ok {
		s.HasArXiv = true
		s.ArXivID = id
	}
	s.score()
	return s
}

// ContentSignals extends s with academic markers found in page text.
func (s Signals) ContentSignals(content string) Signals {
	lower := strings.ToLower(content)

	if !s.HasDOI {
		if m := doiRe.FindString(content); m != "" {
			s.HasDOI = true
			s.DOI = m
		}
	}
	if !s.HasArXiv {
		if m := arxivTextRe.FindStringSubmatch(content); len(m) > 1 {
			s.HasArXiv = true
			s.ArXivID = m[1]
		}
	}

	for _, marker := range latexMarkers {
		if strings.Contains(content, marker) {
			s.HasLaTeX = true
			break
		}
	}

	citations := 0
	for _, marker := range citeMarkers {
		if strings.Contains(lower, marker) {
			citations++
		}
	}
	s.HasCitations = citations >= 2
	s.HasReferences = strings.Contains(lower, "references") || strings.Contains(lower, "bibliography")
	s.HasAbstract = strings.Contains(lower, "abstract")

	s.score()
	return s
}

func (s *Signals) score() {
	score := 0.0
	if s.HasDOI {
		score += 3.0
	}
	if s.HasArXiv {
		score += 3.0
	}
	if s.HasLaTeX {
		score += 1.5
	}
	if s.HasCitations {
		score += 1.0
	}
	if s.HasReferences {
		score += 1.0
	}
	if s.HasAbstract {
		score += 0.5
	}
	s.AcademicScore = score
}

// domainType identifies the domain classification
func domainType(u *url.URL) string {
	host := strings.ToLower(u.Hostname())

	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".mil") {
		return "gov"
	}
	if strings.HasSuffix(host, ".edu") {
		return "edu"
	}
	for _, domain := range academicDomains {
		if strings.Contains(host, domain) {
			return "academic"
		}
	}
	if strings.HasPrefix(host, "m.") || strings.HasPrefix(host, "mobile.") {
		return "mobile"
	}
	return "commercial"
}
