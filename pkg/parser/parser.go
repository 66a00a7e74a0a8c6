package parser

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/linkmeta/models"
	"github.com/go-shiori/go-readability"
)

// Parse turns raw HTML into a queryable document.
func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Readable runs go-readability over html to find the main article.
func Readable(rawURL, html string) (readability.Article, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return readability.Article{}, err
	}

	readabilityParser := readability.NewParser()
	article, err := readabilityParser.Parse(strings.NewReader(html), parsedURL)
	if err != nil {
		return readability.Article{}, fmt.Errorf("readability failed: %w", err)
	}
	return article, nil
}

// Outline collects h1-h3 headings in document order.
func Outline(sel *goquery.Selection) []models.Heading {
	var sections []models.Heading
	sel.Find("h1,h2,h3").Each(func(i int, s *goquery.Selection) {
		text := NormalizeText(s.Text())
		if text == "" {
			return
		}
		level := int(goquery.NodeName(s)[1] - '0')
		sections = append(sections, models.Heading{Level: level, Text: text})
	})
	return sections
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// NormalizeText cleans up a string by trimming space and removing excess newlines.
func NormalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			// Write the line and a single space for separation
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	// Return the result, trimming the final space
	return strings.TrimSpace(b.String())
}
