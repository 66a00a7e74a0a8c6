package common

import (
	"regexp"
	"strings"

	"github.com/dtnitsch/linkmeta/pkg/detector"
)

// markdownLinkPattern matches "[text](url)" and captures url.
var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// SanitizeURL performs basic cleanup on URLs to handle common copy-paste issues.
// Removes whitespace, trailing punctuation and markdown artifacts.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// [click here](https://example.com) -> https://example.com
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	// https://example.com, -> https://example.com
	trailingChars := []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"}
	for _, char := range trailingChars {
		cleaned = strings.TrimSuffix(cleaned, char)
	}

	// (https://example.com -> https://example.com
	leadingChars := []string{"(", "[", "<", "\"", "'"}
	for _, char := range leadingChars {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

// SplitURLs collects URLs from a comma separated flag value and positional
// arguments, sanitized, in order, skipping blanks. Non http(s) entries are
// kept so they still get a result; they are also returned in invalid.
func SplitURLs(flagValue string, args []string) (urls, invalid []string) {
	var raw []string
	if flagValue != "" {
		raw = append(raw, strings.Split(flagValue, ",")...)
	}
	raw = append(raw, args...)

	for _, r := range raw {
		cleaned := SanitizeURL(r)
		if cleaned == "" {
			continue
		}
		urls = append(urls, cleaned)
		if !detector.IsHTTPURL(cleaned) {
			invalid = append(invalid, cleaned)
		}
	}
	return urls, invalid
}

// FilterFields keeps only the comma separated keys of record. An empty
// list keeps everything.
func FilterFields(record map[string]any, fieldsStr string) map[string]any {
	if fieldsStr == "" {
		return record
	}

	includeFields := make(map[string]bool)
	for _, field := range strings.Split(fieldsStr, ",") {
		if field = strings.TrimSpace(field); field != "" {
			includeFields[field] = true
		}
	}

	filtered := make(map[string]any, len(includeFields))
	for key, value := range record {
		if includeFields[key] {
			filtered[key] = value
		}
	}
	return filtered
}
