// Package analytics derives keywords and language from article text.
package analytics

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/pemistahl/lingua-go"
)

// stopwords are frequent words and web UI noise that never make keywords.
var stopwords = wordSet(`
a about above across after afterwards again against all almost alone along already also
although always am among amongst amount an and another any anyhow anyone anything anyway
anywhere are aren't around as at back be became because become becomes becoming been before
beforehand behind being below beside besides between beyond both but by can can't cannot
could couldn't did didn't do does doesn't doing don't done down during each either else
elsewhere enough entirely especially etc even ever every everyone everything everywhere few
for former formerly from further had hadn't has hasn't have haven't having he he'd he'll
he's hence her here hereafter hereby herein here's hereupon hers herself him himself his how
however i i'd i'll i'm i've if in indeed into is isn't it it's its itself just keep last
latter latterly least less let let's like likely made make many may maybe me meanwhile might
mine more moreover most mostly much must mustn't my myself neither never nevertheless next no
nobody none noone nor not nothing now nowhere of off often on once one only onto or other
others otherwise our ours ourselves out over own part per perhaps please put rather re same
see seem seemed seeming seems several she she'd she'll she's should shouldn't since so some
somehow someone something sometime sometimes somewhere still such take than that that's the
their theirs them themselves then thence there thereafter thereby therefore therein there's
thereupon these they they'd they'll they're they've this those through throughout thru thus
to together too toward towards under until up upon us use very via was wasn't we we'd we'll
we're we've well were weren't what whatever what's when whence whenever where whereafter
whereas whereby wherein where's whereupon wherever whether which while whither who who'd
whoever who'll who's whose why will with within without won't would wouldn't yet you you'd
you'll you're you've your yours yourself yourselves ain't it'll shan't that'll when's
click clickable clicked clicking button link menu redirected redirect redirecting page pages
website site home homepage search searching searched loading loaded load loads
`)

func wordSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword checks if a word is a common stopword that should be filtered out.
func IsStopword(word string) bool {
	_, exists := stopwords[strings.ToLower(word)]
	return exists
}

// WordFrequency counts non-stopword tokens of text, lower-cased with
// surrounding punctuation removed.
func WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word == "" || IsStopword(word) {
			continue
		}
		frequencies[word]++
	}
	return frequencies
}

// TopWords returns the n most frequent valid keywords, ties broken
// alphabetically.
func TopWords(frequencies map[string]int, n int) []string {
	type wordCount struct {
		word  string
		count int
	}
	counts := make([]wordCount, 0, len(frequencies))
	for w, c := range frequencies {
		if isKeyword(w) {
			counts = append(counts, wordCount{w, c})
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].word < counts[j].word
	})

	if n > len(counts) {
		n = len(counts)
	}
	top := make([]string, 0, n)
	for _, c := range counts[:n] {
		top = append(top, c.word)
	}
	return top
}

// Keywords is TopWords over the frequencies of text.
func Keywords(text string, n int) []string {
	return TopWords(WordFrequency(text), n)
}

// isKeyword drops short tokens, pure numbers and obviously broken tokens.
func isKeyword(word string) bool {
	if len([]rune(word)) < 3 {
		return false
	}
	hasLetter := false
	for _, r := range word {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}
	if strings.HasSuffix(word, ":") || strings.HasSuffix(word, "=") {
		return false
	}
	if strings.Count(word, "(") != strings.Count(word, ")") ||
		strings.Count(word, "[") != strings.Count(word, "]") {
		return false
	}
	return strings.Count(word, "\"")%2 == 0
}

var (
	languageOnce     sync.Once
	languageDetector lingua.LanguageDetector
)

var detectedLanguages = []lingua.Language{
	lingua.English, lingua.French, lingua.German, lingua.Spanish,
	lingua.Portuguese, lingua.Italian, lingua.Dutch,
}

// minLanguageSample is the shortest text worth running detection on.
const minLanguageSample = 20

// DetectLanguage returns the ISO 639-1 code of text and the detector's
// confidence in it. ok is false for short or ambiguous text.
func DetectLanguage(text string) (code string, confidence float64, ok bool) {
	text = strings.TrimSpace(text)
	if len(text) < minLanguageSample {
		return "", 0, false
	}
	languageOnce.Do(func() {
		languageDetector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectedLanguages...).
			Build()
	})

	language, exists := languageDetector.DetectLanguageOf(text)
	if !exists {
		return "", 0, false
	}
	confidence = languageDetector.ComputeLanguageConfidence(text, language)
	return strings.ToLower(language.IsoCode639_1().String()), confidence, true
}
