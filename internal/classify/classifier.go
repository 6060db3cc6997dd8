// Package classify scores canonical articles against weighted keyword
// tables. Classification is deterministic: identical text and table always
// yield identical hits, score, and verdict.
package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/Veraticus/follow-the-money/internal/model"
)

// Classifier matches one keyword table against article text. The automaton
// finds candidate terms in a single pass; each candidate is then verified
// with a word-boundary check so substrings inside longer words never match
// ("fraud" must not hit inside "defrauding"). Each table term counts at
// most once per article no matter how often it occurs.
type Classifier struct {
	table   *Table
	matcher *ahocorasick.Matcher
	terms   []string
	weights []float64
}

// New builds a classifier from a keyword table. The table is validated
// here; an empty or malformed table is a configuration error and the
// caller must not proceed.
func New(table *Table) (*Classifier, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}

	terms := make([]string, len(table.Keywords))
	weights := make([]float64, len(table.Keywords))
	for i, kw := range table.Keywords {
		terms[i] = strings.ToLower(strings.TrimSpace(kw.Term))
		weights[i] = kw.Weight
	}

	return &Classifier{
		table:   table,
		matcher: ahocorasick.NewStringMatcher(terms),
		terms:   terms,
		weights: weights,
	}, nil
}

// Table returns the keyword table this classifier was built from.
func (c *Classifier) Table() *Table {
	return c.table
}

// MinHits returns the table's classification threshold.
func (c *Classifier) MinHits() int {
	return c.table.MinHits
}

// Classify scores an article. FraudHits is the number of distinct table
// terms present in the text with word boundaries on both sides; FraudScore
// is the sum of the matched terms' weights. Repeats of a term do not add
// hits. A record with zero matches is never fraud, regardless of threshold.
func (c *Classifier) Classify(article model.Article) model.ClassifiedArticle {
	buffer := strings.ToLower(article.Title + "\n" + article.Summary + "\n" + article.Body)

	hits := 0
	score := 0.0
	for _, idx := range c.matcher.Match([]byte(buffer)) {
		if idx >= len(c.terms) {
			continue
		}
		if containsWord(buffer, c.terms[idx]) {
			hits++
			score += c.weights[idx]
		}
	}

	return model.ClassifiedArticle{
		Article:    article,
		FraudHits:  hits,
		FraudScore: score,
		IsFraud:    hits > 0 && hits >= c.table.MinHits,
	}
}

// containsWord reports whether term occurs in text delimited by word
// boundaries on both sides. Both inputs are already lowercased.
func containsWord(text, term string) bool {
	start := 0
	for {
		i := strings.Index(text[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)

		if boundaryBefore(text, i) && boundaryAfter(text, end) {
			return true
		}
		start = i + 1
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
