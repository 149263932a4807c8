package domain

import (
	"regexp"
	"strings"
)

var keywordCleanupPattern = regexp.MustCompile(`[^a-z0-9\s\-]`)

var keywordWhitespacePattern = regexp.MustCompile(`\s+`)

// NormalizeKeyword normalizes a raw keyword for matching and aggregation:
// lowercase, strip characters outside [a-z0-9 -], collapse whitespace.
func NormalizeKeyword(raw string) string {
	k := strings.ToLower(strings.TrimSpace(raw))
	k = keywordCleanupPattern.ReplaceAllString(k, "")
	k = keywordWhitespacePattern.ReplaceAllString(k, " ")
	return strings.TrimSpace(k)
}

// KeywordEntry is one vocabulary term with its corpus-level statistics.
type KeywordEntry struct {
	Keyword    string  `json:"keyword"`
	Frequency  int     `json:"frequency"`
	Importance float64 `json:"importance,omitempty"`
}

// Vocabulary maps normalized keywords to their corpus statistics. It is the
// unit the temporal analyzer operates on: each key becomes one keyword
// time series.
type Vocabulary map[string]KeywordEntry

// Keywords returns all vocabulary terms in unspecified order.
func (v Vocabulary) Keywords() []string {
	out := make([]string, 0, len(v))
	for k := range v {
		out = append(out, k)
	}
	return out
}

// Add records one occurrence of a keyword, normalizing it first. Empty
// post-normalization keywords are dropped.
func (v Vocabulary) Add(raw string) {
	k := NormalizeKeyword(raw)
	if k == "" {
		return
	}
	e := v[k]
	e.Keyword = k
	e.Frequency++
	v[k] = e
}

// BuildVocabulary collects a vocabulary from the keywords attached to a set
// of publications.
func BuildVocabulary(pubs []*Publication) Vocabulary {
	v := make(Vocabulary)
	for _, pub := range pubs {
		for _, raw := range pub.Keywords {
			v.Add(raw)
		}
	}
	return v
}
