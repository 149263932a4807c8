// Package temporal implements the temporal trend and lifecycle analyzer:
// per-keyword monthly time series, OLS trend estimation, pattern detection,
// lifecycle classification, and statistical comparison of named time periods.
package temporal

import (
	"sort"
	"strings"
	"time"

	"github.com/helioscope/slr-analytics-service/internal/domain"
)

// Occurrence is one (keyword, publication) association with a resolved date.
type Occurrence struct {
	Date          time.Time `json:"date"`
	Year          int       `json:"year"`
	Month         int       `json:"month"`
	PublicationID string    `json:"publication_id"`
	Title         string    `json:"title"`
	CitationCount int       `json:"citation_count"`
}

// PreparedData is the per-keyword occurrence table the analyzer operates on.
// Order records the rank at which each keyword was first seen while scanning
// the publications; ranked outputs use it as the deterministic tie-break.
type PreparedData struct {
	Occurrences map[string][]Occurrence
	Order       map[string]int
}

// Keywords returns the prepared keywords in first-seen order.
func (p *PreparedData) Keywords() []string {
	out := make([]string, len(p.Order))
	for k, i := range p.Order {
		out[i] = k
	}
	return out
}

// rank returns the first-seen rank of a keyword, for tie-breaking. Unknown
// keywords sort last.
func (p *PreparedData) rank(keyword string) int {
	if i, ok := p.Order[keyword]; ok {
		return i
	}
	return len(p.Order)
}

// Prepare builds the per-keyword occurrence table from publications and a
// keyword vocabulary. Publications without a resolved date are skipped. A
// publication's active keywords are the union of its attached keyword list
// and every vocabulary keyword found as a case-insensitive substring of its
// title and abstract; each keyword counts at most once per publication.
func Prepare(pubs []*domain.Publication, vocab domain.Vocabulary) *PreparedData {
	prepared := &PreparedData{
		Occurrences: make(map[string][]Occurrence),
		Order:       make(map[string]int),
	}

	// Vocabulary order is fixed up front so first-seen ranks are stable
	// across runs.
	vocabKeywords := vocab.Keywords()
	sort.Strings(vocabKeywords)

	for _, pub := range pubs {
		date, ok := pub.ResolvedTime()
		if !ok {
			continue
		}

		for _, keyword := range publicationKeywords(pub, vocabKeywords) {
			if _, seen := prepared.Order[keyword]; !seen {
				prepared.Order[keyword] = len(prepared.Order)
			}
			prepared.Occurrences[keyword] = append(prepared.Occurrences[keyword], Occurrence{
				Date:          date,
				Year:          date.Year(),
				Month:         int(date.Month()),
				PublicationID: pub.ID,
				Title:         pub.Title,
				CitationCount: pub.CitationCount,
			})
		}
	}

	return prepared
}

// publicationKeywords returns the deduplicated active keyword set for one
// publication, preserving discovery order: attached keywords first, then
// vocabulary matches against title and abstract.
func publicationKeywords(pub *domain.Publication, vocabKeywords []string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(k string) {
		if k == "" {
			return
		}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}

	for _, raw := range pub.Keywords {
		add(domain.NormalizeKeyword(raw))
	}

	text := pub.SearchText()
	for _, k := range vocabKeywords {
		if strings.Contains(text, strings.ToLower(k)) {
			add(k)
		}
	}

	return out
}
