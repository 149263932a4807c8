// Package corpus consolidates publications fetched from multiple sources
// into a single deduplicated corpus ready for analysis.
//
// Records are standardized first, then deduplicated: DOI takes priority,
// and records without one fall back to normalized-title matching. The
// first occurrence always wins, so corpus order follows input order.
package corpus

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/observability"
)

// Processor standardizes and deduplicates publications across sources.
type Processor struct {
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewProcessor creates a corpus processor. metrics may be nil.
func NewProcessor(logger zerolog.Logger, metrics *observability.Metrics) *Processor {
	return &Processor{
		logger:  logger.With().Str("component", "corpus_processor").Logger(),
		metrics: metrics,
	}
}

// Result summarizes one processing run.
type Result struct {
	// Publications is the consolidated, deduplicated corpus in input order.
	Publications []*domain.Publication

	// TotalInput is the number of records before deduplication.
	TotalInput int

	// DuplicatesRemoved is the number of records dropped as duplicates.
	DuplicatesRemoved int

	// PerSource counts surviving publications by source.
	PerSource map[domain.SourceType]int
}

// Process consolidates publications from all sources into one corpus.
// Input order is preserved; for duplicates the first occurrence wins, so
// callers should pass higher-quality sources first.
func (p *Processor) Process(bySource map[domain.SourceType][]*domain.Publication, order []domain.SourceType) *Result {
	if len(order) == 0 {
		order = domain.AllSourceTypes
	}

	var all []*domain.Publication
	for _, source := range order {
		for _, pub := range bySource[source] {
			if pub == nil {
				continue
			}
			standardize(pub, source)
			all = append(all, pub)
		}
	}

	result := p.deduplicate(all)

	p.logger.Info().
		Int("input", result.TotalInput).
		Int("duplicates_removed", result.DuplicatesRemoved).
		Int("corpus_size", len(result.Publications)).
		Msg("corpus processing complete")

	if p.metrics != nil {
		p.metrics.RecordPublicationDuplicates(result.DuplicatesRemoved)
	}

	return result
}

// standardize enforces consistent field shapes on a publication record.
func standardize(pub *domain.Publication, source domain.SourceType) {
	if pub.Source == "" {
		pub.Source = source
	}

	pub.Title = strings.TrimSpace(pub.Title)
	pub.Abstract = strings.TrimSpace(pub.Abstract)

	if pub.Keywords != nil {
		keywords := pub.Keywords[:0]
		for _, kw := range pub.Keywords {
			if trimmed := strings.TrimSpace(kw); trimmed != "" {
				keywords = append(keywords, trimmed)
			}
		}
		pub.Keywords = keywords
	}

	if pub.CanonicalID == "" {
		pub.CanonicalID = domain.GenerateCanonicalID(domain.PublicationIdentifiers{
			DOI: doiFromMetadata(pub),
		})
	}
}

// doiFromMetadata recovers a DOI recorded only in raw metadata.
func doiFromMetadata(pub *domain.Publication) string {
	if pub.RawMetadata == nil {
		return ""
	}
	if doi, ok := pub.RawMetadata["doi"].(string); ok {
		return doi
	}
	return ""
}

// deduplicate drops duplicate records. DOI identity is checked first; for
// records without a DOI, the normalized title is the key.
func (p *Processor) deduplicate(pubs []*domain.Publication) *Result {
	seenDOI := make(map[string]struct{})
	seenTitle := make(map[string]struct{})
	perSource := make(map[domain.SourceType]int)

	unique := make([]*domain.Publication, 0, len(pubs))
	duplicates := 0

	for _, pub := range pubs {
		if doi := normalizedDOI(pub); doi != "" {
			if _, ok := seenDOI[doi]; ok {
				duplicates++
				continue
			}
			seenDOI[doi] = struct{}{}
		} else if title := normalizeTitle(pub.Title); title != "" {
			if _, ok := seenTitle[title]; ok {
				duplicates++
				continue
			}
			seenTitle[title] = struct{}{}
		}

		unique = append(unique, pub)
		perSource[pub.Source]++
	}

	return &Result{
		Publications:      unique,
		TotalInput:        len(pubs),
		DuplicatesRemoved: duplicates,
		PerSource:         perSource,
	}
}

// normalizedDOI extracts the lowercased DOI from the canonical ID or raw
// metadata.
func normalizedDOI(pub *domain.Publication) string {
	if strings.HasPrefix(pub.CanonicalID, "doi:") {
		return strings.TrimPrefix(pub.CanonicalID, "doi:")
	}
	doi := strings.ToLower(strings.TrimSpace(doiFromMetadata(pub)))
	return doi
}

// normalizeTitle lowercases and collapses whitespace for title matching.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
