// Package papersources provides clients for the academic publication APIs
// the service acquires corpora from.
//
// Each source (CORE, OpenAlex, arXiv, Semantic Scholar, Springer) implements
// the PaperSource interface so acquisition can fan out across all enabled
// sources with one query.
//
// Example usage:
//
//	source := openalex.New(cfg)
//	params := papersources.SearchParams{
//		Query:     "digital twin",
//		StartYear: 2015,
//		EndYear:   2024,
//	}
//	result, err := source.Search(ctx, params)
package papersources

import (
	"context"
	"time"

	"github.com/helioscope/slr-analytics-service/internal/domain"
)

// SearchParams defines the parameters for searching a publication source.
// Query is required; everything else is optional filtering.
type SearchParams struct {
	// Query is the search query string. The format may vary by source;
	// some support boolean operators or field-specific searches.
	Query string

	// StartYear filters publications from this year on, inclusive.
	// Zero applies no lower bound.
	StartYear int

	// EndYear filters publications up to this year, inclusive.
	// Zero applies no upper bound.
	EndYear int

	// MaxResults limits the number of publications returned per request.
	// Sources cap this at their own API limits. Zero uses the source's
	// configured default.
	MaxResults int

	// Offset is the starting position for paginated results.
	Offset int

	// OpenAccessOnly restricts results to open access publications on
	// sources that can filter for it.
	OpenAccessOnly bool
}

// SearchResult contains the outcome of one source search.
type SearchResult struct {
	// Publications are the records returned by the search, already mapped
	// to the domain model. May be empty.
	Publications []*domain.Publication

	// TotalResults is the source-reported total match count, which may be
	// an estimate for large result sets.
	TotalResults int

	// HasMore indicates more pages are available.
	HasMore bool

	// NextOffset is the offset of the next page. Only meaningful when
	// HasMore is true.
	NextOffset int

	// Source identifies which source produced these results.
	Source domain.SourceType

	// SearchDuration covers the request and response parsing.
	SearchDuration time.Duration
}

// PaperSource is the interface every publication source client implements.
//
// Implementations must respect context cancellation, apply their own rate
// limiting, and map source responses to domain.Publication with a canonical
// identifier attached.
type PaperSource interface {
	// Search queries the source for publications matching params.
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)

	// SourceType returns the type identifier, used for attribution,
	// deduplication and routing.
	SourceType() domain.SourceType

	// Name returns a human-readable source name for logging and display.
	Name() string

	// IsEnabled reports whether the source is available for searches. A
	// source may be disabled by configuration or a missing API key.
	IsEnabled() bool
}
