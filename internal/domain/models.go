// Package domain provides domain models and business logic for the SLR analytics service.
package domain

// SourceType represents the academic API that provided publication data.
type SourceType string

const (
	SourceTypeCORE            SourceType = "core"
	SourceTypeOpenAlex        SourceType = "openalex"
	SourceTypeArXiv           SourceType = "arxiv"
	SourceTypeSemanticScholar SourceType = "semantic_scholar"
	SourceTypeSpringer        SourceType = "springer"
)

// AllSourceTypes lists every supported source in stable order.
// Used for iteration when fetching from all sources.
var AllSourceTypes = []SourceType{
	SourceTypeCORE,
	SourceTypeOpenAlex,
	SourceTypeArXiv,
	SourceTypeSemanticScholar,
	SourceTypeSpringer,
}

// IdentifierType represents the type of academic paper identifier.
type IdentifierType string

const (
	IdentifierTypeDOI               IdentifierType = "doi"
	IdentifierTypeArXivID           IdentifierType = "arxiv_id"
	IdentifierTypeCoreID            IdentifierType = "core_id"
	IdentifierTypeSemanticScholarID IdentifierType = "semantic_scholar_id"
	IdentifierTypeOpenAlexID        IdentifierType = "openalex_id"
	IdentifierTypeSpringerID        IdentifierType = "springer_id"
)

// TrendDirection classifies the sign of a fitted trend slope.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// LifecycleStage describes where a keyword's usage peak falls within its lifespan.
type LifecycleStage string

const (
	StageEarlyPeak LifecycleStage = "early_peak"
	StageMature    LifecycleStage = "mature"
	StageLateStage LifecycleStage = "late_stage"
)

// LifecycleCategory buckets keywords by combined stage, growth and maturity signals.
//
// A keyword's LifecycleStage and LifecycleCategory are derived from different
// inputs and can disagree (a late_stage keyword may still be categorized as
// growing). This mirrors the observed behavior of the upstream analysis
// pipeline and is intentionally not reconciled.
type LifecycleCategory string

const (
	CategoryEmerging  LifecycleCategory = "emerging"
	CategoryGrowing   LifecycleCategory = "growing"
	CategoryMature    LifecycleCategory = "mature"
	CategoryDeclining LifecycleCategory = "declining"
)

// ChangeType classifies how a keyword's frequency moved between two named periods.
type ChangeType string

const (
	ChangeEmerged     ChangeType = "emerged"
	ChangeDisappeared ChangeType = "disappeared"
	ChangeIncreased   ChangeType = "increased"
	ChangeDecreased   ChangeType = "decreased"
	ChangeStable      ChangeType = "stable"
)
