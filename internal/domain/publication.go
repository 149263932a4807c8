package domain

import (
	"strings"
	"time"
)

// PublicationIdentifiers holds all possible identifiers for a publication.
type PublicationIdentifiers struct {
	DOI               string
	ArXivID           string
	CoreID            string
	SemanticScholarID string
	OpenAlexID        string
	SpringerID        string
}

// GenerateCanonicalID generates a canonical identifier from publication identifiers.
// Priority order: DOI > ArXiv > CORE > SemanticScholar > OpenAlex > Springer.
// Returns empty string if no identifiers are available.
func GenerateCanonicalID(ids PublicationIdentifiers) string {
	if doi := strings.TrimSpace(ids.DOI); doi != "" {
		// Normalize DOI to lowercase
		return "doi:" + strings.ToLower(doi)
	}

	if arxiv := strings.TrimSpace(ids.ArXivID); arxiv != "" {
		return "arxiv:" + arxiv
	}

	if core := strings.TrimSpace(ids.CoreID); core != "" {
		return "core:" + core
	}

	if s2 := strings.TrimSpace(ids.SemanticScholarID); s2 != "" {
		return "s2:" + s2
	}

	if openalex := strings.TrimSpace(ids.OpenAlexID); openalex != "" {
		return "openalex:" + openalex
	}

	if springer := strings.TrimSpace(ids.SpringerID); springer != "" {
		return "springer:" + springer
	}

	return ""
}

// Author represents a publication author with optional affiliation and ORCID.
type Author struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
	ORCID       string `json:"orcid,omitempty"`
}

// String returns a formatted string representation of the author.
func (a Author) String() string {
	var sb strings.Builder
	sb.WriteString(a.Name)

	if a.Affiliation != "" {
		sb.WriteString(" (")
		sb.WriteString(a.Affiliation)
		sb.WriteString(")")
	}

	if a.ORCID != "" {
		sb.WriteString(" [")
		sb.WriteString(a.ORCID)
		sb.WriteString("]")
	}

	return sb.String()
}

// Publication represents a publication record collected from one of the
// academic source APIs. Date fields are deliberately loose: sources deliver
// anything from a bare year to a full ISO timestamp, and the dates package
// resolves them into a usable time.Time for temporal analysis.
type Publication struct {
	ID              string         `json:"id"`
	CanonicalID     string         `json:"canonical_id,omitempty"`
	Title           string         `json:"title"`
	Abstract        string         `json:"abstract,omitempty"`
	Authors         []Author       `json:"authors,omitempty"`
	Keywords        []string       `json:"keywords,omitempty"`
	PublicationDate string         `json:"publication_date,omitempty"`
	PublishedDate   string         `json:"published_date,omitempty"`
	Date            string         `json:"date,omitempty"`
	Year            int            `json:"year,omitempty"`
	Venue           string         `json:"venue,omitempty"`
	Journal         string         `json:"journal,omitempty"`
	CitationCount   int            `json:"citation_count"`
	ReferenceCount  int            `json:"reference_count,omitempty"`
	PDFURL          string         `json:"pdf_url,omitempty"`
	OpenAccess      bool           `json:"open_access"`
	Source          SourceType     `json:"source,omitempty"`
	RawMetadata     map[string]any `json:"raw_metadata,omitempty"`

	// resolved caches the outcome of date resolution so analysis passes do
	// not re-parse heterogeneous date strings. Derived state, not source data.
	resolved *time.Time
}

// HasIdentifier returns true if the publication has at least one identifier.
func (p *Publication) HasIdentifier() bool {
	return p.CanonicalID != ""
}

// SearchText returns the lowercased concatenation of title and abstract,
// used for vocabulary keyword matching.
func (p *Publication) SearchText() string {
	return strings.ToLower(p.Title + " " + p.Abstract)
}

// ResolvedTime reports the best-effort publication timestamp previously
// attached by date resolution, or false when none was resolvable.
func (p *Publication) ResolvedTime() (time.Time, bool) {
	if p.resolved == nil {
		return time.Time{}, false
	}
	return *p.resolved, true
}

// SetResolvedTime attaches an already-resolved publication timestamp.
// The dates package is the only intended caller.
func (p *Publication) SetResolvedTime(t time.Time) {
	p.resolved = &t
}
