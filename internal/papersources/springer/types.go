// Package springer provides a client for the Springer Nature Metadata API.
//
// The Metadata API exposes bibliographic metadata for documents published
// by Springer Nature. This package implements the papersources.PaperSource
// interface for searching records, mapping record keywords and subjects
// onto publication keywords.
//
// API Documentation: https://dev.springernature.com/
package springer

// SearchResponse represents the response from the metadata search endpoint.
type SearchResponse struct {
	// Query echoes the submitted query.
	Query string `json:"query"`

	// Result carries pagination counters. The API wraps them in a
	// single-element array.
	Result []ResultInfo `json:"result"`

	// Records contains the documents returned by the search.
	Records []Record `json:"records"`
}

// ResultInfo carries result counts for a search. All counters arrive as
// strings.
type ResultInfo struct {
	// Total is the total number of matching records.
	Total string `json:"total"`

	// Start is the 1-based index of the first returned record.
	Start string `json:"start"`

	// PageLength is the requested page size.
	PageLength string `json:"pageLength"`

	// RecordsDisplayed is the number of records in this response.
	RecordsDisplayed string `json:"recordsDisplayed"`
}

// Record represents a single document in the Springer API response.
type Record struct {
	// Identifier is the Springer record identifier, typically "doi:10...".
	Identifier string `json:"identifier"`

	// Title is the document title.
	Title string `json:"title"`

	// Abstract is the document abstract.
	Abstract string `json:"abstract"`

	// DOI is the Digital Object Identifier.
	DOI string `json:"doi"`

	// PublicationName is the journal or book title.
	PublicationName string `json:"publicationName"`

	// PublicationDate is the publication date in YYYY-MM-DD format.
	PublicationDate string `json:"publicationDate"`

	// Publisher is the publisher name.
	Publisher string `json:"publisher"`

	// ContentType describes the record type, e.g. "Article" or "Chapter".
	ContentType string `json:"contentType"`

	// Creators lists the document authors.
	Creators []Creator `json:"creators"`

	// Keywords lists author-supplied keywords.
	Keywords []string `json:"keyword"`

	// Subjects lists Springer subject classifications.
	Subjects []string `json:"subjects"`

	// URLs lists access locations for the document.
	URLs []RecordURL `json:"url"`

	// OpenAccess is "true" when the document is open access.
	OpenAccess string `json:"openaccess"`
}

// Creator represents a document author.
type Creator struct {
	// Creator is the author name, usually "Last, First".
	Creator string `json:"creator"`

	// ORCID is the author's ORCID identifier, if known.
	ORCID string `json:"ORCID"`
}

// RecordURL is one access location for a document.
type RecordURL struct {
	// Format is the content format, e.g. "pdf" or "html". May be empty.
	Format string `json:"format"`

	// Platform identifies the hosting platform.
	Platform string `json:"platform"`

	// Value is the URL itself.
	Value string `json:"value"`
}
