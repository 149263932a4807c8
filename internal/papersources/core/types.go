// Package core provides a client for the CORE v3 API.
//
// CORE aggregates open access research papers from repositories and
// journals worldwide. This package implements the papersources.PaperSource
// interface for searching works, mapping subjects and field of study onto
// publication keywords.
//
// API Documentation: https://api.core.ac.uk/docs/v3
package core

// SearchResponse represents the response from the works search endpoint.
type SearchResponse struct {
	// TotalHits is the total number of works matching the query.
	TotalHits int `json:"totalHits"`

	// Limit is the page size used for this response.
	Limit int `json:"limit"`

	// Offset is the current offset in the result set.
	Offset int `json:"offset"`

	// Results contains the list of works returned by the search.
	Results []Work `json:"results"`
}

// Work represents a single work in the CORE API response.
type Work struct {
	// ID is the CORE identifier for the work.
	ID int64 `json:"id"`

	// DOI is the Digital Object Identifier, if known.
	DOI string `json:"doi"`

	// Title is the title of the work.
	Title string `json:"title"`

	// Abstract is the work's abstract text.
	Abstract string `json:"abstract"`

	// YearPublished is the publication year.
	YearPublished int `json:"yearPublished"`

	// PublishedDate is the full publication date, typically ISO 8601.
	PublishedDate string `json:"publishedDate"`

	// Authors is the list of work authors.
	Authors []Author `json:"authors"`

	// Journals lists the journals this work appeared in.
	Journals []Journal `json:"journals"`

	// Publisher is the publisher name.
	Publisher string `json:"publisher"`

	// FieldOfStudy is the single primary research field, if assigned.
	FieldOfStudy string `json:"fieldOfStudy"`

	// Subjects lists subject classifications from the source repository.
	Subjects []string `json:"subjects"`

	// DownloadURL is the direct URL to the full text, if available.
	DownloadURL string `json:"downloadUrl"`

	// CitationCount is the number of citations this work has received.
	CitationCount int `json:"citationCount"`

	// Language describes the language of the work.
	Language *Language `json:"language"`
}

// Author represents a work author in the CORE API.
type Author struct {
	// Name is the author's name, usually "Last, First".
	Name string `json:"name"`
}

// Journal represents a journal a work appeared in.
type Journal struct {
	// Title is the journal title.
	Title string `json:"title"`

	// Identifiers lists journal identifiers such as ISSNs.
	Identifiers []string `json:"identifiers"`
}

// Language describes the language of a work.
type Language struct {
	// Code is the ISO 639-1 language code.
	Code string `json:"code"`

	// Name is the language name.
	Name string `json:"name"`
}
