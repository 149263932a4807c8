package server

import (
	"encoding/json"
	"net/http"

	"github.com/helioscope/slr-analytics-service/internal/acquire"
	"github.com/helioscope/slr-analytics-service/internal/pdf"
	"github.com/helioscope/slr-analytics-service/internal/temporal"
)

type acquisitionResponse struct {
	AcquisitionID     string                  `json:"acquisition_id"`
	Query             string                  `json:"query"`
	TotalFetched      int                     `json:"total_fetched"`
	CorpusSize        int                     `json:"corpus_size"`
	DuplicatesRemoved int                     `json:"duplicates_removed"`
	CorpusPath        string                  `json:"corpus_path"`
	Sources           []acquire.SourceOutcome `json:"sources"`
	PDFs              *pdf.FetchResult        `json:"pdfs,omitempty"`
}

type analysisResponse struct {
	AnalysisID       string            `json:"analysis_id"`
	PublicationCount int               `json:"publication_count"`
	KeywordCount     int               `json:"keyword_count"`
	Exports          map[string]string `json:"exports,omitempty"`
	Report           *temporal.Report  `json:"report"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent; nothing useful to do.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
