package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/helioscope/slr-analytics-service/internal/acquire"
	"github.com/helioscope/slr-analytics-service/internal/corpus"
	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/export"
	"github.com/helioscope/slr-analytics-service/internal/observability"
)

const maxRequestBodySize = 1 << 20

// acquisitionRequest is the JSON request body for starting an acquisition.
type acquisitionRequest struct {
	Query               string   `json:"query" validate:"required,min=3,max=500"`
	StartYear           int      `json:"start_year" validate:"omitempty,min=1900,max=2100"`
	EndYear             int      `json:"end_year" validate:"omitempty,min=1900,max=2100"`
	MaxResultsPerSource int      `json:"max_results_per_source" validate:"omitempty,min=1,max=1000"`
	Sources             []string `json:"sources" validate:"omitempty,dive,oneof=core openalex arxiv semantic_scholar springer"`
	DownloadPDFs        bool     `json:"download_pdfs"`
}

// analysisRequest is the JSON request body for running a temporal analysis.
type analysisRequest struct {
	CorpusPath    string   `json:"corpus_path" validate:"required"`
	Keywords      []string `json:"keywords" validate:"omitempty,max=500,dive,min=1,max=200"`
	ExportFormats []string `json:"export_formats" validate:"omitempty,dive,oneof=json csv excel"`
}

// startAcquisition handles POST /api/v1/acquisitions. It fetches the query
// from every requested source, deduplicates the merged result and persists
// the processed corpus.
func (s *Server) startAcquisition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req acquisitionRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	if req.StartYear != 0 && req.EndYear != 0 && req.EndYear < req.StartYear {
		writeError(w, http.StatusBadRequest, "end_year must not precede start_year")
		return
	}

	sources := make([]domain.SourceType, len(req.Sources))
	for i, src := range req.Sources {
		sources[i] = domain.SourceType(src)
	}

	acquisitionID := uuid.New()
	result, err := s.acquirer.FetchAllSources(ctx, acquire.Request{
		Query:               req.Query,
		StartYear:           req.StartYear,
		EndYear:             req.EndYear,
		MaxResultsPerSource: req.MaxResultsPerSource,
		Sources:             sources,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSourceUnavailable) {
			writeError(w, http.StatusBadGateway, "all paper sources failed")
			return
		}
		s.logger.Error().Err(err).Str("acquisition_id", acquisitionID.String()).Msg("acquisition failed")
		writeError(w, http.StatusInternalServerError, "acquisition failed")
		return
	}

	processed := s.processor.Process(result.Publications, sources)

	corpusPath := filepath.Join(s.storage.ProcessedDir, fmt.Sprintf("corpus_%s.json", acquisitionID))
	if err := corpus.Save(corpusPath, processed.Publications); err != nil {
		s.logger.Error().Err(err).Str("path", corpusPath).Msg("saving corpus failed")
		writeError(w, http.StatusInternalServerError, "saving corpus failed")
		return
	}

	resp := acquisitionResponse{
		AcquisitionID:     acquisitionID.String(),
		Query:             req.Query,
		TotalFetched:      result.TotalFetched,
		CorpusSize:        len(processed.Publications),
		DuplicatesRemoved: processed.DuplicatesRemoved,
		CorpusPath:        corpusPath,
		Sources:           result.Outcomes,
	}

	if req.DownloadPDFs && s.pdfFetcher != nil {
		pdfResult, err := s.pdfFetcher.FetchAll(ctx, processed.Publications)
		if err != nil {
			s.logger.Warn().Err(err).Msg("pdf batch aborted")
		}
		resp.PDFs = pdfResult
	}

	writeJSON(w, http.StatusCreated, resp)
}

// runAnalysis handles POST /api/v1/analyses. It loads a processed corpus,
// runs the full temporal analysis and optionally exports the report.
func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req analysisRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	pubs, err := corpus.Load(req.CorpusPath)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("corpus not found: %s", req.CorpusPath))
			return
		}
		s.logger.Error().Err(err).Str("path", req.CorpusPath).Msg("loading corpus failed")
		writeError(w, http.StatusInternalServerError, "loading corpus failed")
		return
	}

	vocab := domain.BuildVocabulary(pubs)
	if len(req.Keywords) > 0 {
		vocab = make(domain.Vocabulary)
		for _, kw := range req.Keywords {
			vocab.Add(kw)
		}
	}

	analysisID := uuid.New()
	ctx = observability.WithAnalysisID(ctx, analysisID.String())
	report, err := s.analyzer.Analyze(ctx, pubs, vocab)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error().Err(err).Str("analysis_id", analysisID.String()).Msg("analysis failed")
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	exports := make(map[string]string, len(req.ExportFormats))
	for _, format := range req.ExportFormats {
		path := filepath.Join(s.storage.ResultsDir, fmt.Sprintf("analysis_%s.%s", analysisID, exportExtension(format)))
		if err := s.exporter.Export(report, path, export.Format(format)); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("export to %s failed", format))
			return
		}
		exports[format] = path
	}

	writeJSON(w, http.StatusOK, analysisResponse{
		AnalysisID:       analysisID.String(),
		PublicationCount: report.PublicationCount,
		KeywordCount:     report.KeywordCount,
		Exports:          exports,
		Report:           report,
	})
}

// decodeAndValidate reads, decodes and validates the request body into dst.
// On failure it writes the error response and returns false.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage flattens validator errors into a readable message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q validation", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func exportExtension(format string) string {
	if format == string(export.FormatExcel) {
		return "xlsx"
	}
	return format
}
