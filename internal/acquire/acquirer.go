// Package acquire coordinates multi-source publication fetches and persists
// raw per-source snapshots for reproducibility.
package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/observability"
	"github.com/helioscope/slr-analytics-service/internal/papersources"
)

const (
	// maxQueryInFilename caps how much of the query ends up in snapshot
	// filenames.
	maxQueryInFilename = 30

	// snapshotTimestampLayout is the timestamp format in snapshot filenames.
	snapshotTimestampLayout = "20060102_150405"
)

// Request describes one acquisition run.
type Request struct {
	// Query is the search query sent to every source.
	Query string

	// StartYear and EndYear bound the publication years, inclusive.
	StartYear int
	EndYear   int

	// MaxResultsPerSource caps results fetched from each source.
	MaxResultsPerSource int

	// Sources restricts the run to the named sources. Empty means all
	// enabled sources.
	Sources []domain.SourceType
}

// SourceOutcome records what one source contributed to an acquisition.
type SourceOutcome struct {
	Source       domain.SourceType `json:"source"`
	Count        int               `json:"count"`
	TotalResults int               `json:"total_results"`
	SnapshotPath string            `json:"snapshot_path,omitempty"`
	Error        string            `json:"error,omitempty"`
	Duration     time.Duration     `json:"duration"`
}

// Result is the outcome of one acquisition run.
type Result struct {
	// Publications holds the fetched publications grouped by source.
	Publications map[domain.SourceType][]*domain.Publication

	// Outcomes records per-source counts, snapshot paths and errors in
	// registry result order.
	Outcomes []SourceOutcome

	// TotalFetched is the number of publications across all sources.
	TotalFetched int
}

// Acquirer fetches publications from all registered sources and writes raw
// JSON snapshots under the configured directory.
type Acquirer struct {
	registry   *papersources.Registry
	rawDataDir string
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// NewAcquirer creates an acquirer. metrics may be nil. rawDataDir may be
// empty to disable snapshot writing.
func NewAcquirer(registry *papersources.Registry, rawDataDir string, logger zerolog.Logger, metrics *observability.Metrics) *Acquirer {
	return &Acquirer{
		registry:   registry,
		rawDataDir: rawDataDir,
		logger:     logger.With().Str("component", "acquirer").Logger(),
		metrics:    metrics,
	}
}

// FetchAllSources runs the query against every requested source
// concurrently. Per-source failures are recorded in the result, not
// returned: an acquisition succeeds if any source succeeds. The error is
// non-nil only when every source fails or the context is canceled.
func (a *Acquirer) FetchAllSources(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if a.metrics != nil {
		a.metrics.RecordAcquisitionStarted()
	}

	params := papersources.SearchParams{
		Query:      req.Query,
		StartYear:  req.StartYear,
		EndYear:    req.EndYear,
		MaxResults: req.MaxResultsPerSource,
	}

	sourceResults := a.registry.SearchSources(ctx, params, req.Sources)

	result := &Result{
		Publications: make(map[domain.SourceType][]*domain.Publication),
	}

	failures := 0
	for _, sr := range sourceResults {
		outcome := SourceOutcome{Source: sr.Source}

		if sr.Error != nil {
			failures++
			outcome.Error = sr.Error.Error()
			a.logger.Warn().
				Err(sr.Error).
				Str("source", string(sr.Source)).
				Msg("source fetch failed")
			if a.metrics != nil {
				a.metrics.RecordSearchFailed(string(sr.Source), time.Since(start).Seconds())
			}
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		outcome.Count = len(sr.Result.Publications)
		outcome.TotalResults = sr.Result.TotalResults
		outcome.Duration = sr.Result.SearchDuration

		result.Publications[sr.Source] = sr.Result.Publications
		result.TotalFetched += len(sr.Result.Publications)

		if a.metrics != nil {
			a.metrics.RecordSearchCompleted(string(sr.Source), len(sr.Result.Publications), sr.Result.SearchDuration.Seconds())
		}

		if path, err := a.saveSnapshot(sr.Source, sr.Result.Publications, req); err != nil {
			a.logger.Warn().
				Err(err).
				Str("source", string(sr.Source)).
				Msg("raw snapshot write failed")
		} else {
			outcome.SnapshotPath = path
		}

		result.Outcomes = append(result.Outcomes, outcome)
	}

	if err := ctx.Err(); err != nil {
		if a.metrics != nil {
			a.metrics.RecordAcquisitionFailed(time.Since(start).Seconds())
		}
		return nil, err
	}

	if len(sourceResults) > 0 && failures == len(sourceResults) {
		if a.metrics != nil {
			a.metrics.RecordAcquisitionFailed(time.Since(start).Seconds())
		}
		return nil, fmt.Errorf("all %d sources failed: %w", failures, domain.ErrSourceUnavailable)
	}

	a.logger.Info().
		Str("query", req.Query).
		Int("total_fetched", result.TotalFetched).
		Int("sources", len(sourceResults)).
		Int("failures", failures).
		Dur("duration", time.Since(start)).
		Msg("acquisition complete")

	if a.metrics != nil {
		a.metrics.RecordAcquisitionCompleted(time.Since(start).Seconds())
	}

	return result, nil
}

// saveSnapshot writes the raw per-source publication list as indented JSON.
// Returns the file path, or empty when snapshotting is disabled.
func (a *Acquirer) saveSnapshot(source domain.SourceType, pubs []*domain.Publication, req Request) (string, error) {
	if a.rawDataDir == "" {
		return "", nil
	}

	if err := os.MkdirAll(a.rawDataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating raw data dir: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%d-%d_%s.json",
		source,
		sanitizeQuery(req.Query),
		req.StartYear,
		req.EndYear,
		time.Now().UTC().Format(snapshotTimestampLayout),
	)
	path := filepath.Join(a.rawDataDir, filename)

	data, err := json.MarshalIndent(pubs, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}

	return path, nil
}

// sanitizeQuery keeps the first 30 characters of the query, replacing
// anything that is not a letter or digit with an underscore.
func sanitizeQuery(query string) string {
	runes := []rune(query)
	if len(runes) > maxQueryInFilename {
		runes = runes[:maxQueryInFilename]
	}

	out := make([]rune, len(runes))
	for i, r := range runes {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			out[i] = r
		} else {
			out[i] = '_'
		}
	}
	return string(out)
}

// LoadSnapshot reads a previously written raw snapshot back into memory.
func LoadSnapshot(path string) ([]*domain.Publication, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var pubs []*domain.Publication
	if err := json.Unmarshal(data, &pubs); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", filepath.Base(path), err)
	}
	return pubs, nil
}
