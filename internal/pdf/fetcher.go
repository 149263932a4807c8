package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/observability"
)

// FetchOutcome describes one publication's download attempt.
type FetchOutcome struct {
	CanonicalID string `json:"canonical_id"`
	Path        string `json:"path,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
	Error       string `json:"error,omitempty"`
}

// FetchResult summarizes a batch download.
type FetchResult struct {
	Downloaded int            `json:"downloaded"`
	Skipped    int            `json:"skipped"`
	Failed     int            `json:"failed"`
	Outcomes   []FetchOutcome `json:"outcomes"`
}

// Fetcher downloads open access PDFs for a batch of publications.
type Fetcher struct {
	downloader    *Downloader
	dir           string
	maxConcurrent int
	logger        zerolog.Logger
	metrics       *observability.Metrics
}

// NewFetcher builds a Fetcher storing PDFs under dir. metrics may be nil.
func NewFetcher(downloader *Downloader, dir string, maxConcurrent int, logger zerolog.Logger, metrics *observability.Metrics) *Fetcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Fetcher{
		downloader:    downloader,
		dir:           dir,
		maxConcurrent: maxConcurrent,
		logger:        logger.With().Str("component", "pdf_fetcher").Logger(),
		metrics:       metrics,
	}
}

// FetchAll downloads the PDF of every open access publication that carries a
// PDF URL, at most maxConcurrent downloads in flight. Publications without a
// URL are counted as skipped. Individual failures do not abort the batch;
// only context cancellation does.
func (f *Fetcher) FetchAll(ctx context.Context, pubs []*domain.Publication) (*FetchResult, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return nil, err
	}

	result := &FetchResult{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, f.maxConcurrent)

	for _, pub := range pubs {
		if pub.PDFURL == "" || !pub.OpenAccess || pub.CanonicalID == "" {
			result.Skipped++
			continue
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(pub *domain.Publication) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcome := f.fetchOne(ctx, pub)
			mu.Lock()
			if outcome.Error != "" {
				result.Failed++
			} else {
				result.Downloaded++
			}
			result.Outcomes = append(result.Outcomes, outcome)
			mu.Unlock()
		}(pub)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}

	f.logger.Info().
		Int("downloaded", result.Downloaded).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("pdf batch completed")
	return result, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, pub *domain.Publication) FetchOutcome {
	outcome := FetchOutcome{CanonicalID: pub.CanonicalID}

	res, err := f.downloader.Download(ctx, pub.PDFURL)
	if err != nil {
		f.recordOutcome(errorOutcome(err))
		f.logger.Warn().Err(err).Str("canonical_id", pub.CanonicalID).Str("url", pub.PDFURL).Msg("pdf download failed")
		outcome.Error = err.Error()
		return outcome
	}

	path := filepath.Join(f.dir, sanitizeID(pub.CanonicalID)+".pdf")
	if err := os.WriteFile(path, res.Content, 0o644); err != nil {
		f.recordOutcome("write_error")
		outcome.Error = err.Error()
		return outcome
	}

	f.recordOutcome("success")
	outcome.Path = path
	outcome.SizeBytes = res.SizeBytes
	return outcome
}

func (f *Fetcher) recordOutcome(outcome string) {
	if f.metrics != nil {
		f.metrics.RecordPDFDownload(outcome)
	}
}

func errorOutcome(err error) string {
	switch {
	case errors.Is(err, ErrNotPDF):
		return "not_pdf"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.Is(err, ErrSSRF):
		return "ssrf_blocked"
	default:
		return "download_error"
	}
}

// sanitizeID maps a canonical ID to a filesystem-safe filename stem.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, id)
}
