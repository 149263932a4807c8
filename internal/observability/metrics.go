package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the SLR analytics service.
// Metrics are organized by subsystem: acquisitions, searches, sources,
// publications, analyses, and exports. All counters and histograms are
// registered via promauto for automatic registration with the default
// Prometheus registry.
type Metrics struct {
	// AcquisitionsStarted counts the total number of corpus acquisitions initiated.
	AcquisitionsStarted prometheus.Counter

	// AcquisitionsCompleted counts the total number of acquisitions that finished successfully.
	AcquisitionsCompleted prometheus.Counter

	// AcquisitionsFailed counts the total number of acquisitions that ended in failure.
	AcquisitionsFailed prometheus.Counter

	// AcquisitionDuration observes the end-to-end duration of acquisitions in seconds.
	AcquisitionDuration prometheus.Histogram

	// SearchesStarted counts searches initiated, labeled by paper source.
	SearchesStarted *prometheus.CounterVec

	// SearchesCompleted counts successful searches, labeled by paper source.
	SearchesCompleted *prometheus.CounterVec

	// SearchesFailed counts failed searches, labeled by paper source.
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes search duration in seconds, labeled by paper source.
	SearchDuration *prometheus.HistogramVec

	// PublicationsFetched counts publications fetched, labeled by source.
	PublicationsFetched *prometheus.CounterVec

	// PublicationsDuplicate counts duplicate publications removed during deduplication.
	PublicationsDuplicate prometheus.Counter

	// SourceRequestsTotal counts HTTP requests to paper source APIs, labeled by source and endpoint.
	SourceRequestsTotal *prometheus.CounterVec

	// SourceRequestsFailed counts failed HTTP requests to paper source APIs, labeled by source, endpoint, and error type.
	SourceRequestsFailed *prometheus.CounterVec

	// SourceRequestDuration observes HTTP request duration to paper source APIs in seconds.
	SourceRequestDuration *prometheus.HistogramVec

	// SourceRateLimited counts rate-limited responses from paper source APIs, labeled by source.
	SourceRateLimited *prometheus.CounterVec

	// AnalysesStarted counts temporal analyses initiated.
	AnalysesStarted prometheus.Counter

	// AnalysesCompleted counts temporal analyses that completed successfully.
	AnalysesCompleted prometheus.Counter

	// AnalysesFailed counts temporal analyses that failed.
	AnalysesFailed prometheus.Counter

	// AnalysisDuration observes analysis duration in seconds.
	AnalysisDuration prometheus.Histogram

	// KeywordsAnalyzed observes the number of vocabulary keywords per analysis.
	KeywordsAnalyzed prometheus.Histogram

	// DateResolutionFailures counts publications whose dates could not be resolved.
	DateResolutionFailures prometheus.Counter

	// ExportsTotal counts result exports, labeled by format.
	ExportsTotal *prometheus.CounterVec

	// PDFDownloadsTotal counts PDF download attempts, labeled by outcome.
	PDFDownloadsTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Acquisitions
		AcquisitionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisitions_started_total",
			Help:      "Total number of corpus acquisitions started",
		}),
		AcquisitionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisitions_completed_total",
			Help:      "Total number of corpus acquisitions completed successfully",
		}),
		AcquisitionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisitions_failed_total",
			Help:      "Total number of corpus acquisitions that failed",
		}),
		AcquisitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "acquisition_duration_seconds",
			Help:      "Duration of corpus acquisitions in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		}),

		// Searches
		SearchesStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Total number of publication searches started by source",
		}, []string{"source"}),
		SearchesCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_completed_total",
			Help:      "Total number of publication searches completed by source",
		}, []string{"source"}),
		SearchesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of publication searches that failed by source",
		}, []string{"source"}),
		SearchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of publication searches in seconds by source",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"source"}),

		// Publications
		PublicationsFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publications_fetched_total",
			Help:      "Total number of publications fetched by source",
		}, []string{"source"}),
		PublicationsDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publications_duplicate_total",
			Help:      "Total number of duplicate publications removed",
		}),

		// Sources
		SourceRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Total number of requests to paper sources",
		}, []string{"source", "endpoint"}),
		SourceRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_failed_total",
			Help:      "Total number of failed requests to paper sources",
		}, []string{"source", "endpoint", "error_type"}),
		SourceRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Duration of requests to paper sources in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source", "endpoint"}),
		SourceRateLimited: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_rate_limited_total",
			Help:      "Total number of rate limit responses from paper sources",
		}, []string{"source"}),

		// Analyses
		AnalysesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_started_total",
			Help:      "Total number of temporal analyses started",
		}),
		AnalysesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_completed_total",
			Help:      "Total number of temporal analyses completed successfully",
		}),
		AnalysesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_failed_total",
			Help:      "Total number of temporal analyses that failed",
		}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of temporal analyses in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		KeywordsAnalyzed: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "keywords_analyzed",
			Help:      "Number of vocabulary keywords per analysis",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		DateResolutionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "date_resolution_failures_total",
			Help:      "Total number of publications with unresolvable dates",
		}),

		// Exports
		ExportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Total number of result exports by format",
		}, []string{"format"}),

		// PDFs
		PDFDownloadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pdf_downloads_total",
			Help:      "Total number of PDF download attempts by outcome",
		}, []string{"outcome"}),
	}
}

// RecordAcquisitionStarted records that an acquisition has started.
func (m *Metrics) RecordAcquisitionStarted() {
	m.AcquisitionsStarted.Inc()
}

// RecordAcquisitionCompleted records that an acquisition has completed.
func (m *Metrics) RecordAcquisitionCompleted(durationSeconds float64) {
	m.AcquisitionsCompleted.Inc()
	m.AcquisitionDuration.Observe(durationSeconds)
}

// RecordAcquisitionFailed records that an acquisition has failed.
func (m *Metrics) RecordAcquisitionFailed(durationSeconds float64) {
	m.AcquisitionsFailed.Inc()
	m.AcquisitionDuration.Observe(durationSeconds)
}

// RecordSearchStarted records that a search has started.
func (m *Metrics) RecordSearchStarted(source string) {
	m.SearchesStarted.WithLabelValues(source).Inc()
}

// RecordSearchCompleted records that a search has completed.
func (m *Metrics) RecordSearchCompleted(source string, publicationCount int, durationSeconds float64) {
	m.SearchesCompleted.WithLabelValues(source).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(durationSeconds)
	m.PublicationsFetched.WithLabelValues(source).Add(float64(publicationCount))
}

// RecordSearchFailed records that a search has failed.
func (m *Metrics) RecordSearchFailed(source string, durationSeconds float64) {
	m.SearchesFailed.WithLabelValues(source).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordPublicationDuplicates records duplicate publications removed in a
// deduplication pass.
func (m *Metrics) RecordPublicationDuplicates(count int) {
	m.PublicationsDuplicate.Add(float64(count))
}

// RecordSourceRequest records a request to a paper source.
func (m *Metrics) RecordSourceRequest(source, endpoint string, durationSeconds float64) {
	m.SourceRequestsTotal.WithLabelValues(source, endpoint).Inc()
	m.SourceRequestDuration.WithLabelValues(source, endpoint).Observe(durationSeconds)
}

// RecordSourceRequestFailed records a failed request to a paper source.
func (m *Metrics) RecordSourceRequestFailed(source, endpoint, errorType string) {
	m.SourceRequestsFailed.WithLabelValues(source, endpoint, errorType).Inc()
}

// RecordSourceRateLimited records a rate limit response from a source.
func (m *Metrics) RecordSourceRateLimited(source string) {
	m.SourceRateLimited.WithLabelValues(source).Inc()
}

// RecordAnalysisStarted records that an analysis has started.
func (m *Metrics) RecordAnalysisStarted() {
	m.AnalysesStarted.Inc()
}

// RecordAnalysisCompleted records that an analysis has completed.
func (m *Metrics) RecordAnalysisCompleted(keywordCount int, durationSeconds float64) {
	m.AnalysesCompleted.Inc()
	m.AnalysisDuration.Observe(durationSeconds)
	m.KeywordsAnalyzed.Observe(float64(keywordCount))
}

// RecordAnalysisFailed records that an analysis has failed.
func (m *Metrics) RecordAnalysisFailed(durationSeconds float64) {
	m.AnalysesFailed.Inc()
	m.AnalysisDuration.Observe(durationSeconds)
}

// RecordDateResolutionFailure records a publication with an unresolvable date.
func (m *Metrics) RecordDateResolutionFailure() {
	m.DateResolutionFailures.Inc()
}

// RecordExport records a result export.
func (m *Metrics) RecordExport(format string) {
	m.ExportsTotal.WithLabelValues(format).Inc()
}

// RecordPDFDownload records a PDF download attempt outcome.
func (m *Metrics) RecordPDFDownload(outcome string) {
	m.PDFDownloadsTotal.WithLabelValues(outcome).Inc()
}
