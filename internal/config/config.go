// Package config provides configuration management for the SLR analytics service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the SLR analytics service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Storage contains local filesystem layout for corpus data and results.
	Storage StorageConfig `mapstructure:"storage"`
	// PaperSources contains paper source API configurations.
	PaperSources PaperSourcesConfig `mapstructure:"paper_sources"`
	// Analysis contains temporal analysis tuning parameters.
	Analysis AnalysisConfig `mapstructure:"analysis"`
	// PDF contains full-text PDF download settings.
	PDF PDFConfig `mapstructure:"pdf"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr, file path).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
}

// StorageConfig holds the local filesystem layout for acquired data,
// processed corpora and analysis results.
type StorageConfig struct {
	// RawDir is the directory for raw per-source acquisition snapshots.
	RawDir string `mapstructure:"raw_dir"`
	// ProcessedDir is the directory for deduplicated corpora.
	ProcessedDir string `mapstructure:"processed_dir"`
	// ResultsDir is the directory for analysis result exports.
	ResultsDir string `mapstructure:"results_dir"`
	// PDFDir is the directory for downloaded full-text PDFs.
	PDFDir string `mapstructure:"pdf_dir"`
}

// PaperSourcesConfig holds configuration for all paper source APIs.
type PaperSourcesConfig struct {
	// CORE contains CORE API settings.
	CORE PaperSourceConfig `mapstructure:"core"`
	// OpenAlex contains OpenAlex API settings.
	OpenAlex PaperSourceConfig `mapstructure:"openalex"`
	// ArXiv contains arXiv API settings.
	ArXiv PaperSourceConfig `mapstructure:"arxiv"`
	// SemanticScholar contains Semantic Scholar API settings.
	SemanticScholar PaperSourceConfig `mapstructure:"semantic_scholar"`
	// Springer contains Springer Nature Meta API settings.
	Springer PaperSourceConfig `mapstructure:"springer"`
}

// PaperSourceConfig holds configuration for a single paper source API.
type PaperSourceConfig struct {
	// Enabled controls whether this source is used.
	Enabled bool `mapstructure:"enabled"`
	// APIKey is the API key (loaded from environment variable, e.g. SLR_PAPER_SOURCES_CORE_API_KEY).
	APIKey string `mapstructure:"-"`
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Email is the contact email sent to sources that support a polite pool
	// (OpenAlex).
	Email string `mapstructure:"email"`
	// Timeout is the timeout for API calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// MaxResults is the maximum results per query.
	MaxResults int `mapstructure:"max_results"`
}

// TimePeriod names an inclusive year range for period comparison.
type TimePeriod struct {
	// Name is the period label used in comparison results.
	Name string `mapstructure:"name"`
	// StartYear is the first year of the period, inclusive.
	StartYear int `mapstructure:"start_year"`
	// EndYear is the last year of the period, inclusive.
	EndYear int `mapstructure:"end_year"`
}

// AnalysisConfig holds temporal analysis tuning parameters. Defaults match
// the published methodology; override with care since they change what
// counts as a trend, a cycle or a change point.
type AnalysisConfig struct {
	// MinOccurrences is the minimum total occurrences for a keyword to be
	// analyzed at all.
	MinOccurrences int `mapstructure:"min_occurrences"`
	// StableSlopeEpsilon is the absolute slope below which a trend with
	// enough support is classified as stable.
	StableSlopeEpsilon float64 `mapstructure:"stable_slope_epsilon"`
	// StableMinOccurrences is the minimum occurrences required before a
	// near-zero slope counts as stable rather than noise.
	StableMinOccurrences int `mapstructure:"stable_min_occurrences"`
	// SignificanceLevel is the p-value threshold for trend significance.
	SignificanceLevel float64 `mapstructure:"significance_level"`
	// SeasonalLag is the autocorrelation lag (in months) tested for
	// seasonality.
	SeasonalLag int `mapstructure:"seasonal_lag"`
	// SeasonalMinPoints is the minimum number of monthly points required
	// to test seasonality.
	SeasonalMinPoints int `mapstructure:"seasonal_min_points"`
	// SeasonalThreshold is the autocorrelation above which a series is
	// flagged seasonal.
	SeasonalThreshold float64 `mapstructure:"seasonal_threshold"`
	// PatternMinPoints is the minimum number of points for cyclic pattern
	// and change point detection.
	PatternMinPoints int `mapstructure:"pattern_min_points"`
	// ChangePointZScore is the sigma multiplier for change point detection.
	ChangePointZScore float64 `mapstructure:"change_point_z_score"`
	// VolatilityThreshold is the coefficient of variation above which a
	// keyword is flagged anomalous.
	VolatilityThreshold float64 `mapstructure:"volatility_threshold"`
	// TopKeywordsDetailed is how many trend changes are kept per keyword,
	// largest slope delta first.
	TopKeywordsDetailed int `mapstructure:"top_keywords_detailed"`
	// TopKeywordsPooled is how many change points are kept in the pooled
	// cross-keyword list.
	TopKeywordsPooled int `mapstructure:"top_keywords_pooled"`
	// MinCommonKeywords is the minimum shared keywords required for
	// statistical period comparison.
	MinCommonKeywords int `mapstructure:"min_common_keywords"`
	// EmergenceRatio is the ratio above which a keyword counts as increased
	// between periods.
	EmergenceRatio float64 `mapstructure:"emergence_ratio"`
	// DeclineRatio is the ratio below which a keyword counts as decreased
	// between periods.
	DeclineRatio float64 `mapstructure:"decline_ratio"`
	// TimePeriods are the named year ranges compared by the period
	// comparator, in chronological order.
	TimePeriods []TimePeriod `mapstructure:"time_periods"`
}

// PDFConfig holds full-text PDF download settings.
type PDFConfig struct {
	// Enabled controls whether open access PDFs are downloaded.
	Enabled bool `mapstructure:"enabled"`
	// Timeout is the per-download timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxSizeBytes is the maximum PDF size accepted.
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
	// MaxConcurrent is the number of concurrent downloads.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// UserAgent is the User-Agent header sent with download requests.
	UserAgent string `mapstructure:"user_agent"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("SLR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/slr-analytics-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load secrets exclusively from environment variables.
	// These fields use mapstructure:"-" to prevent loading from config files.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets populates secret fields exclusively from environment variables.
// These fields are tagged with mapstructure:"-" to prevent loading from config files.
func loadSecrets(cfg *Config) {
	// OpenAlex and arXiv issue no API keys.
	cfg.PaperSources.CORE.APIKey = os.Getenv("SLR_PAPER_SOURCES_CORE_API_KEY")
	cfg.PaperSources.SemanticScholar.APIKey = os.Getenv("SLR_PAPER_SOURCES_SEMANTIC_SCHOLAR_API_KEY")
	cfg.PaperSources.Springer.APIKey = os.Getenv("SLR_PAPER_SOURCES_SPRINGER_API_KEY")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Storage defaults
	v.SetDefault("storage.raw_dir", "data/raw")
	v.SetDefault("storage.processed_dir", "data/processed")
	v.SetDefault("storage.results_dir", "data/results")
	v.SetDefault("storage.pdf_dir", "data/pdfs")

	// Paper sources defaults - CORE (disabled by default, requires API key)
	// API keys are loaded exclusively from environment variables (see loadSecrets).
	v.SetDefault("paper_sources.core.enabled", false)
	v.SetDefault("paper_sources.core.base_url", "https://api.core.ac.uk/v3")
	v.SetDefault("paper_sources.core.timeout", "30s")
	v.SetDefault("paper_sources.core.rate_limit", 5.0)
	v.SetDefault("paper_sources.core.max_results", 100)

	// Paper sources defaults - OpenAlex
	v.SetDefault("paper_sources.openalex.enabled", true)
	v.SetDefault("paper_sources.openalex.base_url", "https://api.openalex.org")
	v.SetDefault("paper_sources.openalex.timeout", "30s")
	v.SetDefault("paper_sources.openalex.rate_limit", 10.0)
	v.SetDefault("paper_sources.openalex.max_results", 200)
	v.SetDefault("paper_sources.openalex.email", "")

	// Paper sources defaults - arXiv
	v.SetDefault("paper_sources.arxiv.enabled", true)
	v.SetDefault("paper_sources.arxiv.base_url", "https://export.arxiv.org/api")
	v.SetDefault("paper_sources.arxiv.timeout", "30s")
	v.SetDefault("paper_sources.arxiv.rate_limit", 3.0) // arXiv recommends max 3 req/sec
	v.SetDefault("paper_sources.arxiv.max_results", 100)

	// Paper sources defaults - Semantic Scholar
	v.SetDefault("paper_sources.semantic_scholar.enabled", true)
	v.SetDefault("paper_sources.semantic_scholar.base_url", "https://api.semanticscholar.org/graph/v1")
	v.SetDefault("paper_sources.semantic_scholar.timeout", "30s")
	v.SetDefault("paper_sources.semantic_scholar.rate_limit", 10.0)
	v.SetDefault("paper_sources.semantic_scholar.max_results", 100)

	// Paper sources defaults - Springer (disabled by default, requires API key)
	v.SetDefault("paper_sources.springer.enabled", false)
	v.SetDefault("paper_sources.springer.base_url", "https://api.springernature.com")
	v.SetDefault("paper_sources.springer.timeout", "30s")
	v.SetDefault("paper_sources.springer.rate_limit", 5.0)
	v.SetDefault("paper_sources.springer.max_results", 100)

	// Analysis defaults
	v.SetDefault("analysis.min_occurrences", 3)
	v.SetDefault("analysis.stable_slope_epsilon", 0.01)
	v.SetDefault("analysis.stable_min_occurrences", 5)
	v.SetDefault("analysis.significance_level", 0.05)
	v.SetDefault("analysis.seasonal_lag", 12)
	v.SetDefault("analysis.seasonal_min_points", 24)
	v.SetDefault("analysis.seasonal_threshold", 0.3)
	v.SetDefault("analysis.pattern_min_points", 6)
	v.SetDefault("analysis.change_point_z_score", 2.0)
	v.SetDefault("analysis.volatility_threshold", 2.0)
	v.SetDefault("analysis.top_keywords_detailed", 5)
	v.SetDefault("analysis.top_keywords_pooled", 20)
	v.SetDefault("analysis.min_common_keywords", 5)
	v.SetDefault("analysis.emergence_ratio", 1.2)
	v.SetDefault("analysis.decline_ratio", 0.8)
	v.SetDefault("analysis.time_periods", []map[string]any{
		{"name": "early", "start_year": 2010, "end_year": 2015},
		{"name": "middle", "start_year": 2016, "end_year": 2020},
		{"name": "recent", "start_year": 2021, "end_year": 2025},
	})

	// PDF download defaults
	v.SetDefault("pdf.enabled", false)
	v.SetDefault("pdf.timeout", "60s")
	v.SetDefault("pdf.max_size_bytes", 50*1024*1024)
	v.SetDefault("pdf.max_concurrent", 4)
	v.SetDefault("pdf.user_agent", "slr-analytics-service/1.0")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate server ports
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	// Validate storage dirs
	if c.Storage.RawDir == "" {
		return fmt.Errorf("storage raw_dir is required")
	}
	if c.Storage.ProcessedDir == "" {
		return fmt.Errorf("storage processed_dir is required")
	}
	if c.Storage.ResultsDir == "" {
		return fmt.Errorf("storage results_dir is required")
	}

	// Validate sources that cannot operate without a key
	if c.PaperSources.CORE.Enabled && c.PaperSources.CORE.APIKey == "" {
		return fmt.Errorf("CORE source requires SLR_PAPER_SOURCES_CORE_API_KEY to be set")
	}
	if c.PaperSources.Springer.Enabled && c.PaperSources.Springer.APIKey == "" {
		return fmt.Errorf("springer source requires SLR_PAPER_SOURCES_SPRINGER_API_KEY to be set")
	}

	return c.Analysis.Validate()
}

// Validate validates the analysis parameters.
func (c *AnalysisConfig) Validate() error {
	if c.MinOccurrences < 1 {
		return fmt.Errorf("analysis min_occurrences must be positive")
	}
	if c.StableSlopeEpsilon < 0 {
		return fmt.Errorf("analysis stable_slope_epsilon must be non-negative")
	}
	if c.SignificanceLevel <= 0 || c.SignificanceLevel >= 1 {
		return fmt.Errorf("analysis significance_level must be in (0, 1)")
	}
	if c.SeasonalLag < 1 {
		return fmt.Errorf("analysis seasonal_lag must be positive")
	}
	if c.SeasonalMinPoints <= c.SeasonalLag {
		return fmt.Errorf("analysis seasonal_min_points (%d) must exceed seasonal_lag (%d)", c.SeasonalMinPoints, c.SeasonalLag)
	}
	if c.PatternMinPoints < 2 {
		return fmt.Errorf("analysis pattern_min_points must be at least 2")
	}
	if c.ChangePointZScore <= 0 {
		return fmt.Errorf("analysis change_point_z_score must be positive")
	}
	if c.EmergenceRatio <= c.DeclineRatio {
		return fmt.Errorf("analysis emergence_ratio (%g) must exceed decline_ratio (%g)", c.EmergenceRatio, c.DeclineRatio)
	}

	seen := make(map[string]bool, len(c.TimePeriods))
	for _, p := range c.TimePeriods {
		if p.Name == "" {
			return fmt.Errorf("analysis time period name is required")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate analysis time period name: %s", p.Name)
		}
		seen[p.Name] = true
		if p.EndYear < p.StartYear {
			return fmt.Errorf("analysis time period %s: end_year (%d) before start_year (%d)", p.Name, p.EndYear, p.StartYear)
		}
	}

	return nil
}
