package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/papersources"
)

const (
	// DefaultBaseURL is the default CORE v3 API base URL.
	DefaultBaseURL = "https://api.core.ac.uk/v3"

	// DefaultRateLimit is the default rate limit. CORE allows registered
	// keys a modest sustained rate.
	DefaultRateLimit = 2.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 2

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per request.
	DefaultMaxResults = 25

	sourceName = "CORE"
)

// Config holds configuration for the CORE client.
type Config struct {
	// BaseURL is the CORE API base URL.
	BaseURL string

	// APIKey is the CORE API key, sent as a bearer token.
	// Required for all CORE API requests.
	APIKey string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the maximum results to return per search request.
	MaxResults int

	// Enabled indicates whether this source is enabled for searches.
	Enabled bool
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
}

// Client implements papersources.PaperSource for CORE.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

var _ papersources.PaperSource = (*Client)(nil)

// New creates a CORE client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:      cfg.Timeout,
		RateLimit:    cfg.RateLimit,
		BurstSize:    cfg.BurstSize,
		UserAgent:    "slr-analytics-service/1.0",
		APIKey:       "Bearer " + cfg.APIKey,
		APIKeyHeader: "Authorization",
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a client with a custom HTTP client, useful for
// testing against mock servers.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries CORE for works matching the given parameters.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	startTime := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewSourceError(domain.SourceTypeCORE, "search", resp.StatusCode, domain.ErrSourceUnavailable)
	}

	// Limit body to 10MB to prevent resource exhaustion.
	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	pubs := make([]*domain.Publication, 0, len(searchResp.Results))
	for i := range searchResp.Results {
		if pub := c.workToPublication(&searchResp.Results[i]); pub != nil {
			pubs = append(pubs, pub)
		}
	}

	nextOffset := params.Offset + len(pubs)
	return &papersources.SearchResult{
		Publications:   pubs,
		TotalResults:   searchResp.TotalHits,
		HasMore:        nextOffset < searchResp.TotalHits,
		NextOffset:     nextOffset,
		Source:         domain.SourceTypeCORE,
		SearchDuration: time.Since(startTime),
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeCORE
}

// Name returns the human-readable source name.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

func (c *Client) buildSearchURL(params papersources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/search/works"

	query := url.Values{}
	query.Set("q", buildQuery(params))

	maxResults := params.MaxResults
	if maxResults == 0 {
		maxResults = c.config.MaxResults
	}
	query.Set("limit", strconv.Itoa(maxResults))

	if params.Offset > 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// buildQuery assembles the CORE query string. Year bounds are expressed as
// yearPublished range clauses.
func buildQuery(params papersources.SearchParams) string {
	clauses := []string{params.Query}

	if params.StartYear > 0 {
		clauses = append(clauses, fmt.Sprintf("yearPublished>=%d", params.StartYear))
	}
	if params.EndYear > 0 {
		clauses = append(clauses, fmt.Sprintf("yearPublished<=%d", params.EndYear))
	}

	return strings.Join(clauses, " AND ")
}

// workToPublication maps a CORE work onto the domain model. Works without
// any usable identifier are dropped.
func (c *Client) workToPublication(work *Work) *domain.Publication {
	if work == nil {
		return nil
	}

	doi := strings.TrimSpace(work.DOI)

	var coreID string
	if work.ID > 0 {
		coreID = strconv.FormatInt(work.ID, 10)
	}

	canonicalID := domain.GenerateCanonicalID(domain.PublicationIdentifiers{
		DOI:    doi,
		CoreID: coreID,
	})
	if canonicalID == "" {
		return nil
	}

	authors := make([]domain.Author, 0, len(work.Authors))
	for _, a := range work.Authors {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		authors = append(authors, domain.Author{Name: name})
	}

	var journal string
	if len(work.Journals) > 0 {
		journal = work.Journals[0].Title
	}

	pub := &domain.Publication{
		ID:              coreID,
		CanonicalID:     canonicalID,
		Title:           work.Title,
		Abstract:        work.Abstract,
		Authors:         authors,
		Keywords:        workKeywords(work),
		PublicationDate: work.PublishedDate,
		Year:            work.YearPublished,
		Venue:           journal,
		Journal:         journal,
		CitationCount:   work.CitationCount,
		PDFURL:          work.DownloadURL,
		OpenAccess:      work.DownloadURL != "",
		Source:          domain.SourceTypeCORE,
		RawMetadata: map[string]any{
			"core_id":   coreID,
			"publisher": work.Publisher,
		},
	}
	if doi != "" {
		pub.RawMetadata["doi"] = doi
	}

	return pub
}

// workKeywords merges the subject classifications with the primary field of
// study, skipping blanks and duplicates.
func workKeywords(work *Work) []string {
	keywords := make([]string, 0, len(work.Subjects)+1)
	seen := make(map[string]struct{}, len(work.Subjects)+1)

	add := func(kw string) {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			return
		}
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keywords = append(keywords, kw)
	}

	for _, subject := range work.Subjects {
		add(subject)
	}
	add(work.FieldOfStudy)

	return keywords
}
