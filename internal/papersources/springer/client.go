package springer

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
	// DefaultBaseURL is the default Springer Nature API base URL.
	DefaultBaseURL = "https://api.springernature.com"

	// DefaultRateLimit is the default rate limit. Free API keys allow a
	// low sustained request rate.
	DefaultRateLimit = 2.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 2

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum results per request.
	DefaultMaxResults = 25

	sourceName = "Springer"
)

// Config holds configuration for the Springer client.
type Config struct {
	// BaseURL is the Springer API base URL.
	BaseURL string

	// APIKey is the Springer API key, sent as the api_key query parameter.
	// Required for all requests.
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

// Client implements papersources.PaperSource for the Springer Metadata API.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

var _ papersources.PaperSource = (*Client)(nil)

// New creates a Springer client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: "slr-analytics-service/1.0",
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

// Search queries Springer for documents matching the given parameters.
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
		return nil, domain.NewSourceError(domain.SourceTypeSpringer, "search", resp.StatusCode, domain.ErrSourceUnavailable)
	}

	// Limit body to 10MB to prevent resource exhaustion.
	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	pubs := make([]*domain.Publication, 0, len(searchResp.Records))
	for i := range searchResp.Records {
		if pub := c.recordToPublication(&searchResp.Records[i]); pub != nil {
			pubs = append(pubs, pub)
		}
	}

	totalResults := 0
	if len(searchResp.Result) > 0 {
		totalResults, _ = strconv.Atoi(searchResp.Result[0].Total)
	}

	nextOffset := params.Offset + len(pubs)
	return &papersources.SearchResult{
		Publications:   pubs,
		TotalResults:   totalResults,
		HasMore:        nextOffset < totalResults,
		NextOffset:     nextOffset,
		Source:         domain.SourceTypeSpringer,
		SearchDuration: time.Since(startTime),
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeSpringer
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

	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/metadata/json"

	query := url.Values{}
	query.Set("q", buildQuery(params))
	query.Set("api_key", c.config.APIKey)

	maxResults := params.MaxResults
	if maxResults == 0 {
		maxResults = c.config.MaxResults
	}
	query.Set("p", strconv.Itoa(maxResults))

	// Springer pagination is 1-based.
	query.Set("s", strconv.Itoa(params.Offset+1))

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// buildQuery assembles the Springer constraint query. Year bounds become
// datefrom/dateto constraints.
func buildQuery(params papersources.SearchParams) string {
	clauses := []string{params.Query}

	if params.StartYear > 0 {
		clauses = append(clauses, fmt.Sprintf("datefrom:%d-01-01", params.StartYear))
	}
	if params.EndYear > 0 {
		clauses = append(clauses, fmt.Sprintf("dateto:%d-12-31", params.EndYear))
	}
	if params.OpenAccessOnly {
		clauses = append(clauses, "openaccess:true")
	}

	return strings.Join(clauses, " ")
}

// recordToPublication maps a Springer record onto the domain model.
// Records without a DOI or identifier are dropped.
func (c *Client) recordToPublication(record *Record) *domain.Publication {
	if record == nil {
		return nil
	}

	doi := strings.TrimSpace(record.DOI)
	if doi == "" {
		doi = strings.TrimPrefix(strings.TrimSpace(record.Identifier), "doi:")
	}

	springerID := strings.TrimSpace(record.Identifier)

	canonicalID := domain.GenerateCanonicalID(domain.PublicationIdentifiers{
		DOI:        doi,
		SpringerID: springerID,
	})
	if canonicalID == "" {
		return nil
	}

	authors := make([]domain.Author, 0, len(record.Creators))
	for _, creator := range record.Creators {
		name := strings.TrimSpace(creator.Creator)
		if name == "" {
			continue
		}
		authors = append(authors, domain.Author{
			Name:  name,
			ORCID: strings.TrimSpace(creator.ORCID),
		})
	}

	year := 0
	if len(record.PublicationDate) >= 4 {
		year, _ = strconv.Atoi(record.PublicationDate[:4])
	}

	pub := &domain.Publication{
		ID:              springerID,
		CanonicalID:     canonicalID,
		Title:           record.Title,
		Abstract:        record.Abstract,
		Authors:         authors,
		Keywords:        recordKeywords(record),
		PublicationDate: record.PublicationDate,
		Year:            year,
		Venue:           record.PublicationName,
		Journal:         record.PublicationName,
		PDFURL:          pdfURL(record.URLs),
		OpenAccess:      record.OpenAccess == "true",
		Source:          domain.SourceTypeSpringer,
		RawMetadata: map[string]any{
			"springer_id":  springerID,
			"content_type": record.ContentType,
			"publisher":    record.Publisher,
		},
	}
	if doi != "" {
		pub.RawMetadata["doi"] = doi
	}

	return pub
}

// recordKeywords merges author keywords with subject classifications,
// skipping blanks and duplicates.
func recordKeywords(record *Record) []string {
	keywords := make([]string, 0, len(record.Keywords)+len(record.Subjects))
	seen := make(map[string]struct{}, len(record.Keywords)+len(record.Subjects))

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

	for _, kw := range record.Keywords {
		add(kw)
	}
	for _, subject := range record.Subjects {
		add(subject)
	}

	return keywords
}

// pdfURL picks the first PDF location, falling back to the first URL of
// any format.
func pdfURL(urls []RecordURL) string {
	for _, u := range urls {
		if strings.EqualFold(u.Format, "pdf") && u.Value != "" {
			return u.Value
		}
	}
	for _, u := range urls {
		if u.Value != "" {
			return u.Value
		}
	}
	return ""
}
