package semanticscholar

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
	// DefaultBaseURL is the default base URL for the Semantic Scholar Graph API.
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultRateLimit is the default rate limit for unauthenticated requests.
	// With an API key this can be increased.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum number of results per request.
	DefaultMaxResults = 100

	// apiKeyHeader is the header name for the Semantic Scholar API key.
	apiKeyHeader = "x-api-key"

	// paperFields is the list of fields to request from the API.
	paperFields = "paperId,externalIds,title,abstract,year,publicationDate,venue,journal,authors,fieldsOfStudy,citationCount,referenceCount,isOpenAccess,openAccessPdf"

	sourceName = "Semantic Scholar"
)

// Config contains configuration options for the Semantic Scholar client.
type Config struct {
	// BaseURL is the base URL for the API.
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKey is the optional API key for authenticated requests.
	// Authenticated requests have higher rate limits.
	APIKey string

	// Timeout is the HTTP request timeout.
	// Defaults to DefaultTimeout if zero.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	// Defaults to DefaultRateLimit if zero.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	// Defaults to DefaultBurstSize if zero.
	BurstSize int

	// MaxResults is the maximum number of results to return per search.
	// Defaults to DefaultMaxResults if zero.
	MaxResults int

	// Enabled indicates whether this source is enabled.
	Enabled bool
}

// Client implements the papersources.PaperSource interface for Semantic Scholar.
type Client struct {
	httpClient *papersources.HTTPClient
	config     Config
}

var _ papersources.PaperSource = (*Client)(nil)

// NewClient creates a new Semantic Scholar client with the given configuration.
// If httpClient is nil, a new one is created from the configuration settings.
func NewClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = DefaultBurstSize
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}

	if httpClient == nil {
		httpClient = papersources.NewHTTPClient(papersources.HTTPClientConfig{
			Timeout:      cfg.Timeout,
			RateLimit:    cfg.RateLimit,
			BurstSize:    cfg.BurstSize,
			APIKey:       cfg.APIKey,
			APIKeyHeader: apiKeyHeader,
		})
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
	}
}

// Search queries Semantic Scholar for papers matching the given parameters.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	start := time.Now()

	searchURL, err := c.buildSearchURL(params)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.handleErrorResponse(resp); err != nil {
		return nil, err
	}

	// Limit body to 10MB to prevent resource exhaustion.
	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	pubs := c.convertToPublications(searchResp.Data)

	return &papersources.SearchResult{
		Publications:   pubs,
		TotalResults:   searchResp.Total,
		HasMore:        searchResp.Next > 0,
		NextOffset:     searchResp.Next,
		Source:         domain.SourceTypeSemanticScholar,
		SearchDuration: time.Since(start),
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeSemanticScholar
}

// Name returns the human-readable source name.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is currently enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

func (c *Client) buildSearchURL(params papersources.SearchParams) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	searchURL := baseURL.JoinPath("paper", "search")

	q := searchURL.Query()
	q.Set("query", params.Query)
	q.Set("fields", paperFields)

	limit := params.MaxResults
	if limit <= 0 || limit > c.config.MaxResults {
		limit = c.config.MaxResults
	}
	q.Set("limit", strconv.Itoa(limit))

	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}

	if params.OpenAccessOnly {
		q.Set("openAccessPdf", "")
	}

	if yearRange := buildYearRange(params.StartYear, params.EndYear); yearRange != "" {
		q.Set("year", yearRange)
	}

	searchURL.RawQuery = q.Encode()
	return searchURL.String(), nil
}

// buildYearRange formats the year filter. The API accepts "2015-2020",
// "2015-", "-2020" and a bare year.
func buildYearRange(startYear, endYear int) string {
	switch {
	case startYear > 0 && endYear > 0:
		if startYear == endYear {
			return strconv.Itoa(startYear)
		}
		return fmt.Sprintf("%d-%d", startYear, endYear)
	case startYear > 0:
		return fmt.Sprintf("%d-", startYear)
	case endYear > 0:
		return fmt.Sprintf("-%d", endYear)
	default:
		return ""
	}
}

// handleErrorResponse checks for API errors and returns appropriate error types.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Limit the error body to 1MB.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.NewSourceError(domain.SourceTypeSemanticScholar, "search", resp.StatusCode, err)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		message := errResp.Error
		if message == "" {
			message = errResp.Message
		}
		if message != "" {
			return domain.NewSourceError(domain.SourceTypeSemanticScholar, "search", resp.StatusCode, fmt.Errorf("%s", message))
		}
	}

	return domain.NewSourceError(domain.SourceTypeSemanticScholar, "search", resp.StatusCode, domain.ErrSourceUnavailable)
}

func (c *Client) convertToPublications(results []PaperResult) []*domain.Publication {
	pubs := make([]*domain.Publication, 0, len(results))
	for i := range results {
		if pub := c.convertToPublication(&results[i]); pub != nil {
			pubs = append(pubs, pub)
		}
	}
	return pubs
}

// convertToPublication maps one API paper result onto the domain model.
// Fields of study become the publication's keywords.
func (c *Client) convertToPublication(result *PaperResult) *domain.Publication {
	canonicalID := generateCanonicalID(result)
	if canonicalID == "" {
		return nil
	}

	pub := &domain.Publication{
		ID:              result.PaperID,
		CanonicalID:     canonicalID,
		Title:           result.Title,
		Abstract:        result.Abstract,
		Keywords:        filterKeywords(result.FieldsOfStudy),
		PublicationDate: result.PublicationDate,
		Year:            result.Year,
		Venue:           result.Venue,
		CitationCount:   result.CitationCount,
		ReferenceCount:  result.ReferenceCount,
		OpenAccess:      result.IsOpenAccess,
		Source:          domain.SourceTypeSemanticScholar,
		RawMetadata: map[string]any{
			"semantic_scholar_id": result.PaperID,
		},
	}

	if result.Journal != nil {
		pub.Journal = result.Journal.Name
	}

	if result.OpenAccessPDF != nil && result.OpenAccessPDF.URL != "" {
		pub.PDFURL = result.OpenAccessPDF.URL
	}

	pub.Authors = convertAuthors(result.Authors)

	if result.ExternalIDs != nil {
		if result.ExternalIDs.DOI != "" {
			pub.RawMetadata["doi"] = result.ExternalIDs.DOI
		}
		if result.ExternalIDs.ArXiv != "" {
			pub.RawMetadata["arxiv_id"] = result.ExternalIDs.ArXiv
		}
	}

	return pub
}

// convertAuthors converts API authors to domain authors.
func convertAuthors(apiAuthors []Author) []domain.Author {
	authors := make([]domain.Author, 0, len(apiAuthors))
	for _, a := range apiAuthors {
		if a.Name == "" {
			continue
		}
		authors = append(authors, domain.Author{
			Name: a.Name,
		})
	}
	return authors
}

// filterKeywords drops empty field-of-study entries.
func filterKeywords(fields []string) []string {
	keywords := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

// generateCanonicalID generates a canonical ID from paper identifiers.
func generateCanonicalID(result *PaperResult) string {
	ids := domain.PublicationIdentifiers{
		SemanticScholarID: result.PaperID,
	}

	if result.ExternalIDs != nil {
		ids.DOI = result.ExternalIDs.DOI
		ids.ArXivID = result.ExternalIDs.ArXiv
	}

	return domain.GenerateCanonicalID(ids)
}
