package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/papersources"
)

const (
	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the default requests per second. The polite pool
	// (with an email) allows higher rates.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default rate limit burst.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default page size.
	DefaultMaxResults = 25

	// conceptScoreThreshold is the minimum concept relevance score for a
	// concept to become a publication keyword.
	conceptScoreThreshold = 0.3

	doiPrefix        = "https://doi.org/"
	openAlexIDPrefix = "https://openalex.org/"
)

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL is the API base URL. Defaults to https://api.openalex.org.
	BaseURL string

	// Email is the contact email for the polite pool, which grants higher
	// rate limits.
	Email string

	// Timeout is the request timeout. Defaults to 30 seconds.
	Timeout time.Duration

	// RateLimit is the maximum requests per second. Defaults to 10.
	RateLimit float64

	// BurstSize is the maximum request burst. Defaults to 10.
	BurstSize int

	// MaxResults is the page size, capped at 200 by the API. Defaults
	// to 25.
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

// Client implements papersources.PaperSource for OpenAlex.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

var _ papersources.PaperSource = (*Client)(nil)

// New creates an OpenAlex client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: "slr-analytics-service/1.0 (mailto:" + cfg.Email + ")",
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

// Search queries OpenAlex works matching the given parameters.
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

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewSourceError(domain.SourceTypeOpenAlex, "search", resp.StatusCode, domain.ErrSourceUnavailable)
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
		TotalResults:   searchResp.Meta.Count,
		HasMore:        nextOffset < searchResp.Meta.Count,
		NextOffset:     nextOffset,
		Source:         domain.SourceTypeOpenAlex,
		SearchDuration: time.Since(startTime),
	}, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeOpenAlex
}

// Name returns the human-readable source name.
func (c *Client) Name() string {
	return "OpenAlex"
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

	baseURL.Path = "/works"

	query := url.Values{}
	if params.Query != "" {
		query.Set("search", params.Query)
	}

	if filters := c.buildFilters(params); len(filters) > 0 {
		query.Set("filter", strings.Join(filters, ","))
	}

	maxResults := params.MaxResults
	if maxResults == 0 {
		maxResults = c.config.MaxResults
	}
	if maxResults > 200 {
		maxResults = 200 // OpenAlex API limit
	}
	query.Set("per_page", strconv.Itoa(maxResults))

	// OpenAlex pagination is page based and 1-indexed.
	if params.Offset > 0 {
		page := (params.Offset / maxResults) + 1
		query.Set("page", strconv.Itoa(page))
	}

	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

func (c *Client) buildFilters(params papersources.SearchParams) []string {
	var filters []string

	if params.StartYear > 0 {
		filters = append(filters, fmt.Sprintf("from_publication_date:%d-01-01", params.StartYear))
	}
	if params.EndYear > 0 {
		filters = append(filters, fmt.Sprintf("to_publication_date:%d-12-31", params.EndYear))
	}
	if params.OpenAccessOnly {
		filters = append(filters, "is_oa:true")
	}

	return filters
}

// workToPublication maps an OpenAlex work onto the domain model. Works
// without any usable identifier are dropped.
func (c *Client) workToPublication(work *Work) *domain.Publication {
	if work == nil {
		return nil
	}

	doi := normalizeDOI(work.DOI)
	if doi == "" && work.IDs.DOI != "" {
		doi = normalizeDOI(work.IDs.DOI)
	}

	openAlexID := normalizeOpenAlexID(work.ID)
	if openAlexID == "" && work.IDs.OpenAlex != "" {
		openAlexID = normalizeOpenAlexID(work.IDs.OpenAlex)
	}

	canonicalID := domain.GenerateCanonicalID(domain.PublicationIdentifiers{
		DOI:        doi,
		OpenAlexID: openAlexID,
	})
	if canonicalID == "" {
		return nil
	}

	authors := make([]domain.Author, 0, len(work.Authorships))
	for _, authorship := range work.Authorships {
		author := domain.Author{
			Name:  authorship.Author.DisplayName,
			ORCID: normalizeORCID(authorship.Author.Orcid),
		}
		if len(authorship.Institutions) > 0 {
			author.Affiliation = authorship.Institutions[0].DisplayName
		}
		authors = append(authors, author)
	}

	// display_name is usually the cleaner of the two titles.
	title := work.DisplayName
	if title == "" {
		title = work.Title
	}

	var venue, journal string
	if work.PrimaryLocation != nil && work.PrimaryLocation.Source != nil {
		journal = work.PrimaryLocation.Source.DisplayName
		venue = journal
	}

	isOpenAccess := work.IsOpenAccess
	if work.OpenAccess != nil {
		isOpenAccess = work.OpenAccess.IsOA
	}

	var pdfURL string
	if work.OpenAccess != nil && work.OpenAccess.OAURL != "" {
		pdfURL = work.OpenAccess.OAURL
	} else if work.PrimaryLocation != nil && work.PrimaryLocation.PDFURL != "" {
		pdfURL = work.PrimaryLocation.PDFURL
	}

	return &domain.Publication{
		ID:              openAlexID,
		CanonicalID:     canonicalID,
		Title:           title,
		Abstract:        reconstructAbstract(work.AbstractInvertedIndex),
		Authors:         authors,
		Keywords:        conceptKeywords(work.Concepts),
		PublicationDate: work.PublicationDate,
		Year:            work.PublicationYear,
		Venue:           venue,
		Journal:         journal,
		CitationCount:   work.CitedByCount,
		ReferenceCount:  len(work.ReferencedWorks),
		PDFURL:          pdfURL,
		OpenAccess:      isOpenAccess,
		Source:          domain.SourceTypeOpenAlex,
		RawMetadata: map[string]any{
			"openalex_id": openAlexID,
			"doi":         doi,
			"type":        work.Type,
			"pmid":        work.IDs.PMID,
			"pmcid":       work.IDs.PMCID,
		},
	}
}

// conceptKeywords keeps concepts scoring above the relevance threshold, in
// score order.
func conceptKeywords(concepts []Concept) []string {
	selected := make([]Concept, 0, len(concepts))
	for _, concept := range concepts {
		if concept.Score >= conceptScoreThreshold && concept.DisplayName != "" {
			selected = append(selected, concept)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Score > selected[j].Score
	})

	keywords := make([]string, 0, len(selected))
	for _, concept := range selected {
		keywords = append(keywords, concept.DisplayName)
	}
	return keywords
}

// normalizeDOI strips URL and scheme prefixes and lowercases the DOI.
func normalizeDOI(doi string) string {
	if doi == "" {
		return ""
	}
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, doiPrefix)
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(strings.TrimSpace(doi))
}

// normalizeOpenAlexID extracts the short ID from full OpenAlex URLs.
func normalizeOpenAlexID(id string) string {
	if id == "" {
		return ""
	}
	id = strings.TrimPrefix(id, openAlexIDPrefix)
	return strings.TrimSpace(id)
}

// normalizeORCID strips URL prefixes from ORCID identifiers.
func normalizeORCID(orcid string) string {
	if orcid == "" {
		return ""
	}
	orcid = strings.TrimPrefix(orcid, "https://orcid.org/")
	return strings.TrimSpace(orcid)
}

// reconstructAbstract rebuilds the abstract text from OpenAlex's inverted
// index, which maps words to their positions.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	const maxAbstractWords = 100_000
	totalPairs := 0
	for _, positions := range invertedIndex {
		totalPairs += len(positions)
	}
	// Guard against payloads with excessive position entries.
	if totalPairs > maxAbstractWords {
		return ""
	}

	pairs := make([]posWord, 0, totalPairs)
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	var builder strings.Builder
	builder.Grow(totalPairs * 7)
	for i, pair := range pairs {
		if i > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(pair.word)
	}

	return builder.String()
}
