package openalex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/papersources"
)

// newTestClient creates a client configured for testing with the given server URL.
func newTestClient(serverURL string, enabled bool) *Client {
	cfg := Config{
		BaseURL:    serverURL,
		Email:      "test@example.com",
		Timeout:    5 * time.Second,
		RateLimit:  100, // High rate for testing
		BurstSize:  100,
		MaxResults: 25,
		Enabled:    enabled,
	}

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: "TestClient/1.0",
	})

	return NewWithHTTPClient(cfg, httpClient)
}

// sampleSearchResponse returns a sample OpenAlex search response for testing.
func sampleSearchResponse() SearchResponse {
	return SearchResponse{
		Meta: Meta{
			Count:   2,
			Page:    1,
			PerPage: 25,
		},
		Results: []Work{
			{
				ID:              "https://openalex.org/W2741809807",
				DOI:             "https://doi.org/10.1016/j.cose.2023.103456",
				Title:           "Privacy-Preserving Federated Learning",
				DisplayName:     "Privacy-Preserving Federated Learning for Intrusion Detection",
				PublicationYear: 2023,
				PublicationDate: "2023-06-05",
				Type:            "article",
				CitedByCount:    340,
				IsOpenAccess:    true,
				OpenAccess: &OpenAccess{
					IsOA:     true,
					OAURL:    "https://europepmc.org/articles/pmc4022601?pdf=render",
					OAStatus: "gold",
				},
				Authorships: []Authorship{
					{
						AuthorPosition: "first",
						Author: AuthorInfo{
							ID:          "https://openalex.org/A1234567890",
							DisplayName: "John Smith",
							Orcid:       "https://orcid.org/0000-0001-2345-6789",
						},
						Institutions: []Institution{
							{
								ID:          "https://openalex.org/I123",
								DisplayName: "MIT",
							},
						},
					},
					{
						AuthorPosition: "last",
						Author: AuthorInfo{
							ID:          "https://openalex.org/A9876543210",
							DisplayName: "Jane Doe",
							Orcid:       "",
						},
						Institutions: []Institution{},
					},
				},
				PrimaryLocation: &Location{
					Source: &Venue{
						ID:          "https://openalex.org/S123",
						DisplayName: "Computers & Security",
						Type:        "journal",
					},
					PDFURL:  "",
					Version: "publishedVersion",
				},
				Concepts: []Concept{
					{
						ID:          "https://openalex.org/C1",
						DisplayName: "Federated learning",
						Level:       2,
						Score:       0.91,
					},
					{
						ID:          "https://openalex.org/C2",
						DisplayName: "Differential privacy",
						Level:       2,
						Score:       0.55,
					},
					{
						ID:          "https://openalex.org/C3",
						DisplayName: "Mathematics",
						Level:       0,
						Score:       0.12, // Below threshold, dropped.
					},
				},
				IDs: IDs{
					OpenAlex: "https://openalex.org/W2741809807",
					DOI:      "https://doi.org/10.1016/j.cose.2023.103456",
					MAG:      "2741809807",
					PMID:     "https://pubmed.ncbi.nlm.nih.gov/24906146",
				},
				ReferencedWorks: []string{
					"https://openalex.org/W1234",
					"https://openalex.org/W5678",
				},
				AbstractInvertedIndex: map[string][]int{
					"Federated": {0},
					"learning":  {1},
					"protects":  {2},
					"raw":       {3},
					"training":  {4},
					"data.":     {5},
				},
			},
			{
				ID:              "https://openalex.org/W2741809808",
				DOI:             "https://doi.org/10.1109/access.2021.1234567",
				Title:           "Blockchain Consensus Survey",
				DisplayName:     "A Survey of Blockchain Consensus Protocols",
				PublicationYear: 2021,
				PublicationDate: "2021-01-15",
				Type:            "article",
				CitedByCount:    150,
				IsOpenAccess:    false,
				OpenAccess: &OpenAccess{
					IsOA:     false,
					OAURL:    "",
					OAStatus: "closed",
				},
				Authorships: []Authorship{
					{
						AuthorPosition: "first",
						Author: AuthorInfo{
							ID:          "https://openalex.org/A111",
							DisplayName: "Alice Johnson",
							Orcid:       "https://orcid.org/0000-0002-1111-2222",
						},
						Institutions: []Institution{
							{
								ID:          "https://openalex.org/I456",
								DisplayName: "Stanford University",
							},
						},
					},
				},
				PrimaryLocation: &Location{
					Source: &Venue{
						ID:          "https://openalex.org/S456",
						DisplayName: "IEEE Access",
						Type:        "journal",
					},
					PDFURL:  "",
					Version: "publishedVersion",
				},
				IDs: IDs{
					OpenAlex: "https://openalex.org/W2741809808",
					DOI:      "https://doi.org/10.1109/access.2021.1234567",
				},
				ReferencedWorks: []string{},
			},
		},
	}
}

func TestNewClient(t *testing.T) {
	t.Run("creates client with default config", func(t *testing.T) {
		cfg := Config{
			Enabled: true,
		}
		client := New(cfg)

		require.NotNil(t, client)
		assert.Equal(t, DefaultBaseURL, client.config.BaseURL)
		assert.Equal(t, DefaultTimeout, client.config.Timeout)
		assert.Equal(t, DefaultRateLimit, client.config.RateLimit)
		assert.Equal(t, DefaultBurstSize, client.config.BurstSize)
		assert.Equal(t, DefaultMaxResults, client.config.MaxResults)
		assert.True(t, client.config.Enabled)
	})

	t.Run("creates client with custom config", func(t *testing.T) {
		cfg := Config{
			BaseURL:    "https://custom.api.org",
			Email:      "researcher@university.edu",
			Timeout:    60 * time.Second,
			RateLimit:  20.0,
			BurstSize:  20,
			MaxResults: 50,
			Enabled:    true,
		}
		client := New(cfg)

		require.NotNil(t, client)
		assert.Equal(t, "https://custom.api.org", client.config.BaseURL)
		assert.Equal(t, "researcher@university.edu", client.config.Email)
		assert.Equal(t, 60*time.Second, client.config.Timeout)
		assert.Equal(t, 20.0, client.config.RateLimit)
		assert.Equal(t, 20, client.config.BurstSize)
		assert.Equal(t, 50, client.config.MaxResults)
	})

	t.Run("disabled client", func(t *testing.T) {
		cfg := Config{
			Enabled: false,
		}
		client := New(cfg)

		require.NotNil(t, client)
		assert.False(t, client.IsEnabled())
	})
}

func TestClient_SourceType(t *testing.T) {
	client := New(Config{Enabled: true})
	assert.Equal(t, domain.SourceTypeOpenAlex, client.SourceType())
}

func TestClient_Name(t *testing.T) {
	client := New(Config{Enabled: true})
	assert.Equal(t, "OpenAlex", client.Name())
}

func TestClient_Search(t *testing.T) {
	t.Run("successful search", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/works", r.URL.Path)
			assert.Equal(t, "federated learning", r.URL.Query().Get("search"))
			assert.Equal(t, "test@example.com", r.URL.Query().Get("mailto"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(sampleSearchResponse())
		}))
		defer server.Close()

		client := newTestClient(server.URL, true)
		params := papersources.SearchParams{
			Query:      "federated learning",
			MaxResults: 25,
		}

		result, err := client.Search(context.Background(), params)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, 2, len(result.Publications))
		assert.Equal(t, 2, result.TotalResults)
		assert.False(t, result.HasMore)
		assert.Equal(t, domain.SourceTypeOpenAlex, result.Source)
		assert.Greater(t, result.SearchDuration, time.Duration(0))

		pub1 := result.Publications[0]
		assert.Equal(t, "W2741809807", pub1.ID)
		assert.Equal(t, "doi:10.1016/j.cose.2023.103456", pub1.CanonicalID)
		assert.Equal(t, "Privacy-Preserving Federated Learning for Intrusion Detection", pub1.Title)
		assert.Equal(t, "2023-06-05", pub1.PublicationDate)
		assert.Equal(t, 2023, pub1.Year)
		assert.Equal(t, 340, pub1.CitationCount)
		assert.Equal(t, 2, pub1.ReferenceCount)
		assert.True(t, pub1.OpenAccess)
		assert.Equal(t, "Computers & Security", pub1.Journal)
		assert.Equal(t, 2, len(pub1.Authors))
		assert.Equal(t, "John Smith", pub1.Authors[0].Name)
		assert.Equal(t, "0000-0001-2345-6789", pub1.Authors[0].ORCID)
		assert.Equal(t, "MIT", pub1.Authors[0].Affiliation)
		assert.Equal(t, "https://europepmc.org/articles/pmc4022601?pdf=render", pub1.PDFURL)
		assert.Equal(t, domain.SourceTypeOpenAlex, pub1.Source)

		// Concepts above the score threshold become keywords, in score order.
		assert.Equal(t, []string{"Federated learning", "Differential privacy"}, pub1.Keywords)

		// Abstract reconstructed from the inverted index.
		assert.Equal(t, "Federated learning protects raw training data.", pub1.Abstract)

		pub2 := result.Publications[1]
		assert.Equal(t, "doi:10.1109/access.2021.1234567", pub2.CanonicalID)
		assert.Equal(t, 2021, pub2.Year)
		assert.False(t, pub2.OpenAccess)
		assert.Empty(t, pub2.Keywords)
		assert.Empty(t, pub2.Abstract)
	})

	t.Run("search with pagination", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "10", r.URL.Query().Get("per_page"))

			resp := sampleSearchResponse()
			resp.Meta.Count = 100
			resp.Meta.Page = 2
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := newTestClient(server.URL, true)
		params := papersources.SearchParams{
			Query:      "blockchain",
			MaxResults: 10,
			Offset:     10, // Second page
		}

		result, err := client.Search(context.Background(), params)
		require.NoError(t, err)

		assert.Equal(t, 100, result.TotalResults)
		assert.True(t, result.HasMore)
		assert.Equal(t, 12, result.NextOffset)
	})

	t.Run("year and open access filters", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			filter := r.URL.Query().Get("filter")
			assert.Contains(t, filter, "from_publication_date:2015-01-01")
			assert.Contains(t, filter, "to_publication_date:2020-12-31")
			assert.Contains(t, filter, "is_oa:true")

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(SearchResponse{Meta: Meta{Count: 0}, Results: []Work{}})
		}))
		defer server.Close()

		client := newTestClient(server.URL, true)
		params := papersources.SearchParams{
			Query:          "iot security",
			StartYear:      2015,
			EndYear:        2020,
			OpenAccessOnly: true,
		}

		_, err := client.Search(context.Background(), params)
		require.NoError(t, err)
	})

	t.Run("empty search results", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := SearchResponse{
				Meta: Meta{
					Count:   0,
					Page:    1,
					PerPage: 25,
				},
				Results: []Work{},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := newTestClient(server.URL, true)
		params := papersources.SearchParams{
			Query: "nonexistent topic xyz123",
		}

		result, err := client.Search(context.Background(), params)
		require.NoError(t, err)

		assert.Equal(t, 0, len(result.Publications))
		assert.Equal(t, 0, result.TotalResults)
		assert.False(t, result.HasMore)
	})

	t.Run("works without identifiers are dropped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := SearchResponse{
				Meta: Meta{Count: 1},
				Results: []Work{
					{
						Title:           "Untracked Manuscript",
						PublicationYear: 2019,
					},
				},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := newTestClient(server.URL, true)

		result, err := client.Search(context.Background(), papersources.SearchParams{Query: "anything"})
		require.NoError(t, err)
		assert.Empty(t, result.Publications)
	})

	t.Run("server error after retries", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("internal error"))
		}))
		defer server.Close()

		// Short retry delay for faster tests.
		httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
			Timeout:    5 * time.Second,
			RateLimit:  100,
			BurstSize:  100,
			MaxRetries: 1,
			RetryDelay: 5 * time.Millisecond,
		})
		client := NewWithHTTPClient(Config{
			BaseURL:    server.URL,
			MaxResults: 25,
			Enabled:    true,
		}, httpClient)

		params := papersources.SearchParams{
			Query: "federated learning",
		}

		result, err := client.Search(context.Background(), params)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("client error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := newTestClient(server.URL, true)

		result, err := client.Search(context.Background(), papersources.SearchParams{Query: "federated learning"})
		require.Error(t, err)
		assert.Nil(t, result)

		var srcErr *domain.SourceError
		require.ErrorAs(t, err, &srcErr)
		assert.Equal(t, domain.SourceTypeOpenAlex, srcErr.Source)
		assert.Equal(t, http.StatusForbidden, srcErr.StatusCode)
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Second)
			json.NewEncoder(w).Encode(sampleSearchResponse())
		}))
		defer server.Close()

		client := newTestClient(server.URL, true)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := client.Search(ctx, papersources.SearchParams{Query: "federated learning"})
		require.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"https prefix", "https://doi.org/10.1000/XYZ", "10.1000/xyz"},
		{"http prefix", "http://doi.org/10.1000/xyz", "10.1000/xyz"},
		{"doi scheme", "doi:10.1000/xyz", "10.1000/xyz"},
		{"bare", "10.1000/xyz", "10.1000/xyz"},
		{"whitespace", "  10.1000/xyz  ", "10.1000/xyz"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeDOI(tt.input))
		})
	}
}

func TestNormalizeOpenAlexID(t *testing.T) {
	assert.Equal(t, "W2741809807", normalizeOpenAlexID("https://openalex.org/W2741809807"))
	assert.Equal(t, "W2741809807", normalizeOpenAlexID("W2741809807"))
	assert.Equal(t, "", normalizeOpenAlexID(""))
}

func TestReconstructAbstract(t *testing.T) {
	t.Run("orders words by position", func(t *testing.T) {
		index := map[string][]int{
			"analysis": {2},
			"trend":    {1},
			"temporal": {0},
			"of":       {3},
			"keywords": {4},
		}
		assert.Equal(t, "temporal trend analysis of keywords", reconstructAbstract(index))
	})

	t.Run("repeated words", func(t *testing.T) {
		index := map[string][]int{
			"to": {1, 3},
			"be": {0, 2},
		}
		assert.Equal(t, "be to be to", reconstructAbstract(index))
	})

	t.Run("empty index", func(t *testing.T) {
		assert.Equal(t, "", reconstructAbstract(nil))
	})

	t.Run("oversized index rejected", func(t *testing.T) {
		positions := make([]int, 100_001)
		for i := range positions {
			positions[i] = i
		}
		assert.Equal(t, "", reconstructAbstract(map[string][]int{"spam": positions}))
	})
}

func TestConceptKeywords(t *testing.T) {
	concepts := []Concept{
		{DisplayName: "Low relevance", Score: 0.1},
		{DisplayName: "Machine learning", Score: 0.8},
		{DisplayName: "", Score: 0.9},
		{DisplayName: "Computer science", Score: 0.95},
	}
	assert.Equal(t, []string{"Computer science", "Machine learning"}, conceptKeywords(concepts))
}
