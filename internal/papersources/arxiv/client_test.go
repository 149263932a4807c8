package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/papersources"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <opensearch:totalResults>42</opensearch:totalResults>
  <opensearch:startIndex>0</opensearch:startIndex>
  <opensearch:itemsPerPage>2</opensearch:itemsPerPage>
  <entry>
    <id>http://arxiv.org/abs/2301.12345v2</id>
    <title>Deep  Reinforcement Learning
      for Network Intrusion Detection</title>
    <summary>  We study deep reinforcement
      learning for intrusion detection.  </summary>
    <published>2023-01-15T18:30:00Z</published>
    <updated>2023-02-01T10:00:00Z</updated>
    <author><name>John Smith</name></author>
    <author><name>Jane Doe</name></author>
    <category term="cs.LG"/>
    <category term="cs.CR"/>
    <link href="http://arxiv.org/abs/2301.12345v2" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2301.12345v2" rel="related" type="application/pdf" title="pdf"/>
    <arxiv:doi>10.1000/example.2023</arxiv:doi>
    <arxiv:journal_ref>Example Journal 12 (2023) 34-56</arxiv:journal_ref>
    <arxiv:primary_category term="cs.LG"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/hep-th/9901001v1</id>
    <title>Old Style Identifier</title>
    <summary>Legacy arXiv identifier format.</summary>
    <published>1999-01-04T12:00:00Z</published>
    <author><name>Alice Johnson</name></author>
    <category term="hep-th"/>
  </entry>
</feed>`

func newTestClient(serverURL string) *Client {
	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:   5 * time.Second,
		RateLimit: 100,
		BurstSize: 100,
	})
	return NewWithHTTPClient(Config{
		BaseURL:    serverURL,
		MaxResults: 25,
		Enabled:    true,
	}, httpClient)
}

func TestClient_Search(t *testing.T) {
	t.Run("successful search", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/query", r.URL.Path)
			assert.Equal(t, "all:intrusion detection", r.URL.Query().Get("search_query"))
			assert.Equal(t, "submittedDate", r.URL.Query().Get("sortBy"))

			w.Header().Set("Content-Type", "application/atom+xml")
			w.Write([]byte(sampleFeed))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		result, err := client.Search(context.Background(), papersources.SearchParams{Query: "intrusion detection"})
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, 42, result.TotalResults)
		assert.True(t, result.HasMore)
		assert.Equal(t, 2, result.NextOffset)
		assert.Equal(t, domain.SourceTypeArXiv, result.Source)
		require.Len(t, result.Publications, 2)

		pub1 := result.Publications[0]
		assert.Equal(t, "2301.12345", pub1.ID)
		assert.Equal(t, "doi:10.1000/example.2023", pub1.CanonicalID)
		assert.Equal(t, "Deep Reinforcement Learning for Network Intrusion Detection", pub1.Title)
		assert.Equal(t, "We study deep reinforcement learning for intrusion detection.", pub1.Abstract)
		assert.Equal(t, "2023-01-15", pub1.PublicationDate)
		assert.Equal(t, 2023, pub1.Year)
		assert.Equal(t, []string{"cs.LG", "cs.CR"}, pub1.Keywords)
		assert.Equal(t, "http://arxiv.org/pdf/2301.12345v2", pub1.PDFURL)
		assert.True(t, pub1.OpenAccess)
		assert.Equal(t, domain.SourceTypeArXiv, pub1.Source)
		require.Len(t, pub1.Authors, 2)
		assert.Equal(t, "John Smith", pub1.Authors[0].Name)

		pub2 := result.Publications[1]
		assert.Equal(t, "hep-th/9901001", pub2.ID)
		assert.Equal(t, "arxiv:hep-th/9901001", pub2.CanonicalID)
		assert.Equal(t, 1999, pub2.Year)
		assert.Equal(t, "http://arxiv.org/pdf/hep-th/9901001", pub2.PDFURL)
	})

	t.Run("year filter", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query().Get("search_query")
			assert.Contains(t, query, "submittedDate:[201501010000 TO 202012312359]")

			w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		result, err := client.Search(context.Background(), papersources.SearchParams{
			Query:     "iot",
			StartYear: 2015,
			EndYear:   2020,
		})
		require.NoError(t, err)
		assert.Empty(t, result.Publications)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		_, err := client.Search(context.Background(), papersources.SearchParams{Query: "iot"})
		require.Error(t, err)

		var srcErr *domain.SourceError
		require.ErrorAs(t, err, &srcErr)
		assert.Equal(t, http.StatusBadRequest, srcErr.StatusCode)
	})
}

func TestExtractArXivID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"modern id with version", "http://arxiv.org/abs/2301.12345v1", "2301.12345"},
		{"modern id without version", "http://arxiv.org/abs/2301.12345", "2301.12345"},
		{"legacy id", "http://arxiv.org/abs/hep-th/9901001v1", "hep-th/9901001"},
		{"not an arxiv url", "http://example.com/abs/123", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractArXivID(tt.input))
		})
	}
}

func TestBuildDateFilter(t *testing.T) {
	assert.Equal(t, "", buildDateFilter(0, 0))
	assert.Equal(t, "submittedDate:[201501010000 TO *]", buildDateFilter(2015, 0))
	assert.Equal(t, "submittedDate:[* TO 202012312359]", buildDateFilter(0, 2020))
	assert.Equal(t, "submittedDate:[201501010000 TO 202012312359]", buildDateFilter(2015, 2020))
}
