package acquire

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioscope/slr-analytics-service/internal/domain"
	"github.com/helioscope/slr-analytics-service/internal/papersources"
)

// stubSource is a canned PaperSource for acquisition tests.
type stubSource struct {
	sourceType domain.SourceType
	pubs       []*domain.Publication
	err        error
}

func (s *stubSource) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &papersources.SearchResult{
		Publications: s.pubs,
		TotalResults: len(s.pubs),
		Source:       s.sourceType,
	}, nil
}

func (s *stubSource) SourceType() domain.SourceType { return s.sourceType }
func (s *stubSource) Name() string                  { return string(s.sourceType) }
func (s *stubSource) IsEnabled() bool               { return true }

func newTestAcquirer(t *testing.T, sources ...papersources.PaperSource) (*Acquirer, string) {
	t.Helper()
	registry := papersources.NewRegistry()
	for _, source := range sources {
		registry.Register(source)
	}
	dir := t.TempDir()
	return NewAcquirer(registry, dir, zerolog.Nop(), nil), dir
}

func TestFetchAllSources(t *testing.T) {
	t.Run("fetches and snapshots each source", func(t *testing.T) {
		openalex := &stubSource{
			sourceType: domain.SourceTypeOpenAlex,
			pubs: []*domain.Publication{
				{ID: "W1", Title: "One"},
				{ID: "W2", Title: "Two"},
			},
		}
		arxiv := &stubSource{
			sourceType: domain.SourceTypeArXiv,
			pubs: []*domain.Publication{
				{ID: "2301.00001", Title: "Three"},
			},
		}
		acquirer, dir := newTestAcquirer(t, openalex, arxiv)

		result, err := acquirer.FetchAllSources(context.Background(), Request{
			Query:     "digital twins",
			StartYear: 2018,
			EndYear:   2023,
		})
		require.NoError(t, err)

		assert.Equal(t, 3, result.TotalFetched)
		assert.Len(t, result.Publications[domain.SourceTypeOpenAlex], 2)
		assert.Len(t, result.Publications[domain.SourceTypeArXiv], 1)
		require.Len(t, result.Outcomes, 2)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		for _, outcome := range result.Outcomes {
			require.Empty(t, outcome.Error)
			require.NotEmpty(t, outcome.SnapshotPath)
			base := filepath.Base(outcome.SnapshotPath)
			assert.True(t, strings.HasPrefix(base, string(outcome.Source)+"_digital_twins_2018-2023_"), base)
			assert.True(t, strings.HasSuffix(base, ".json"))
		}
	})

	t.Run("partial failure is not an error", func(t *testing.T) {
		ok := &stubSource{
			sourceType: domain.SourceTypeOpenAlex,
			pubs:       []*domain.Publication{{ID: "W1"}},
		}
		failing := &stubSource{
			sourceType: domain.SourceTypeCORE,
			err:        errors.New("core down"),
		}
		acquirer, _ := newTestAcquirer(t, ok, failing)

		result, err := acquirer.FetchAllSources(context.Background(), Request{Query: "q"})
		require.NoError(t, err)

		assert.Equal(t, 1, result.TotalFetched)
		require.Len(t, result.Outcomes, 2)

		var failedOutcome *SourceOutcome
		for i := range result.Outcomes {
			if result.Outcomes[i].Source == domain.SourceTypeCORE {
				failedOutcome = &result.Outcomes[i]
			}
		}
		require.NotNil(t, failedOutcome)
		assert.Contains(t, failedOutcome.Error, "core down")
		assert.Empty(t, failedOutcome.SnapshotPath)
	})

	t.Run("all sources failing is an error", func(t *testing.T) {
		failing := &stubSource{
			sourceType: domain.SourceTypeCORE,
			err:        errors.New("down"),
		}
		acquirer, _ := newTestAcquirer(t, failing)

		_, err := acquirer.FetchAllSources(context.Background(), Request{Query: "q"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})

	t.Run("restricts to requested sources", func(t *testing.T) {
		openalex := &stubSource{
			sourceType: domain.SourceTypeOpenAlex,
			pubs:       []*domain.Publication{{ID: "W1"}},
		}
		core := &stubSource{
			sourceType: domain.SourceTypeCORE,
			pubs:       []*domain.Publication{{ID: "c1"}},
		}
		acquirer, _ := newTestAcquirer(t, openalex, core)

		result, err := acquirer.FetchAllSources(context.Background(), Request{
			Query:   "q",
			Sources: []domain.SourceType{domain.SourceTypeOpenAlex},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.TotalFetched)
		assert.NotContains(t, result.Publications, domain.SourceTypeCORE)
	})
}

func TestSnapshotRoundTrip(t *testing.T) {
	source := &stubSource{
		sourceType: domain.SourceTypeSpringer,
		pubs: []*domain.Publication{
			{ID: "s1", CanonicalID: "doi:10.1/x", Title: "Round Trip", Year: 2020},
		},
	}
	acquirer, _ := newTestAcquirer(t, source)

	result, err := acquirer.FetchAllSources(context.Background(), Request{
		Query:     "round trip",
		StartYear: 2019,
		EndYear:   2021,
	})
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)

	loaded, err := LoadSnapshot(result.Outcomes[0].SnapshotPath)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Round Trip", loaded[0].Title)
	assert.Equal(t, 2020, loaded[0].Year)
}

func TestSanitizeQuery(t *testing.T) {
	assert.Equal(t, "machine_learning", sanitizeQuery("machine learning"))
	assert.Equal(t, "C___security", sanitizeQuery("C++ security"))
	assert.Len(t, sanitizeQuery(strings.Repeat("a b", 40)), 30)
	assert.Equal(t, "", sanitizeQuery(""))
}
