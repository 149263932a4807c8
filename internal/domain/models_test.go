package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCanonicalID(t *testing.T) {
	tests := []struct {
		name string
		ids  PublicationIdentifiers
		want string
	}{
		{
			name: "doi takes priority",
			ids: PublicationIdentifiers{
				DOI:     "10.1234/Example.2024",
				ArXivID: "2401.12345",
			},
			want: "doi:10.1234/example.2024",
		},
		{
			name: "arxiv when no doi",
			ids: PublicationIdentifiers{
				ArXivID: "2401.12345",
				CoreID:  "987654",
			},
			want: "arxiv:2401.12345",
		},
		{
			name: "core when no doi or arxiv",
			ids:  PublicationIdentifiers{CoreID: "987654"},
			want: "core:987654",
		},
		{
			name: "semantic scholar fallback",
			ids:  PublicationIdentifiers{SemanticScholarID: "abc123"},
			want: "s2:abc123",
		},
		{
			name: "openalex fallback",
			ids:  PublicationIdentifiers{OpenAlexID: "W123456789"},
			want: "openalex:W123456789",
		},
		{
			name: "springer fallback",
			ids:  PublicationIdentifiers{SpringerID: "spr-1"},
			want: "springer:spr-1",
		},
		{
			name: "whitespace-only doi falls through",
			ids: PublicationIdentifiers{
				DOI:        "   ",
				OpenAlexID: "W1",
			},
			want: "openalex:W1",
		},
		{
			name: "no identifiers",
			ids:  PublicationIdentifiers{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateCanonicalID(tt.ids))
		})
	}
}

func TestNormalizeKeyword(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercases", "Machine Learning", "machine learning"},
		{"strips punctuation", "graph neural networks!", "graph neural networks"},
		{"keeps hyphens", "Multi-Agent Systems", "multi-agent systems"},
		{"collapses whitespace", "  deep   learning  ", "deep learning"},
		{"strips unicode", "café résumé", "caf rsum"},
		{"empty after cleanup", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKeyword(tt.raw))
		})
	}
}

func TestBuildVocabulary(t *testing.T) {
	pubs := []*Publication{
		{Keywords: []string{"Machine Learning", "NLP"}},
		{Keywords: []string{"machine learning", "transformers"}},
		{Keywords: []string{"!!!"}},
	}

	v := BuildVocabulary(pubs)

	require.Len(t, v, 3)
	assert.Equal(t, 2, v["machine learning"].Frequency)
	assert.Equal(t, 1, v["nlp"].Frequency)
	assert.Equal(t, 1, v["transformers"].Frequency)
}

func TestPublicationResolvedTime(t *testing.T) {
	var p Publication

	_, ok := p.ResolvedTime()
	assert.False(t, ok)

	ts := time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC)
	p.SetResolvedTime(ts)

	got, ok := p.ResolvedTime()
	require.True(t, ok)
	assert.Equal(t, ts, got)
}

func TestAuthorString(t *testing.T) {
	tests := []struct {
		name   string
		author Author
		want   string
	}{
		{"name only", Author{Name: "Jane Doe"}, "Jane Doe"},
		{
			"with affiliation",
			Author{Name: "Jane Doe", Affiliation: "MIT"},
			"Jane Doe (MIT)",
		},
		{
			"with affiliation and orcid",
			Author{Name: "Jane Doe", Affiliation: "MIT", ORCID: "0000-0001-2345-6789"},
			"Jane Doe (MIT) [0000-0001-2345-6789]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.author.String())
		})
	}
}

func TestDomainErrors(t *testing.T) {
	t.Run("insufficient data wraps sentinel", func(t *testing.T) {
		err := NewInsufficientDataError("seasonality", 24, 10)
		assert.True(t, errors.Is(err, ErrInsufficientData))
		assert.Contains(t, err.Error(), "need 24, got 10")
	})

	t.Run("source error wraps cause", func(t *testing.T) {
		err := NewSourceError(SourceTypeOpenAlex, "search", 503, ErrSourceUnavailable)
		assert.True(t, errors.Is(err, ErrSourceUnavailable))
		assert.Contains(t, err.Error(), "status 503")

		var srcErr *SourceError
		require.True(t, errors.As(err, &srcErr))
		assert.Equal(t, SourceTypeOpenAlex, srcErr.Source)
	})

	t.Run("validation error wraps invalid input", func(t *testing.T) {
		err := NewValidationError("query", "must not be empty")
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})
}
