package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioscope/slr-analytics-service/internal/domain"
)

func TestPrepare_SkipsUnresolvedDates(t *testing.T) {
	dated := datedPublication("p1", "Graph methods", 2020, time.March, "graphs")
	undated := &domain.Publication{ID: "p2", Title: "Graph methods too", Keywords: []string{"graphs"}}

	prepared := Prepare([]*domain.Publication{dated, undated}, domain.Vocabulary{})

	require.Len(t, prepared.Occurrences["graphs"], 1)
	assert.Equal(t, "p1", prepared.Occurrences["graphs"][0].PublicationID)
}

func TestPrepare_AttachedAndVocabularyKeywords(t *testing.T) {
	pub := datedPublication("p1", "A survey of federated learning", 2021, time.June, "Privacy")
	pub.Abstract = "We review federated learning and secure aggregation."

	vocab := make(domain.Vocabulary)
	vocab.Add("federated learning")
	vocab.Add("secure aggregation")
	vocab.Add("reinforcement learning")

	prepared := Prepare([]*domain.Publication{pub}, vocab)

	// Attached keyword is normalized; vocabulary terms match against title
	// and abstract; absent terms stay out.
	assert.Len(t, prepared.Occurrences["privacy"], 1)
	assert.Len(t, prepared.Occurrences["federated learning"], 1)
	assert.Len(t, prepared.Occurrences["secure aggregation"], 1)
	assert.NotContains(t, prepared.Occurrences, "reinforcement learning")
}

func TestPrepare_KeywordCountedOncePerPublication(t *testing.T) {
	// Attached and matched in the title; must produce a single occurrence.
	pub := datedPublication("p1", "Graph neural networks", 2020, time.May, "graph neural networks")
	vocab := make(domain.Vocabulary)
	vocab.Add("graph neural networks")

	prepared := Prepare([]*domain.Publication{pub}, vocab)

	assert.Len(t, prepared.Occurrences["graph neural networks"], 1)
}

func TestPrepare_FirstSeenOrder(t *testing.T) {
	pubs := []*domain.Publication{
		datedPublication("p1", "one", 2020, time.January, "beta", "alpha"),
		datedPublication("p2", "two", 2020, time.February, "gamma", "alpha"),
	}

	prepared := Prepare(pubs, domain.Vocabulary{})

	assert.Equal(t, []string{"beta", "alpha", "gamma"}, prepared.Keywords())
	assert.Equal(t, 0, prepared.rank("beta"))
	assert.Equal(t, 2, prepared.rank("gamma"))
	assert.Equal(t, 3, prepared.rank("never seen"))
}

func TestPrepare_OccurrenceFields(t *testing.T) {
	pub := datedPublication("p1", "Cited work", 2019, time.November, "caching")
	pub.CitationCount = 42

	prepared := Prepare([]*domain.Publication{pub}, domain.Vocabulary{})

	require.Len(t, prepared.Occurrences["caching"], 1)
	occ := prepared.Occurrences["caching"][0]
	assert.Equal(t, 2019, occ.Year)
	assert.Equal(t, 11, occ.Month)
	assert.Equal(t, "Cited work", occ.Title)
	assert.Equal(t, 42, occ.CitationCount)
}
