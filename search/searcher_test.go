package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/newsqa/ai/mock"
	"github.com/poiesic/newsqa/core"
	"github.com/poiesic/newsqa/storage/badger"
)

// queryEmbedder returns a mock embedder that answers every query with the
// given unit vector.
func queryEmbedder(vector []float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return embedder
}

func passage(url, title, text string, vector []float32) *core.PassageRecord {
	return &core.PassageRecord{
		Id:     core.PassageID(url, 0),
		Title:  title,
		URL:    url,
		Source: "example.com",
		Text:   text,
		Vector: vector,
	}
}

func TestNewSearcher(t *testing.T) {
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(index, embedder)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(index, embedder, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil vector index", func(t *testing.T) {
		_, err := NewSearcher(nil, embedder)
		assert.Equal(t, ErrVectorIndexRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSearcher(index, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestSearch_EmptyIndex(t *testing.T) {
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	searcher, err := NewSearcher(index, queryEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	evidences, err := searcher.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, evidences)
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	ctx := context.Background()
	err = index.UpsertPassages(ctx,
		passage("https://example.com/a", "Exact match", "about storms", []float32{1, 0, 0}),
		passage("https://example.com/b", "Close match", "about weather", []float32{0.8, 0.6, 0}),
		passage("https://example.com/c", "Unrelated", "about cooking", []float32{0, 1, 0}),
	)
	require.NoError(t, err)

	searcher, err := NewSearcher(index, queryEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	evidences, err := searcher.Search(ctx, "storm news", 5)
	require.NoError(t, err)

	// The unrelated passage falls under the similarity threshold
	require.Len(t, evidences, 2)
	assert.Equal(t, "Exact match", evidences[0].Title)
	assert.Equal(t, "Close match", evidences[1].Title)
	require.NotNil(t, evidences[0].Score)
	assert.InDelta(t, 1.0, *evidences[0].Score, 0.001)
}

func TestSearch_VerbatimBoost(t *testing.T) {
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	ctx := context.Background()
	err = index.UpsertPassages(ctx,
		passage("https://example.com/a", "Higher similarity", "general market commentary", []float32{1, 0, 0}),
		passage("https://example.com/b", "Verbatim hit", "quantum computing breakthrough announced", []float32{0.8, 0.6, 0}),
	)
	require.NoError(t, err)

	searcher, err := NewSearcher(index, queryEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	evidences, err := searcher.Search(ctx, "quantum computing", 5)
	require.NoError(t, err)

	// 0.8 + 0.3 verbatim boost outranks the 1.0 similarity passage
	require.Len(t, evidences, 2)
	assert.Equal(t, "Verbatim hit", evidences[0].Title)
	require.NotNil(t, evidences[0].Score)
	assert.InDelta(t, 1.1, *evidences[0].Score, 0.001)
}

func TestSearch_DiversityRanking(t *testing.T) {
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	ctx := context.Background()
	err = index.UpsertPassages(ctx,
		passage("https://example.com/a", "Original", "first report", []float32{1, 0, 0}),
		passage("https://example.com/a2", "Near duplicate", "first report rewritten", []float32{0.9992, 0.04, 0}),
		passage("https://example.com/b", "Different angle", "follow-up analysis", []float32{0.7, 0.7141, 0}),
	)
	require.NoError(t, err)

	searcher, err := NewSearcher(index, queryEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	evidences, err := searcher.Search(ctx, "report", 2)
	require.NoError(t, err)

	// The near duplicate loses its slot to the more diverse passage
	require.Len(t, evidences, 2)
	assert.Equal(t, "Original", evidences[0].Title)
	assert.Equal(t, "Different angle", evidences[1].Title)
}

func TestSearch_WithoutDiversityRanking(t *testing.T) {
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	ctx := context.Background()
	err = index.UpsertPassages(ctx,
		passage("https://example.com/a", "Original", "first report", []float32{1, 0, 0}),
		passage("https://example.com/a2", "Near duplicate", "first report rewritten", []float32{0.9992, 0.04, 0}),
		passage("https://example.com/b", "Different angle", "follow-up analysis", []float32{0.7, 0.7141, 0}),
	)
	require.NoError(t, err)

	searcher, err := NewSearcher(index, queryEmbedder([]float32{1, 0, 0}),
		WithDiversityRanking(false, 0))
	require.NoError(t, err)

	evidences, err := searcher.Search(ctx, "report", 2)
	require.NoError(t, err)

	require.Len(t, evidences, 2)
	assert.Equal(t, "Original", evidences[0].Title)
	assert.Equal(t, "Near duplicate", evidences[1].Title)
}

// recordingMonitor captures which stages ran.
type recordingMonitor struct {
	started       bool
	embeddingDim  int
	vectorMatches int
	verbatimHits  int
	diversityRan  bool
	finished      int
}

func (m *recordingMonitor) Start(_ string)        { m.started = true }
func (m *recordingMonitor) AfterEmbedding(d int)  { m.embeddingDim = d }
func (m *recordingMonitor) AfterVectorSearch(matches []*core.SimilarityMatch) {
	m.vectorMatches = len(matches)
}
func (m *recordingMonitor) VerbatimHit(_ *core.PassageRecord) { m.verbatimHits++ }
func (m *recordingMonitor) AfterDiversityRanking(_ []*core.SimilarityMatch) {
	m.diversityRan = true
}
func (m *recordingMonitor) Finish(evidences []core.Evidence) { m.finished = len(evidences) }

func TestSearchWithMonitor(t *testing.T) {
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	ctx := context.Background()
	err = index.UpsertPassages(ctx,
		passage("https://example.com/a", "A", "quantum computing news", []float32{1, 0, 0}),
	)
	require.NoError(t, err)

	searcher, err := NewSearcher(index, queryEmbedder([]float32{1, 0, 0}))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	evidences, err := searcher.SearchWithMonitor(ctx, "quantum computing", 3, monitor)
	require.NoError(t, err)
	require.Len(t, evidences, 1)

	assert.True(t, monitor.started)
	assert.Equal(t, 3, monitor.embeddingDim)
	assert.Equal(t, 1, monitor.vectorMatches)
	assert.Equal(t, 1, monitor.verbatimHits)
	assert.True(t, monitor.diversityRan)
	assert.Equal(t, 1, monitor.finished)
}
