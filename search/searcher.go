package search

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/poiesic/newsqa/ai"
	"github.com/poiesic/newsqa/core"
	"github.com/poiesic/newsqa/storage"
)

const (
	// defaultThreshold is the minimum cosine similarity for a passage to count.
	defaultThreshold = 0.60

	// defaultDiversityLambda balances relevance against redundancy when
	// diversity ranking is enabled. Lower values favor diversity.
	defaultDiversityLambda = 0.3

	// verbatimBoost is added when every query word appears in a passage.
	verbatimBoost = 0.3

	// candidateMultiplier widens the initial vector search so diversity
	// ranking has a pool to choose from.
	candidateMultiplier = 4
)

// Searcher retrieves evidence passages for a question by embedding the query
// and scanning the vector index, with verbatim-match boosting and optional
// diversity re-ranking over the candidate pool.
type Searcher struct {
	index           storage.VectorIndex
	embedder        ai.Embedder
	threshold       float32
	diversityRank   bool
	diversityLambda float32
	logger          *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithThreshold sets the minimum similarity score for candidate passages.
// Default is 0.60.
func WithThreshold(threshold float32) Option {
	return func(s *Searcher) error {
		s.threshold = threshold
		return nil
	}
}

// WithDiversityRanking controls re-ranking of the candidate pool to reduce
// near-duplicate passages. lambda balances relevance against redundancy;
// lower values favor diversity. Enabled by default with lambda 0.3.
func WithDiversityRanking(enabled bool, lambda float32) Option {
	return func(s *Searcher) error {
		s.diversityRank = enabled
		if lambda > 0 {
			s.diversityLambda = lambda
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher over the given vector index and embedder.
func NewSearcher(index storage.VectorIndex, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		index:           index,
		embedder:        embedder,
		threshold:       defaultThreshold,
		diversityRank:   true,
		diversityLambda: defaultDiversityLambda,
		logger:          slog.Default().With("component", "searcher"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search retrieves up to topK evidence passages for the query, ranked by
// relevance score.
func (s *Searcher) Search(ctx context.Context, query string, topK int) ([]core.Evidence, error) {
	return s.SearchWithMonitor(ctx, query, topK, nil)
}

// SearchWithMonitor retrieves evidence with monitoring. The monitor receives
// callbacks at each stage of the retrieval process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, topK int, monitor SearchMonitor) ([]core.Evidence, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if topK < 1 {
		topK = 1
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(len(embedding))

	// Widen the pool when diversity ranking will narrow it back down
	limit := topK
	if s.diversityRank {
		limit = topK * candidateMultiplier
	}

	matches, err := s.index.FindSimilar(ctx, embedding, s.threshold, limit)
	if err != nil {
		s.logger.Error("error querying for similar passages", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(matches)

	// Boost passages containing every query word verbatim
	boosted := false
	for _, match := range matches {
		if containsAllQueryWords(match.Record.Text, query) {
			match.Score += verbatimBoost
			boosted = true
			monitor.VerbatimHit(match.Record)
		}
	}
	if boosted {
		slices.SortFunc(matches, func(a, b *core.SimilarityMatch) int {
			if a.Score > b.Score {
				return -1
			}
			if a.Score < b.Score {
				return 1
			}
			return 0
		})
	}

	if s.diversityRank {
		matches = selectDiverse(matches, s.diversityLambda, topK)
		monitor.AfterDiversityRanking(matches)
	} else if len(matches) > topK {
		matches = matches[:topK]
	}

	evidences := make([]core.Evidence, 0, len(matches))
	for _, match := range matches {
		evidences = append(evidences, match.Record.Evidence(match.Score))
	}
	monitor.Finish(evidences)

	s.logger.Debug("retrieval complete", "query_len", len(query), "hits", len(evidences))

	return evidences, nil
}

// Retrieve implements the answer pipeline's retriever contract.
func (s *Searcher) Retrieve(ctx context.Context, question string, topK int) (any, error) {
	return s.Search(ctx, question, topK)
}

// selectDiverse greedily picks topK matches maximizing
// lambda*relevance - (1-lambda)*redundancy, where redundancy is the highest
// similarity to an already-selected passage.
func selectDiverse(matches []*core.SimilarityMatch, lambda float32, topK int) []*core.SimilarityMatch {
	if len(matches) <= topK {
		return matches
	}

	selected := make([]*core.SimilarityMatch, 0, topK)
	remaining := slices.Clone(matches)

	for len(selected) < topK && len(remaining) > 0 {
		bestIdx := 0
		bestScore := float32(math.Inf(-1))

		for i, candidate := range remaining {
			var redundancy float32
			for _, chosen := range selected {
				if sim := dotProduct(candidate.Record.Vector, chosen.Record.Vector); sim > redundancy {
					redundancy = sim
				}
			}

			score := lambda*candidate.Score - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = slices.Delete(remaining, bestIdx, bestIdx+1)
	}

	return selected
}

// dotProduct computes the dot product of two vectors.
// Vectors from the embedder are unit-normalized, so this is cosine similarity.
func dotProduct(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
