package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/newsqa/ai"
	"github.com/poiesic/newsqa/core"
	"github.com/poiesic/newsqa/storage"
)

const (
	// DefaultBatchSize is how many unindexed chunks are loaded per round.
	DefaultBatchSize = 100

	// DefaultEmbedGroupSize is how many texts go into one embedding call.
	DefaultEmbedGroupSize = 16

	// DefaultMaxRetries bounds embedding retry attempts.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the base delay for embedding retry backoff.
	DefaultRetryDelay = 1 * time.Second
)

// Indexer embeds unindexed chunks and upserts them into the vector index.
// Embedding calls fan out over a bounded worker pool; storage writes happen
// once per batch, after which the chunks are marked indexed.
type Indexer struct {
	store      storage.ArticleStore
	index      storage.VectorIndex
	embedder   ai.Embedder
	pool       *ants.Pool
	batchSize  int
	groupSize  int
	maxRetries int
	retryDelay time.Duration
	progress   io.Writer
	logger     *slog.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer) error

// WithIndexerPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithIndexerPoolSize(size int) IndexerOption {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}

		if ix.pool != nil {
			ix.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		ix.pool = pool
		return nil
	}
}

// WithBatchSize sets how many unindexed chunks are loaded per round.
func WithBatchSize(size int) IndexerOption {
	return func(ix *Indexer) error {
		if size > 0 {
			ix.batchSize = size
		}
		return nil
	}
}

// WithEmbedGroupSize sets how many texts go into one embedding call.
func WithEmbedGroupSize(size int) IndexerOption {
	return func(ix *Indexer) error {
		if size > 0 {
			ix.groupSize = size
		}
		return nil
	}
}

// WithRetry configures embedding retry behavior.
func WithRetry(maxRetries int, baseDelay time.Duration) IndexerOption {
	return func(ix *Indexer) error {
		if maxRetries > 0 {
			ix.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			ix.retryDelay = baseDelay
		}
		return nil
	}
}

// WithProgress sets where progress output is written (typically os.Stderr).
// Default is no progress output.
func WithProgress(writer io.Writer) IndexerOption {
	return func(ix *Indexer) error {
		ix.progress = writer
		return nil
	}
}

// WithIndexerLogger sets a custom logger.
// Default is slog.Default().
func WithIndexerLogger(logger *slog.Logger) IndexerOption {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndexer creates an indexer over the given store, index, and embedder.
func NewIndexer(store storage.ArticleStore, index storage.VectorIndex, embedder ai.Embedder, opts ...IndexerOption) (*Indexer, error) {
	if store == nil {
		return nil, ErrArticleStoreRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ix := &Indexer{
		store:      store,
		index:      index,
		embedder:   embedder,
		pool:       pool,
		batchSize:  DefaultBatchSize,
		groupSize:  DefaultEmbedGroupSize,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		progress:   io.Discard,
		logger:     slog.Default().With("component", "indexer"),
	}

	for _, opt := range opts {
		if optErr := opt(ix); optErr != nil {
			ix.Release()
			return nil, optErr
		}
	}

	return ix, nil
}

// Index embeds and indexes all currently unindexed chunks.
// Returns the number of chunks indexed.
func (ix *Indexer) Index(ctx context.Context) (int, error) {
	total, err := ix.store.CountChunks(ctx)
	if err != nil {
		return 0, err
	}

	tracker := NewProgressTracker(ix.progress, int(total), ix.batchSize)
	tracker.Start()

	indexed := 0
	for {
		records, err := ix.store.UnindexedChunks(ctx, ix.batchSize)
		if err != nil {
			return indexed, err
		}
		if len(records) == 0 {
			break
		}

		if err := ix.embedRecords(ctx, records); err != nil {
			return indexed, err
		}

		if err := ix.index.UpsertPassages(ctx, records...); err != nil {
			return indexed, err
		}

		chunkIDs := make([]int64, len(records))
		for i, record := range records {
			chunkIDs[i] = record.ChunkID
		}
		if err := ix.store.MarkIndexed(ctx, chunkIDs...); err != nil {
			return indexed, err
		}

		indexed += len(records)
		tracker.Increment(len(records))
	}

	tracker.Finish()
	ix.logger.Info("indexing complete", "chunks", indexed, "elapsed", tracker.Elapsed())

	return indexed, nil
}

// embedRecords embeds the records in place, fanning groups out over the pool.
func (ix *Indexer) embedRecords(ctx context.Context, records []*core.PassageRecord) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < len(records); start += ix.groupSize {
		end := start + ix.groupSize
		if end > len(records) {
			end = len(records)
		}
		group := records[start:end]

		wg.Add(1)
		submitErr := ix.pool.Submit(func() {
			defer wg.Done()
			if err := ix.embedGroup(ctx, group); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
		}
	}

	wg.Wait()
	return firstErr
}

// embedGroup generates embeddings for one group with retry and assigns
// normalized vectors to the records.
func (ix *Indexer) embedGroup(ctx context.Context, group []*core.PassageRecord) error {
	texts := make([]string, len(group))
	for i, record := range group {
		texts[i] = record.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = ix.embedder.EmbedTexts(ctx, texts)
		return err
	}, ix.maxRetries, ix.retryDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", ix.maxRetries, err)
	}

	if len(embeddings) != len(group) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(group), len(embeddings))
	}

	// Normalize so dot products in the index behave as cosine similarity
	for i := range group {
		group[i].Vector = NormalizeVector(embeddings[i])
	}

	return nil
}

// Release releases the worker pool.
// The indexer should not be used after calling Release.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}
