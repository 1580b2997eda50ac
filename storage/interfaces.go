package storage

import (
	"context"

	"github.com/poiesic/newsqa/core"
)

// ArticleStore is the persistent, deduplicated corpus of articles and their
// chunks. Implementations must be safe for use from a single goroutine at a
// time; the pipeline accesses the store through one connection.
type ArticleStore interface {
	// InsertArticle inserts an article keyed by its URL.
	// The operation is idempotent: inserting the same URL twice leaves exactly
	// one row, both calls resolve to the same id, and only the first call
	// reports wasNew = true. A later stage uses wasNew to decide whether the
	// article still needs chunking.
	InsertArticle(ctx context.Context, title, url, publishedAt, content string) (id int64, wasNew bool, err error)

	// InsertChunks persists the chunk batch for one article atomically:
	// either all chunks are stored or none are. Chunk indexes are assigned
	// from the slice order, starting at 0.
	InsertChunks(ctx context.Context, articleID int64, texts []string) error

	// Chunks returns the chunks of an article ordered by chunk index.
	Chunks(ctx context.Context, articleID int64) ([]*core.Chunk, error)

	// UnindexedChunks returns up to limit chunks that have not yet been
	// pushed to the vector index, joined with their article metadata.
	UnindexedChunks(ctx context.Context, limit int) ([]*core.PassageRecord, error)

	// MarkIndexed records that the given chunks now exist in the vector index.
	MarkIndexed(ctx context.Context, chunkIDs ...int64) error

	// CountArticles returns the number of stored articles.
	CountArticles(ctx context.Context) (int64, error)

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int64, error)

	// Close closes the store and releases resources.
	Close() error
}

// VectorIndex stores passage records with their embedding vectors and
// answers similarity queries. Implementations must be thread-safe.
type VectorIndex interface {
	// UpsertPassages stores or replaces passage records by their content IDs.
	// All records are written in one transaction.
	UpsertPassages(ctx context.Context, records ...*core.PassageRecord) error

	// FindSimilar finds passages similar to the given vector.
	// Returns passages with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error)

	// CountPassages returns the number of indexed passages.
	CountPassages(ctx context.Context) (int64, error)

	// Close closes the index and releases resources.
	Close() error
}
