package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/newsqa/core"
	"github.com/poiesic/newsqa/storage"
)

// PassageIndex implements storage.VectorIndex for BadgerDB.
// Passage records are keyed by their content-derived IDs, so upserting the
// same chunk twice replaces the record instead of duplicating it.
type PassageIndex struct {
	backend *Backend
}

var _ storage.VectorIndex = (*PassageIndex)(nil)

// Open opens (or creates) the passage index at the given directory.
//
// Returns storage.VectorIndex interface to enforce abstraction.
func Open(filePath string) (storage.VectorIndex, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return &PassageIndex{backend: backend}, nil
}

// NewPassageIndex creates a passage index on an existing backend.
func NewPassageIndex(backend *Backend) *PassageIndex {
	return &PassageIndex{backend: backend}
}

// Close closes the underlying database.
func (x *PassageIndex) Close() error {
	return x.backend.Close()
}

// UpsertPassages stores or replaces passage records in one transaction.
func (x *PassageIndex) UpsertPassages(ctx context.Context, records ...*core.PassageRecord) error {
	if len(records) == 0 {
		return nil
	}

	return x.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makePassageKey(record.Id)
			value := storage.MarshalPassageRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// FindSimilar finds passages similar to the given vector.
// Similarity is the dot product, which equals cosine similarity for
// normalized embedding vectors.
func (x *PassageIndex) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error) {
	var matches []*core.SimilarityMatch

	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(passageRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var record *core.PassageRecord
			err := item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalPassageRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil || len(record.Vector) == 0 {
				continue
			}

			similarity := dotProduct(vector, record.Vector)
			if similarity >= minSimilarity {
				matches = append(matches, &core.SimilarityMatch{
					Record: record,
					Score:  similarity,
				})
			}
		}

		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(matches, func(a, b *core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

// CountPassages returns the number of indexed passages.
func (x *PassageIndex) CountPassages(ctx context.Context) (int64, error) {
	var count int64

	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(passageRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)

	return count, err
}
