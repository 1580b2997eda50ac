// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/poiesic/newsqa/core"
	"github.com/poiesic/newsqa/storage"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT,
	url TEXT UNIQUE NOT NULL,
	published_at TEXT,
	content TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_articles_url ON articles(url);
CREATE TABLE IF NOT EXISTS chunks(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	article_id INTEGER NOT NULL,
	chunk_idx INTEGER NOT NULL,
	text TEXT NOT NULL,
	indexed INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY(article_id) REFERENCES articles(id)
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_chunks_article_idx ON chunks(article_id, chunk_idx);
CREATE INDEX IF NOT EXISTS idx_chunks_indexed ON chunks(indexed);
`

// Store implements storage.ArticleStore on a SQLite database file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ storage.ArticleStore = (*Store)(nil)

// Open opens (or creates) the article store at the given file path and
// initializes the schema. The store uses a single connection; chunk batches
// are written in one transaction each.
//
// Returns storage.ArticleStore interface to enforce abstraction.
func Open(filePath string) (storage.ArticleStore, error) {
	return open(filePath)
}

// OpenMemory opens an in-memory article store for testing.
func OpenMemory() (storage.ArticleStore, error) {
	return open(":memory:")
}

func open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One connection: the pipeline is synchronous and SQLite serializes
	// writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "sqlite-store"),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertArticle inserts an article keyed by URL. Duplicate URLs are an
// idempotent no-op, not an error: the existing row's id is returned with
// wasNew = false.
func (s *Store) InsertArticle(ctx context.Context, title, url, publishedAt, content string) (int64, bool, error) {
	if err := core.ValidateArticle(&core.Article{URL: url, Content: content}); err != nil {
		return 0, false, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO articles(title, url, published_at, content) VALUES(?,?,?,?)
		 ON CONFLICT(url) DO NOTHING`,
		title, url, publishedAt, content)
	if err != nil {
		return 0, false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	wasNew := affected == 1

	var id int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM articles WHERE url = ?`, url).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, storage.ErrNotFound
		}
		return 0, false, err
	}

	return id, wasNew, nil
}

// InsertChunks persists all chunks for one article in a single transaction.
// A failure mid-batch rolls back every chunk, so a crash cannot leave a
// partially-chunked article behind.
func (s *Store) InsertChunks(ctx context.Context, articleID int64, texts []string) error {
	if len(texts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks(article_id, chunk_idx, text) VALUES(?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for idx, text := range texts {
		if err := core.ValidateChunk(&core.Chunk{ArticleID: articleID, Index: idx, Text: text}); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, articleID, idx, text); err != nil {
			return fmt.Errorf("%w: chunk %d: %w", storage.ErrTransactionFailed, idx, err)
		}
	}

	return tx.Commit()
}

// Chunks returns the chunks of an article ordered by chunk index.
func (s *Store) Chunks(ctx context.Context, articleID int64) ([]*core.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, article_id, chunk_idx, text FROM chunks
		 WHERE article_id = ? ORDER BY chunk_idx`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*core.Chunk
	for rows.Next() {
		chunk := &core.Chunk{}
		if err := rows.Scan(&chunk.ID, &chunk.ArticleID, &chunk.Index, &chunk.Text); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// UnindexedChunks returns up to limit chunks not yet pushed to the vector
// index, joined with the metadata of their owning articles. Passage IDs are
// derived from the article URL and chunk index so re-indexing is idempotent.
func (s *Store) UnindexedChunks(ctx context.Context, limit int) ([]*core.PassageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.article_id, c.chunk_idx, c.text, a.title, a.url, a.published_at
		 FROM chunks c JOIN articles a ON a.id = c.article_id
		 WHERE c.indexed = 0 ORDER BY c.id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*core.PassageRecord
	for rows.Next() {
		var chunkIdx int
		record := &core.PassageRecord{}
		err := rows.Scan(&record.ChunkID, &record.ArticleID, &chunkIdx,
			&record.Text, &record.Title, &record.URL, &record.DatePublished)
		if err != nil {
			return nil, err
		}
		record.Id = core.PassageID(record.URL, chunkIdx)
		records = append(records, record)
	}
	return records, rows.Err()
}

// MarkIndexed flags the given chunks as present in the vector index.
func (s *Store) MarkIndexed(ctx context.Context, chunkIDs ...int64) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE chunks SET indexed = 1 WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range chunkIDs {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CountArticles returns the number of stored articles.
func (s *Store) CountArticles(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n)
	return n, err
}

// CountChunks returns the number of stored chunks.
func (s *Store) CountChunks(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}
