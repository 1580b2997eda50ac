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


package ingest

import (
	"context"
	"log/slog"

	"github.com/poiesic/newsqa/chunker"
	"github.com/poiesic/newsqa/core"
	"github.com/poiesic/newsqa/storage"
)

const (
	// DefaultMinChunkChars is the lower bound for chunk sizes during splitting.
	DefaultMinChunkChars = 200

	// DefaultMaxChunkChars is the upper bound for chunk sizes during splitting.
	DefaultMaxChunkChars = 1000
)

// Pipeline persists crawled articles and their paragraph chunks.
// Ingestion is idempotent per URL: an article seen before is counted as a
// duplicate and its content is not re-chunked.
type Pipeline struct {
	store    storage.ArticleStore
	minChars int
	maxChars int
	logger   *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline) error

// WithChunkBounds sets the chunk size bounds used when splitting content.
// Defaults are DefaultMinChunkChars and DefaultMaxChunkChars.
func WithChunkBounds(minChars, maxChars int) PipelineOption {
	return func(p *Pipeline) error {
		if minChars > 0 {
			p.minChars = minChars
		}
		if maxChars > 0 {
			p.maxChars = maxChars
		}
		return nil
	}
}

// WithPipelineLogger sets a custom logger.
// Default is slog.Default().
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over the given article store.
func NewPipeline(store storage.ArticleStore, opts ...PipelineOption) (*Pipeline, error) {
	if store == nil {
		return nil, ErrArticleStoreRequired
	}

	p := &Pipeline{
		store:    store,
		minChars: DefaultMinChunkChars,
		maxChars: DefaultMaxChunkChars,
		logger:   slog.Default().With("component", "ingest-pipeline"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Stats summarizes one ingestion run.
type Stats struct {
	Inserted   int // new articles persisted
	Duplicates int // articles whose URL was already stored
	Skipped    int // articles dropped due to validation or storage errors
	Chunks     int // chunks persisted for new articles
}

// Ingest persists the given articles. Storage errors on one article are
// logged and the article skipped; the run continues with the rest.
func (p *Pipeline) Ingest(ctx context.Context, articles []*core.Article) (*Stats, error) {
	stats := &Stats{}

	for _, article := range articles {
		if err := core.ValidateArticle(article); err != nil {
			p.logger.Warn("skipping invalid article", "url", article.URL, "err", err)
			stats.Skipped++
			continue
		}

		id, wasNew, err := p.store.InsertArticle(ctx, article.Title, article.URL, article.PublishedAt, article.Content)
		if err != nil {
			p.logger.Error("failed to insert article, skipping", "url", article.URL, "err", err)
			stats.Skipped++
			continue
		}

		if !wasNew {
			p.logger.Debug("duplicate article", "url", article.URL, "id", id)
			stats.Duplicates++
			continue
		}

		cleaned := chunker.Normalize(article.Content)
		texts := chunker.Split(cleaned, p.minChars, p.maxChars)

		if err := p.store.InsertChunks(ctx, id, texts); err != nil {
			p.logger.Error("failed to insert chunks, article remains unchunked", "url", article.URL, "id", id, "err", err)
			stats.Skipped++
			continue
		}

		stats.Inserted++
		stats.Chunks += len(texts)

		p.logger.Info("article ingested", "id", id, "chunks", len(texts), "title", article.Title)
	}

	return stats, nil
}
