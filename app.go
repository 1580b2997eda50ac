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


package newsqa

import (
	"log/slog"

	"github.com/poiesic/newsqa/ai"
	"github.com/poiesic/newsqa/ai/openai"
	"github.com/poiesic/newsqa/ingest"
	"github.com/poiesic/newsqa/qa"
	"github.com/poiesic/newsqa/search"
	"github.com/poiesic/newsqa/storage"
	"github.com/poiesic/newsqa/storage/badger"
	"github.com/poiesic/newsqa/storage/sqlite"
)

// App aggregates the article store, the vector index, and the AI provider,
// and hands out the pipeline components wired to them.
type App struct {
	store    storage.ArticleStore
	index    storage.VectorIndex
	provider ai.Provider
	logger   *slog.Logger
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the configuration for the OpenAI-compatible provider.
func WithAIConfig(cfg *ai.Config) AppOption {
	return func(o *appOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider injects a pre-built AI provider, bypassing provider
// construction. Used by tests with ai/mock.
func WithProvider(provider ai.Provider) AppOption {
	return func(o *appOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage backs both stores with memory instead of the given
// paths. Used by tests.
func WithInMemoryStorage() AppOption {
	return func(o *appOptions) {
		o.inMemory = true
	}
}

// Open creates an App over the sqlite article store at databasePath and the
// vector index at indexDir.
func Open(databasePath, indexDir string, opts ...AppOption) (*App, error) {
	options := &appOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	var store storage.ArticleStore
	var index storage.VectorIndex
	var err error

	if options.inMemory {
		store, err = sqlite.OpenMemory()
	} else {
		store, err = sqlite.Open(databasePath)
	}
	if err != nil {
		return nil, err
	}

	if options.inMemory {
		index, err = badger.NewMemoryIndex()
	} else {
		index, err = badger.Open(indexDir)
	}
	if err != nil {
		store.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			index.Close()
			store.Close()
			return nil, err
		}
	}

	return &App{
		store:    store,
		index:    index,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Close releases the provider and both stores.
func (a *App) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	if err := a.index.Close(); err != nil {
		a.logger.Error("error closing vector index", "err", err)
		return err
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing article store", "err", err)
		return err
	}
	return nil
}

// ArticleStore returns the relational article store.
func (a *App) ArticleStore() storage.ArticleStore {
	return a.store
}

// VectorIndex returns the passage vector index.
func (a *App) VectorIndex() storage.VectorIndex {
	return a.index
}

// Provider returns the AI provider.
func (a *App) Provider() ai.Provider {
	return a.provider
}

// NewIngestPipeline returns an ingestion pipeline over the article store.
func (a *App) NewIngestPipeline(opts ...ingest.PipelineOption) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(a.store, opts...)
}

// NewIndexer returns an indexer wired to the store, index, and embedder.
func (a *App) NewIndexer(opts ...ingest.IndexerOption) (*ingest.Indexer, error) {
	return ingest.NewIndexer(a.store, a.index, a.provider.Embedder(), opts...)
}

// NewSearcher returns a searcher over the vector index.
func (a *App) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(a.index, a.provider.Embedder(), opts...)
}

// NewAnswerer returns an answer orchestrator using the app's searcher and
// generator.
func (a *App) NewAnswerer(opts ...qa.Option) (*qa.Answerer, error) {
	searcher, err := a.NewSearcher()
	if err != nil {
		return nil, err
	}
	return qa.NewAnswerer(searcher, a.provider.Generator(), opts...)
}
