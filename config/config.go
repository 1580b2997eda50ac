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


package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process-level settings for the newsqa pipeline,
// loaded from the environment with a .env file as fallback.
type Config struct {
	// DatabasePath is the filesystem path of the sqlite article store.
	DatabasePath string

	// IndexDir is the directory holding the vector index.
	IndexDir string

	// AIHost is the base URL of the OpenAI-compatible service.
	AIHost string

	// APIKey authenticates against the AI service. "none" works for local
	// services that skip authentication.
	APIKey string

	// EmbeddingModel names the embedding model.
	EmbeddingModel string

	// GenerationModel names the default completion model.
	GenerationModel string

	// FeedQuery is the default Google News search query for crawls.
	FeedQuery string

	// FeedLanguage and FeedCountry localize the Google News feed.
	FeedLanguage string
	FeedCountry  string

	// CrawlLimit caps articles fetched per crawl.
	CrawlLimit int

	// CrawlDelay is the courtesy pause between article page fetches.
	CrawlDelay time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:    envOr("NEWSQA_DB_PATH", "newsqa.db"),
		IndexDir:        envOr("NEWSQA_INDEX_DIR", "newsqa-index"),
		AIHost:          envOr("NEWSQA_AI_HOST", "http://localhost:11434/v1"),
		APIKey:          envOr("NEWSQA_API_KEY", "none"),
		EmbeddingModel:  envOr("NEWSQA_EMBEDDING_MODEL", "embeddinggemma"),
		GenerationModel: envOr("NEWSQA_GENERATION_MODEL", "qwen2.5:3b"),
		FeedQuery:       envOr("NEWSQA_FEED_QUERY", `AI OR "artificial intelligence"`),
		FeedLanguage:    envOr("NEWSQA_FEED_LANG", "en"),
		FeedCountry:     envOr("NEWSQA_FEED_COUNTRY", "US"),
		CrawlLimit:      5,
		CrawlDelay:      800 * time.Millisecond,
	}

	if v := strings.TrimSpace(os.Getenv("NEWSQA_CRAWL_LIMIT")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid NEWSQA_CRAWL_LIMIT %q: %w", v, err)
		}
		cfg.CrawlLimit = limit
	}

	if v := strings.TrimSpace(os.Getenv("NEWSQA_CRAWL_DELAY_MS")); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid NEWSQA_CRAWL_DELAY_MS %q: %w", v, err)
		}
		cfg.CrawlDelay = time.Duration(ms) * time.Millisecond
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate fails fast on settings the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.IndexDir == "" {
		return fmt.Errorf("index directory is required")
	}
	if c.AIHost == "" {
		return fmt.Errorf("AI host is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding model is required")
	}
	if c.GenerationModel == "" {
		return fmt.Errorf("generation model is required")
	}
	if c.CrawlLimit < 1 {
		return fmt.Errorf("crawl limit must be at least 1")
	}
	if c.CrawlDelay < 0 {
		return fmt.Errorf("crawl delay must not be negative")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
