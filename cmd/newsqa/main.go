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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/newsqa"
	"github.com/poiesic/newsqa/ai"
	"github.com/poiesic/newsqa/config"
	"github.com/poiesic/newsqa/core"
	"github.com/poiesic/newsqa/crawler"
	"github.com/poiesic/newsqa/ingest"
	"github.com/poiesic/newsqa/qa"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	app := &cli.App{
		Name:  "newsqa",
		Usage: "News evidence pipeline with cited question answering",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the sqlite article database",
				Value:   cfg.DatabasePath,
			},
			&cli.StringFlag{
				Name:  "index",
				Usage: "Path to the vector index directory",
				Value: cfg.IndexDir,
			},
			&cli.StringFlag{
				Name:  "ai-host",
				Usage: "OpenAI-compatible service host URL",
				Value: cfg.AIHost,
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "API key for the AI service",
				Value: cfg.APIKey,
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: cfg.EmbeddingModel,
			},
			&cli.StringFlag{
				Name:  "generation-model",
				Usage: "Default completion model name",
				Value: cfg.GenerationModel,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Crawl a news feed and store deduplicated articles with chunks",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "feed",
						Usage: "Feed URL to crawl (overrides --query)",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Google News search query",
						Value:   cfg.FeedQuery,
					},
					&cli.StringFlag{
						Name:  "lang",
						Usage: "Feed language code",
						Value: cfg.FeedLanguage,
					},
					&cli.StringFlag{
						Name:  "country",
						Usage: "Feed country code",
						Value: cfg.FeedCountry,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum articles to fetch",
						Value:   cfg.CrawlLimit,
					},
					&cli.DurationFlag{
						Name:  "delay",
						Usage: "Courtesy pause between article fetches",
						Value: cfg.CrawlDelay,
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Embed unindexed chunks into the vector index",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: ingest.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for embedding calls",
						Value: ingest.DefaultMaxRetries,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: ingest.DefaultRetryDelay,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size for concurrent embedding",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question with cited news evidence",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "model",
						Aliases: []string{"m"},
						Usage:   "Completion model to query (repeatable)",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of evidence passages to retrieve",
						Value: qa.DefaultTopK,
					},
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Maximum tokens per generated answer",
						Value: qa.DefaultMaxTokens,
					},
					&cli.StringFlag{
						Name:  "extra",
						Usage: "Additional instruction appended to the prompt",
					},
					&cli.IntFlag{
						Name:  "parallel",
						Usage: "Worker pool size for concurrent multi-model answering",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show article, chunk, and passage counts",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// aiConfig builds the AI service configuration from the global flags.
func aiConfig(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGenerationModel(c.String("generation-model")),
	)
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	feedURL := c.String("feed")
	if feedURL == "" {
		feedURL = crawler.GoogleNewsURL(c.String("query"), c.String("lang"), c.String("country"))
	}

	app, err := newsqa.Open(c.String("db"), c.String("index"), newsqa.WithAIConfig(aiConfig(c)))
	if err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}
	defer app.Close()

	pipeline, err := app.NewIngestPipeline()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Feed: %s\n", feedURL)

	articles, err := crawler.NewCrawler(crawler.WithDelay(c.Duration("delay"))).
		Crawl(ctx, feedURL, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	stats, err := pipeline.Ingest(ctx, articles)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Fetched %d articles: %d new (%d chunks), %d duplicates, %d skipped\n",
		len(articles), stats.Inserted, stats.Chunks, stats.Duplicates, stats.Skipped)

	return nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	app, err := newsqa.Open(c.String("db"), c.String("index"), newsqa.WithAIConfig(aiConfig(c)))
	if err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}
	defer app.Close()

	opts := []ingest.IndexerOption{
		ingest.WithBatchSize(c.Int("batch-size")),
		ingest.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		ingest.WithProgress(os.Stderr),
	}
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, ingest.WithIndexerPoolSize(workers))
	}

	indexer, err := app.NewIndexer(opts...)
	if err != nil {
		return err
	}
	defer indexer.Release()

	start := time.Now()
	indexed, err := indexer.Index(ctx)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("Indexed %d chunks in %s\n", indexed, time.Since(start).Round(time.Millisecond))

	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	models := c.StringSlice("model")
	if len(models) == 0 {
		models = []string{c.String("generation-model")}
	}

	app, err := newsqa.Open(c.String("db"), c.String("index"), newsqa.WithAIConfig(aiConfig(c)))
	if err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}
	defer app.Close()

	opts := []qa.Option{qa.WithTopK(c.Int("top-k"))}
	if parallel := c.Int("parallel"); parallel > 0 {
		opts = append(opts, qa.WithPoolSize(parallel))
	}

	answerer, err := app.NewAnswerer(opts...)
	if err != nil {
		return err
	}
	defer answerer.Release()

	results := answerer.AnswerMany(ctx, question, models, c.Int("max-tokens"), c.String("extra"))

	for i, result := range results {
		if i > 0 {
			fmt.Println()
		}
		printResult(result)
	}

	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	app, err := newsqa.Open(c.String("db"), c.String("index"), newsqa.WithAIConfig(aiConfig(c)))
	if err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}
	defer app.Close()

	articles, err := app.ArticleStore().CountArticles(ctx)
	if err != nil {
		return err
	}
	chunks, err := app.ArticleStore().CountChunks(ctx)
	if err != nil {
		return err
	}
	passages, err := app.VectorIndex().CountPassages(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Articles: %d\nChunks:   %d\nIndexed:  %d\n", articles, chunks, passages)

	return nil
}

func printResult(result core.AnswerResult) {
	fmt.Printf("=== %s (retrieval %dms, generation %dms) ===\n", result.Model, result.RetrievalMs, result.GenMs)
	fmt.Println(result.Answer)

	if result.Failed() {
		return
	}

	fmt.Println("\nSources:")
	for i, source := range result.Sources {
		line := fmt.Sprintf("[%d] %s", i+1, source.Title)
		if source.URL != "" {
			line += " (" + source.URL + ")"
		}
		fmt.Println(line)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
