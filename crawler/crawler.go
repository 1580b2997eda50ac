package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/poiesic/newsqa/core"

	readability "github.com/go-shiori/go-readability"
)

const (
	// DefaultDelay is the courtesy pause between article fetches.
	DefaultDelay = 800 * time.Millisecond

	// DefaultExtractTimeout bounds a single readability fetch.
	DefaultExtractTimeout = 30 * time.Second
)

// extractFunc fetches an article page and returns its readable text.
type extractFunc func(link string, timeout time.Duration) (string, error)

// Crawler fetches news feeds and extracts full article text. Extraction
// failures fall back to the feed's own summary; items with no usable content
// are dropped.
type Crawler struct {
	parser  *gofeed.Parser
	extract extractFunc
	delay   time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithDelay sets the courtesy pause between article fetches.
// Zero disables the pause. Default is DefaultDelay.
func WithDelay(delay time.Duration) Option {
	return func(c *Crawler) {
		c.delay = delay
	}
}

// WithExtractTimeout bounds each readability fetch.
// Default is DefaultExtractTimeout.
func WithExtractTimeout(timeout time.Duration) Option {
	return func(c *Crawler) {
		c.timeout = timeout
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// withExtractFunc replaces the page extractor. Used in tests.
func withExtractFunc(fn extractFunc) Option {
	return func(c *Crawler) {
		c.extract = fn
	}
}

// NewCrawler creates a feed crawler with readability-based extraction.
func NewCrawler(opts ...Option) *Crawler {
	c := &Crawler{
		parser:  gofeed.NewParser(),
		extract: extractReadable,
		delay:   DefaultDelay,
		timeout: DefaultExtractTimeout,
		logger:  slog.Default().With("component", "crawler"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GoogleNewsURL builds a Google News RSS search URL for the query.
// lang is a BCP 47 language code and country an ISO country code,
// e.g. ("en", "US") or ("ko", "KR").
func GoogleNewsURL(query, lang, country string) string {
	return "https://news.google.com/rss/search?q=" + url.QueryEscape(query) +
		"&hl=" + lang + "&gl=" + country + "&ceid=" + country + ":" + lang
}

// Crawl fetches the feed at feedURL and returns up to limit articles with
// extracted content.
func (c *Crawler) Crawl(ctx context.Context, feedURL string, limit int) ([]*core.Article, error) {
	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	return c.harvest(ctx, feed, limit)
}

// CrawlString parses feed XML directly instead of fetching it. Article pages
// referenced by the feed are still fetched for extraction.
func (c *Crawler) CrawlString(ctx context.Context, feedXML string, limit int) ([]*core.Article, error) {
	feed, err := c.parser.ParseString(feedXML)
	if err != nil {
		return nil, err
	}

	return c.harvest(ctx, feed, limit)
}

func (c *Crawler) harvest(ctx context.Context, feed *gofeed.Feed, limit int) ([]*core.Article, error) {
	items := feed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	articles := make([]*core.Article, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		// Courtesy pause between page fetches
		if c.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delay):
			}
		}

		text, err := c.extract(link, c.timeout)
		if err != nil {
			c.logger.Warn("content extraction failed, falling back to summary", "url", link, "err", err)
			text = ""
		}
		if text == "" {
			text = summary
		}

		content := strings.TrimSpace(text)
		if content == "" {
			c.logger.Debug("dropping item with no usable content", "url", link)
			continue
		}

		articles = append(articles, &core.Article{
			Title:       title,
			URL:         link,
			PublishedAt: item.Published,
			Content:     content,
		})
	}

	c.logger.Info("feed harvested", "items", len(feed.Items), "articles", len(articles))

	return articles, nil
}

// extractReadable fetches the page and returns its readable text content.
func extractReadable(link string, timeout time.Duration) (string, error) {
	article, err := readability.FromURL(link, timeout)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}
