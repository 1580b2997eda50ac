// Package crawler fetches news articles from RSS/Atom feeds.
//
// Feeds are parsed with gofeed and each referenced page is fetched through
// go-readability for full-text extraction. When extraction fails, the feed's
// own summary is used instead; items that yield no content at all are
// dropped. A courtesy delay between page fetches keeps the crawler polite.
//
// GoogleNewsURL builds search-feed URLs for topical crawls:
//
//	feedURL := crawler.GoogleNewsURL(`AI OR "artificial intelligence"`, "en", "US")
//	articles, err := crawler.NewCrawler().Crawl(ctx, feedURL, 10)
package crawler
