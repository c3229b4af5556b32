package headlines

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// FeedSource reads headlines from RSS or Atom feeds configured per category.
// The "*" key holds feeds used for every category.
type FeedSource struct {
	feeds  map[string][]string
	parser *gofeed.Parser
	logger *logrus.Logger
}

// NewFeedSource constructs a FeedSource. It returns nil when no feeds are configured.
func NewFeedSource(feeds map[string][]string, logger *logrus.Logger) *FeedSource {
	if len(feeds) == 0 {
		return nil
	}
	return &FeedSource{feeds: feeds, parser: gofeed.NewParser(), logger: logger}
}

func (f *FeedSource) TopHeadlines(ctx context.Context, category string, limit int) ([]Headline, error) {
	urls := append(append([]string{}, f.feeds[category]...), f.feeds["*"]...)
	if len(urls) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	var (
		items    []Headline
		failures int
		lastErr  error
	)
	for _, feedURL := range urls {
		feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			failures++
			lastErr = err
			if f.logger != nil {
				f.logger.WithFields(logrus.Fields{
					"component": "headlines.feeds",
					"feed":      feedURL,
					"error":     err.Error(),
				}).Warn("fetching feed failed")
			}
			continue
		}
		items = append(items, feedHeadlines(feed)...)
	}

	if failures == len(urls) {
		return nil, eris.Wrap(lastErr, "fetching every configured feed failed")
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func feedHeadlines(feed *gofeed.Feed) []Headline {
	items := make([]Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		if !usableTitle(item.Title) {
			continue
		}

		var publishedAt time.Time
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		description := item.Description
		if description == "" {
			description = item.Content
		}

		headline := Headline{
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(description),
			URL:         item.Link,
			Source:      feed.Title,
			PublishedAt: publishedAt,
		}
		if item.Image != nil {
			headline.ImageURL = item.Image.URL
		}
		items = append(items, headline)
	}
	return items
}
