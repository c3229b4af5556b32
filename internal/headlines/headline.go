package headlines

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// ErrNoSources is returned by a ChainSource built with no sources.
var ErrNoSources = eris.New("no headline sources configured")

// Headline is a single story returned by a news provider.
type Headline struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Source returns the top headlines for a category.
type Source interface {
	TopHeadlines(ctx context.Context, category string, limit int) ([]Headline, error)
}

// ChainSource asks each source in order and returns the first non-empty result.
type ChainSource struct {
	sources []Source
	logger  *logrus.Logger
}

// NewChainSource builds a ChainSource, skipping nil entries.
func NewChainSource(logger *logrus.Logger, sources ...Source) *ChainSource {
	chain := &ChainSource{logger: logger}
	for _, source := range sources {
		if source != nil {
			chain.sources = append(chain.sources, source)
		}
	}
	return chain
}

// Len reports how many sources the chain holds.
func (c *ChainSource) Len() int {
	return len(c.sources)
}

func (c *ChainSource) TopHeadlines(ctx context.Context, category string, limit int) ([]Headline, error) {
	if len(c.sources) == 0 {
		return nil, ErrNoSources
	}

	var lastErr error
	for idx, source := range c.sources {
		items, err := source.TopHeadlines(ctx, category, limit)
		if err != nil {
			lastErr = err
			if c.logger != nil {
				c.logger.WithFields(logrus.Fields{
					"component": "headlines.chain",
					"source":    idx,
					"category":  category,
					"error":     err.Error(),
				}).Warn("headline source failed")
			}
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

func usableTitle(title string) bool {
	trimmed := strings.TrimSpace(title)
	return trimmed != "" && trimmed != "[Removed]"
}
