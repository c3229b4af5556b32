package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/headlines"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/llm"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/photos"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/runguard"
)

const (
	headlineLimit   = 5
	defaultGuardTTL = 15 * time.Minute
)

// ErrNoHeadlines is returned when the news provider has nothing for a category.
var ErrNoHeadlines = eris.New("no headlines found")

// Store persists generated articles and their keywords.
type Store interface {
	CreateArticle(ctx context.Context, article *news.Article) error
	CreateKeywords(ctx context.Context, keywords []news.TrendingKeyword) error
}

// TextExtractor fetches readable text for a headline's page.
type TextExtractor interface {
	ExtractText(ctx context.Context, pageURL string) (string, error)
}

// Options wires the generator's providers. Photos and Extractor are optional.
type Options struct {
	Headlines headlines.Source
	Keywords  llm.KeywordExtractor
	Writer    llm.ArticleWriter
	Photos    photos.Searcher
	Extractor TextExtractor
	Store     Store
	Flags     FlagPolicy
	Guard     runguard.Guard
	GuardTTL  time.Duration
	Now       func() time.Time
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

// Request asks for one article in a category.
type Request struct {
	Category    string
	AutoPublish bool
}

// Result is the outcome of one generation run.
type Result struct {
	Article   news.Article           `json:"article"`
	Keywords  []news.TrendingKeyword `json:"keywords"`
	Headline  headlines.Headline     `json:"headline"`
	Published bool                   `json:"published"`
}

// Runner is the operation the scheduler and HTTP layer depend on.
type Runner interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Generator runs the headline → keywords → article → photo → publish pipeline.
type Generator struct {
	headlines headlines.Source
	keywords  llm.KeywordExtractor
	writer    llm.ArticleWriter
	photos    photos.Searcher
	extractor TextExtractor
	store     Store
	flags     FlagPolicy
	guard     runguard.Guard
	guardTTL  time.Duration
	now       func() time.Time
	logger    *logrus.Logger
	sentryHub *sentry.Hub
}

var _ Runner = (*Generator)(nil)

// NewGenerator validates the required providers and applies defaults.
func NewGenerator(opts Options) (*Generator, error) {
	switch {
	case opts.Headlines == nil:
		return nil, eris.New("headline source is not configured")
	case opts.Keywords == nil:
		return nil, eris.New("keyword extractor is not configured")
	case opts.Writer == nil:
		return nil, eris.New("article writer is not configured")
	case opts.Store == nil:
		return nil, eris.New("article store is required")
	}

	g := &Generator{
		headlines: opts.Headlines,
		keywords:  opts.Keywords,
		writer:    opts.Writer,
		photos:    opts.Photos,
		extractor: opts.Extractor,
		store:     opts.Store,
		flags:     opts.Flags,
		guard:     opts.Guard,
		guardTTL:  opts.GuardTTL,
		now:       opts.Now,
		logger:    opts.Logger,
		sentryHub: opts.SentryHub,
	}

	if g.flags == nil {
		g.flags = NewRandomFlags(0)
	}
	if g.guard == nil {
		g.guard = runguard.NewMemory()
	}
	if g.guardTTL <= 0 {
		g.guardTTL = defaultGuardTTL
	}
	if g.now == nil {
		g.now = time.Now
	}

	return g, nil
}

// Generate produces one article and, when requested, publishes it.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	category := news.NormalizeCategory(req.Category)
	fields := logrus.Fields{"component": "pipeline", "category": category}

	release, err := g.guard.Acquire(ctx, "generate:"+category.String(), g.guardTTL)
	if err != nil {
		g.recordError(fields, err, "acquiring run guard")
		return nil, eris.Wrapf(err, "generating %s article", category)
	}
	defer release()

	items, err := g.headlines.TopHeadlines(ctx, category.String(), headlineLimit)
	if err != nil {
		g.recordError(fields, err, "fetching headlines")
		return nil, eris.Wrapf(err, "fetching headlines for %s", category)
	}
	if len(items) == 0 {
		return nil, eris.Wrapf(ErrNoHeadlines, "category %s", category)
	}
	headline := items[0]
	fields["headline"] = headline.Title

	keywords := g.extractKeywords(ctx, category, headline, fields)

	phrases := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		phrases = append(phrases, keyword.Keyword)
	}

	draft, err := g.writer.WriteArticle(ctx, llm.WriteRequest{
		Category:    category.String(),
		Headline:    headline.Title,
		Description: headline.Description,
		SourceName:  headline.Source,
		Keywords:    phrases,
	})
	if err != nil {
		g.recordError(fields, err, "writing article")
		return nil, eris.Wrap(err, "writing article")
	}

	flags := g.flags.Decide(category)
	article := news.Article{
		Slug:            Slugify(draft.Slug),
		Title:           draft.Title,
		MetaDescription: draft.MetaDescription,
		Content:         draft.Content,
		Category:        category,
		ImageURL:        g.findImage(ctx, draft.ImageQuery, fields),
		IsFeatured:      flags.Featured,
		IsTrending:      flags.Trending,
	}
	if article.Slug == "" {
		article.Slug = Slugify(draft.Title)
	}
	if article.Slug == "" {
		article.Slug = FallbackSlug(category.String())
	}

	result := &Result{Article: article, Headline: headline}
	runDate := g.now().UTC()
	discovered := time.Date(runDate.Year(), runDate.Month(), runDate.Day(), 0, 0, 0, 0, time.UTC)
	for _, keyword := range keywords {
		result.Keywords = append(result.Keywords, news.TrendingKeyword{
			Keyword:      keyword.Keyword,
			Category:     category,
			SearchVolume: keyword.SearchVolume,
			Competition:  keyword.Competition,
			DiscoveredAt: discovered,
		})
	}

	if !req.AutoPublish {
		return result, nil
	}

	result.Article.Slug = DatedSlug(result.Article.Slug, runDate)
	if err := g.store.CreateArticle(ctx, &result.Article); err != nil {
		g.recordError(fields, err, "persisting article")
		return nil, eris.Wrap(err, "persisting article")
	}

	if err := g.store.CreateKeywords(ctx, result.Keywords); err != nil {
		g.recordError(fields, err, "persisting keywords")
		return nil, eris.Wrap(err, "persisting keywords")
	}

	result.Published = true
	if g.logger != nil {
		g.logger.WithFields(fields).WithFields(logrus.Fields{
			"slug":     result.Article.Slug,
			"keywords": len(result.Keywords),
			"featured": result.Article.IsFeatured,
			"trending": result.Article.IsTrending,
		}).Info("article published")
	}

	return result, nil
}

// extractKeywords never fails the run; any error degrades to no keywords.
func (g *Generator) extractKeywords(ctx context.Context, category news.Category, headline headlines.Headline, fields logrus.Fields) []llm.Keyword {
	req := llm.KeywordRequest{
		Category:    category.String(),
		Headline:    headline.Title,
		Description: headline.Description,
	}

	if g.extractor != nil && strings.TrimSpace(headline.URL) != "" {
		text, err := g.extractor.ExtractText(ctx, headline.URL)
		if err != nil {
			g.logWarn(fields, err, "source extraction failed")
		} else {
			req.SourceText = text
		}
	}

	keywords, err := g.keywords.ExtractKeywords(ctx, req)
	if err != nil {
		g.logWarn(fields, err, "keyword extraction failed; continuing without keywords")
		return nil
	}
	return keywords
}

func (g *Generator) findImage(ctx context.Context, query string, fields logrus.Fields) string {
	if g.photos == nil || strings.TrimSpace(query) == "" {
		return ""
	}

	imageURL, err := g.photos.Search(ctx, query)
	if err != nil {
		g.logWarn(fields, err, "photo search failed; using default image")
		return ""
	}
	return imageURL
}

func (g *Generator) logWarn(fields logrus.Fields, err error, message string) {
	if g.logger == nil {
		return
	}
	g.logger.WithFields(fields).WithField("error", err.Error()).Warn(message)
}

func (g *Generator) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if g.logger != nil {
		g.logger.WithFields(fields).WithField("error", err.Error()).Error(message)
	}

	if g.sentryHub != nil {
		g.sentryHub.CaptureException(err)
	}
}
