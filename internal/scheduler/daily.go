package scheduler

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/pipeline"
)

const (
	keywordRetentionDays = 7
	pacingKey            = "daily-generation"
	completedMessage     = "Daily automation completed"
)

// Pacer spaces consecutive runs.
type Pacer interface {
	Wait(ctx context.Context, key string) error
}

// KeywordPruner removes keywords discovered before a cutoff.
type KeywordPruner interface {
	DeleteKeywordsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunResult describes one category's pipeline run.
type RunResult struct {
	Category  news.Category          `json:"category"`
	Success   bool                   `json:"success"`
	Article   *news.Article          `json:"article,omitempty"`
	Keywords  []news.TrendingKeyword `json:"keywords,omitempty"`
	Published bool                   `json:"published"`
	Error     string                 `json:"error,omitempty"`
}

// Report summarises a daily trigger.
type Report struct {
	Success        bool        `json:"success"`
	Message        string      `json:"message"`
	Results        []RunResult `json:"results"`
	GeneratedAt    time.Time   `json:"generatedAt"`
	PrunedKeywords int64       `json:"prunedKeywords"`
}

// DailyOptions wires the daily trigger.
type DailyOptions struct {
	Runner    pipeline.Runner
	Pruner    KeywordPruner
	Pacer     Pacer
	Now       func() time.Time
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

// Daily generates two articles from rotating categories and prunes old keywords.
type Daily struct {
	runner    pipeline.Runner
	pruner    KeywordPruner
	pacer     Pacer
	now       func() time.Time
	logger    *logrus.Logger
	sentryHub *sentry.Hub
}

// NewDaily constructs the daily trigger.
func NewDaily(opts DailyOptions) (*Daily, error) {
	if opts.Runner == nil {
		return nil, eris.New("article generation is not configured")
	}
	if opts.Pruner == nil {
		return nil, eris.New("keyword pruner is required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Daily{
		runner:    opts.Runner,
		pruner:    opts.Pruner,
		pacer:     opts.Pacer,
		now:       now,
		logger:    opts.Logger,
		sentryHub: opts.SentryHub,
	}, nil
}

// DayOfYear returns the ordinal day of t in UTC, with January 1 as 1.
func DayOfYear(t time.Time) int {
	return t.UTC().YearDay()
}

// SelectCategories returns the two categories scheduled for day.
func SelectCategories(day int, categories []news.Category) []news.Category {
	n := len(categories)
	if n == 0 {
		return nil
	}
	return []news.Category{categories[day%n], categories[(day+1)%n]}
}

// Run executes both scheduled generations in order, then prunes stale keywords.
func (d *Daily) Run(ctx context.Context) (*Report, error) {
	started := d.now()
	selected := SelectCategories(DayOfYear(started), news.Categories)
	d.logInfo(logrus.Fields{"categories": selected}, "starting daily automation")

	report := &Report{Results: make([]RunResult, 0, len(selected))}
	for _, category := range selected {
		report.Results = append(report.Results, d.runOne(ctx, category))
	}

	cutoff := retentionCutoff(d.now())
	pruned, err := d.pruner.DeleteKeywordsBefore(ctx, cutoff)
	if err != nil {
		d.recordError(logrus.Fields{"cutoff": cutoff}, err, "pruning stale keywords")
		return nil, eris.Wrap(err, "pruning stale keywords")
	}

	report.Success = true
	report.Message = completedMessage
	report.PrunedKeywords = pruned
	report.GeneratedAt = d.now().UTC()

	d.logInfo(logrus.Fields{"pruned_keywords": pruned, "runs": len(report.Results)}, "daily automation completed")
	return report, nil
}

func (d *Daily) runOne(ctx context.Context, category news.Category) RunResult {
	fields := logrus.Fields{"category": category}
	result := RunResult{Category: category}

	if d.pacer != nil {
		if err := d.pacer.Wait(ctx, pacingKey); err != nil {
			d.recordError(fields, err, "waiting for generation slot")
			result.Error = err.Error()
			return result
		}
	}

	out, err := d.runner.Generate(ctx, pipeline.Request{Category: category.String(), AutoPublish: true})
	if err != nil {
		d.recordError(fields, err, "daily article generation failed")
		result.Error = err.Error()
		return result
	}

	article := out.Article
	result.Success = true
	result.Article = &article
	result.Keywords = out.Keywords
	result.Published = out.Published
	d.logInfo(logrus.Fields{"category": category, "slug": article.Slug}, "daily article generated")
	return result
}

// retentionCutoff is midnight UTC seven days before now.
func retentionCutoff(now time.Time) time.Time {
	day := now.UTC().AddDate(0, 0, -keywordRetentionDays)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

func (d *Daily) logInfo(fields logrus.Fields, message string) {
	if d.logger == nil {
		return
	}
	d.logger.WithField("component", "scheduler").WithFields(fields).Info(message)
}

func (d *Daily) recordError(fields logrus.Fields, err error, message string) {
	if d.logger != nil {
		d.logger.WithField("component", "scheduler").
			WithFields(fields).
			WithField("error", err.Error()).
			Error(message)
	}

	if d.sentryHub != nil {
		d.sentryHub.CaptureException(err)
	}
}
