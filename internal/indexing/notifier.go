package indexing

import (
	"context"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

const (
	TypeUpdated = "URL_UPDATED"
	TypeDeleted = "URL_DELETED"

	pacingKey = "google-indexing"
)

// StaticPaths are submitted ahead of articles when no URLs are given.
var StaticPaths = []string{"/", "/about", "/contact", "/privacy", "/terms", "/disclaimer"}

// SlugLister lists every published article slug.
type SlugLister interface {
	ListSlugs(ctx context.Context) ([]string, error)
}

// Pacer spaces consecutive submissions.
type Pacer interface {
	Wait(ctx context.Context, key string) error
}

// Request selects the URLs and the notification kind.
type Request struct {
	Action string   `json:"action,omitempty"`
	URLs   []string `json:"urls,omitempty"`
}

// Result is the outcome for one URL.
type Result struct {
	URL        string `json:"url"`
	Type       string `json:"type"`
	Success    bool   `json:"success"`
	Status     int    `json:"status,omitempty"`
	NotifyTime string `json:"notifyTime,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Response is returned by Submit.
type Response struct {
	Success   bool     `json:"success"`
	Submitted int      `json:"submitted"`
	Results   []Result `json:"results"`
}

// NotifierOptions wires the notifier.
type NotifierOptions struct {
	Publisher Publisher
	Slugs     SlugLister
	SiteURL   string
	Pacer     Pacer
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

// Notifier submits site URLs to the search engine one at a time.
type Notifier struct {
	publisher Publisher
	slugs     SlugLister
	siteURL   string
	pacer     Pacer
	logger    *logrus.Logger
	sentryHub *sentry.Hub
}

// NewNotifier constructs a notifier.
func NewNotifier(opts NotifierOptions) (*Notifier, error) {
	if opts.Publisher == nil {
		return nil, eris.New("Google indexing is not configured")
	}
	if opts.Slugs == nil {
		return nil, eris.New("slug lister is required")
	}

	return &Notifier{
		publisher: opts.Publisher,
		slugs:     opts.Slugs,
		siteURL:   strings.TrimRight(opts.SiteURL, "/"),
		pacer:     opts.Pacer,
		logger:    opts.Logger,
		sentryHub: opts.SentryHub,
	}, nil
}

// NotificationType maps a request action to an Indexing API type.
func NotificationType(action string) string {
	if action == "remove" {
		return TypeDeleted
	}
	return TypeUpdated
}

// DefaultURLs returns the static pages followed by every article, all absolute.
func (n *Notifier) DefaultURLs(ctx context.Context) ([]string, error) {
	slugs, err := n.slugs.ListSlugs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "listing article slugs")
	}

	urls := make([]string, 0, len(StaticPaths)+len(slugs))
	for _, path := range StaticPaths {
		urls = append(urls, n.siteURL+path)
	}
	for _, slug := range slugs {
		urls = append(urls, n.siteURL+"/article/"+slug)
	}
	return urls, nil
}

// Submit authorizes once, then notifies every URL in order. Per-URL failures are
// reported in the results and never abort the batch.
func (n *Notifier) Submit(ctx context.Context, req Request) (*Response, error) {
	if err := n.publisher.Authorize(ctx); err != nil {
		n.recordError(nil, err, "authorizing indexing client")
		return nil, err
	}

	urls := req.URLs
	if len(urls) == 0 {
		defaults, err := n.DefaultURLs(ctx)
		if err != nil {
			n.recordError(nil, err, "building default URL list")
			return nil, err
		}
		urls = defaults
	}

	notificationType := NotificationType(req.Action)
	results := make([]Result, 0, len(urls))
	for _, pageURL := range urls {
		results = append(results, n.submitOne(ctx, pageURL, notificationType))
	}

	if n.logger != nil {
		failed := 0
		for _, result := range results {
			if !result.Success {
				failed++
			}
		}
		n.logger.WithFields(logrus.Fields{
			"component": "indexing",
			"type":      notificationType,
			"submitted": len(results),
			"failed":    failed,
		}).Info("indexing submission finished")
	}

	return &Response{Success: true, Submitted: len(results), Results: results}, nil
}

func (n *Notifier) submitOne(ctx context.Context, pageURL, notificationType string) Result {
	result := Result{URL: pageURL, Type: notificationType}

	if n.pacer != nil {
		if err := n.pacer.Wait(ctx, pacingKey); err != nil {
			result.Error = err.Error()
			return result
		}
	}

	notification, err := n.publisher.Publish(ctx, pageURL, notificationType)
	if notification != nil {
		result.Status = notification.Status
		result.NotifyTime = notification.NotifyTime
	}
	if err != nil {
		n.recordError(logrus.Fields{"url": pageURL}, err, "publishing URL notification")
		result.Error = err.Error()
		return result
	}

	result.Success = true
	return result
}

func (n *Notifier) recordError(fields logrus.Fields, err error, message string) {
	if n.logger != nil {
		entry := n.logger.WithField("component", "indexing").WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if n.sentryHub != nil {
		n.sentryHub.CaptureException(err)
	}
}
