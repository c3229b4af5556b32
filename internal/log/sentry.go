package log

import (
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentrylogrus "github.com/getsentry/sentry-go/logrus"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

const sentryFlushTimeout = 2 * time.Second

// scrubbedHeaders never leave the process with an event.
var scrubbedHeaders = []string{"Authorization", "Apikey", "Cookie"}

// SentrySettings configures error reporting for one binary.
type SentrySettings struct {
	DSN         string
	Environment string
	Release     string
	// Service tags every event, e.g. "server" or "ssg".
	Service string
	SiteURL string
}

// InitSentry returns a nil hub and a no-op flush when no DSN is set. Otherwise error-level
// log entries are forwarded through the hook as well.
func InitSentry(logger *logrus.Logger, settings SentrySettings) (*sentry.Hub, func(), error) {
	if settings.DSN == "" {
		return nil, func() {}, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         settings.DSN,
		Environment: settings.Environment,
		Release:     settings.Release,
		BeforeSend:  scrubEvent,
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "error initializing sentry client")
	}

	scope := sentry.NewScope()
	if settings.Service != "" {
		scope.SetTag("service", settings.Service)
	}
	if settings.SiteURL != "" {
		scope.SetTag("site", settings.SiteURL)
	}
	hub := sentry.NewHub(client, scope)

	if logger != nil {
		logger.AddHook(sentrylogrus.NewLogHookFromClient([]logrus.Level{
			logrus.ErrorLevel,
			logrus.FatalLevel,
			logrus.PanicLevel,
		}, client))
	}

	return hub, func() { hub.Flush(sentryFlushTimeout) }, nil
}

// scrubEvent drops bearer tokens and API keys captured with request data.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event == nil || event.Request == nil {
		return event
	}
	for name := range event.Request.Headers {
		for _, scrubbed := range scrubbedHeaders {
			if strings.EqualFold(name, scrubbed) {
				event.Request.Headers[name] = "[scrubbed]"
			}
		}
	}
	event.Request.Cookies = ""
	return event
}
