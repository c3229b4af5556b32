package log

import (
	"testing"

	"github.com/getsentry/sentry-go"
)

func TestInitSentryWithoutDSNToleratesNilLogger(t *testing.T) {
	t.Parallel()

	hub, flush, err := InitSentry(nil, SentrySettings{})
	if err != nil {
		t.Fatalf("InitSentry returned error: %v", err)
	}
	if hub != nil {
		t.Fatalf("expected nil hub without DSN")
	}
	flush()
}

func TestScrubEventRedactsCredentials(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{Request: &sentry.Request{
		Headers: map[string]string{
			"authorization": "Bearer secret",
			"Apikey":        "key",
			"Content-Type":  "application/json",
		},
		Cookies: "session=1",
	}}

	scrubbed := scrubEvent(event, nil)
	if got := scrubbed.Request.Headers["authorization"]; got != "[scrubbed]" {
		t.Fatalf("authorization header not scrubbed: %q", got)
	}
	if got := scrubbed.Request.Headers["Apikey"]; got != "[scrubbed]" {
		t.Fatalf("apikey header not scrubbed: %q", got)
	}
	if got := scrubbed.Request.Headers["Content-Type"]; got != "application/json" {
		t.Fatalf("content type changed: %q", got)
	}
	if scrubbed.Request.Cookies != "" {
		t.Fatalf("cookies not dropped")
	}
}
