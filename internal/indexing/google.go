package indexing

import (
	"context"
	"errors"
	"net/http"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	indexingapi "google.golang.org/api/indexing/v3"
	"google.golang.org/api/option"
)

// Scope is the OAuth scope required by the Indexing API.
const Scope = indexingapi.IndexingScope

// ErrMissingServiceAccount is returned when no service account JSON is configured.
var ErrMissingServiceAccount = eris.New("GOOGLE_SERVICE_ACCOUNT_JSON secret not configured")

// Notification is Google's acknowledgement of one URL notification.
type Notification struct {
	URL        string
	Type       string
	Status     int
	NotifyTime string
}

// Publisher sends URL notifications to a search engine.
type Publisher interface {
	Authorize(ctx context.Context) error
	Publish(ctx context.Context, pageURL, notificationType string) (*Notification, error)
}

// GoogleOptions configures the Google publisher. Endpoint and HTTPClient exist for tests.
type GoogleOptions struct {
	ServiceAccountJSON []byte
	Endpoint           string
	HTTPClient         *http.Client
}

// GooglePublisher publishes through the Indexing API using a service account.
type GooglePublisher struct {
	tokens  oauth2.TokenSource
	service *indexingapi.Service
}

var _ Publisher = (*GooglePublisher)(nil)

// NewGooglePublisher parses the service account and prepares an authorized client.
func NewGooglePublisher(ctx context.Context, opts GoogleOptions) (*GooglePublisher, error) {
	if len(opts.ServiceAccountJSON) == 0 {
		return nil, ErrMissingServiceAccount
	}

	jwtConfig, err := google.JWTConfigFromJSON(opts.ServiceAccountJSON, Scope)
	if err != nil {
		return nil, eris.Wrap(err, "parsing service account")
	}

	tokenCtx := context.WithoutCancel(ctx)
	if opts.HTTPClient != nil {
		tokenCtx = context.WithValue(tokenCtx, oauth2.HTTPClient, opts.HTTPClient)
	}
	tokens := oauth2.ReuseTokenSource(nil, jwtConfig.TokenSource(tokenCtx))

	serviceOpts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(tokenCtx, tokens))}
	if opts.Endpoint != "" {
		serviceOpts = append(serviceOpts, option.WithEndpoint(opts.Endpoint))
	}

	service, err := indexingapi.NewService(ctx, serviceOpts...)
	if err != nil {
		return nil, eris.Wrap(err, "creating indexing service")
	}

	return &GooglePublisher{tokens: tokens, service: service}, nil
}

// Authorize exchanges the signed assertion for an access token.
func (p *GooglePublisher) Authorize(context.Context) error {
	if _, err := p.tokens.Token(); err != nil {
		return eris.Wrap(err, "Token exchange failed")
	}
	return nil
}

func (p *GooglePublisher) Publish(ctx context.Context, pageURL, notificationType string) (*Notification, error) {
	resp, err := p.service.UrlNotifications.Publish(&indexingapi.UrlNotification{
		Url:  pageURL,
		Type: notificationType,
	}).Context(ctx).Do()
	if err != nil {
		return &Notification{URL: pageURL, Type: notificationType, Status: statusOf(err)}, eris.Wrapf(err, "publishing %s", pageURL)
	}

	notification := &Notification{
		URL:    pageURL,
		Type:   notificationType,
		Status: resp.HTTPStatusCode,
	}
	if meta := resp.UrlNotificationMetadata; meta != nil {
		latest := meta.LatestUpdate
		if notificationType == TypeDeleted {
			latest = meta.LatestRemove
		}
		if latest != nil {
			notification.NotifyTime = latest.NotifyTime
		}
	}

	return notification, nil
}

func statusOf(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
