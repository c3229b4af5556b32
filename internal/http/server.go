package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/auth"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/indexing"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/markdown"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/pipeline"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/ratelimit"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/scheduler"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/seo"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/ssg"
)

// DailyRunner runs the daily automation on demand.
type DailyRunner interface {
	Run(ctx context.Context) (*scheduler.Report, error)
}

// IndexSubmitter notifies search engines about URLs.
type IndexSubmitter interface {
	Submit(ctx context.Context, req indexing.Request) (*indexing.Response, error)
}

// Options configures the HTTP server wiring. Generator, Daily, Indexer and Signer are optional.
type Options struct {
	NewsService      news.Service
	Articles         ssg.ArticleLister
	Generator        pipeline.Runner
	Daily            DailyRunner
	Indexer          IndexSubmitter
	Signer           *auth.Signer
	Database         *gorm.DB
	Site             seo.Site
	ContactRecipient string
	Markdown         *markdown.Renderer
	RateLimiter      RateLimiterSettings
	Now              func() time.Time
	Logger           *logrus.Logger
	SentryHub        *sentry.Hub
}

// RateLimiterSettings configures the HTTP rate limiter behaviour.
type RateLimiterSettings struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

// Server wires the HTTP transport layer via Huma and templ components.
type Server struct {
	api              huma.API
	mux              *stdhttp.ServeMux
	handler          stdhttp.Handler
	news             news.Service
	articles         ssg.ArticleLister
	generator        pipeline.Runner
	daily            DailyRunner
	indexer          IndexSubmitter
	signer           *auth.Signer
	site             seo.Site
	contactRecipient string
	markdown         *markdown.Renderer
	now              func() time.Time
	logger           *logrus.Logger
	sentry           *sentry.Hub
	db               *gorm.DB
	rateLimiter      *ratelimit.Limiter
}

// NewServer constructs the HTTP server.
func NewServer(opts Options) (*Server, error) {
	if opts.NewsService == nil {
		return nil, eris.New("news service is required")
	}
	if opts.Articles == nil {
		return nil, eris.New("article lister is required")
	}
	if opts.Database == nil {
		return nil, eris.New("database is required")
	}

	mux := stdhttp.NewServeMux()
	config := huma.DefaultConfig("NeuralPost", "1.0.0")
	// No $schema links in response bodies.
	config.CreateHooks = nil

	api := humago.New(mux, config)

	srv := &Server{
		api:              api,
		mux:              mux,
		news:             opts.NewsService,
		articles:         opts.Articles,
		generator:        opts.Generator,
		daily:            opts.Daily,
		indexer:          opts.Indexer,
		signer:           opts.Signer,
		site:             opts.Site,
		contactRecipient: opts.ContactRecipient,
		markdown:         opts.Markdown,
		now:              opts.Now,
		logger:           opts.Logger,
		sentry:           opts.SentryHub,
		db:               opts.Database,
	}

	if srv.site.URL == "" {
		srv.site = seo.DefaultSite()
	}
	if srv.markdown == nil {
		srv.markdown = markdown.NewRenderer()
	}
	if srv.now == nil {
		srv.now = time.Now
	}

	settings := opts.RateLimiter
	if settings.Burst <= 0 {
		return nil, eris.New("rate limiter burst must be greater than zero")
	}
	if settings.RequestsPerSecond <= 0 {
		return nil, eris.New("rate limiter requests per second must be greater than zero")
	}
	if settings.ClientTTL <= 0 {
		return nil, eris.New("rate limiter client TTL must be greater than zero")
	}

	srv.rateLimiter = ratelimit.New(ratelimit.Options{
		Burst:     settings.Burst,
		PerSecond: settings.RequestsPerSecond,
		TTL:       settings.ClientTTL,
	})

	srv.registerMiddlewares()
	srv.registerRoutes()

	srv.handler = cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{stdhttp.MethodGet, stdhttp.MethodPost, stdhttp.MethodOptions},
		AllowedHeaders:       []string{"authorization", "x-client-info", "apikey", "content-type"},
		OptionsSuccessStatus: stdhttp.StatusOK,
	}).Handler(mux)

	return srv, nil
}

// Handler exposes the CORS-wrapped handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.handler
}

// API exposes the underlying Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.recoveryMiddleware(),
		s.requestIDMiddleware(),
		s.rateLimitMiddleware(),
		s.loggingMiddleware(),
		s.notFoundMiddleware(),
		s.authMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /favicon.ico", faviconHandler)
	s.mux.HandleFunc("HEAD /favicon.ico", faviconHandler)
	s.mux.Handle("GET /static/", staticHandler())

	s.registerPageRoutes()
	s.registerFeedRoutes()
	s.registerHealthRoute()
	s.registerFunctionRoutes()
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		if claims := ClaimsFromContext(ctx); claims != nil {
			entry = entry.WithField("token_scope", claims.Scope)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
