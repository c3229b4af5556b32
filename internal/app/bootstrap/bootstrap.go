package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/auth"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/config"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/db"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/headlines"
	apphttp "github.com/zouhourab1996-stack/neural-post-ai/internal/http"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/indexing"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/llm"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/markdown"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/photos"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/pipeline"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/ratelimit"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/runguard"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/scheduler"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/seo"
)

const (
	providerTimeout = 30 * time.Second
	clientTTL       = 10 * time.Minute
)

type Dependencies struct {
	Config    *config.Config
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

type Result struct {
	NewsService news.Service
	Repository  *news.GormRepository
	Generator   pipeline.Runner
	Daily       *scheduler.Daily
	Cron        *scheduler.Cron
	HTTPServer  *apphttp.Server
	Database    *gorm.DB
	Cleanup     func() error
}

// Site builds the publication settings from configuration.
func Site(cfg *config.Config) seo.Site {
	site := seo.DefaultSite()
	if cfg.SiteURL != "" {
		site.URL = cfg.SiteURL
	}
	if cfg.SiteName != "" {
		site.Name = cfg.SiteName
	}
	return site
}

// OpenRepository opens the database, migrates it and returns the news repository.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*gorm.DB, *news.GormRepository, error) {
	database, err := db.Open(db.Options{URL: cfg.DatabaseURL, Path: cfg.DBPath})
	if err != nil {
		return nil, nil, eris.Wrap(err, "opening database")
	}

	if err := news.Migrate(ctx, database, logger); err != nil {
		_ = db.Close(database)
		return nil, nil, eris.Wrap(err, "running news migrations")
	}

	repo, err := news.NewRepository(database, logger)
	if err != nil {
		_ = db.Close(database)
		return nil, nil, eris.Wrap(err, "creating news repository")
	}

	return database, repo, nil
}

// Build composes the NeuralPost application layers and returns the constructed components.
// Missing provider credentials disable the matching feature unless REQUIRE_PROVIDERS is set.
func Build(ctx context.Context, deps Dependencies) (Result, error) {
	cfg := deps.Config
	if cfg == nil {
		return Result{}, eris.New("configuration is required")
	}
	if cfg.RequireProviders {
		if err := cfg.ValidateProviders(); err != nil {
			return Result{}, eris.Wrap(err, "validating providers")
		}
	}

	database, repo, err := OpenRepository(ctx, cfg, deps.Logger)
	if err != nil {
		return Result{}, err
	}

	closers := []func() error{func() error { return db.Close(database) }}
	cleanup := func() error {
		var first error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	closeOnError := func(wrapper error) (Result, error) {
		if closeErr := cleanup(); closeErr != nil && deps.Logger != nil {
			deps.Logger.WithError(closeErr).Error("closing resources after bootstrap failure")
		}
		return Result{}, wrapper
	}

	service, err := news.NewService(repo, deps.Logger, deps.SentryHub)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating news service"))
	}

	guard, closeGuard, err := buildGuard(ctx, cfg, deps.Logger)
	if err != nil {
		return closeOnError(err)
	}
	if closeGuard != nil {
		closers = append(closers, closeGuard)
	}

	generator, err := buildGenerator(cfg, repo, guard, deps)
	if err != nil {
		return closeOnError(err)
	}

	result := Result{
		NewsService: service,
		Repository:  repo,
		Database:    database,
		Cleanup:     cleanup,
	}

	var daily apphttp.DailyRunner
	if generator != nil {
		result.Generator = generator
		result.Daily, err = scheduler.NewDaily(scheduler.DailyOptions{
			Runner:    generator,
			Pruner:    repo,
			Pacer:     ratelimit.Every(cfg.GenerationInterval, cfg.PacingMaxWait),
			Logger:    deps.Logger,
			SentryHub: deps.SentryHub,
		})
		if err != nil {
			return closeOnError(eris.Wrap(err, "creating daily automation"))
		}
		daily = result.Daily

		if cfg.DailyCron != "" {
			result.Cron, err = scheduler.NewCron(cfg.DailyCron, result.Daily, 0, deps.Logger)
			if err != nil {
				return closeOnError(eris.Wrap(err, "scheduling daily automation"))
			}
		}
	}

	site := Site(cfg)

	var indexer apphttp.IndexSubmitter
	if len(cfg.GoogleServiceAccount) > 0 {
		publisher, err := indexing.NewGooglePublisher(ctx, indexing.GoogleOptions{ServiceAccountJSON: cfg.GoogleServiceAccount})
		if err != nil {
			return closeOnError(eris.Wrap(err, "creating google indexing publisher"))
		}
		indexer, err = indexing.NewNotifier(indexing.NotifierOptions{
			Publisher: publisher,
			Slugs:     repo,
			SiteURL:   site.URL,
			Pacer:     ratelimit.Every(cfg.IndexingInterval, cfg.PacingMaxWait),
			Logger:    deps.Logger,
			SentryHub: deps.SentryHub,
		})
		if err != nil {
			return closeOnError(eris.Wrap(err, "creating indexing notifier"))
		}
	} else {
		logDisabled(deps.Logger, "indexing", "GOOGLE_SERVICE_ACCOUNT_JSON")
	}

	var signer *auth.Signer
	if cfg.TriggerSecret != "" {
		signer, err = auth.NewSigner(cfg.TriggerSecret)
		if err != nil {
			return closeOnError(eris.Wrap(err, "creating token signer"))
		}
	} else if deps.Logger != nil {
		deps.Logger.WithField("component", "bootstrap").Warn("TRIGGER_SECRET is not set; automation endpoints are unauthenticated")
	}

	result.HTTPServer, err = apphttp.NewServer(apphttp.Options{
		NewsService:      service,
		Articles:         repo,
		Generator:        generator,
		Daily:            daily,
		Indexer:          indexer,
		Signer:           signer,
		Database:         database,
		Site:             site,
		ContactRecipient: cfg.ContactRecipient,
		Markdown:         markdown.NewRenderer(),
		RateLimiter: apphttp.RateLimiterSettings{
			Burst:             cfg.RateLimitBurst,
			RequestsPerSecond: cfg.RateLimitRPS,
			ClientTTL:         clientTTL,
		},
		Logger:    deps.Logger,
		SentryHub: deps.SentryHub,
	})
	if err != nil {
		return closeOnError(eris.Wrap(err, "initialising http server"))
	}

	return result, nil
}

func buildGuard(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (runguard.Guard, func() error, error) {
	if cfg.RedisURL == "" {
		return runguard.NewMemory(), nil, nil
	}

	guard, err := runguard.NewRedis(cfg.RedisURL)
	if err != nil {
		return nil, nil, eris.Wrap(err, "creating redis run guard")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := guard.Ping(pingCtx); err != nil {
		_ = guard.Close()
		return nil, nil, eris.Wrap(err, "connecting to redis")
	}

	if logger != nil {
		logger.WithField("component", "bootstrap").Info("using redis run guard")
	}
	return guard, guard.Close, nil
}

// buildGenerator returns nil when no completion provider or headline source is configured.
func buildGenerator(cfg *config.Config, repo *news.GormRepository, guard runguard.Guard, deps Dependencies) (pipeline.Runner, error) {
	httpClient := &http.Client{Timeout: providerTimeout}

	var sources []headlines.Source
	if cfg.NewsAPIKey != "" {
		client, err := headlines.NewNewsAPIClient(headlines.NewsAPIOptions{
			APIKey:     cfg.NewsAPIKey,
			BaseURL:    cfg.NewsAPIURL,
			HTTPClient: httpClient,
			Logger:     deps.Logger,
		})
		if err != nil {
			return nil, eris.Wrap(err, "creating news api client")
		}
		sources = append(sources, client)
	}
	if len(cfg.NewsFeeds) > 0 {
		sources = append(sources, headlines.NewFeedSource(cfg.NewsFeeds, deps.Logger))
	}

	if cfg.LLMAPIKey == "" || len(sources) == 0 {
		if cfg.LLMAPIKey == "" {
			logDisabled(deps.Logger, "article generation", "LLM_API_KEY")
		} else {
			logDisabled(deps.Logger, "article generation", "NEWS_API_KEY or NEWS_FEEDS")
		}
		return nil, nil
	}

	client, err := llm.NewClient(llm.ClientOptions{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Logger:  deps.Logger,
	})
	if err != nil {
		return nil, eris.Wrap(err, "creating llm client")
	}

	keywords, err := llm.NewKeywordExtractor(client)
	if err != nil {
		return nil, eris.Wrap(err, "initialising keyword extractor")
	}

	writer, err := llm.NewArticleWriter(client)
	if err != nil {
		return nil, eris.Wrap(err, "initialising article writer")
	}

	opts := pipeline.Options{
		Headlines: headlines.NewChainSource(deps.Logger, sources...),
		Keywords:  keywords,
		Writer:    writer,
		Store:     repo,
		Guard:     guard,
		Logger:    deps.Logger,
		SentryHub: deps.SentryHub,
	}

	if cfg.PexelsAPIKey != "" {
		pexels, err := photos.NewPexelsClient(photos.PexelsOptions{APIKey: cfg.PexelsAPIKey, HTTPClient: httpClient})
		if err != nil {
			return nil, eris.Wrap(err, "creating pexels client")
		}
		opts.Photos = pexels
	} else {
		logDisabled(deps.Logger, "photo search", "PEXELS_API_KEY")
	}

	if cfg.EnableSourceExtraction {
		opts.Extractor = headlines.NewReadabilityExtractor(httpClient)
	}

	generator, err := pipeline.NewGenerator(opts)
	if err != nil {
		return nil, eris.Wrap(err, "initialising article pipeline")
	}
	return generator, nil
}

func logDisabled(logger *logrus.Logger, feature, variable string) {
	if logger == nil {
		return
	}
	logger.WithFields(logrus.Fields{
		"component": "bootstrap",
		"feature":   feature,
	}).Warnf("%s is not set; %s is disabled", variable, feature)
}
