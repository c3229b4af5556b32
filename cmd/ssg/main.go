package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/app/bootstrap"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/config"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/db"
	applog "github.com/zouhourab1996-stack/neural-post-ai/internal/log"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/ssg"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}

	flags := flag.NewFlagSet("ssg", flag.ContinueOnError)
	outDir := flags.String("out", cfg.SSGOutputDir, "directory to write pages into when no bucket is configured")
	bucket := flags.String("bucket", cfg.SSGS3Bucket, "S3 bucket to upload pages to")
	prefix := flags.String("prefix", cfg.SSGS3Prefix, "key prefix inside the bucket")
	if err := flags.Parse(args); err != nil {
		return eris.Wrap(err, "parsing flags")
	}

	logger, err := applog.NewLogger(applog.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return eris.Wrap(err, "failure initialising logger")
	}

	_, flush, err := applog.InitSentry(logger, applog.SentrySettings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Service:     "ssg",
		SiteURL:     cfg.SiteURL,
	})
	if err != nil {
		return eris.Wrap(err, "failure initialising sentry")
	}
	defer flush()

	database, repo, err := bootstrap.OpenRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(database); closeErr != nil {
			logger.WithError(closeErr).Error("closing database")
		}
	}()

	var writer ssg.Writer
	target := *outDir
	if *bucket != "" {
		writer, err = ssg.NewS3Writer(ctx, ssg.S3Options{
			Bucket:   *bucket,
			Prefix:   *prefix,
			Endpoint: cfg.S3Endpoint,
		})
		if err != nil {
			return eris.Wrap(err, "creating s3 writer")
		}
		target = "s3://" + *bucket + "/" + *prefix
	} else {
		writer = ssg.NewDirWriter(*outDir)
	}

	generator, err := ssg.NewGenerator(ssg.Options{
		Site:     bootstrap.Site(cfg),
		Articles: repo,
		Writer:   writer,
		Logger:   logger,
	})
	if err != nil {
		return eris.Wrap(err, "creating static generator")
	}

	summary, err := generator.Run(ctx)
	if err != nil {
		logger.WithField("error", err.Error()).Error("static generation failed")
		return eris.Wrap(err, "generating static pages")
	}

	logger.WithFields(logrus.Fields{
		"target":          target,
		"pages":           summary.Pages,
		"sitemap_entries": summary.SitemapEntries,
	}).Info("static pages generated")
	return nil
}
