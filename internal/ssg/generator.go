package ssg

import (
	"bytes"
	"context"
	"path"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/seo"
)

// XMLContentType is served with the sitemap.
const XMLContentType = "application/xml; charset=utf-8"

const (
	htmlContentType = "text/html; charset=utf-8"
	sitemapPath     = "sitemap.xml"
)

// ArticleLister lists every article, newest first.
type ArticleLister interface {
	ListAll(ctx context.Context) ([]news.Article, error)
}

// Writer stores one generated file under a slash-separated relative path.
type Writer interface {
	Write(ctx context.Context, name, contentType string, body []byte) error
}

// Summary reports what a run produced.
type Summary struct {
	Pages          int
	SitemapEntries int
}

// Options wires the static generator.
type Options struct {
	Site     seo.Site
	Articles ArticleLister
	Writer   Writer
	Now      func() time.Time
	Logger   *logrus.Logger
}

// Generator pre-renders article pages and the sitemap.
type Generator struct {
	site     seo.Site
	articles ArticleLister
	writer   Writer
	now      func() time.Time
	logger   *logrus.Logger
}

// NewGenerator constructs a static generator.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.Articles == nil {
		return nil, eris.New("article lister is required")
	}
	if opts.Writer == nil {
		return nil, eris.New("output writer is required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Generator{
		site:     opts.Site,
		articles: opts.Articles,
		writer:   opts.Writer,
		now:      now,
		logger:   opts.Logger,
	}, nil
}

// ArticlePath is the output location of an article document.
func ArticlePath(slug string) string {
	return path.Join("article", slug, "index.html")
}

// Run writes every article page followed by the sitemap.
func (g *Generator) Run(ctx context.Context) (*Summary, error) {
	articles, err := g.articles.ListAll(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "listing articles")
	}
	g.log(logrus.Fields{"articles": len(articles)}, "generating static pages")

	summary := &Summary{}
	for _, article := range articles {
		var buf bytes.Buffer
		if err := RenderArticle(g.site, article).Render(ctx, &buf); err != nil {
			return nil, eris.Wrapf(err, "rendering article %s", article.Slug)
		}
		if err := g.writer.Write(ctx, ArticlePath(article.Slug), htmlContentType, buf.Bytes()); err != nil {
			return nil, eris.Wrapf(err, "writing article %s", article.Slug)
		}
		summary.Pages++
	}

	sitemap, err := BuildSitemap(g.site, articles, g.now())
	if err != nil {
		return nil, err
	}
	if err := g.writer.Write(ctx, sitemapPath, XMLContentType, sitemap); err != nil {
		return nil, eris.Wrap(err, "writing sitemap")
	}
	summary.SitemapEntries = StaticEntryCount + len(articles)

	g.log(logrus.Fields{"pages": summary.Pages, "sitemap_entries": summary.SitemapEntries}, "static generation finished")
	return summary, nil
}

func (g *Generator) log(fields logrus.Fields, message string) {
	if g.logger == nil {
		return
	}
	g.logger.WithField("component", "ssg").WithFields(fields).Info(message)
}
