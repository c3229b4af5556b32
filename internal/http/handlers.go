package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/db"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/http/templates"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/markdown"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/seo"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/ssg"
)

const (
	htmlContentType      = "text/html; charset=utf-8"
	errorFallbackMessage = "We couldn't process your request right now."
	homeDescription      = "NeuralPost delivers AI-powered news and analysis on artificial intelligence, technology, business and science. Fresh stories every day, explained clearly for curious readers."
)

type htmlResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Location    string `header:"Location"`
	Body        []byte
}

type textResponse struct {
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}

type categoryInput struct {
	Category string `path:"category"`
	Page     int    `query:"page"`
}

type articleInput struct {
	Slug string `path:"slug"`
}

type healthResponse struct {
	Status int
	Body   struct {
		Status    string `json:"status"`
		Database  string `json:"database"`
		Generator string `json:"generator"`
		Indexing  string `json:"indexing"`
	}
}

func (s *Server) registerPageRoutes() {
	registerPage(s.api, "home", "/", "NeuralPost home", s.homeHandler)
	registerPage(s.api, "category", "/category/{category}", "Category listing", s.categoryHandler, stdhttp.StatusNotFound)
	registerPage(s.api, "article", "/article/{slug}", "Article", s.articleHandler, stdhttp.StatusNotFound)

	pages := []struct {
		id   string
		path string
		page templates.InfoPageData
	}{
		{"about", "/about", templates.AboutPage},
		{"privacy", "/privacy", templates.PrivacyPage},
		{"terms", "/terms", templates.TermsPage},
		{"disclaimer", "/disclaimer", templates.DisclaimerPage},
	}
	for _, page := range pages {
		registerPage(s.api, page.id, page.path, page.page.Title, s.infoHandler(page.path, page.page))
	}
	registerPage(s.api, "contact", "/contact", "Contact", s.contactHandler)
}

func (s *Server) registerFeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "sitemap",
		Method:      stdhttp.MethodGet,
		Path:        "/sitemap.xml",
		Summary:     "XML sitemap",
	}, s.sitemapHandler)

	huma.Register(s.api, huma.Operation{
		OperationID: "robots",
		Method:      stdhttp.MethodGet,
		Path:        "/robots.txt",
		Summary:     "Robots directives",
	}, s.robotsHandler)
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

// registerPage registers path and its trailing-slash twin, which is the canonical form.
func registerPage[I any](api huma.API, id, path, summary string, handler func(context.Context, *I) (*htmlResponse, error), statuses ...int) {
	op := huma.Operation{OperationID: id, Method: stdhttp.MethodGet, Path: path}
	htmlOperation(summary, statuses...)(&op)
	huma.Register(api, op, handler)

	if path == "/" {
		return
	}
	twin := op
	twin.OperationID = id + "-canonical"
	twin.Path = path + "/"
	twin.Hidden = true
	huma.Register(api, twin, handler)
}

func (s *Server) homeHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	feed, err := s.news.Home(ctx)
	if err != nil {
		s.recordError(ctx, err, "loading home feed", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't load the latest stories right now.")
	}

	data := templates.HomePageData{Trending: s.cards(feed.Trending)}

	var hero *news.Article
	switch {
	case len(feed.Featured) > 0:
		hero = &feed.Featured[0]
	case len(feed.Latest) > 0:
		hero = &feed.Latest[0]
	}
	if hero != nil {
		card := s.card(*hero)
		data.Hero = &card
		data.Featured = s.cards(without(feed.Featured, hero.ID))
		data.Latest = s.cards(without(feed.Latest, hero.ID))
	}

	head := seo.PageHead(s.site, seo.Page{Path: "/", Description: homeDescription}).
		WithSchemas(seo.WebSite(s.site, homeDescription))

	body, err := s.renderPage(ctx, head, "", templates.HomePage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering home page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render the homepage.")
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) categoryHandler(ctx context.Context, input *categoryInput) (*htmlResponse, error) {
	listing, err := s.news.CategoryPage(ctx, input.Category, input.Page)
	if err != nil {
		if eris.Is(err, news.ErrUnknownCategory) {
			return s.notFound(ctx, "page")
		}
		s.recordError(ctx, err, "loading category page", logrus.Fields{"category": input.Category})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	path := categoryPath(listing.Category)
	data := templates.CategoryPageData{
		Name:        listing.Category.String(),
		Description: listing.Category.Description(),
		Page:        listing.Page,
		Articles:    s.cards(listing.Articles),
	}
	if listing.Page > 1 {
		data.PrevURL = pageURL(path, listing.Page-1)
	}
	if listing.HasNext {
		data.NextURL = pageURL(path, listing.Page+1)
	}

	title := listing.Category.String() + " News"
	head := seo.PageHead(s.site, seo.Page{
		Title:       title,
		Description: listing.Category.Description(),
		Path:        path + "/",
	}).WithSchemas(seo.BreadcrumbList(s.site,
		seo.Crumb{Name: "Home", Path: "/"},
		seo.Crumb{Name: listing.Category.String(), Path: path + "/"},
	))

	body, err := s.renderPage(ctx, head, listing.Category, templates.CategoryPage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering category page", logrus.Fields{"category": listing.Category})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) articleHandler(ctx context.Context, input *articleInput) (*htmlResponse, error) {
	slug := strings.TrimSpace(input.Slug)
	view, err := s.news.ArticlePage(ctx, slug)
	if err != nil {
		if eris.Is(err, news.ErrArticleNotFound) {
			return s.notFound(ctx, "article")
		}
		s.recordError(ctx, err, "loading article", logrus.Fields{"slug": slug})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	article := view.Article
	html, err := s.markdown.Render(article.Content)
	if err != nil {
		s.recordError(ctx, err, "rendering article markdown", logrus.Fields{"slug": slug})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render this article.")
	}

	card := s.card(article)
	data := templates.ArticlePageData{
		Title:          article.Title,
		Description:    card.Description,
		Category:       article.Category.String(),
		CategoryPath:   categoryPath(article.Category),
		ImageURL:       card.ImageURL,
		Published:      card.Published,
		Views:          article.Views,
		ReadingMinutes: markdown.ReadingMinutes(html),
		HTML:           html,
		Share:          seo.ShareLinks(s.site.ArticleURL(article.Slug), article.Title),
		Related:        s.cards(view.Related),
	}

	body, err := s.renderPage(ctx, ssg.ArticleHead(s.site, article), article.Category, templates.ArticlePage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering article page", logrus.Fields{"slug": slug})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render this article.")
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) infoHandler(path string, page templates.InfoPageData) func(context.Context, *struct{}) (*htmlResponse, error) {
	return func(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
		description := page.Lead
		if description == "" && len(page.Sections) > 0 && len(page.Sections[0].Paragraphs) > 0 {
			description = page.Sections[0].Paragraphs[0]
		}

		head := seo.PageHead(s.site, seo.Page{Title: page.Title, Description: description, Path: path})
		body, err := s.renderPage(ctx, head, "", templates.InfoPage(page))
		if err != nil {
			s.recordError(ctx, err, "rendering info page", logrus.Fields{"path": path})
			return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
		}
		return newHTMLResponse(stdhttp.StatusOK, body), nil
	}
}

func (s *Server) contactHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	head := seo.PageHead(s.site, seo.Page{
		Title:       "Contact Us",
		Description: "Get in touch with the NeuralPost team. Send questions, news tips, corrections or partnership requests and we will respond as soon as possible.",
		Path:        "/contact",
	})

	body, err := s.renderPage(ctx, head, "", templates.ContactPage(templates.ContactPageData{
		Endpoint: functionsPrefix + "send-contact-email",
		Email:    s.contactRecipient,
	}))
	if err != nil {
		s.recordError(ctx, err, "rendering contact page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}
	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) sitemapHandler(ctx context.Context, _ *struct{}) (*textResponse, error) {
	articles, err := s.articles.ListAll(ctx)
	if err != nil {
		s.recordError(ctx, err, "listing articles for sitemap", nil)
		return nil, huma.Error500InternalServerError("failed to build sitemap")
	}

	body, err := ssg.BuildSitemap(s.site, articles, s.now())
	if err != nil {
		s.recordError(ctx, err, "building sitemap", nil)
		return nil, huma.Error500InternalServerError("failed to build sitemap")
	}

	return &textResponse{
		ContentType:  ssg.XMLContentType,
		CacheControl: "public, max-age=3600",
		Body:         body,
	}, nil
}

func (s *Server) robotsHandler(context.Context, *struct{}) (*textResponse, error) {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /functions/\n\nSitemap: %s\n", s.site.Absolute("/sitemap.xml"))
	return &textResponse{
		ContentType:  "text/plain; charset=utf-8",
		CacheControl: "public, max-age=86400",
		Body:         []byte(body),
	}, nil
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"
	resp.Body.Generator = "ready"
	resp.Body.Indexing = "ready"

	sqlDB, err := db.SQLDB(s.db)
	if err != nil {
		s.recordError(ctx, err, "obtaining sql db", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	} else if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		s.recordError(ctx, pingErr, "pinging database", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	}

	if s.generator == nil {
		resp.Body.Generator = "unconfigured"
	}
	if s.indexer == nil {
		resp.Body.Indexing = "unconfigured"
	}

	if resp.Status == 0 {
		resp.Status = stdhttp.StatusOK
	}

	return resp, nil
}

func (s *Server) notFound(ctx context.Context, what string) (*htmlResponse, error) {
	resp, err := s.renderNotFound(ctx, what)
	if err != nil {
		s.recordError(ctx, err, "rendering not found page", nil)
	}
	return resp, nil
}

func newHTMLResponse(status int, body []byte) *htmlResponse {
	return &htmlResponse{
		Status:      status,
		ContentType: htmlContentType,
		Body:        body,
	}
}

func htmlOperation(summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		if summary != "" {
			op.Summary = summary
		}
		if op.Responses == nil {
			op.Responses = map[string]*huma.Response{}
		}

		statusCodes := append([]int{stdhttp.StatusOK, stdhttp.StatusInternalServerError}, statuses...)
		for _, status := range statusCodes {
			code := strconv.Itoa(status)
			op.Responses[code] = &huma.Response{
				Description: stdhttp.StatusText(status),
				Content: map[string]*huma.MediaType{
					htmlContentType: {
						Schema: &huma.Schema{Type: "string"},
					},
				},
			}
		}
	}
}

func pageURL(path string, page int) string {
	if page <= 1 {
		return path
	}
	return fmt.Sprintf("%s?page=%d", path, page)
}

func without(articles []news.Article, id string) []news.Article {
	out := make([]news.Article, 0, len(articles))
	for _, article := range articles {
		if article.ID != id {
			out = append(out, article)
		}
	}
	return out
}
