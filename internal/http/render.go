package http

import (
	"bytes"
	"context"
	"fmt"
	stdhttp "net/http"

	"github.com/a-h/templ"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/http/templates"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/markdown"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/seo"
)

const (
	publishedLayout = "January 2, 2006"
	excerptLength   = 160
)

func renderComponent(ctx context.Context, component templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return nil, eris.Wrap(err, "rendering component")
	}
	return buf.Bytes(), nil
}

// renderPage wraps content in the shared layout. active marks the current category in the nav.
func (s *Server) renderPage(ctx context.Context, head seo.Head, active news.Category, content templ.Component) ([]byte, error) {
	data := templates.LayoutData{
		Head:     head,
		SiteName: s.site.Name,
		Chrome:   s.chromeView(ctx, active),
		Year:     s.now().Year(),
	}
	return renderComponent(ctx, templates.Layout(data, content))
}

func (s *Server) chromeView(ctx context.Context, active news.Category) templates.Chrome {
	chrome := s.news.Chrome(ctx)

	view := templates.Chrome{
		Categories: make([]templates.CategoryLink, 0, len(news.Categories)),
		Keywords:   make([]string, 0, len(chrome.Keywords)),
		Trending:   s.cards(chrome.Trending),
	}
	for _, category := range news.Categories {
		view.Categories = append(view.Categories, templates.CategoryLink{
			Name:   category.String(),
			Path:   categoryPath(category),
			Count:  chrome.CategoryCounts[category],
			Active: category == active,
		})
	}
	for _, keyword := range chrome.Keywords {
		view.Keywords = append(view.Keywords, keyword.Keyword)
	}

	return view
}

func (s *Server) cards(articles []news.Article) []templates.ArticleCard {
	cards := make([]templates.ArticleCard, 0, len(articles))
	for _, article := range articles {
		cards = append(cards, s.card(article))
	}
	return cards
}

// card summarises an article without rendering its Markdown.
func (s *Server) card(article news.Article) templates.ArticleCard {
	image := article.ImageURL
	if image == "" {
		image = s.site.DefaultImage
	}

	return templates.ArticleCard{
		Title:          article.Title,
		Path:           articlePath(article.Slug),
		Description:    seo.NormalizeDescription(article.MetaDescription),
		Category:       article.Category.String(),
		ImageURL:       image,
		Published:      article.CreatedAt.Format(publishedLayout),
		ReadingMinutes: markdown.ReadingMinutes(article.Content),
	}
}

func (s *Server) renderNotFound(ctx context.Context, what string) (*htmlResponse, error) {
	head := seo.PageHead(s.site, seo.Page{
		Title:       "Page Not Found",
		Description: templates.NotFoundMessage(what),
	})

	label := "Page Not Found"
	if what == "article" {
		label = "Article Not Found"
	}

	body, err := s.renderPage(ctx, head, "", templates.ErrorPage(templates.ErrorPageData{
		StatusLabel: label,
		Message:     templates.NotFoundMessage(what),
	}))
	if err != nil {
		return fallbackErrorResponse(stdhttp.StatusNotFound, label), err
	}
	return newHTMLResponse(stdhttp.StatusNotFound, body), nil
}

func (s *Server) renderErrorResponse(ctx context.Context, status int, message string) (*htmlResponse, error) {
	label := fmt.Sprintf("%d %s", status, stdhttp.StatusText(status))
	head := seo.PageHead(s.site, seo.Page{Title: label, Description: message})

	body, err := s.renderPage(ctx, head, "", templates.ErrorPage(templates.ErrorPageData{
		StatusLabel: label,
		Message:     message,
	}))
	if err != nil {
		s.recordError(ctx, err, "rendering error page", logrus.Fields{"status": status})
		return fallbackErrorResponse(status, message), nil
	}

	return newHTMLResponse(status, body), nil
}

func fallbackErrorResponse(status int, message string) *htmlResponse {
	label := fmt.Sprintf("%d %s", status, stdhttp.StatusText(status))
	body := fmt.Sprintf("<html><body><h1>%s</h1><p>%s</p></body></html>",
		templ.EscapeString(label), templ.EscapeString(message))
	return newHTMLResponse(status, []byte(body))
}

func categoryPath(category news.Category) string {
	return "/category/" + category.String()
}

func articlePath(slug string) string {
	return "/article/" + slug
}
