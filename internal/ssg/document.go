package ssg

import (
	"github.com/a-h/templ"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/seo"
)

// ArticleHead computes the head used by the static article document.
func ArticleHead(site seo.Site, article news.Article) seo.Head {
	info := articleInfo(article)
	head := seo.PageHead(site, seo.Page{
		Title:       article.Title,
		Description: article.MetaDescription,
		Path:        "/article/" + article.Slug + "/",
		Image:       article.ImageURL,
		Type:        seo.TypeArticle,
		Published:   article.CreatedAt,
		Modified:    article.UpdatedAt,
		Section:     article.Category.String(),
	})
	return head.WithSchemas(seo.NewsArticle(site, info), seo.ArticleBreadcrumbs(site, info))
}

// RenderArticle returns the crawler-facing HTML document for article.
func RenderArticle(site seo.Site, article news.Article) templ.Component {
	return articleDocument(site, article, ArticleHead(site, article))
}

func publishedOn(article news.Article) string {
	return article.CreatedAt.UTC().Format("January 2, 2006")
}

func articleInfo(article news.Article) seo.ArticleInfo {
	return seo.ArticleInfo{
		Title:       article.Title,
		Description: article.MetaDescription,
		Slug:        article.Slug,
		Image:       article.ImageURL,
		Category:    article.Category.String(),
		Published:   article.CreatedAt,
		Modified:    article.UpdatedAt,
	}
}
