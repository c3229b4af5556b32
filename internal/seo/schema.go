package seo

import (
	"strings"
	"time"
)

const schemaContext = "https://schema.org"

// ImageObject is a schema.org image.
type ImageObject struct {
	Type   string `json:"@type"`
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Person is a schema.org author.
type Person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Organization is a schema.org publisher.
type Organization struct {
	Type string      `json:"@type"`
	ID   string      `json:"@id,omitempty"`
	Name string      `json:"name"`
	Logo ImageObject `json:"logo"`
}

// WebPageRef points a schema at its page.
type WebPageRef struct {
	Type string `json:"@type"`
	ID   string `json:"@id"`
}

// NewsArticleSchema is the structured data for an article page.
type NewsArticleSchema struct {
	Context             string       `json:"@context"`
	Type                string       `json:"@type"`
	ID                  string       `json:"@id"`
	Headline            string       `json:"headline"`
	Description         string       `json:"description"`
	Image               ImageObject  `json:"image"`
	DatePublished       string       `json:"datePublished"`
	DateModified        string       `json:"dateModified"`
	Author              Person       `json:"author"`
	Publisher           Organization `json:"publisher"`
	MainEntityOfPage    WebPageRef   `json:"mainEntityOfPage"`
	ArticleSection      string       `json:"articleSection"`
	Keywords            string       `json:"keywords,omitempty"`
	IsAccessibleForFree bool         `json:"isAccessibleForFree"`
}

// ArticleInfo is the subset of an article the schemas need.
type ArticleInfo struct {
	Title       string
	Description string
	Slug        string
	Image       string
	Category    string
	Published   time.Time
	Modified    time.Time
	Keywords    []string
}

// ArticleURL is the canonical URL of an article.
func (s Site) ArticleURL(slug string) string {
	return s.Absolute("/article/" + slug + "/")
}

// NewsArticle builds the NewsArticle schema.
func NewsArticle(site Site, article ArticleInfo) NewsArticleSchema {
	articleURL := site.ArticleURL(article.Slug)
	image := article.Image
	if image == "" {
		image = site.DefaultImage
	}

	return NewsArticleSchema{
		Context:       schemaContext,
		Type:          "NewsArticle",
		ID:            articleURL + "#article",
		Headline:      article.Title,
		Description:   article.Description,
		Image:         ImageObject{Type: "ImageObject", URL: image, Width: 1200, Height: 630},
		DatePublished: formatDate(article.Published),
		DateModified:  formatDate(article.Modified),
		Author:        Person{Type: "Person", Name: authorName, URL: site.Absolute("/about")},
		Publisher: Organization{
			Type: "Organization",
			ID:   site.Absolute("/#organization"),
			Name: site.Name,
			Logo: ImageObject{Type: "ImageObject", URL: site.Absolute("/favicon.ico")},
		},
		MainEntityOfPage:    WebPageRef{Type: "WebPage", ID: articleURL},
		ArticleSection:      article.Category,
		Keywords:            strings.Join(article.Keywords, ", "),
		IsAccessibleForFree: true,
	}
}

// ListItem is one breadcrumb step.
type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

// BreadcrumbListSchema is a schema.org BreadcrumbList.
type BreadcrumbListSchema struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	ItemListElement []ListItem `json:"itemListElement"`
}

// Crumb is a breadcrumb step before URL resolution.
type Crumb struct {
	Name string
	Path string
}

// BreadcrumbList builds a breadcrumb schema from site-relative paths.
func BreadcrumbList(site Site, crumbs ...Crumb) BreadcrumbListSchema {
	items := make([]ListItem, 0, len(crumbs))
	for i, crumb := range crumbs {
		items = append(items, ListItem{
			Type:     "ListItem",
			Position: i + 1,
			Name:     crumb.Name,
			Item:     site.Absolute(crumb.Path),
		})
	}
	return BreadcrumbListSchema{Context: schemaContext, Type: "BreadcrumbList", ItemListElement: items}
}

// ArticleBreadcrumbs is Home → Category → Article.
func ArticleBreadcrumbs(site Site, article ArticleInfo) BreadcrumbListSchema {
	return BreadcrumbList(site,
		Crumb{Name: "Home", Path: "/"},
		Crumb{Name: article.Category, Path: "/category/" + article.Category + "/"},
		Crumb{Name: article.Title, Path: "/article/" + article.Slug + "/"},
	)
}

// SearchAction describes the site search entry point.
type SearchAction struct {
	Type       string `json:"@type"`
	Target     string `json:"target"`
	QueryInput string `json:"query-input"`
}

// WebSiteSchema is the home page's schema.org WebSite.
type WebSiteSchema struct {
	Context         string       `json:"@context"`
	Type            string       `json:"@type"`
	ID              string       `json:"@id"`
	Name            string       `json:"name"`
	URL             string       `json:"url"`
	Description     string       `json:"description"`
	Publisher       Organization `json:"publisher"`
	PotentialAction SearchAction `json:"potentialAction"`
}

// WebSite builds the WebSite schema.
func WebSite(site Site, description string) WebSiteSchema {
	return WebSiteSchema{
		Context:     schemaContext,
		Type:        "WebSite",
		ID:          site.Absolute("/#website"),
		Name:        site.Name,
		URL:         site.Absolute("/"),
		Description: description,
		Publisher: Organization{
			Type: "Organization",
			ID:   site.Absolute("/#organization"),
			Name: site.Name,
			Logo: ImageObject{Type: "ImageObject", URL: site.Absolute("/favicon.ico")},
		},
		PotentialAction: SearchAction{
			Type:       "SearchAction",
			Target:     site.Absolute("/category/{search_term_string}"),
			QueryInput: "required name=search_term_string",
		},
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
