package seo

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultImage is shown for articles without a photo and for non-article pages.
const DefaultImage = "https://images.pexels.com/photos/8386440/pexels-photo-8386440.jpeg?auto=compress&cs=tinysrgb&w=1200"

const (
	TypeWebsite = "website"
	TypeArticle = "article"

	robotsDirective = "index, follow, max-image-preview:large"
	authorName      = "NeuralPost AI"
	homeTitle       = "AI-Powered Tech News & Analysis"
)

// Site describes the publication.
type Site struct {
	Name          string
	URL           string
	DefaultImage  string
	Locale        string
	TwitterHandle string
}

// DefaultSite returns the production site settings.
func DefaultSite() Site {
	return Site{
		Name:         "NeuralPost",
		URL:          "https://prophetic.pw",
		DefaultImage: DefaultImage,
		Locale:       "en_US",
	}
}

// Absolute joins path onto the site URL.
func (s Site) Absolute(path string) string {
	base := strings.TrimRight(s.URL, "/")
	if path == "" {
		return base + "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// Page is the state a head is computed from.
type Page struct {
	Title       string
	Description string
	Path        string
	Image       string
	Type        string
	Published   time.Time
	Modified    time.Time
	Section     string
	Keywords    []string
}

// MetaTag is a single <meta> element. Exactly one of Name or Property is set.
type MetaTag struct {
	Name     string
	Property string
	Content  string
}

// Head is the complete, render-ready document head for a page.
type Head struct {
	Title       string
	Description string
	Canonical   string
	Image       string
	Meta        []MetaTag
	JSONLD      []string
}

// PageHead computes the head for page. The result depends only on its inputs.
func PageHead(site Site, page Page) Head {
	title := site.Name + " - " + homeTitle
	ogTitle := site.Name
	if strings.TrimSpace(page.Title) != "" {
		ogTitle = TruncateTitle(page.Title)
		title = ogTitle + " | " + site.Name
	}

	description := NormalizeDescription(page.Description)
	canonical := site.Absolute(page.Path)

	image := page.Image
	if image == "" {
		image = site.DefaultImage
	}
	if image == "" {
		image = DefaultImage
	}

	kind := page.Type
	if kind == "" {
		kind = TypeWebsite
	}

	head := Head{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		Image:       image,
	}

	named := func(name, content string) {
		head.Meta = append(head.Meta, MetaTag{Name: name, Content: content})
	}
	property := func(name, content string) {
		head.Meta = append(head.Meta, MetaTag{Property: name, Content: content})
	}

	named("title", title)
	named("description", description)
	named("author", authorName)
	named("robots", robotsDirective)

	property("og:type", kind)
	property("og:url", canonical)
	property("og:title", ogTitle)
	property("og:description", description)
	property("og:image", image)
	property("og:image:width", "1200")
	property("og:image:height", "630")
	property("og:site_name", site.Name)
	if site.Locale != "" {
		property("og:locale", site.Locale)
	}

	named("twitter:card", "summary_large_image")
	named("twitter:url", canonical)
	named("twitter:title", ogTitle)
	named("twitter:description", description)
	named("twitter:image", image)
	if site.TwitterHandle != "" {
		named("twitter:site", site.TwitterHandle)
	}

	if kind == TypeArticle {
		if !page.Published.IsZero() {
			property("article:published_time", page.Published.UTC().Format(time.RFC3339))
		}
		if !page.Modified.IsZero() {
			property("article:modified_time", page.Modified.UTC().Format(time.RFC3339))
		}
		if page.Section != "" {
			property("article:section", page.Section)
		}
		property("article:author", authorName)
		for _, keyword := range page.Keywords {
			property("article:tag", keyword)
		}
	}

	return head
}

// WithSchemas appends JSON-LD blobs to the head.
func (h Head) WithSchemas(schemas ...any) Head {
	for _, schema := range schemas {
		raw, err := json.Marshal(schema)
		if err != nil {
			continue
		}
		h.JSONLD = append(h.JSONLD, string(raw))
	}
	return h
}
