package seo

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metaContent(head Head, key string) (string, bool) {
	for _, tag := range head.Meta {
		if tag.Name == key || tag.Property == key {
			return tag.Content, true
		}
	}
	return "", false
}

func TestPageHeadForArticle(t *testing.T) {
	t.Parallel()

	site := DefaultSite()
	published := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	head := PageHead(site, Page{
		Title:       "Chips get faster",
		Description: "Short description.",
		Path:        "/article/chips-get-faster-2025-05-01/",
		Type:        TypeArticle,
		Published:   published,
		Modified:    published,
		Section:     "Tech",
		Keywords:    []string{"chips", "ai hardware"},
	})

	assert.Equal(t, "Chips get faster | NeuralPost", head.Title)
	assert.Equal(t, "https://prophetic.pw/article/chips-get-faster-2025-05-01/", head.Canonical)
	assert.Equal(t, DefaultImage, head.Image)
	assert.GreaterOrEqual(t, len([]rune(head.Description)), MinDescriptionLength)

	ogType, ok := metaContent(head, "og:type")
	require.True(t, ok)
	assert.Equal(t, "article", ogType)

	section, ok := metaContent(head, "article:section")
	require.True(t, ok)
	assert.Equal(t, "Tech", section)

	publishedTag, ok := metaContent(head, "article:published_time")
	require.True(t, ok)
	assert.Equal(t, "2025-05-01T08:00:00Z", publishedTag)

	robots, _ := metaContent(head, "robots")
	assert.Equal(t, "index, follow, max-image-preview:large", robots)

	tags := 0
	for _, tag := range head.Meta {
		if tag.Property == "article:tag" {
			tags++
		}
	}
	assert.Equal(t, 2, tags)
}

func TestPageHeadIsDeterministic(t *testing.T) {
	t.Parallel()

	page := Page{Title: "About", Description: "About us", Path: "/about"}
	assert.Equal(t, PageHead(DefaultSite(), page), PageHead(DefaultSite(), page))
}

func TestPageHeadForHome(t *testing.T) {
	t.Parallel()

	head := PageHead(DefaultSite(), Page{Path: "/"})
	assert.Equal(t, "NeuralPost - AI-Powered Tech News & Analysis", head.Title)
	assert.Equal(t, "https://prophetic.pw/", head.Canonical)

	_, hasArticleTag := metaContent(head, "article:author")
	assert.False(t, hasArticleTag)
}

func TestSchemas(t *testing.T) {
	t.Parallel()

	site := DefaultSite()
	article := ArticleInfo{
		Title:       "Chips get faster",
		Description: "desc",
		Slug:        "chips-2025-05-01",
		Category:    "Tech",
		Published:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Modified:    time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
	}

	head := PageHead(site, Page{Title: article.Title}).WithSchemas(
		NewsArticle(site, article),
		ArticleBreadcrumbs(site, article),
	)
	require.Len(t, head.JSONLD, 2)

	var news map[string]any
	require.NoError(t, json.Unmarshal([]byte(head.JSONLD[0]), &news))
	assert.Equal(t, "NewsArticle", news["@type"])
	assert.Equal(t, "https://prophetic.pw/article/chips-2025-05-01/#article", news["@id"])
	assert.Equal(t, "2025-05-02T00:00:00Z", news["dateModified"])
	assert.Equal(t, DefaultImage, news["image"].(map[string]any)["url"])

	var crumbs BreadcrumbListSchema
	require.NoError(t, json.Unmarshal([]byte(head.JSONLD[1]), &crumbs))
	require.Len(t, crumbs.ItemListElement, 3)
	assert.Equal(t, "https://prophetic.pw/", crumbs.ItemListElement[0].Item)
	assert.Equal(t, "https://prophetic.pw/category/Tech/", crumbs.ItemListElement[1].Item)
	assert.Equal(t, 3, crumbs.ItemListElement[2].Position)

	website := WebSite(site, "desc")
	assert.Equal(t, "https://prophetic.pw/", website.URL)
	assert.True(t, strings.Contains(website.PotentialAction.Target, "{search_term_string}"))
}

func TestShareLinksEscapeQuery(t *testing.T) {
	t.Parallel()

	share := ShareLinks("https://prophetic.pw/article/a-b/", "AI & you?")
	assert.Equal(t, "https://twitter.com/intent/tweet?url=https%3A%2F%2Fprophetic.pw%2Farticle%2Fa-b%2F&text=AI+%26+you%3F", share.Twitter)
	assert.Equal(t, "https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Fprophetic.pw%2Farticle%2Fa-b%2F", share.Facebook)
	assert.Equal(t, "https://www.linkedin.com/sharing/share-offsite/?url=https%3A%2F%2Fprophetic.pw%2Farticle%2Fa-b%2F", share.LinkedIn)
}
