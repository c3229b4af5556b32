package ssg

import (
	"bytes"
	"encoding/xml"
	"time"

	"github.com/rotisserie/eris"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/seo"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	imageNamespace   = "http://www.google.com/schemas/sitemap-image/1.1"
	dateLayout       = "2006-01-02"
)

// StaticEntryCount is the number of non-article sitemap entries.
const StaticEntryCount = 10

type urlSet struct {
	XMLName    xml.Name     `xml:"urlset"`
	Namespace  string       `xml:"xmlns,attr"`
	ImageSpace string       `xml:"xmlns:image,attr"`
	URLs       []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string        `xml:"loc"`
	LastMod    string        `xml:"lastmod,omitempty"`
	ChangeFreq string        `xml:"changefreq"`
	Priority   string        `xml:"priority"`
	Image      *sitemapImage `xml:"image:image,omitempty"`
}

type sitemapImage struct {
	Loc   string `xml:"image:loc"`
	Title string `xml:"image:title,omitempty"`
}

type staticEntry struct {
	path       string
	changeFreq string
	priority   string
}

func staticEntries() []staticEntry {
	entries := []staticEntry{{path: "/", changeFreq: "hourly", priority: "1.0"}}
	for _, category := range news.Categories {
		entries = append(entries, staticEntry{path: "/category/" + category.String() + "/", changeFreq: "daily", priority: "0.9"})
	}
	return append(entries,
		staticEntry{path: "/about/", changeFreq: "monthly", priority: "0.7"},
		staticEntry{path: "/contact/", changeFreq: "monthly", priority: "0.7"},
		staticEntry{path: "/privacy/", changeFreq: "yearly", priority: "0.5"},
		staticEntry{path: "/terms/", changeFreq: "yearly", priority: "0.5"},
		staticEntry{path: "/disclaimer/", changeFreq: "yearly", priority: "0.5"},
	)
}

// BuildSitemap renders the sitemap for the static pages and every article.
// Static entries carry generated as their lastmod.
func BuildSitemap(site seo.Site, articles []news.Article, generated time.Time) ([]byte, error) {
	today := generated.UTC().Format(dateLayout)
	set := urlSet{
		Namespace:  sitemapNamespace,
		ImageSpace: imageNamespace,
		URLs:       make([]sitemapURL, 0, StaticEntryCount+len(articles)),
	}

	for _, entry := range staticEntries() {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        site.Absolute(entry.path),
			LastMod:    today,
			ChangeFreq: entry.changeFreq,
			Priority:   entry.priority,
		})
	}

	for _, article := range articles {
		lastMod := today
		if !article.UpdatedAt.IsZero() {
			lastMod = article.UpdatedAt.UTC().Format(dateLayout)
		}

		entry := sitemapURL{
			Loc:        site.ArticleURL(article.Slug),
			LastMod:    lastMod,
			ChangeFreq: "weekly",
			Priority:   "0.8",
		}
		if article.ImageURL != "" {
			entry.Image = &sitemapImage{Loc: article.ImageURL, Title: article.Title}
		}
		set.URLs = append(set.URLs, entry)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(set); err != nil {
		return nil, eris.Wrap(err, "encoding sitemap")
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}
