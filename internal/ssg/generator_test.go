package ssg

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/seo"
)

type staticLister struct {
	articles []news.Article
	err      error
}

func (s staticLister) ListAll(context.Context) ([]news.Article, error) {
	return s.articles, s.err
}

type memoryWriter struct {
	mu    sync.Mutex
	files map[string][]byte
	types map[string]string
}

func newMemoryWriter() *memoryWriter {
	return &memoryWriter{files: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryWriter) Write(_ context.Context, name, contentType string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = append([]byte(nil), body...)
	m.types[name] = contentType
	return nil
}

func TestRenderArticleDocument(t *testing.T) {
	t.Parallel()

	article := news.Article{
		Slug:            "chips-2025-05-01",
		Title:           `Chips <b>"faster"</b>`,
		MetaDescription: "Short.",
		Category:        news.CategoryTech,
		CreatedAt:       time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, RenderArticle(seo.DefaultSite(), article).Render(context.Background(), &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!doctype html><html lang=\"en\">"))
	assert.Contains(t, out, `<link rel="canonical" href="https://prophetic.pw/article/chips-2025-05-01/">`)
	assert.Contains(t, out, `property="og:type" content="article"`)
	assert.Contains(t, out, `name="twitter:card" content="summary_large_image"`)
	assert.Contains(t, out, `"@type":"NewsArticle"`)
	assert.Contains(t, out, `"@type":"BreadcrumbList"`)
	assert.Contains(t, out, "sessionStorage.redirect = window.location.href")
	assert.Contains(t, out, "window.location.replace(window.location.origin + '/')")
	assert.Contains(t, out, "Published: May 1, 2025")
	assert.Contains(t, out, seo.DefaultImage[:40])
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "Chips &lt;b&gt;")
}

func TestGeneratorRunWritesPagesAndSitemap(t *testing.T) {
	t.Parallel()

	writer := newMemoryWriter()
	generator, err := NewGenerator(Options{
		Site:     seo.DefaultSite(),
		Articles: staticLister{articles: sampleArticles(3)},
		Writer:   writer,
		Now:      func() time.Time { return time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)

	summary, err := generator.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Summary{Pages: 3, SitemapEntries: 13}, summary)

	require.Len(t, writer.files, 4)
	assert.Contains(t, writer.files, "article/story-0-2025-05-01/index.html")
	assert.Equal(t, "text/html; charset=utf-8", writer.types["article/story-2-2025-05-01/index.html"])
	assert.Equal(t, "application/xml; charset=utf-8", writer.types["sitemap.xml"])

	again := newMemoryWriter()
	generator.writer = again
	_, err = generator.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, writer.files, again.files)
}

func TestGeneratorRunFailsWhenListingFails(t *testing.T) {
	t.Parallel()

	generator, err := NewGenerator(Options{Articles: staticLister{err: eris.New("db down")}, Writer: newMemoryWriter()})
	require.NoError(t, err)

	_, err = generator.Run(context.Background())
	require.Error(t, err)
}

func TestDirWriterCreatesNestedFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writer := NewDirWriter(root)

	require.NoError(t, writer.Write(context.Background(), "article/x/index.html", htmlContentType, []byte("<html></html>")))
	require.NoError(t, writer.Write(context.Background(), "../escape.txt", "text/plain", []byte("contained")))

	body, err := os.ReadFile(filepath.Join(root, "article", "x", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(body))

	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	require.NoError(t, err)
}

type fakePutObject struct {
	inputs []*s3.PutObjectInput
	bodies []string
}

func (f *fakePutObject) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(params.Body)
	f.inputs = append(f.inputs, params)
	f.bodies = append(f.bodies, buf.String())
	return &s3.PutObjectOutput{}, nil
}

func TestS3WriterUploadsWithPrefixAndHeaders(t *testing.T) {
	t.Parallel()

	client := &fakePutObject{}
	writer := NewS3WriterFromClient(client, S3Options{Bucket: "neuralpost-site", Prefix: "/public/"})

	require.NoError(t, writer.Write(context.Background(), "sitemap.xml", XMLContentType, []byte("<urlset/>")))

	require.Len(t, client.inputs, 1)
	input := client.inputs[0]
	assert.Equal(t, "neuralpost-site", aws.ToString(input.Bucket))
	assert.Equal(t, "public/sitemap.xml", aws.ToString(input.Key))
	assert.Equal(t, XMLContentType, aws.ToString(input.ContentType))
	assert.Equal(t, defaultCacheControl, aws.ToString(input.CacheControl))
	assert.Equal(t, "<urlset/>", client.bodies[0])

	assert.Equal(t, "article/a/index.html", NewS3WriterFromClient(client, S3Options{Bucket: "b"}).Key("/article/a/index.html"))
}
