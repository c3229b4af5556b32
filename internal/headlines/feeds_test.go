package headlines

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Science Wire</title>
<item><title>Older discovery</title><link>https://wire.example/old</link><description>old</description><pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate></item>
<item><title>Newer discovery</title><link>https://wire.example/new</link><description>new</description><pubDate>Tue, 02 Jan 2024 10:00:00 GMT</pubDate></item>
<item><title>[Removed]</title><link>https://wire.example/removed</link></item>
</channel></rss>`

func TestFeedSourceMergesNewestFirst(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/broken") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	source := NewFeedSource(map[string][]string{
		"Science": {server.URL + "/science"},
		"*":       {server.URL + "/broken"},
	}, nil)
	require.NotNil(t, source)

	items, err := source.TopHeadlines(context.Background(), "Science", 5)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Newer discovery", items[0].Title)
	assert.Equal(t, "Science Wire", items[0].Source)
}

func TestFeedSourceErrorsWhenEveryFeedFails(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	source := NewFeedSource(map[string][]string{"Tech": {server.URL}}, nil)

	_, err := source.TopHeadlines(context.Background(), "Tech", 5)
	require.Error(t, err)

	items, err := source.TopHeadlines(context.Background(), "Business", 5)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNewFeedSourceNilWithoutFeeds(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewFeedSource(nil, nil))
}

func TestReadabilityExtractorReturnsText(t *testing.T) {
	t.Parallel()

	paragraph := strings.Repeat("Researchers reported a new battery chemistry that doubles storage density. ", 20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Battery</title></head><body><nav>Menu</nav><article><h1>Battery breakthrough</h1><p>` +
			paragraph + `</p><p>` + paragraph + `</p></article></body></html>`))
	}))
	defer server.Close()

	text, err := NewReadabilityExtractor(server.Client()).ExtractText(context.Background(), server.URL+"/story")
	require.NoError(t, err)
	assert.Contains(t, text, "battery chemistry")
	assert.LessOrEqual(t, len([]rune(text)), maxExtractedText)
}

func TestReadabilityExtractorRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := NewReadabilityExtractor(nil).ExtractText(context.Background(), "not a url")
	require.Error(t, err)
}
