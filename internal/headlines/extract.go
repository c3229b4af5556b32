package headlines

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/rotisserie/eris"
)

const (
	extractorTimeout = 20 * time.Second
	maxExtractedText = 4000
)

// ReadabilityExtractor pulls the readable body text out of a story page.
type ReadabilityExtractor struct {
	http *http.Client
}

// NewReadabilityExtractor constructs an extractor using the given client or a default one.
func NewReadabilityExtractor(client *http.Client) *ReadabilityExtractor {
	if client == nil {
		client = &http.Client{Timeout: extractorTimeout}
	}
	return &ReadabilityExtractor{http: client}
}

// ExtractText returns up to maxExtractedText characters of readable text.
func (e *ReadabilityExtractor) ExtractText(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", eris.Errorf("invalid article url: %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", eris.Wrap(err, "building article request")
	}
	req.Header.Set("User-Agent", "NeuralPostBot/1.0 (+https://prophetic.pw)")

	resp, err := e.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "fetching article page")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", eris.Errorf("article page returned status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", eris.Wrap(err, "readability extraction failed")
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	if runes := []rune(text); len(runes) > maxExtractedText {
		text = string(runes[:maxExtractedText])
	}
	return text, nil
}
