package photos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultPexelsURL = "https://api.pexels.com"
	pexelsTimeout    = 10 * time.Second
)

// ErrMissingPexelsKey is returned when no photo provider key is configured.
var ErrMissingPexelsKey = eris.New("PEXELS_API_KEY is not configured")

// Searcher finds a stock photo URL for a query. An empty URL means no match.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// PexelsOptions configures the Pexels client.
type PexelsOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// PexelsClient searches the Pexels photo library.
type PexelsClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

var _ Searcher = (*PexelsClient)(nil)

// NewPexelsClient validates options and constructs a client.
func NewPexelsClient(opts PexelsOptions) (*PexelsClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingPexelsKey
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultPexelsURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: pexelsTimeout}
	}

	return &PexelsClient{apiKey: opts.APIKey, baseURL: baseURL, http: httpClient}, nil
}

type pexelsResponse struct {
	Photos []struct {
		Src struct {
			Original string `json:"original"`
			Large2x  string `json:"large2x"`
			Large    string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

// Search returns the best landscape match for query.
func (c *PexelsClient) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return "", eris.Wrap(err, "building photo search request")
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "searching photos")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", eris.Errorf("photo search returned status %d", resp.StatusCode)
	}

	var payload pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", eris.Wrap(err, "decoding photo search response")
	}

	if len(payload.Photos) == 0 {
		return "", nil
	}

	src := payload.Photos[0].Src
	for _, candidate := range []string{src.Large2x, src.Large, src.Original} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return "", nil
}
