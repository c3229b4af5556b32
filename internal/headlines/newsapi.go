package headlines

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

const (
	defaultNewsAPIURL = "https://newsapi.org"
	newsAPITimeout    = 15 * time.Second
)

// ErrMissingNewsAPIKey is returned when the news provider key is absent.
var ErrMissingNewsAPIKey = eris.New("NEWS_API_KEY is not configured")

// NewsAPIOptions configures the NewsAPI client.
type NewsAPIOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

// NewsAPIClient reads top headlines from a NewsAPI-compatible REST endpoint.
type NewsAPIClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
}

type newsAPIQuery struct {
	category string
	q        string
}

var newsAPICategories = map[string]newsAPIQuery{
	"AI":       {category: "technology", q: "artificial intelligence"},
	"Tech":     {category: "technology"},
	"Business": {category: "business"},
	"Science":  {category: "science"},
}

// NewNewsAPIClient validates options and constructs a client.
func NewNewsAPIClient(opts NewsAPIOptions) (*NewsAPIClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingNewsAPIKey
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultNewsAPIURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: newsAPITimeout}
	}

	return &NewsAPIClient{apiKey: opts.APIKey, baseURL: baseURL, http: httpClient, logger: opts.Logger}, nil
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		URLToImage  string    `json:"urlToImage"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func (c *NewsAPIClient) TopHeadlines(ctx context.Context, category string, limit int) ([]Headline, error) {
	query, ok := newsAPICategories[category]
	if !ok {
		query = newsAPICategories["AI"]
	}
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("category", query.category)
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(limit))
	if query.q != "" {
		params.Set("q", query.q)
	}

	endpoint := fmt.Sprintf("%s/v2/top-headlines?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "building headlines request")
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "requesting headlines")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "reading headlines response")
	}

	var payload newsAPIResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(payload.Message)
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		err := eris.Errorf("news API error %d: %s", resp.StatusCode, message)
		c.logError(logrus.Fields{"category": category, "status": resp.StatusCode}, err)
		return nil, err
	}
	if decodeErr != nil {
		return nil, eris.Wrap(decodeErr, "decoding headlines response")
	}

	items := make([]Headline, 0, len(payload.Articles))
	for _, article := range payload.Articles {
		if !usableTitle(article.Title) {
			continue
		}
		items = append(items, Headline{
			Title:       strings.TrimSpace(article.Title),
			Description: strings.TrimSpace(article.Description),
			URL:         article.URL,
			Source:      article.Source.Name,
			ImageURL:    article.URLToImage,
			PublishedAt: article.PublishedAt,
		})
	}

	return items, nil
}

func (c *NewsAPIClient) logError(fields logrus.Fields, err error) {
	if c.logger == nil {
		return
	}
	c.logger.WithFields(fields).WithField("component", "headlines.newsapi").WithField("error", err.Error()).Error("headline request failed")
}
