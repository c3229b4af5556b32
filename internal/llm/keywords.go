package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

const (
	maxKeywords            = 5
	keywordTemperature     = 0.3
	keywordSystemPrompt    = "You are an SEO analyst. Always respond with a single valid JSON object and nothing else."
	maxKeywordSourceLength = 4000
)

// Keyword is an SEO phrase with qualitative demand labels.
type Keyword struct {
	Keyword      string `json:"keyword"`
	SearchVolume string `json:"search_volume"`
	Competition  string `json:"competition"`
}

// KeywordRequest describes the headline keywords are extracted from.
type KeywordRequest struct {
	Category    string
	Headline    string
	Description string
	SourceText  string
}

// KeywordExtractor pulls SEO keyword phrases out of a headline.
type KeywordExtractor interface {
	ExtractKeywords(ctx context.Context, req KeywordRequest) ([]Keyword, error)
}

type keywordExtractor struct {
	client *Client
}

// NewKeywordExtractor constructs a KeywordExtractor backed by the chat client.
func NewKeywordExtractor(client *Client) (KeywordExtractor, error) {
	if client == nil {
		return nil, eris.New("llm client is required")
	}
	return &keywordExtractor{client: client}, nil
}

func (k *keywordExtractor) ExtractKeywords(ctx context.Context, req KeywordRequest) ([]Keyword, error) {
	headline := strings.TrimSpace(req.Headline)
	if headline == "" {
		return nil, eris.New("headline is required")
	}

	content, err := k.client.completeJSON(ctx, completionRequest{
		system:      keywordSystemPrompt,
		user:        buildKeywordPrompt(req),
		temperature: keywordTemperature,
		maxTokens:   500,
	})
	if err != nil {
		k.client.logError(logrus.Fields{"headline": headline}, err, "extracting keywords")
		return nil, err
	}

	keywords, err := parseKeywords(content)
	if err != nil {
		k.client.logError(logrus.Fields{"headline": headline}, err, "parsing keyword response")
		return nil, err
	}

	return keywords, nil
}

func buildKeywordPrompt(req KeywordRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\nHeadline: %s\n", req.Category, strings.TrimSpace(req.Headline))
	if description := strings.TrimSpace(req.Description); description != "" {
		fmt.Fprintf(&b, "Summary: %s\n", description)
	}
	if source := strings.TrimSpace(req.SourceText); source != "" {
		if runes := []rune(source); len(runes) > maxKeywordSourceLength {
			source = string(runes[:maxKeywordSourceLength])
		}
		fmt.Fprintf(&b, "Source excerpt:\n%s\n", source)
	}
	b.WriteString("\nExtract 4-5 SEO keyword phrases people would search for about this story. ")
	b.WriteString(`Return JSON shaped as {"keywords":[{"keyword":"...","search_volume":"high|medium|low","competition":"high|medium|low"}]}.`)
	return b.String()
}

func parseKeywords(raw string) ([]Keyword, error) {
	var payload struct {
		Keywords []Keyword `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, eris.Wrap(ErrInvalidResponse, "decoding keyword json: "+err.Error())
	}

	keywords := make([]Keyword, 0, maxKeywords)
	for _, keyword := range payload.Keywords {
		keyword.Keyword = strings.TrimSpace(keyword.Keyword)
		if keyword.Keyword == "" {
			continue
		}
		keyword.SearchVolume = normalizeLabel(keyword.SearchVolume)
		keyword.Competition = normalizeLabel(keyword.Competition)
		keywords = append(keywords, keyword)
		if len(keywords) == maxKeywords {
			break
		}
	}

	return keywords, nil
}

func normalizeLabel(value string) string {
	switch label := strings.ToLower(strings.TrimSpace(value)); label {
	case "high", "medium", "low":
		return label
	default:
		return "medium"
	}
}
