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
	writerTemperature  = 0.7
	writerMaxTokens    = 4000
	writerSystemPrompt = "You are a professional technology journalist writing for NeuralPost. Always respond with valid JSON only, no markdown code blocks."
)

// Draft is a generated article before it is filed.
type Draft struct {
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	Slug            string `json:"slug"`
	Content         string `json:"content"`
	ImageQuery      string `json:"image_query"`
}

// WriteRequest carries the story and keywords the article must cover.
type WriteRequest struct {
	Category    string
	Headline    string
	Description string
	SourceName  string
	Keywords    []string
}

// ArticleWriter produces a long-form Markdown article from a headline.
type ArticleWriter interface {
	WriteArticle(ctx context.Context, req WriteRequest) (*Draft, error)
}

type articleWriter struct {
	client *Client
}

// NewArticleWriter constructs an ArticleWriter backed by the chat client.
func NewArticleWriter(client *Client) (ArticleWriter, error) {
	if client == nil {
		return nil, eris.New("llm client is required")
	}
	return &articleWriter{client: client}, nil
}

func (w *articleWriter) WriteArticle(ctx context.Context, req WriteRequest) (*Draft, error) {
	headline := strings.TrimSpace(req.Headline)
	if headline == "" {
		return nil, eris.New("headline is required")
	}

	fields := logrus.Fields{"headline": headline, "category": req.Category}

	content, err := w.client.completeJSON(ctx, completionRequest{
		system:      writerSystemPrompt,
		user:        buildArticlePrompt(req),
		temperature: writerTemperature,
		maxTokens:   writerMaxTokens,
	})
	if err != nil {
		w.client.logError(fields, err, "writing article")
		return nil, err
	}

	draft, err := parseDraft(content)
	if err != nil {
		w.client.logError(fields, err, "parsing article response")
		return nil, err
	}

	return draft, nil
}

func buildArticlePrompt(req WriteRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write an original news article for the %s section based on this story.\n", req.Category)
	fmt.Fprintf(&b, "Headline: %s\n", strings.TrimSpace(req.Headline))
	if description := strings.TrimSpace(req.Description); description != "" {
		fmt.Fprintf(&b, "Summary: %s\n", description)
	}
	if source := strings.TrimSpace(req.SourceName); source != "" {
		fmt.Fprintf(&b, "Original source: %s\n", source)
	}
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "Work these SEO keywords in naturally: %s\n", strings.Join(req.Keywords, ", "))
	}
	b.WriteString(`
Return a JSON object with these exact fields:
- title: a catchy, SEO-optimized headline (60-80 characters)
- meta_description: SEO meta description (150-160 characters)
- slug: URL-friendly slug derived from the title (lowercase, hyphens)
- content: the full article in Markdown (1500-2500 words) with ## section headers, analysis and a conclusion
- image_query: two to four words to search a stock photo library for a matching image`)
	return b.String()
}

func parseDraft(raw string) (*Draft, error) {
	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, eris.Wrap(ErrInvalidResponse, "decoding article json: "+err.Error())
	}

	draft.Title = strings.TrimSpace(draft.Title)
	draft.MetaDescription = strings.TrimSpace(draft.MetaDescription)
	draft.Slug = strings.TrimSpace(draft.Slug)
	draft.Content = strings.TrimSpace(draft.Content)
	draft.ImageQuery = strings.TrimSpace(draft.ImageQuery)

	required := []struct {
		name  string
		value string
	}{
		{"title", draft.Title},
		{"meta_description", draft.MetaDescription},
		{"slug", draft.Slug},
		{"content", draft.Content},
		{"image_query", draft.ImageQuery},
	}
	for _, field := range required {
		if field.value == "" {
			return nil, eris.Wrapf(ErrInvalidResponse, "article response missing %s field", field.name)
		}
	}

	return &draft, nil
}
