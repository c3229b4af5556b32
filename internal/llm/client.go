package llm

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/openai/openai-go/v2/shared/constant"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

var codeFencePattern = regexp.MustCompile("(?s)^```(?:[A-Za-z]+\\b)?\\s*(.*?)\\s*```$")

const (
	deepSeekBaseURL = "https://api.deepseek.com"
	defaultModel    = "deepseek-chat"
)

var (
	// ErrMissingAPIKey is returned when no completion provider key is configured.
	ErrMissingAPIKey = eris.New("LLM_API_KEY is not configured")
	// ErrInvalidResponse marks a completion whose content could not be decoded.
	ErrInvalidResponse = eris.New("invalid completion response")
)

// ClientOptions controls how the completion client is initialised.
type ClientOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

// Client wraps the OpenAI SDK chat service pointed at an OpenAI-compatible provider.
type Client struct {
	chat    chatCompletionClient
	logger  *logrus.Logger
	baseURL string
	model   string
}

type chatCompletionClient interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// NewClient constructs a Client configured for DeepSeek unless another base URL is given.
func NewClient(opts ClientOptions) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = deepSeekBaseURL
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	requestOptions := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(baseURL),
	}

	if opts.HTTPClient != nil {
		requestOptions = append(requestOptions, option.WithHTTPClient(opts.HTTPClient))
	}

	apiClient := openai.NewClient(requestOptions...)

	return &Client{
		chat:    &apiClient.Chat.Completions,
		logger:  opts.Logger,
		baseURL: baseURL,
		model:   model,
	}, nil
}

// BaseURL returns the configured base URL for outbound requests.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Model returns the chat model used for every request.
func (c *Client) Model() string {
	return c.model
}

type completionRequest struct {
	system      string
	user        string
	temperature float64
	maxTokens   int64
}

// completeJSON runs one chat completion in JSON mode and returns the raw message content.
func (c *Client) completeJSON(ctx context.Context, req completionRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.system),
			openai.UserMessage(req.user),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{
				Type: constant.ValueOf[constant.JSONObject](),
			},
		},
		Temperature: openai.Float(req.temperature),
	}
	if req.maxTokens > 0 {
		params.MaxTokens = openai.Int(req.maxTokens)
	}

	completion, err := c.chat.New(ctx, params)
	if err != nil {
		return "", eris.Wrap(err, "requesting chat completion")
	}

	if len(completion.Choices) == 0 {
		return "", eris.New("llm completion returned no choices")
	}

	choice := completion.Choices[0]
	if reason := strings.TrimSpace(choice.FinishReason); strings.EqualFold(reason, "content_filter") {
		return "", eris.New("llm blocked the request via content filter")
	}

	if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
		return "", eris.Errorf("llm refused to generate content: %s", refusal)
	}

	content := stripCodeFence(strings.TrimSpace(choice.Message.Content))
	if content == "" {
		return "", eris.Wrap(ErrInvalidResponse, "llm response content is empty")
	}

	return content, nil
}

func (c *Client) logError(fields logrus.Fields, err error, message string) {
	if c.logger == nil || err == nil {
		return
	}

	entry := c.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

// stripCodeFence removes a surrounding ``` or ```json fence when present,
// including a fence opened and closed on the same line.
func stripCodeFence(content string) string {
	match := codeFencePattern.FindStringSubmatch(strings.TrimSpace(content))
	if match == nil {
		return content
	}
	return strings.TrimSpace(match[1])
}
