package llm

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared/constant"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

type fakeChatService struct {
	response   *openai.ChatCompletion
	err        error
	calls      int
	lastParams openai.ChatCompletionNewParams
}

var fakeBaseURL = "https://fake-llm-provider.ai/api/v1"

func (f *fakeChatService) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.calls++
	f.lastParams = body
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func completionWith(content, finishReason string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		ID:      "gen-1",
		Created: time.Now().Unix(),
		Model:   "test-model",
		Object:  constant.ValueOf[constant.ChatCompletion](),
		Choices: []openai.ChatCompletionChoice{
			{
				FinishReason: finishReason,
				Index:        0,
				Logprobs: openai.ChatCompletionChoiceLogprobs{
					Content: []openai.ChatCompletionTokenLogprob{},
					Refusal: []openai.ChatCompletionTokenLogprob{},
				},
				Message: openai.ChatCompletionMessage{
					Content: content,
					Role:    constant.ValueOf[constant.Assistant](),
				},
			},
		},
	}
}

func newFakeClient(chat *fakeChatService) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Client{chat: chat, logger: logger, baseURL: fakeBaseURL, model: "llm-stub-model"}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewClient(ClientOptions{})
	if !eris.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestNewClientDefaultsToDeepSeek(t *testing.T) {
	t.Parallel()

	client, err := NewClient(ClientOptions{APIKey: "key"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if client.BaseURL() != deepSeekBaseURL {
		t.Fatalf("expected base url %q, got %q", deepSeekBaseURL, client.BaseURL())
	}
	if client.Model() != defaultModel {
		t.Fatalf("expected model %q, got %q", defaultModel, client.Model())
	}
}

func TestCompleteJSONRejectsContentFilter(t *testing.T) {
	t.Parallel()

	client := newFakeClient(&fakeChatService{response: completionWith("{}", "content_filter")})

	if _, err := client.completeJSON(context.Background(), completionRequest{system: "s", user: "u"}); err == nil {
		t.Fatalf("expected content filter error")
	}
}

func TestCompleteJSONRejectsEmptyChoices(t *testing.T) {
	t.Parallel()

	client := newFakeClient(&fakeChatService{response: &openai.ChatCompletion{}})

	if _, err := client.completeJSON(context.Background(), completionRequest{system: "s", user: "u"}); err == nil {
		t.Fatalf("expected error when completion has no choices")
	}
}

func TestCompleteJSONUsesJSONModeAndModel(t *testing.T) {
	t.Parallel()

	chat := &fakeChatService{response: completionWith(`{"ok":true}`, "stop")}
	client := newFakeClient(chat)

	content, err := client.completeJSON(context.Background(), completionRequest{system: "s", user: "u", maxTokens: 10})
	if err != nil {
		t.Fatalf("completeJSON returned error: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("unexpected content %q", content)
	}
	if chat.lastParams.Model != "llm-stub-model" {
		t.Fatalf("expected model llm-stub-model, got %s", chat.lastParams.Model)
	}
	if chat.lastParams.ResponseFormat.OfJSONObject == nil {
		t.Fatalf("expected json_object response format")
	}
	if len(chat.lastParams.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(chat.lastParams.Messages))
	}
}

func TestStripCodeFence(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```  ":    `{"a":1}`,
		`{"a":1}`:                  `{"a":1}`,
		"```json {\"a\":1}":        "```json {\"a\":1}",
		"```json {\"a\":1}```":     `{"a":1}`,
		"```{\"a\":1}```":          `{"a":1}`,
	}
	for input, want := range cases {
		if got := stripCodeFence(input); got != want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", input, got, want)
		}
	}
}
