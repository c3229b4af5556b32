package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/auth"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/headlines"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/indexing"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/pipeline"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/scheduler"
)

const functionsPrefix = "/functions/v1/"

func init() {
	huma.NewError = newEnvelopeError
}

// envelopeError is the JSON body of every failed function call.
type envelopeError struct {
	status  int
	Success bool   `json:"success"`
	Message string `json:"error"`
}

func (e *envelopeError) Error() string {
	return e.Message
}

func (e *envelopeError) GetStatus() int {
	return e.status
}

func newEnvelopeError(status int, message string, errs ...error) huma.StatusError {
	details := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			details = append(details, err.Error())
		}
	}
	if len(details) > 0 {
		message = message + ": " + strings.Join(details, "; ")
	}
	return &envelopeError{status: status, Message: message}
}

type generateArticleInput struct {
	Body *struct {
		Category    string `json:"category,omitempty"`
		AutoPublish bool   `json:"autoPublish,omitempty"`
	}
}

type generateArticleResponse struct {
	Body struct {
		Success   bool                   `json:"success"`
		Article   news.Article           `json:"article"`
		Keywords  []news.TrendingKeyword `json:"keywords"`
		Headline  headlines.Headline     `json:"headline"`
		Published bool                   `json:"published"`
	}
}

type dailyAutomationResponse struct {
	Body scheduler.Report
}

type googleIndexingInput struct {
	Body *indexing.Request
}

type googleIndexingResponse struct {
	Body indexing.Response
}

type contactInput struct {
	Body *struct {
		Name    string `json:"name,omitempty"`
		Email   string `json:"email,omitempty"`
		Subject string `json:"subject,omitempty"`
		Message string `json:"message,omitempty"`
	}
}

type contactResponse struct {
	Body struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Recipient string `json:"recipient"`
	}
}

func (s *Server) registerFunctionRoutes() {
	registerFunction(s.api, "generate-article", "Generate an article", auth.ScopeGenerate, s.generateArticleHandler)
	registerFunction(s.api, "daily-automation", "Run the daily automation", auth.ScopeDaily, s.dailyAutomationHandler)
	registerFunction(s.api, "google-indexing", "Submit URLs to the Google Indexing API", auth.ScopeIndexing, s.googleIndexingHandler)
	registerFunction(s.api, "send-contact-email", "Submit the contact form", "", s.contactSubmitHandler)
}

// registerFunction mounts a JSON POST endpoint. A non-empty scope requires a bearer token.
func registerFunction[I, O any](api huma.API, name, summary, scope string, handler func(context.Context, *I) (*O, error)) {
	op := huma.Operation{
		OperationID: name,
		Method:      stdhttp.MethodPost,
		Path:        functionsPrefix + name,
		Summary:     summary,
		Tags:        []string{"functions"},
		Errors:      []int{stdhttp.StatusInternalServerError},
	}
	if scope != "" {
		op.Metadata = map[string]any{scopeMetadataKey: scope}
		op.Errors = append(op.Errors, stdhttp.StatusUnauthorized, stdhttp.StatusForbidden)
	}
	huma.Register(api, op, handler)

	// Browsers and edge clients may send OPTIONS without preflight headers,
	// which the CORS layer passes through.
	huma.Register(api, huma.Operation{
		OperationID:   name + "-options",
		Method:        stdhttp.MethodOptions,
		Path:          op.Path,
		Hidden:        true,
		DefaultStatus: stdhttp.StatusOK,
	}, optionsHandler)
}

func optionsHandler(context.Context, *struct{}) (*struct{}, error) {
	return &struct{}{}, nil
}

func (s *Server) generateArticleHandler(ctx context.Context, input *generateArticleInput) (*generateArticleResponse, error) {
	if s.generator == nil {
		return nil, huma.Error500InternalServerError("article generation is not configured")
	}

	var req pipeline.Request
	if input.Body != nil {
		req.Category = input.Body.Category
		req.AutoPublish = input.Body.AutoPublish
	}

	result, err := s.generator.Generate(ctx, req)
	if err != nil {
		category := news.NormalizeCategory(req.Category)
		s.recordError(ctx, err, "generating article", logrus.Fields{"category": category})
		return nil, huma.Error500InternalServerError(generationMessage(err, category))
	}

	resp := &generateArticleResponse{}
	resp.Body.Success = true
	resp.Body.Article = result.Article
	resp.Body.Keywords = result.Keywords
	resp.Body.Headline = result.Headline
	resp.Body.Published = result.Published
	return resp, nil
}

func (s *Server) dailyAutomationHandler(ctx context.Context, _ *struct{}) (*dailyAutomationResponse, error) {
	if s.daily == nil {
		return nil, huma.Error500InternalServerError("daily automation is not configured")
	}

	report, err := s.daily.Run(ctx)
	if err != nil {
		s.recordError(ctx, err, "running daily automation", nil)
		return nil, huma.Error500InternalServerError(err.Error())
	}

	return &dailyAutomationResponse{Body: *report}, nil
}

func (s *Server) googleIndexingHandler(ctx context.Context, input *googleIndexingInput) (*googleIndexingResponse, error) {
	if s.indexer == nil {
		return nil, huma.Error500InternalServerError(indexing.ErrMissingServiceAccount.Error())
	}

	var req indexing.Request
	if input.Body != nil {
		req = *input.Body
	}

	resp, err := s.indexer.Submit(ctx, req)
	if err != nil {
		s.recordError(ctx, err, "submitting urls for indexing", logrus.Fields{"action": req.Action})
		return nil, huma.Error500InternalServerError(err.Error())
	}

	return &googleIndexingResponse{Body: *resp}, nil
}

func (s *Server) contactSubmitHandler(ctx context.Context, input *contactInput) (*contactResponse, error) {
	var form news.ContactInput
	if input.Body != nil {
		form = news.ContactInput{
			Name:    input.Body.Name,
			Email:   input.Body.Email,
			Subject: input.Body.Subject,
			Message: input.Body.Message,
		}
	}

	submission, err := s.news.SubmitContact(ctx, form)
	if err != nil {
		if eris.Is(err, news.ErrMissingFields) {
			return nil, huma.Error500InternalServerError(news.ErrMissingFields.Error())
		}
		s.recordError(ctx, err, "submitting contact form", nil)
		return nil, huma.Error500InternalServerError(err.Error())
	}

	resp := &contactResponse{}
	resp.Body.Success = true
	resp.Body.Message = fmt.Sprintf("Contact form submitted successfully. We'll respond to %s soon.", submission.Email)
	resp.Body.Recipient = s.contactRecipient
	return resp, nil
}

func generationMessage(err error, category news.Category) string {
	if eris.Is(err, pipeline.ErrNoHeadlines) {
		return fmt.Sprintf("No headlines found for category %s", category)
	}
	return err.Error()
}
