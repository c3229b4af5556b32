package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/auth"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/db"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/headlines"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/indexing"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/news"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/pipeline"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/scheduler"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/seo"
)

func TestHomeRouteRendersPage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seed(t, news.Article{Slug: "quantum-chips", Title: "Quantum chips arrive", Category: news.CategoryScience, IsFeatured: true})
	if err := env.repo.CreateKeywords(context.Background(), []news.TrendingKeyword{
		{Keyword: "error correction", Category: news.CategoryScience, DiscoveredAt: time.Now()},
	}); err != nil {
		t.Fatalf("CreateKeywords returned error: %v", err)
	}

	rec := env.get(t, "/")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != htmlContentType {
		t.Fatalf("expected content type %q, got %q", htmlContentType, ct)
	}

	body := rec.Body.String()
	for _, want := range []string{"Quantum chips arrive", "/article/quantum-chips", "error correction", "Popular Categories", `"@type":"WebSite"`} {
		if !contains(body, want) {
			t.Fatalf("expected body to contain %q", want)
		}
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestHomeRouteShowsEmptyState(t *testing.T) {
	t.Parallel()

	rec := newTestEnv(t).get(t, "/")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !contains(rec.Body.String(), "No Articles Yet") {
		t.Fatalf("expected empty state, got %q", rec.Body.String())
	}
}

func TestUnknownRouteRendersNotFoundPage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	for _, path := range []string{"/does-not-exist", "/article/a/b"} {
		rec := env.get(t, path)
		if rec.Code != 404 {
			t.Fatalf("%s: expected status 404, got %d", path, rec.Code)
		}
		if !contains(rec.Body.String(), "Page Not Found") {
			t.Fatalf("%s: expected not found page, got %q", path, rec.Body.String())
		}
	}
}

func TestCategoryRoutePaginates(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for i := 0; i < news.CategoryPageSize+1; i++ {
		env.seed(t, news.Article{Slug: "tech-" + string(rune('a'+i)), Title: "Tech story", Category: news.CategoryTech})
	}

	first := env.get(t, "/category/Tech")
	if first.Code != 200 {
		t.Fatalf("expected status 200, got %d", first.Code)
	}
	body := first.Body.String()
	if !contains(body, news.CategoryTech.Description()) {
		t.Fatalf("expected category description in body")
	}
	if !contains(body, "/category/Tech?page=2") {
		t.Fatalf("expected next page link, got %q", body)
	}

	second := env.get(t, "/category/Tech/?page=2")
	if second.Code != 200 {
		t.Fatalf("expected status 200 for canonical path, got %d", second.Code)
	}
	if !contains(second.Body.String(), `rel="prev" href="/category/Tech"`) {
		t.Fatalf("expected previous link on second page")
	}
}

func TestCategoryRouteRejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	rec := newTestEnv(t).get(t, "/category/Sports")

	if rec.Code != 404 {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestArticleRouteRendersMarkdown(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seed(t, news.Article{
		Slug:            "inside-the-lab-2025-01-01",
		Title:           "Inside the lab",
		MetaDescription: "A visit to the research floor.",
		Content:         "## Findings\n\nResearchers **found** something.",
		Category:        news.CategoryAI,
	})

	rec := env.get(t, "/article/inside-the-lab-2025-01-01/")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"<strong>found</strong>",
		"Findings",
		"twitter.com/intent/tweet",
		`"@type":"NewsArticle"`,
		`<link rel="canonical" href="https://news.example/article/inside-the-lab-2025-01-01/">`,
		seo.DefaultImage[:30],
		"1 view",
	} {
		if !contains(body, want) {
			t.Fatalf("expected body to contain %q", want)
		}
	}
}

func TestArticleRouteReturnsNotFound(t *testing.T) {
	t.Parallel()

	rec := newTestEnv(t).get(t, "/article/missing")

	if rec.Code != 404 {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if !contains(rec.Body.String(), "Article Not Found") {
		t.Fatalf("expected article not found page, got %q", rec.Body.String())
	}
}

func TestStaticPagesRender(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	cases := map[string]string{
		"/about":      "Our Mission",
		"/privacy":    "Children&#39;s Privacy",
		"/terms":      "Governing Law",
		"/disclaimer": "Not Professional Advice",
		"/contact":    "/functions/v1/send-contact-email",
	}
	for path, want := range cases {
		rec := env.get(t, path)
		if rec.Code != 200 {
			t.Fatalf("%s: expected status 200, got %d", path, rec.Code)
		}
		if !contains(rec.Body.String(), want) {
			t.Fatalf("%s: expected body to contain %q", path, want)
		}
	}
}

func TestSitemapAndRobots(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seed(t, news.Article{Slug: "mapped", Title: "Mapped", Category: news.CategoryBusiness})

	rec := env.get(t, "/sitemap.xml")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Fatalf("expected xml content type, got %q", ct)
	}
	if !contains(rec.Body.String(), "https://news.example/article/mapped/") {
		t.Fatalf("expected article url in sitemap, got %q", rec.Body.String())
	}

	robots := env.get(t, "/robots.txt")
	if !contains(robots.Body.String(), "Sitemap: https://news.example/sitemap.xml") {
		t.Fatalf("unexpected robots.txt %q", robots.Body.String())
	}
}

func TestHealthRouteReportsOK(t *testing.T) {
	t.Parallel()

	rec := newTestEnv(t).get(t, "/healthz")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !contains(rec.Body.String(), `"generator":"unconfigured"`) {
		t.Fatalf("expected generator status, got %q", rec.Body.String())
	}
}

func TestGenerateArticleWithoutGeneratorReturnsEnvelope(t *testing.T) {
	t.Parallel()

	rec := newTestEnv(t).post(t, "/functions/v1/generate-article", `{"category":"AI"}`, "")

	assertEnvelope(t, rec, 500, "article generation is not configured")
}

func TestGenerateArticleReturnsResult(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{result: &pipeline.Result{
		Article:   news.Article{Slug: "fresh-2025-02-02", Title: "Fresh", Category: news.CategoryTech},
		Headline:  headlines.Headline{Title: "Wire story"},
		Published: true,
	}}
	env := newTestEnv(t, func(opts *Options) { opts.Generator = runner })

	rec := env.post(t, "/functions/v1/generate-article", `{"category":"Tech","autoPublish":true}`, "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success   bool         `json:"success"`
		Article   news.Article `json:"article"`
		Published bool         `json:"published"`
	}
	decode(t, rec, &body)
	if !body.Success || !body.Published || body.Article.Slug != "fresh-2025-02-02" {
		t.Fatalf("unexpected body %+v", body)
	}
	if runner.last.Category != "Tech" || !runner.last.AutoPublish {
		t.Fatalf("unexpected request %+v", runner.last)
	}
}

func TestGenerateArticleReportsMissingHeadlines(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{err: eris.Wrap(pipeline.ErrNoHeadlines, "category Science")}
	env := newTestEnv(t, func(opts *Options) { opts.Generator = runner })

	rec := env.post(t, "/functions/v1/generate-article", `{"category":"Science"}`, "")

	assertEnvelope(t, rec, 500, "No headlines found for category Science")
}

func TestProtectedFunctionsRequireBearerToken(t *testing.T) {
	t.Parallel()

	signer, err := auth.NewSigner("test-secret")
	if err != nil {
		t.Fatalf("NewSigner returned error: %v", err)
	}
	daily := &stubDaily{report: &scheduler.Report{Success: true, Message: "Daily automation completed"}}
	env := newTestEnv(t, func(opts *Options) {
		opts.Signer = signer
		opts.Daily = daily
	})

	rec := env.post(t, "/functions/v1/daily-automation", "", "")
	assertEnvelope(t, rec, 401, unauthorizedMessage)
	if daily.calls != 0 {
		t.Fatalf("expected daily automation not to run")
	}

	wrongScope, err := signer.Issue(auth.ScopeIndexing, time.Hour)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	rec = env.post(t, "/functions/v1/daily-automation", "", wrongScope)
	if rec.Code != 403 {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}

	token, err := signer.Issue(auth.ScopeDaily, time.Hour)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	rec = env.post(t, "/functions/v1/daily-automation", "", token)
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !contains(rec.Body.String(), "Daily automation completed") || daily.calls != 1 {
		t.Fatalf("unexpected daily response %q", rec.Body.String())
	}
	if daily.claims == nil || daily.claims.Scope != auth.ScopeDaily {
		t.Fatalf("expected verified claims in handler context, got %+v", daily.claims)
	}
}

func TestGoogleIndexingWithoutCredentials(t *testing.T) {
	t.Parallel()

	rec := newTestEnv(t).post(t, "/functions/v1/google-indexing", `{"action":"update"}`, "")

	assertEnvelope(t, rec, 500, indexing.ErrMissingServiceAccount.Error())
}

func TestGoogleIndexingSubmitsRequest(t *testing.T) {
	t.Parallel()

	indexer := &stubIndexer{response: &indexing.Response{Success: true, Submitted: 1, Results: []indexing.Result{{URL: "https://news.example/", Success: true}}}}
	env := newTestEnv(t, func(opts *Options) { opts.Indexer = indexer })

	rec := env.post(t, "/functions/v1/google-indexing", `{"action":"delete","urls":["https://news.example/"]}`, "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if indexer.last.Action != "delete" || len(indexer.last.URLs) != 1 {
		t.Fatalf("unexpected indexing request %+v", indexer.last)
	}
}

func TestContactFunction(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.post(t, "/functions/v1/send-contact-email", `{"name":"Ada","email":"ada@example.com"}`, "")
	assertEnvelope(t, rec, 500, "Missing required fields")

	rec = env.post(t, "/functions/v1/send-contact-email", `{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"Hello"}`, "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Recipient string `json:"recipient"`
	}
	decode(t, rec, &body)
	if !body.Success || body.Recipient != "editor@news.example" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Message != "Contact form submitted successfully. We'll respond to ada@example.com soon." {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestPreflightAllowsAnyOrigin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	req := httptest.NewRequest("OPTIONS", "/functions/v1/generate-article", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
	rec := httptest.NewRecorder()

	env.server.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Fatalf("expected wildcard origin, got %q", origin)
	}
}

func TestBareOptionsOnFunctionReturnsEmpty200(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for _, path := range []string{"/functions/v1/send-contact-email", "/functions/v1/daily-automation"} {
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, httptest.NewRequest("OPTIONS", path, nil))

		if rec.Code != 200 {
			t.Fatalf("%s: expected status 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
		if rec.Body.Len() != 0 {
			t.Fatalf("%s: expected empty body, got %q", path, rec.Body.String())
		}
	}
}

func TestRateLimitReturns429(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(opts *Options) {
		opts.RateLimiter = RateLimiterSettings{RequestsPerSecond: 0.001, Burst: 1, ClientTTL: time.Minute}
	})

	if rec := env.get(t, "/about"); rec.Code != 200 {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	rec := env.get(t, "/about")
	if rec.Code != 429 {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestPathMatchesRoute(t *testing.T) {
	t.Parallel()

	cases := []struct {
		route string
		path  string
		want  bool
	}{
		{"/", "/", true},
		{"/", "/missing", false},
		{"/article/{slug}", "/article/x", true},
		{"/article/{slug}/", "/article/x/", true},
		{"/article/{slug}/", "/article/x/y", false},
	}
	for _, tc := range cases {
		if got := pathMatchesRoute(tc.route, tc.path); got != tc.want {
			t.Errorf("pathMatchesRoute(%q, %q) = %v, want %v", tc.route, tc.path, got, tc.want)
		}
	}
}

// helper utilities

type testEnv struct {
	server *Server
	repo   *news.GormRepository
}

func newTestEnv(t *testing.T, mutators ...func(*Options)) *testEnv {
	t.Helper()

	gormDB, err := db.Open(db.Options{Path: filepath.Join(t.TempDir(), "http.db")})
	if err != nil {
		t.Fatalf("db.Open returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(gormDB)
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	if err := news.Migrate(context.Background(), gormDB, logger); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	repo, err := news.NewRepository(gormDB, logger)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	service, err := news.NewService(repo, logger, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	site := seo.DefaultSite()
	site.URL = "https://news.example"

	opts := Options{
		NewsService:      service,
		Articles:         repo,
		Database:         gormDB,
		Site:             site,
		ContactRecipient: "editor@news.example",
		RateLimiter:      RateLimiterSettings{RequestsPerSecond: 1000, Burst: 1000, ClientTTL: time.Minute},
		Logger:           logger,
	}
	for _, mutate := range mutators {
		mutate(&opts)
	}

	srv, err := NewServer(opts)
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}

	return &testEnv{server: srv, repo: repo}
}

func (e *testEnv) seed(t *testing.T, article news.Article) {
	t.Helper()

	if article.Content == "" {
		article.Content = "Body of " + article.Title
	}
	if err := e.repo.CreateArticle(context.Background(), &article); err != nil {
		t.Fatalf("CreateArticle returned error: %v", err)
	}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	req.RemoteAddr = "192.0.2.10:4321"
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) post(t *testing.T, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest("POST", path, reader)
	req.RemoteAddr = "192.0.2.10:4321"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func assertEnvelope(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}

	var body struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}
	decode(t, rec, &body)
	if body.Success == nil || *body.Success {
		t.Fatalf("expected success=false in %s", rec.Body.String())
	}
	if body.Error != message {
		t.Fatalf("expected error %q, got %q", message, body.Error)
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func contains(body, substring string) bool {
	return strings.Contains(body, substring)
}

// stubs

type stubRunner struct {
	result *pipeline.Result
	err    error
	last   pipeline.Request
}

func (s *stubRunner) Generate(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	s.last = req
	return s.result, s.err
}

type stubDaily struct {
	report *scheduler.Report
	err    error
	calls  int
	claims *auth.Claims
}

func (s *stubDaily) Run(ctx context.Context) (*scheduler.Report, error) {
	s.calls++
	s.claims = ClaimsFromContext(ctx)
	return s.report, s.err
}

type stubIndexer struct {
	response *indexing.Response
	err      error
	last     indexing.Request
}

func (s *stubIndexer) Submit(_ context.Context, req indexing.Request) (*indexing.Response, error) {
	s.last = req
	return s.response, s.err
}

var _ pipeline.Runner = (*stubRunner)(nil)
var _ DailyRunner = (*stubDaily)(nil)
var _ IndexSubmitter = (*stubIndexer)(nil)
