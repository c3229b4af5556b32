package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configKeys = []string{
	"DATABASE_URL", "DB_PATH", "SERVER_PORT", "LOG_LEVEL", "LOG_FILE", "SENTRY_DSN", "ENVIRONMENT",
	"SHUTDOWN_GRACE", "LLM_BASE_URL", "LLM_API_KEY", "LLM_MODEL", "NEWS_API_KEY", "NEWS_API_URL",
	"NEWS_FEEDS", "ENABLE_SOURCE_EXTRACTION", "PEXELS_API_KEY", "GOOGLE_SERVICE_ACCOUNT_JSON",
	"SITE_URL", "SITE_NAME", "CONTACT_RECIPIENT", "GENERATION_INTERVAL", "INDEXING_INTERVAL",
	"PACING_MAX_WAIT", "TRIGGER_SECRET", "REDIS_URL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"SSG_OUTPUT_DIR", "SSG_S3_BUCKET", "SSG_S3_PREFIX", "S3_ENDPOINT", "REQUIRE_PROVIDERS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
	// DAILY_CRON distinguishes unset from empty.
	t.Setenv("DAILY_CRON", "")
	os.Unsetenv("DAILY_CRON")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DBPath != defaultDBPath {
		t.Errorf("expected default DB path %q, got %q", defaultDBPath, cfg.DBPath)
	}

	if cfg.ServerPort != defaultServerPort {
		t.Errorf("expected default server port %d, got %d", defaultServerPort, cfg.ServerPort)
	}

	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("expected default log level %q, got %q", defaultLogLevel, cfg.LogLevel)
	}

	if cfg.Environment != defaultEnvironment {
		t.Errorf("expected default environment %q, got %q", defaultEnvironment, cfg.Environment)
	}

	if cfg.ShutdownGrace != defaultShutdownGrace {
		t.Errorf("expected shutdown grace %s, got %s", defaultShutdownGrace, cfg.ShutdownGrace)
	}

	if cfg.SiteURL != defaultSiteURL {
		t.Errorf("expected site url %q, got %q", defaultSiteURL, cfg.SiteURL)
	}

	if cfg.DailyCron != defaultDailyCron {
		t.Errorf("expected daily cron %q, got %q", defaultDailyCron, cfg.DailyCron)
	}

	if cfg.GenerationInterval != defaultGenerationInterval {
		t.Errorf("expected generation interval %s, got %s", defaultGenerationInterval, cfg.GenerationInterval)
	}

	if cfg.IndexingInterval != defaultIndexingInterval {
		t.Errorf("expected indexing interval %s, got %s", defaultIndexingInterval, cfg.IndexingInterval)
	}

	if cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Errorf("expected rate limit burst %d, got %d", defaultRateLimitBurst, cfg.RateLimitBurst)
	}

	if cfg.NewsFeeds != nil {
		t.Errorf("expected nil NewsFeeds, got %v", cfg.NewsFeeds)
	}

	if cfg.LLMAPIKey != "" {
		t.Errorf("expected empty LLM API key, got %q", cfg.LLMAPIKey)
	}

	if cfg.RequireProviders {
		t.Errorf("expected providers to be optional by default")
	}
}

func TestLoadWithExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "/tmp/neuralpost.db")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LLM_BASE_URL", "https://example.com/llm")
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("LLM_MODEL", "deepseek-reasoner")
	t.Setenv("SITE_URL", "https://news.example.com/")
	t.Setenv("GENERATION_INTERVAL", "250ms")
	t.Setenv("DAILY_CRON", "")
	t.Setenv("ENABLE_SOURCE_EXTRACTION", "true")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DBPath != "/tmp/neuralpost.db" {
		t.Errorf("expected DB path %q, got %q", "/tmp/neuralpost.db", cfg.DBPath)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("expected server port 9090, got %d", cfg.ServerPort)
	}

	if cfg.LLMBaseURL != "https://example.com/llm" {
		t.Errorf("expected LLM base url https://example.com/llm, got %q", cfg.LLMBaseURL)
	}

	if cfg.LLMModel != "deepseek-reasoner" {
		t.Errorf("expected LLM model deepseek-reasoner, got %q", cfg.LLMModel)
	}

	if cfg.SiteURL != "https://news.example.com" {
		t.Errorf("expected trailing slash trimmed from site url, got %q", cfg.SiteURL)
	}

	if cfg.GenerationInterval != 250*time.Millisecond {
		t.Errorf("expected generation interval 250ms, got %s", cfg.GenerationInterval)
	}

	if cfg.DailyCron != "" {
		t.Errorf("expected explicit empty DAILY_CRON to disable the schedule, got %q", cfg.DailyCron)
	}

	if !cfg.EnableSourceExtraction {
		t.Errorf("expected source extraction to be enabled")
	}

	if cfg.Environment != "production" {
		t.Errorf("expected environment production, got %q", cfg.Environment)
	}
}

func TestLoadFeedsByCategoryAndShared(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEWS_FEEDS", `{"AI":["https://a.example/rss"],"Tech":["https://t.example/rss"]}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.NewsFeeds["AI"]; len(got) != 1 || got[0] != "https://a.example/rss" {
		t.Fatalf("unexpected AI feeds: %v", got)
	}

	t.Setenv("NEWS_FEEDS", `["https://shared.example/rss"]`)
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.NewsFeeds["*"]; len(got) != 1 {
		t.Fatalf("expected shared feed list under wildcard key, got %v", cfg.NewsFeeds)
	}
}

func TestLoadServiceAccountFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "account.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("writing account file: %v", err)
	}
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if string(cfg.GoogleServiceAccount) != `{"type":"service_account"}` {
		t.Fatalf("expected account JSON read from file, got %q", cfg.GoogleServiceAccount)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "invalid")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid port, got nil")
	}

	if !strings.Contains(err.Error(), "invalid SERVER_PORT value") {
		t.Fatalf("expected error to mention invalid SERVER_PORT value, got %v", err)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("INDEXING_INTERVAL", "soon")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "invalid INDEXING_INTERVAL value") {
		t.Fatalf("expected invalid INDEXING_INTERVAL error, got %v", err)
	}
}

func TestLoadInvalidFeeds(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEWS_FEEDS", `[]`)

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error when feeds JSON is empty, got nil")
	}

	if !strings.Contains(err.Error(), "parsing NEWS_FEEDS") {
		t.Fatalf("expected error to mention parsing NEWS_FEEDS, got %v", err)
	}
}

func TestLoadRequireProvidersFailsWhenKeysMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("REQUIRE_PROVIDERS", "true")
	t.Setenv("LLM_API_KEY", "key")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected missing provider error, got nil")
	}

	if !strings.Contains(err.Error(), "NEWS_API_KEY") {
		t.Fatalf("expected error to name the news provider key, got %v", err)
	}
}
