package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the NeuralPost binaries.
type Config struct {
	DatabaseURL   string
	DBPath        string
	ServerPort    int
	LogLevel      string
	LogFile       string
	SentryDSN     string
	Environment   string
	ShutdownGrace time.Duration

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	NewsAPIKey             string
	NewsAPIURL             string
	NewsFeeds              map[string][]string
	EnableSourceExtraction bool
	PexelsAPIKey           string
	GoogleServiceAccount   []byte

	SiteURL          string
	SiteName         string
	ContactRecipient string

	DailyCron          string
	GenerationInterval time.Duration
	IndexingInterval   time.Duration
	PacingMaxWait      time.Duration
	TriggerSecret      string
	RedisURL           string

	RateLimitRPS   float64
	RateLimitBurst int

	SSGOutputDir string
	SSGS3Bucket  string
	SSGS3Prefix  string
	S3Endpoint   string

	RequireProviders bool
}

const (
	defaultDBPath             = "./data/neuralpost.db"
	defaultServerPort         = 8080
	defaultLogLevel           = "info"
	defaultEnvironment        = "development"
	defaultShutdownGrace      = 10 * time.Second
	defaultSiteURL            = "https://prophetic.pw"
	defaultSiteName           = "NeuralPost"
	defaultContactRecipient   = "touatihadi0@gmail.com"
	defaultDailyCron          = "0 6 * * *"
	defaultGenerationInterval = 5 * time.Second
	defaultIndexingInterval   = 100 * time.Millisecond
	defaultPacingMaxWait      = 2 * time.Minute
	defaultRateLimitRPS       = 5
	defaultRateLimitBurst     = 20
	defaultSSGOutputDir       = "dist"
)

// Load reads configuration values from environment variables, applying defaults where necessary.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBPath:           getEnv("DB_PATH", defaultDBPath),
		LogLevel:         getEnv("LOG_LEVEL", defaultLogLevel),
		LogFile:          os.Getenv("LOG_FILE"),
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		Environment:      getEnv("ENVIRONMENT", defaultEnvironment),
		LLMBaseURL:       os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:        os.Getenv("LLM_API_KEY"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		NewsAPIKey:       os.Getenv("NEWS_API_KEY"),
		NewsAPIURL:       os.Getenv("NEWS_API_URL"),
		PexelsAPIKey:     os.Getenv("PEXELS_API_KEY"),
		SiteURL:          strings.TrimRight(getEnv("SITE_URL", defaultSiteURL), "/"),
		SiteName:         getEnv("SITE_NAME", defaultSiteName),
		ContactRecipient: getEnv("CONTACT_RECIPIENT", defaultContactRecipient),
		TriggerSecret:    os.Getenv("TRIGGER_SECRET"),
		RedisURL:         os.Getenv("REDIS_URL"),
		SSGOutputDir:     getEnv("SSG_OUTPUT_DIR", defaultSSGOutputDir),
		SSGS3Bucket:      os.Getenv("SSG_S3_BUCKET"),
		SSGS3Prefix:      os.Getenv("SSG_S3_PREFIX"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
	}

	if cron, ok := os.LookupEnv("DAILY_CRON"); ok {
		cfg.DailyCron = strings.TrimSpace(cron)
	} else {
		cfg.DailyCron = defaultDailyCron
	}

	portValue := getEnv("SERVER_PORT", strconv.Itoa(defaultServerPort))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid SERVER_PORT value: %s", portValue)
	}
	cfg.ServerPort = port

	durations := []struct {
		key      string
		fallback time.Duration
		target   *time.Duration
	}{
		{"SHUTDOWN_GRACE", defaultShutdownGrace, &cfg.ShutdownGrace},
		{"GENERATION_INTERVAL", defaultGenerationInterval, &cfg.GenerationInterval},
		{"INDEXING_INTERVAL", defaultIndexingInterval, &cfg.IndexingInterval},
		{"PACING_MAX_WAIT", defaultPacingMaxWait, &cfg.PacingMaxWait},
	}
	for _, d := range durations {
		value, err := getDuration(d.key, d.fallback)
		if err != nil {
			return nil, err
		}
		*d.target = value
	}

	rpsValue := getEnv("RATE_LIMIT_RPS", strconv.Itoa(defaultRateLimitRPS))
	rps, err := strconv.ParseFloat(rpsValue, 64)
	if err != nil || rps <= 0 {
		return nil, eris.Errorf("invalid RATE_LIMIT_RPS value: %s", rpsValue)
	}
	cfg.RateLimitRPS = rps

	burstValue := getEnv("RATE_LIMIT_BURST", strconv.Itoa(defaultRateLimitBurst))
	burst, err := strconv.Atoi(burstValue)
	if err != nil || burst <= 0 {
		return nil, eris.Errorf("invalid RATE_LIMIT_BURST value: %s", burstValue)
	}
	cfg.RateLimitBurst = burst

	if cfg.EnableSourceExtraction, err = getBool("ENABLE_SOURCE_EXTRACTION"); err != nil {
		return nil, err
	}
	if cfg.RequireProviders, err = getBool("REQUIRE_PROVIDERS"); err != nil {
		return nil, err
	}

	if feedsJSON := os.Getenv("NEWS_FEEDS"); feedsJSON != "" {
		feeds, err := parseFeeds(feedsJSON)
		if err != nil {
			return nil, eris.Wrap(err, "parsing NEWS_FEEDS")
		}
		cfg.NewsFeeds = feeds
	}

	if raw := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); raw != "" {
		account, err := loadServiceAccount(raw)
		if err != nil {
			return nil, eris.Wrap(err, "loading GOOGLE_SERVICE_ACCOUNT_JSON")
		}
		cfg.GoogleServiceAccount = account
	}

	if cfg.RequireProviders {
		if err := cfg.ValidateProviders(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// ValidateProviders reports the first provider credential that is missing.
func (c *Config) ValidateProviders() error {
	required := []struct {
		name  string
		value bool
	}{
		{"LLM_API_KEY", c.LLMAPIKey != ""},
		{"NEWS_API_KEY or NEWS_FEEDS", c.NewsAPIKey != "" || len(c.NewsFeeds) > 0},
		{"PEXELS_API_KEY", c.PexelsAPIKey != ""},
		{"GOOGLE_SERVICE_ACCOUNT_JSON", len(c.GoogleServiceAccount) > 0},
	}
	for _, r := range required {
		if !r.value {
			return eris.Errorf("%s is required", r.name)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	if value < 0 {
		return 0, eris.Errorf("invalid %s value: %s", key, raw)
	}
	return value, nil
}

func getBool(key string) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	return value, nil
}

func parseFeeds(raw string) (map[string][]string, error) {
	// Accept a category → URL list object, or a flat array applied to every category.
	var byCategory map[string][]string
	if err := json.Unmarshal([]byte(raw), &byCategory); err == nil {
		if len(byCategory) == 0 {
			return nil, eris.New("feeds object is empty")
		}
		return byCategory, nil
	}

	var shared []string
	if err := json.Unmarshal([]byte(raw), &shared); err != nil {
		return nil, eris.Wrap(err, "decoding JSON")
	}
	if len(shared) == 0 {
		return nil, eris.New("feeds list is empty")
	}

	return map[string][]string{"*": shared}, nil
}

func loadServiceAccount(raw string) ([]byte, error) {
	if strings.HasPrefix(raw, "{") {
		return []byte(raw), nil
	}

	data, err := os.ReadFile(raw)
	if err != nil {
		return nil, eris.Wrapf(err, "reading service account file %s", raw)
	}
	return data, nil
}
