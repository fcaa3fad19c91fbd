package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Source is one feed endpoint. The list is fixed at startup.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

type Config struct {
	// Feed settings
	SourcesConfigPath    string
	Sources              []Source
	MaxArticlesPerSource int
	FinalArticleCount    int

	// Cache settings
	CacheTTL        time.Duration
	RefreshInterval time.Duration

	// Transport settings
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	// Gemini settings
	GeminiAPIKey       string
	GeminiModel        string
	GeminiMaxTokens    int32
	GeminiTemperature  float32
	MaxDailyAIRequests int
	SummariesDisabled  bool

	// Scrape enrichment (off by default)
	ScrapeFullContent bool
	ScrapeConcurrency int
	ScrapeMaxArticles int

	// App settings
	Port  string
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		SourcesConfigPath:    getEnvOrDefault("SOURCES_CONFIG_PATH", "configs/sources.yaml"),
		MaxArticlesPerSource: getEnvIntOrDefault("MAX_ARTICLES_PER_SOURCE", 6),
		FinalArticleCount:    getEnvIntOrDefault("FINAL_ARTICLE_COUNT", 15),
		CacheTTL:             time.Duration(getEnvIntOrDefault("CACHE_TTL_SECONDS", 600)) * time.Second,
		RequestTimeout:       getEnvDurationOrDefault("REQUEST_TIMEOUT", 15*time.Second),
		RetryAttempts:        getEnvIntOrDefault("RETRY_ATTEMPTS", 2),
		RetryDelay:           getEnvDurationOrDefault("RETRY_DELAY", 2*time.Second),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiMaxTokens:      int32(getEnvIntOrDefault("GEMINI_MAX_TOKENS", 2048)),
		MaxDailyAIRequests:   getEnvIntOrDefault("MAX_DAILY_AI_REQUESTS", 200),
		SummariesDisabled:    os.Getenv("SUMMARIES_DISABLED") == "true",
		ScrapeFullContent:    os.Getenv("SCRAPE_FULL_CONTENT") == "true",
		ScrapeConcurrency:    getEnvIntOrDefault("SCRAPE_CONCURRENCY", 4),
		ScrapeMaxArticles:    getEnvIntOrDefault("SCRAPE_MAX_ARTICLES", 5),
		Port:                 getEnvOrDefault("PORT", "8080"),
		Debug:                os.Getenv("DEBUG") == "true",
	}

	cfg.GeminiTemperature = 0.3
	if v := os.Getenv("GEMINI_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 {
			cfg.GeminiTemperature = float32(f)
		}
	}

	// Proactive refresh defaults to the freshness window itself.
	cfg.RefreshInterval = getEnvDurationOrDefault("REFRESH_INTERVAL", cfg.CacheTTL)

	sources, err := LoadSources(cfg.SourcesConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}
	cfg.Sources = sources

	return cfg, cfg.Validate()
}

// LoadSources reads the feed endpoint list from a YAML file:
//
//	sources:
//	  - name: BBC News
//	    url: https://...
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sf sourcesFile
	if err := yaml.NewDecoder(f).Decode(&sf); err != nil {
		return nil, err
	}
	return sf.Sources, nil
}

func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one feed source is required")
	}
	for _, s := range c.Sources {
		if s.Name == "" || s.URL == "" {
			return fmt.Errorf("feed source needs both name and url (name=%q url=%q)", s.Name, s.URL)
		}
	}
	if c.GeminiAPIKey == "" && !c.SummariesDisabled {
		return fmt.Errorf("GEMINI_API_KEY is required (or set SUMMARIES_DISABLED=true)")
	}
	if c.MaxArticlesPerSource <= 0 || c.FinalArticleCount <= 0 {
		return fmt.Errorf("article limits must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
