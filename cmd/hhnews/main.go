package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Hunterhghs/HHeuristics-News/internal/app"
	"github.com/Hunterhghs/HHeuristics-News/internal/cache"
	"github.com/Hunterhghs/HHeuristics-News/internal/config"
	"github.com/Hunterhghs/HHeuristics-News/internal/fetch"
	"github.com/Hunterhghs/HHeuristics-News/internal/gemini"
	"github.com/Hunterhghs/HHeuristics-News/internal/logger"
	"github.com/Hunterhghs/HHeuristics-News/internal/metrics"
	"github.com/Hunterhghs/HHeuristics-News/internal/news"
	"github.com/Hunterhghs/HHeuristics-News/internal/ratelimit"
	"github.com/Hunterhghs/HHeuristics-News/internal/scraper"
	"github.com/Hunterhghs/HHeuristics-News/internal/summarize"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var gen summarize.TextGenerator
	if !cfg.SummariesDisabled {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiMaxTokens, cfg.GeminiTemperature)
		if err != nil {
			// Summaries are best-effort; the aggregator still serves
			// plain feed descriptions without them.
			logger.Error("gemini init failed, continuing without summaries", "error", err)
		} else {
			gen = client
			defer client.Close()
		}
	}

	fetcher := fetch.New(cfg.RequestTimeout, cfg.RetryAttempts, cfg.RetryDelay)
	summarizer := summarize.New(gen, ratelimit.New(cfg.MaxDailyAIRequests))

	var extractor *scraper.Extractor
	if cfg.ScrapeFullContent {
		extractor = scraper.New(cfg.RequestTimeout, cfg.ScrapeConcurrency, cfg.ScrapeMaxArticles)
	}

	pipeline := app.NewPipeline(cfg, fetcher, summarizer, extractor)
	store := cache.New(cfg.CacheTTL, pipeline.Generate)

	go refreshLoop(ctx, store, cfg.RefreshInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/news", newsHandler(store))
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler)
	mux.HandleFunc("/robots.txt", robotsHandler)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "sources", len(cfg.Sources))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// refreshLoop proactively regenerates the cached batch so request
// handlers mostly hit a warm cache.
func refreshLoop(ctx context.Context, store *cache.NewsCache, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Refresh(ctx); err != nil {
				logger.Warn("background refresh failed", "error", err)
			}
		}
	}
}

type apiResponse struct {
	GeneratedAt string         `json:"generatedAt"`
	TTLSeconds  int            `json:"ttlSeconds"`
	Articles    []news.Article `json:"articles"`
}

func newsHandler(store *cache.NewsCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch := store.Current(r.Context())

		articles := batch.Articles
		if articles == nil {
			articles = []news.Article{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(apiResponse{
			GeneratedAt: batch.GeneratedAt.UTC().Format(time.RFC3339),
			TTLSeconds:  int(batch.TTL.Seconds()),
			Articles:    articles,
		})
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}

func robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("User-agent: *\nDisallow:\n"))
}
