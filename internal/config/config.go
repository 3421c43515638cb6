package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Platform     string
	CSVPath      string
	PostedDBPath string
	LastRunPath  string
	MaxPostChars int
	HealthPort   string

	GeminiAPIKey string
	GeminiModel  string

	ThreadsUserID      string
	ThreadsAccessToken string
	TwitterAccessToken string

	SlickDealsKeywords []string
	DealNewsCategories []string
}

func Load() (*Config, error) {
	// Missing .env is fine; real environments set vars directly.
	_ = godotenv.Load()

	platform := strings.ToLower(os.Getenv("PLATFORM"))
	if platform == "" {
		platform = "threads"
	}
	if platform != "threads" && platform != "twitter" {
		return nil, fmt.Errorf("invalid PLATFORM %q: must be threads or twitter", platform)
	}

	maxPostChars := 500
	if v := os.Getenv("MAX_POST_CHARS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_POST_CHARS %q: %w", v, err)
		}
		maxPostChars = parsed
	}

	csvPath := os.Getenv("PRODUCTS_CSV")
	if csvPath == "" {
		csvPath = "products.csv"
	}

	postedDB := os.Getenv("POSTED_DB")
	if postedDB == "" {
		postedDB = "posted.json"
	}

	lastRun := os.Getenv("LAST_RUN_FILE")
	if lastRun == "" {
		lastRun = "last_run.txt"
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-2.0-flash"
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		slog.Info("GEMINI_API_KEY not set, posts will use the template composer")
	}

	dealNewsCategories := splitList(os.Getenv("DEALNEWS_CATEGORIES"))
	if len(dealNewsCategories) == 0 {
		dealNewsCategories = []string{"electronics"}
	}

	return &Config{
		Platform:           platform,
		CSVPath:            csvPath,
		PostedDBPath:       postedDB,
		LastRunPath:        lastRun,
		MaxPostChars:       maxPostChars,
		HealthPort:         os.Getenv("HEALTH_PORT"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        geminiModel,
		ThreadsUserID:      os.Getenv("THREADS_USER_ID"),
		ThreadsAccessToken: os.Getenv("THREADS_ACCESS_TOKEN"),
		TwitterAccessToken: os.Getenv("TWITTER_ACCESS_TOKEN"),
		SlickDealsKeywords: splitList(os.Getenv("SLICKDEALS_KEYWORDS")),
		DealNewsCategories: dealNewsCategories,
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
