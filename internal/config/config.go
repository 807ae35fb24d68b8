package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	ListenAddr string
	LogLevel   string

	DatabaseURL   string
	ScrapeWorkers int

	PlacesBaseURL string
	PlacesAPIKey  string
	GeocodeURL    string
	RegistryURL   string

	// Pacing between successive detail fetches within one work item, and
	// between successive work items. Kept under unpublished provider limits.
	DetailDelay   time.Duration
	WorkItemDelay time.Duration

	// Hard cap on listings drained from text-search pagination.
	MaxListingsPerQuery int

	// Checkpoint every K localities.
	CheckpointEvery int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		_, err := fmt.Sscanf(v, "%d", &out)
		if err == nil {
			return out
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:        getenv("APP_ENV", "development"),
		ListenAddr: getenv("LISTEN_ADDR", ":8080"),
		LogLevel:   getenv("LOG_LEVEL", "info"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		ScrapeWorkers: getenvInt("SCRAPE_WORKERS", 1),

		PlacesBaseURL: getenv("PLACES_BASE_URL", "https://places.example.com/api"),
		PlacesAPIKey:  os.Getenv("PLACES_API_KEY"),
		GeocodeURL:    getenv("GEOCODE_BASE_URL", "https://api-adresse.data.gouv.fr"),
		RegistryURL:   getenv("REGISTRY_BASE_URL", "https://recherche-entreprises.api.gouv.fr"),

		DetailDelay:         getenvDuration("DETAIL_DELAY", 300*time.Millisecond),
		WorkItemDelay:       getenvDuration("WORK_ITEM_DELAY", 800*time.Millisecond),
		MaxListingsPerQuery: getenvInt("MAX_LISTINGS_PER_QUERY", 60),
		CheckpointEvery:     getenvInt("CHECKPOINT_EVERY", 3),
	}
	if cfg.DatabaseURL == "" {
		// Not fatal for early local runs; warn via error value so callers can decide.
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}
