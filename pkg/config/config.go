// Package config loads process configuration from the environment, with an
// optional .env file for development.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/orussy/online-menu/pkg/pricing"
)

// Config holds everything the binaries need at startup.
type Config struct {
	// APIBaseURL is the upstream catalog API root.
	APIBaseURL string

	// APIToken is the upstream bearer token. Required.
	APIToken string

	// RedisAddr is the Redis host:port backing the cache store.
	RedisAddr string

	// RedisDB selects the Redis logical database.
	RedisDB int

	// ListenAddr is the HTTP listen address of menu-server.
	ListenAddr string

	// Currency is the display currency suffix, e.g. "EGP".
	Currency string

	// SyncSecret gates the mutating cache admin actions. When empty those
	// actions are disabled entirely.
	SyncSecret string

	// CacheTTL is the catalog cache freshness window.
	CacheTTL time.Duration

	// OverridesFile points at the price-resolution override tables.
	OverridesFile string

	// HiddenCategoriesFile and HiddenProductsFile are standalone JSON id
	// lists merged into the overrides.
	HiddenCategoriesFile string
	HiddenProductsFile   string

	// LogLevel and LogPretty configure zerolog.
	LogLevel  string
	LogPretty bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present. Missing credentials are a fatal
// configuration error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:           getEnv("MENU_API_BASE_URL", "https://api.foodics.com/v5/"),
		APIToken:             os.Getenv("MENU_API_TOKEN"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		ListenAddr:           ":" + getEnv("PORT", "8080"),
		Currency:             getEnv("MENU_CURRENCY", "EGP"),
		SyncSecret:           os.Getenv("MENU_SYNC_SECRET"),
		CacheTTL:             5 * time.Hour,
		OverridesFile:        getEnv("MENU_OVERRIDES_FILE", "overrides.json"),
		HiddenCategoriesFile: getEnv("MENU_HIDDEN_CATEGORIES_FILE", "hidden_categories.json"),
		HiddenProductsFile:   getEnv("MENU_HIDDEN_PRODUCTS_FILE", "hidden_products.json"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogPretty:            getEnv("LOG_PRETTY", "false") == "true",
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", db, err)
		}
		cfg.RedisDB = n
	}

	if ttl := os.Getenv("MENU_CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid MENU_CACHE_TTL %q: %w", ttl, err)
		}
		cfg.CacheTTL = d
	}

	if cfg.APIToken == "" {
		return nil, fmt.Errorf("MENU_API_TOKEN is required")
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("MENU_API_BASE_URL cannot be empty")
	}

	return cfg, nil
}

// LoadOverrides assembles the pricing override tables from the configured
// files. All files are optional.
func (c *Config) LoadOverrides() (pricing.Overrides, error) {
	overrides, err := pricing.LoadOverrides(c.OverridesFile)
	if err != nil {
		return pricing.Overrides{}, err
	}

	hiddenCategories, err := loadIDList(c.HiddenCategoriesFile)
	if err != nil {
		return pricing.Overrides{}, err
	}
	hiddenProducts, err := loadIDList(c.HiddenProductsFile)
	if err != nil {
		return pricing.Overrides{}, err
	}
	overrides.AddHiddenIDs(hiddenCategories, hiddenProducts)

	return overrides, nil
}

// loadIDList reads a JSON array of id strings. A missing file yields nil.
func loadIDList(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read id list: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse id list %s: %w", path, err)
	}
	return ids, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
