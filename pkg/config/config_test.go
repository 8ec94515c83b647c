package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MENU_API_TOKEN", "test-token")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIBaseURL != "https://api.foodics.com/v5/" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.Currency != "EGP" {
		t.Errorf("Currency = %q", cfg.Currency)
	}
	if cfg.CacheTTL != 5*time.Hour {
		t.Errorf("CacheTTL = %v, want 5h", cfg.CacheTTL)
	}
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("MENU_API_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Error("missing token must be a fatal configuration error")
	}
}

func TestLoad_CustomTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MENU_CACHE_TTL", "90m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CacheTTL != 90*time.Minute {
		t.Errorf("CacheTTL = %v, want 90m", cfg.CacheTTL)
	}
}

func TestLoad_InvalidTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MENU_CACHE_TTL", "five hours")

	if _, err := Load(); err == nil {
		t.Error("invalid TTL must error")
	}
}

func TestLoadOverrides_MergesHiddenFiles(t *testing.T) {
	setRequiredEnv(t)
	dir := t.TempDir()

	categoriesPath := filepath.Join(dir, "hidden_categories.json")
	productsPath := filepath.Join(dir, "hidden_products.json")
	if err := os.WriteFile(categoriesPath, []byte(`["c1"]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(productsPath, []byte(`["p1","p2"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MENU_HIDDEN_CATEGORIES_FILE", categoriesPath)
	t.Setenv("MENU_HIDDEN_PRODUCTS_FILE", productsPath)
	t.Setenv("MENU_OVERRIDES_FILE", filepath.Join(dir, "absent.json"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	overrides, err := cfg.LoadOverrides()
	if err != nil {
		t.Fatalf("LoadOverrides failed: %v", err)
	}

	if !overrides.HiddenCategories["c1"] {
		t.Error("c1 should be hidden")
	}
	if !overrides.HiddenProducts["p1"] || !overrides.HiddenProducts["p2"] {
		t.Error("products should be hidden")
	}
}

func TestLoadOverrides_MissingFilesAreEmpty(t *testing.T) {
	setRequiredEnv(t)
	dir := t.TempDir()
	t.Setenv("MENU_OVERRIDES_FILE", filepath.Join(dir, "a.json"))
	t.Setenv("MENU_HIDDEN_CATEGORIES_FILE", filepath.Join(dir, "b.json"))
	t.Setenv("MENU_HIDDEN_PRODUCTS_FILE", filepath.Join(dir, "c.json"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := cfg.LoadOverrides(); err != nil {
		t.Errorf("missing override files should not error, got %v", err)
	}
}
