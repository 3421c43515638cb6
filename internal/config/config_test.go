package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PLATFORM", "")
	t.Setenv("MAX_POST_CHARS", "")
	t.Setenv("PRODUCTS_CSV", "")
	t.Setenv("DEALNEWS_CATEGORIES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Platform != "threads" {
		t.Errorf("Expected default platform threads, got %s", cfg.Platform)
	}
	if cfg.MaxPostChars != 500 {
		t.Errorf("Expected default MaxPostChars 500, got %d", cfg.MaxPostChars)
	}
	if cfg.CSVPath != "products.csv" {
		t.Errorf("Expected default CSV path products.csv, got %s", cfg.CSVPath)
	}
	if cfg.PostedDBPath != "posted.json" {
		t.Errorf("Expected default posted DB posted.json, got %s", cfg.PostedDBPath)
	}
	if len(cfg.DealNewsCategories) != 1 || cfg.DealNewsCategories[0] != "electronics" {
		t.Errorf("Expected default DealNews category [electronics], got %v", cfg.DealNewsCategories)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PLATFORM", "Twitter")
	t.Setenv("MAX_POST_CHARS", "280")
	t.Setenv("SLICKDEALS_KEYWORDS", "laptop, gpu ,monitor")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Platform != "twitter" {
		t.Errorf("Expected platform twitter, got %s", cfg.Platform)
	}
	if cfg.MaxPostChars != 280 {
		t.Errorf("Expected MaxPostChars 280, got %d", cfg.MaxPostChars)
	}
	want := []string{"laptop", "gpu", "monitor"}
	if len(cfg.SlickDealsKeywords) != len(want) {
		t.Fatalf("Expected %d keywords, got %v", len(want), cfg.SlickDealsKeywords)
	}
	for i, kw := range want {
		if cfg.SlickDealsKeywords[i] != kw {
			t.Errorf("Keyword %d: expected %q, got %q", i, kw, cfg.SlickDealsKeywords[i])
		}
	}
}

func TestLoad_InvalidPlatform(t *testing.T) {
	t.Setenv("PLATFORM", "myspace")

	if _, err := Load(); err == nil {
		t.Error("Load() should return error for unknown PLATFORM")
	}
}

func TestLoad_InvalidMaxPostChars(t *testing.T) {
	t.Setenv("PLATFORM", "")
	t.Setenv("MAX_POST_CHARS", "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("Load() should return error for invalid MAX_POST_CHARS")
	}
}
