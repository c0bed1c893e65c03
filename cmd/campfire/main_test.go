package main

import (
	"testing"

	"campfire/internal/app"
)

func TestApplyEnvOverrides_BaseURL(t *testing.T) {
	t.Setenv("CAMPFIRE_BASE_URL", "https://staging.example.test")

	cfg := app.DefaultConfig()
	applyEnvOverrides(&cfg)

	if cfg.BaseURL != "https://staging.example.test" {
		t.Fatalf("BaseURL = %q, want env override", cfg.BaseURL)
	}
}

func TestApplyEnvOverrides_EmptyEnvKeepsConfig(t *testing.T) {
	t.Setenv("CAMPFIRE_BASE_URL", "")
	t.Setenv("CAMPFIRE_TITLE", "")

	cfg := app.DefaultConfig()
	want := cfg.BaseURL
	applyEnvOverrides(&cfg)

	if cfg.BaseURL != want {
		t.Fatalf("BaseURL = %q, want unchanged %q", cfg.BaseURL, want)
	}
	if cfg.DefaultTitle != "" {
		t.Fatalf("DefaultTitle = %q, want empty", cfg.DefaultTitle)
	}
}
