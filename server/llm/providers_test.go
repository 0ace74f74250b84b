package llm

import (
	"strings"
	"testing"
)

func TestResolveDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")
	cfg, err := Resolve("groq", "", "", "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Model != "openai/gpt-oss-120b" {
		t.Fatalf("unexpected default model: %q", cfg.Model)
	}
	if cfg.BaseURL != "https://api.groq.com/openai/v1" {
		t.Fatalf("unexpected base URL: %q", cfg.BaseURL)
	}
	if cfg.APIKey != "test-key" {
		t.Fatalf("expected key from env, got %q", cfg.APIKey)
	}
}

func TestResolveExplicitOverrides(t *testing.T) {
	cfg, err := Resolve("Gemini", "gemini-2.5-flash", "http://localhost:9999/v1/", "inline-key")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if cfg.Provider != "gemini" {
		t.Fatalf("provider not normalized: %q", cfg.Provider)
	}
	if cfg.Model != "gemini-2.5-flash" {
		t.Fatalf("explicit model lost: %q", cfg.Model)
	}
	if cfg.BaseURL != "http://localhost:9999/v1" {
		t.Fatalf("base URL not trimmed: %q", cfg.BaseURL)
	}
	if cfg.APIKey != "inline-key" {
		t.Fatalf("inline key lost: %q", cfg.APIKey)
	}
}

func TestResolveMissingKey(t *testing.T) {
	t.Setenv("CEREBRAS_API_KEY", "")
	_, err := Resolve("cerebras", "", "", "")
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "CEREBRAS_API_KEY") {
		t.Fatalf("error should name the env var, got: %v", err)
	}
}

func TestResolveUnsupportedProvider(t *testing.T) {
	_, err := Resolve("anthropic-direct", "", "", "key")
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestCacheKey(t *testing.T) {
	cfg := Config{Provider: "groq", Model: "m", BaseURL: "https://api.groq.com/openai/v1"}
	if got := cfg.CacheKey(); got != "groq:m:https://api.groq.com/openai/v1" {
		t.Fatalf("unexpected cache key: %q", got)
	}
	cfg.BaseURL = ""
	if got := cfg.CacheKey(); got != "groq:m:default" {
		t.Fatalf("unexpected cache key: %q", got)
	}
}

func TestProvidersCopyIsSafe(t *testing.T) {
	p := Providers()
	p["groq"] = ProviderInfo{Name: "mutated"}
	models := p["openai"].SupportedModels
	if len(models) > 0 {
		models[0] = "mutated"
	}
	if providersConfig["groq"].Name == "mutated" {
		t.Fatal("registry map leaked to callers")
	}
	if providersConfig["openai"].SupportedModels[0] == "mutated" {
		t.Fatal("supported models slice leaked to callers")
	}
}
