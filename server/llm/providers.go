package llm

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// ProviderInfo describes one supported OpenAI-compatible provider.
type ProviderInfo struct {
	Name            string   `json:"name"`
	BaseURL         string   `json:"base_url"`
	DefaultModel    string   `json:"default_model"`
	SupportedModels []string `json:"supported_models"`
	APIKeyEnv       string   `json:"api_key_env"`
	Description     string   `json:"description"`
}

var providersConfig = map[string]ProviderInfo{
	"openai": {
		Name:         "OpenAI",
		BaseURL:      "https://api.openai.com/v1",
		DefaultModel: "gpt-4o-mini",
		SupportedModels: []string{
			"gpt-4o-mini",
			"gpt-4o",
			"gpt-4.1-mini",
		},
		APIKeyEnv:   "OPENAI_API_KEY",
		Description: "OpenAI models",
	},
	"openrouter": {
		Name:         "OpenRouter",
		BaseURL:      "https://openrouter.ai/api/v1",
		DefaultModel: "meta-llama/llama-3.1-70b-instruct",
		SupportedModels: []string{
			"meta-llama/llama-3.1-70b-instruct",
			"anthropic/claude-3.5-sonnet",
			"google/gemini-flash-1.5",
		},
		APIKeyEnv:   "OPENROUTER_API_KEY",
		Description: "OpenRouter model aggregator",
	},
	"gemini": {
		Name:         "Google Gemini",
		BaseURL:      "https://generativelanguage.googleapis.com/v1beta/openai",
		DefaultModel: "gemini-2.5-pro",
		SupportedModels: []string{
			"gemini-2.5-pro",
			"gemma-3-12b-it",
			"gemini-2.5-flash",
		},
		APIKeyEnv:   "GEMINI_API_KEY",
		Description: "Google Gemini models",
	},
	"groq": {
		Name:         "Groq",
		BaseURL:      "https://api.groq.com/openai/v1",
		DefaultModel: "openai/gpt-oss-120b",
		SupportedModels: []string{
			"openai/gpt-oss-120b",
			"openai/gpt-oss-20b",
			"moonshotai/kimi-k2-instruct",
		},
		APIKeyEnv:   "GROQ_API_KEY",
		Description: "Groq fast inference models",
	},
	"cerebras": {
		Name:         "Cerebras",
		BaseURL:      "https://api.cerebras.ai/v1",
		DefaultModel: "qwen-3-235b-a22b-thinking-2507",
		SupportedModels: []string{
			"gpt-oss-120b",
			"qwen-3-235b-a22b-thinking-2507",
			"qwen-3-32b",
			"llama-4-maverick-17b-128e-instruct",
		},
		APIKeyEnv:   "CEREBRAS_API_KEY",
		Description: "Cerebras models",
	},
	"sambanova": {
		Name:         "SambaNova",
		BaseURL:      "https://api.sambanova.ai/v1",
		DefaultModel: "DeepSeek-R1-0528",
		SupportedModels: []string{
			"DeepSeek-R1-0528",
			"Meta-Llama-3.3-70B-Instruct",
			"Llama-4-Maverick-17B-128E-Instruct",
		},
		APIKeyEnv:   "SAMBANOVA_API_KEY",
		Description: "SambaNova Systems offers a full-stack AI platform.",
	},
}

// Providers returns a copy of the registry safe to serialize for clients.
func Providers() map[string]ProviderInfo {
	out := make(map[string]ProviderInfo, len(providersConfig))
	for k, v := range providersConfig {
		models := make([]string, len(v.SupportedModels))
		copy(models, v.SupportedModels)
		v.SupportedModels = models
		out[k] = v
	}
	return out
}

// ProviderNames returns the registry keys, sorted.
func ProviderNames() []string {
	names := make([]string, 0, len(providersConfig))
	for k := range providersConfig {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Config is a fully resolved client configuration.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// Resolve fills in defaults for a provider selection. Model and base URL fall
// back to the registry entry; the API key falls back to the provider's env
// var. A missing key is an error before any network call is made.
func Resolve(provider, model, baseURL, apiKey string) (Config, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	info, ok := providersConfig[provider]
	if !ok {
		return Config{}, fmt.Errorf("unsupported provider %q (supported: %s)", provider, strings.Join(ProviderNames(), ", "))
	}

	cfg := Config{
		Provider: provider,
		Model:    strings.TrimSpace(model),
		BaseURL:  strings.TrimSpace(baseURL),
		APIKey:   strings.TrimSpace(apiKey),
	}
	if cfg.Model == "" {
		cfg.Model = info.DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = info.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv(info.APIKeyEnv))
	}
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("%s API key is required: set %s or pass apiKey", info.Name, info.APIKeyEnv)
	}
	return cfg, nil
}

// CacheKey identifies one client in the process-wide registry.
func (c Config) CacheKey() string {
	base := c.BaseURL
	if base == "" {
		base = "default"
	}
	return fmt.Sprintf("%s:%s:%s", c.Provider, c.Model, base)
}
