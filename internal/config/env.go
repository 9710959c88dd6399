package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envOverrides lists the environment variables that take precedence over
// file values.
type envOverrides struct {
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	Provider         string `env:"DRAMAGEN_PROVIDER"`
	Model            string `env:"DRAMAGEN_MODEL"`
	BaseURL          string `env:"DRAMAGEN_BASE_URL"`
	LogLevel         string `env:"DRAMAGEN_LOG_LEVEL"`
}

func (o envOverrides) apiKey(provider string) string {
	switch provider {
	case ProviderOpenRouter:
		return o.OpenRouterAPIKey
	case ProviderOpenAI:
		return o.OpenAIAPIKey
	case ProviderGemini:
		return o.GeminiAPIKey
	default:
		return ""
	}
}

// loadDotEnv loads KEY=value pairs from path without replacing variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	overrides, err := env.ParseAs[envOverrides]()
	if err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if value := strings.TrimSpace(overrides.Provider); value != "" {
		c.LLM.Provider = value
	}
	if value := strings.TrimSpace(overrides.Model); value != "" {
		c.LLM.Model = value
	}
	if value := strings.TrimSpace(overrides.BaseURL); value != "" {
		c.LLM.BaseURL = value
	}
	if value := strings.TrimSpace(overrides.LogLevel); value != "" {
		c.Logging.Level = value
	}
	provider := strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if value := strings.TrimSpace(overrides.apiKey(provider)); value != "" {
		c.LLM.APIKey = value
	}
	return nil
}
