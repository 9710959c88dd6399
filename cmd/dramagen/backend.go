package main

import (
	"context"
	"fmt"
	"time"

	"dramagen/internal/config"
	"dramagen/internal/generation"
	"dramagen/internal/services"
	"dramagen/internal/services/gemini"
	"dramagen/internal/services/llm"
)

// backendFactory builds a generation backend for one provider.
type backendFactory func(ctx context.Context, cfg *config.Config) (generation.Backend, error)

// modelNamer is implemented by backends that report their effective model.
type modelNamer interface {
	Model() string
}

var backendFactories = map[string]backendFactory{
	config.ProviderOpenRouter: newChatBackend,
	config.ProviderOpenAI:     newChatBackend,
	config.ProviderGemini:     newGeminiBackend,
}

func newBackend(ctx context.Context, cfg *config.Config) (generation.Backend, error) {
	factory, ok := backendFactories[cfg.LLM.Provider]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "backend", fmt.Sprintf("unsupported provider %q", cfg.LLM.Provider), nil)
	}
	if cfg.LLM.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "backend",
			fmt.Sprintf("missing API key for %s: set llm.api_key or export %s", cfg.LLM.Provider, cfg.APIKeyEnv()), nil)
	}
	backend, err := factory(ctx, cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "backend", "create backend", err)
	}
	return backend, nil
}

func newChatBackend(_ context.Context, cfg *config.Config) (generation.Backend, error) {
	return llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		MaxToolRounds:  cfg.LLM.MaxToolRounds,
		Temperature:    cfg.LLM.Temperature,
	},
		llm.WithRetryMaxAttempts(cfg.LLM.RetryAttempts),
		llm.WithRetryBackoff(time.Second, 10*time.Second),
	), nil
}

func newGeminiBackend(ctx context.Context, cfg *config.Config) (generation.Backend, error) {
	return gemini.NewClient(ctx, gemini.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		MaxToolRounds:  cfg.LLM.MaxToolRounds,
		Temperature:    cfg.LLM.Temperature,
	}, gemini.WithRetryMaxAttempts(cfg.LLM.RetryAttempts))
}
