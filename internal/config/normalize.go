package config

import (
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeLLM()
	c.normalizePipeline()
	return c.normalizeLogging()
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultProvider
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = providerBaseURLs[c.LLM.Provider]
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = providerModels[c.LLM.Provider]
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.LLM.RetryAttempts == 0 {
		c.LLM.RetryAttempts = defaultRetryAttempts
	}
	if c.LLM.MaxToolRounds == 0 {
		c.LLM.MaxToolRounds = defaultMaxToolRounds
	}
}

func (c *Config) normalizePipeline() {
	p := &c.Pipeline
	p.Genre = strings.TrimSpace(p.Genre)
	if p.Genre == "" {
		p.Genre = defaultGenre
	}
	p.Audience = strings.TrimSpace(p.Audience)
	if p.Audience == "" {
		p.Audience = defaultAudience
	}
	p.Pacing = strings.ToLower(strings.TrimSpace(p.Pacing))
	if p.Pacing == "" {
		p.Pacing = defaultPacing
	}
	if p.Concurrency == 0 {
		p.Concurrency = defaultConcurrency
	}
	p.FailurePolicy = strings.ToLower(strings.TrimSpace(p.FailurePolicy))
	if p.FailurePolicy == "" {
		p.FailurePolicy = defaultFailurePolicy
	}
	p.Output = strings.TrimSpace(p.Output)
	if p.Output == "" {
		p.Output = defaultOutput
	}
	p.Format = strings.ToLower(strings.TrimSpace(p.Format))
	if p.Format == "" {
		p.Format = defaultFormat
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	dir, err := expandPath(strings.TrimSpace(c.Logging.Dir))
	if err != nil {
		return err
	}
	c.Logging.Dir = dir
	return nil
}
