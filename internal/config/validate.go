package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are not checked
// here; commands that talk to a backend check them before the first request.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLLM() error {
	if !slices.Contains(Providers(), c.LLM.Provider) {
		return fmt.Errorf("llm.provider must be one of %s (got %q)", strings.Join(Providers(), ", "), c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set")
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if c.LLM.RetryAttempts <= 0 {
		return errors.New("llm.retry_attempts must be positive")
	}
	if c.LLM.MaxToolRounds < 0 {
		return errors.New("llm.max_tool_rounds must not be negative")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return nil
}

// ValidateEpisodes checks the requested season length.
func ValidateEpisodes(episodes int) error {
	if episodes < 1 || episodes > 100 {
		return fmt.Errorf("episodes must be between 1 and 100 (got %d)", episodes)
	}
	return nil
}

// ValidateMinutes checks the requested episode duration.
func ValidateMinutes(minutes int) error {
	if minutes < 3 || minutes > 30 {
		return fmt.Errorf("minutes must be between 3 and 30 (got %d)", minutes)
	}
	return nil
}

// ValidateFailurePolicy checks a failure policy name.
func ValidateFailurePolicy(policy string) error {
	if policy != FailurePolicyAbort && policy != FailurePolicyIsolate {
		return fmt.Errorf("failure policy must be %q or %q (got %q)", FailurePolicyAbort, FailurePolicyIsolate, policy)
	}
	return nil
}

// ValidateFormat checks an output format name.
func ValidateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("format must be one of text, json, yaml (got %q)", format)
	}
}

func (c *Config) validatePipeline() error {
	p := c.Pipeline
	if err := ValidateEpisodes(p.Episodes); err != nil {
		return fmt.Errorf("pipeline.%w", err)
	}
	if err := ValidateMinutes(p.Minutes); err != nil {
		return fmt.Errorf("pipeline.%w", err)
	}
	if p.Expand < 0 {
		return errors.New("pipeline.expand must not be negative")
	}
	if p.Concurrency < 1 {
		return errors.New("pipeline.concurrency must be at least 1")
	}
	if p.Pacing != "fast" && p.Pacing != "punchy" {
		return fmt.Errorf("pipeline.pacing must be fast or punchy (got %q)", p.Pacing)
	}
	if err := ValidateFailurePolicy(p.FailurePolicy); err != nil {
		return fmt.Errorf("pipeline.%w", err)
	}
	if err := ValidateFormat(p.Format); err != nil {
		return fmt.Errorf("pipeline.%w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
