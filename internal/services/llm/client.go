package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	jsonResponseType     = "json_object"
	defaultHTTPTimeout   = 60 * time.Second
	defaultRetryAttempts = 3
	defaultMaxToolRounds = 6

	// DefaultBaseURL is the OpenRouter chat completions endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	// OpenAIBaseURL is the OpenAI chat completions endpoint.
	OpenAIBaseURL = "https://api.openai.com/v1/chat/completions"
)

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	MaxToolRounds  int
	Temperature    float64
}

// Client wraps an OpenAI-compatible chat completion API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	backoff          Backoff
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.backoff = Backoff{Base: baseDelay, Max: maxDelay}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs an LLM client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			Referer:        strings.TrimSpace(cfg.Referer),
			Title:          strings.TrimSpace(cfg.Title),
			TimeoutSeconds: cfg.TimeoutSeconds,
			MaxToolRounds:  cfg.MaxToolRounds,
			Temperature:    cfg.Temperature,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		backoff:          DefaultBackoff(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = DefaultBaseURL
	}
	if client.cfg.MaxToolRounds <= 0 {
		client.cfg.MaxToolRounds = defaultMaxToolRounds
	}
	return client
}

// Model reports the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete runs one exchange and returns the model's final content. Tool
// calls naming a tool in req.Tools are executed and answered before the
// request is resent.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	systemPrompt := strings.TrimSpace(req.SystemPrompt)
	userPrompt := strings.TrimSpace(req.UserPrompt)
	if systemPrompt == "" {
		return "", errors.New("llm complete: system prompt required")
	}
	if userPrompt == "" {
		return "", errors.New("llm complete: user prompt required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("llm complete: api key required")
	}

	messages := []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}
	tools := chatTools(req.Tools)

	for round := 0; ; round++ {
		payload := chatCompletionRequest{
			Model:          c.cfg.Model,
			Messages:       messages,
			Temperature:    c.cfg.Temperature,
			ResponseFormat: map[string]string{"type": jsonResponseType},
		}
		toolsOpen := len(tools) > 0 && round < c.cfg.MaxToolRounds
		if toolsOpen {
			payload.Tools = tools
			payload.ToolChoice = "auto"
		}

		reply, err := c.exchangeWithRetry(ctx, payload, "llm complete")
		if err != nil {
			return "", err
		}
		if !toolsOpen || !reply.callsAny(req) {
			if reply.Content == "" {
				return "", fmt.Errorf("llm complete: no content after %d tool rounds", round)
			}
			return reply.Content, nil
		}

		messages = append(messages, chatMessage{
			Role:      "assistant",
			Content:   reply.Text,
			ToolCalls: reply.ToolCalls,
		})
		for _, call := range reply.ToolCalls {
			messages = append(messages, chatMessage{
				Role:       "tool",
				ToolCallID: call.ID,
				Name:       call.Function.Name,
				Content:    runTool(req, call),
			})
		}
	}
}

func runTool(req Request, call toolCall) string {
	tool, ok := req.FindTool(call.Function.Name)
	if !ok || tool.Call == nil {
		return fmt.Sprintf(`{"error":"unknown tool %q"}`, call.Function.Name)
	}
	result, err := tool.Call([]byte(call.Function.Arguments))
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return result
}

func chatTools(tools []Tool) []chatTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]chatTool, 0, len(tools))
	for _, tool := range tools {
		out = append(out, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.ParameterSchema(),
			},
		})
	}
	return out
}
