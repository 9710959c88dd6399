// Package gemini implements the generation backend contract on top of the
// Google Gen AI SDK.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"dramagen/internal/services/llm"
)

const (
	// DefaultModel is used when the configuration leaves the model blank.
	DefaultModel = "gemini-2.5-flash"

	defaultHTTPTimeout   = 60 * time.Second
	defaultRetryAttempts = 3
	defaultMaxToolRounds = 6
	jsonMIMEType         = "application/json"
)

// Config captures the runtime settings required to talk to Gemini.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	MaxToolRounds  int
	Temperature    float64
}

// Client completes requests with the Gemini API.
type Client struct {
	cfg    Config
	models *genai.Models

	httpClient       *http.Client
	retryMaxAttempts int
	backoff          llm.Backoff
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
		c.backoff = llm.Backoff{Base: baseDelay, Max: maxDelay}
	}
}

// WithSleeper overrides how retry sleeps are performed.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a Gemini backend.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = defaultMaxToolRounds
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	client := &Client{
		cfg:              cfg,
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		backoff:          llm.DefaultBackoff(),
	}
	for _, opt := range opts {
		opt(client)
	}

	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  client.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	client.models = sdk.Models
	return client, nil
}

// Model reports the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete runs one exchange and returns the model's final text. Function
// calls naming a tool in req.Tools are executed and answered before the
// conversation is resent.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	systemPrompt := strings.TrimSpace(req.SystemPrompt)
	userPrompt := strings.TrimSpace(req.UserPrompt)
	if systemPrompt == "" {
		return "", errors.New("gemini complete: system prompt required")
	}
	if userPrompt == "" {
		return "", errors.New("gemini complete: user prompt required")
	}

	contents := []*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)}
	declarations := functionDeclarations(req.Tools)

	for round := 0; ; round++ {
		offerTools := len(declarations) > 0 && round < c.cfg.MaxToolRounds
		config := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		}
		if c.cfg.Temperature > 0 {
			config.Temperature = genai.Ptr(float32(c.cfg.Temperature))
		}
		if offerTools {
			config.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
		} else {
			config.ResponseMIMEType = jsonMIMEType
		}

		resp, err := c.generateWithRetry(ctx, contents, config)
		if err != nil {
			return "", err
		}

		calls := resp.FunctionCalls()
		if !offerTools || !callsAny(req, calls) {
			text := strings.TrimSpace(resp.Text())
			if text == "" && len(calls) > 0 {
				if args, err := json.Marshal(calls[0].Args); err == nil {
					text = string(args)
				}
			}
			return text, nil
		}

		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			contents = append(contents, resp.Candidates[0].Content)
		}
		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			part := genai.NewPartFromFunctionResponse(call.Name, runTool(req, call))
			part.FunctionResponse.ID = call.ID
			parts = append(parts, part)
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}
}

func (c *Client) generateWithRetry(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	attempts := c.retryMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.models.GenerateContent(ctx, c.cfg.Model, contents, config)
		if err == nil && resp != nil && (strings.TrimSpace(resp.Text()) != "" || len(resp.FunctionCalls()) > 0) {
			return resp, nil
		}
		if err == nil {
			err = errors.New("gemini response contained no text")
		} else if !retryable(err) {
			return nil, fmt.Errorf("gemini generate: %w", err)
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if sleepErr := llm.Sleep(ctx, c.backoff.Delay(attempt), c.sleeper); sleepErr != nil {
			return nil, sleepErr
		}
	}
	return nil, fmt.Errorf("gemini generate: %w", lastErr)
}

func retryable(err error) bool {
	if status, ok := apiStatus(err); ok {
		return llm.RetryableStatus(status)
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func apiStatus(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}

func functionDeclarations(tools []llm.Tool) []*genai.FunctionDeclaration {
	if len(tools) == 0 {
		return nil
	}
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		params := &genai.Schema{
			Type:       genai.TypeObject,
			Properties: make(map[string]*genai.Schema, len(tool.Params)),
		}
		for _, p := range tool.Params {
			params.Properties[p.Name] = &genai.Schema{
				Type:        schemaType(p.Type),
				Description: p.Description,
			}
			if p.Required {
				params.Required = append(params.Required, p.Name)
			}
		}
		out = append(out, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  params,
		})
	}
	return out
}

func schemaType(name string) genai.Type {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

func callsAny(req llm.Request, calls []*genai.FunctionCall) bool {
	for _, call := range calls {
		if _, ok := req.FindTool(call.Name); ok {
			return true
		}
	}
	return false
}

func runTool(req llm.Request, call *genai.FunctionCall) map[string]any {
	tool, ok := req.FindTool(call.Name)
	if !ok || tool.Call == nil {
		return map[string]any{"error": fmt.Sprintf("unknown tool %q", call.Name)}
	}
	args, err := json.Marshal(call.Args)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	out, err := tool.Call(args)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	var decoded any
	if json.Unmarshal([]byte(out), &decoded) == nil {
		return map[string]any{"result": decoded}
	}
	return map[string]any{"result": out}
}
