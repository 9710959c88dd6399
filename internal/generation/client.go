package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"dramagen/internal/heuristics"
	"dramagen/internal/logging"
	"dramagen/internal/schema"
	"dramagen/internal/services"
	"dramagen/internal/services/llm"
)

const stageName = "generation"

// Backend completes one exchange and returns the raw model output.
type Backend interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, req llm.Request) (string, error)

// Complete calls f.
func (f BackendFunc) Complete(ctx context.Context, req llm.Request) (string, error) {
	return f(ctx, req)
}

// Client validates backend output against schema kinds.
type Client struct {
	backend      Backend
	logger       *slog.Logger
	systemPrompt string
	reprompt     bool
}

// Option customizes the client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCorrectiveReprompt toggles the single corrective retry (on by default).
func WithCorrectiveReprompt(enabled bool) Option {
	return func(c *Client) {
		c.reprompt = enabled
	}
}

// WithSystemPrompt replaces the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) {
		if strings.TrimSpace(prompt) != "" {
			c.systemPrompt = prompt
		}
	}
}

// New constructs a generation client.
func New(backend Backend, opts ...Option) *Client {
	c := &Client{
		backend:      backend,
		systemPrompt: SystemPrompt,
		reprompt:     true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "generation")
	return c
}

// Generate sends prompt to the backend and returns a validated value of the
// requested kind (schema.SeasonBlueprint or schema.EpisodeOutline).
func (c *Client) Generate(ctx context.Context, kind schema.Kind, prompt string, caps heuristics.Capabilities) (any, error) {
	if c == nil || c.backend == nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "generate", "generation backend not configured", nil)
	}
	contract := schema.ContractText(kind)
	if contract == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "generate", fmt.Sprintf("unknown schema kind %q", kind), nil)
	}

	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, c.logger)

	basePrompt := strings.TrimSpace(prompt) + "\n\n" + contract
	req := llm.Request{
		SystemPrompt: c.systemPrompt,
		UserPrompt:   basePrompt,
		Tools:        ToolsFromCapabilities(caps),
	}

	attempts := 1
	if c.reprompt {
		attempts = 2
	}

	var lastErr *schema.ValidationError
	for attempt := 1; attempt <= attempts; attempt++ {
		logger.Debug("generation request",
			logging.String("kind", string(kind)),
			logging.Int("attempt", attempt),
			logging.Int("tools", len(req.Tools)),
		)
		content, err := c.backend.Complete(ctx, req)
		if err != nil {
			return nil, services.Wrap(services.ErrBackend, stageName, "complete", kind.Label()+" request failed", err)
		}

		value, err := schema.Validate([]byte(llm.ExtractJSON(content)), kind)
		if err == nil {
			return value, nil
		}
		var verr *schema.ValidationError
		if !errors.As(err, &verr) {
			return nil, services.Wrap(services.ErrValidation, stageName, "validate", kind.Label()+" could not be validated", err)
		}
		lastErr = verr

		if attempt < attempts {
			logging.WarnWithContext(logger, "generated output rejected; re-prompting", "validation_retry",
				logging.String("kind", string(kind)),
				logging.Int("violations", len(verr.Violations)),
				logging.String(logging.FieldImpact, "one corrective request will be sent"),
			)
			req.UserPrompt = correctivePrompt(basePrompt, content, verr)
		}
	}

	return nil, services.Wrap(services.ErrValidation, stageName, "validate", kind.Label()+" failed validation", lastErr)
}

// GenerateBlueprint generates and validates a season blueprint.
func (c *Client) GenerateBlueprint(ctx context.Context, prompt string, caps heuristics.Capabilities) (schema.SeasonBlueprint, error) {
	value, err := c.Generate(ctx, schema.KindSeasonBlueprint, prompt, caps)
	if err != nil {
		return schema.SeasonBlueprint{}, err
	}
	return value.(schema.SeasonBlueprint), nil
}

// GenerateEpisode generates and validates an episode outline.
func (c *Client) GenerateEpisode(ctx context.Context, prompt string, caps heuristics.Capabilities) (schema.EpisodeOutline, error) {
	value, err := c.Generate(ctx, schema.KindEpisodeOutline, prompt, caps)
	if err != nil {
		return schema.EpisodeOutline{}, err
	}
	return value.(schema.EpisodeOutline), nil
}

// ToolsFromCapabilities exposes capabilities as backend tools whose results
// are JSON encoded.
func ToolsFromCapabilities(caps heuristics.Capabilities) []llm.Tool {
	all := caps.All()
	if len(all) == 0 {
		return nil
	}
	tools := make([]llm.Tool, 0, len(all))
	for _, capability := range all {
		params := make([]llm.ToolParam, 0, len(capability.Params))
		for _, p := range capability.Params {
			params = append(params, llm.ToolParam{
				Name:        p.Name,
				Type:        p.Type,
				Description: p.Description,
				Required:    p.Required,
			})
		}
		tools = append(tools, llm.Tool{
			Name:        capability.Name,
			Description: capability.Description,
			Params:      params,
			Call: func(args json.RawMessage) (string, error) {
				out, err := capability.Invoke(args)
				if err != nil {
					return "", err
				}
				encoded, err := json.Marshal(out)
				if err != nil {
					return "", fmt.Errorf("encode %s result: %w", capability.Name, err)
				}
				return string(encoded), nil
			},
		})
	}
	return tools
}
