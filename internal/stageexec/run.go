package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"dramagen/internal/logging"
	"dramagen/internal/services"
)

// Handler is the stage contract used by the execution helper.
type Handler interface {
	Execute(ctx context.Context, logger *slog.Logger) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, logger *slog.Logger) error

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, logger *slog.Logger) error {
	return f(ctx, logger)
}

// Options controls stage execution.
type Options struct {
	Logger    *slog.Logger
	Handler   Handler
	StageName string
	// Attrs are attached to the start, completion, and failure lines.
	Attrs []slog.Attr
	// Now overrides the clock for tests.
	Now func() time.Time
}

// Run executes one pipeline stage with stage-scoped context and lifecycle logging.
func Run(ctx context.Context, opts Options) error {
	if opts.Handler == nil {
		return services.Wrap(services.ErrConfiguration, opts.StageName, "run", fmt.Sprintf("stage handler unavailable: %s", opts.StageName), nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	stageCtx := services.WithStage(ctx, opts.StageName)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)
	if len(opts.Attrs) > 0 {
		stageLogger = stageLogger.With(logging.Args(opts.Attrs...)...)
	}

	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("stage_label", StageLabel(opts.StageName)),
	)
	started := now()

	if err := stageCtx.Err(); err != nil {
		return handleFailure(stageLogger, opts.StageName, services.Wrap(services.ErrCanceled, opts.StageName, "run", "stage canceled before start", err))
	}
	if err := opts.Handler.Execute(stageCtx, stageLogger); err != nil {
		if errors.Is(err, context.Canceled) && !errors.Is(err, services.ErrCanceled) {
			err = services.Wrap(services.ErrCanceled, opts.StageName, "run", "stage canceled", err)
		}
		return handleFailure(stageLogger, opts.StageName, err)
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", now().Sub(started)),
	)
	return nil
}

func handleFailure(logger *slog.Logger, stageName string, stageErr error) error {
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = "stage failed"
	}
	logger.Error(
		"stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_kind", services.Kind(stageErr)),
		logging.String("error_message", message),
		logging.String(logging.FieldErrorHint, failureHint(stageErr)),
		logging.Error(stageErr),
	)
	return stageErr
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, services.ErrValidation):
		return "the backend returned output that does not match the contract; retry or switch models"
	case errors.Is(err, services.ErrConfiguration):
		return "check the config file and API key environment variables"
	case errors.Is(err, services.ErrCanceled):
		return "run was interrupted"
	default:
		return "check backend connectivity and credentials"
	}
}

// StageLabel turns a stage identifier such as "episode_expansion" into
// "Episode Expansion".
func StageLabel(stage string) string {
	if stage == "" {
		return ""
	}
	parts := strings.Fields(strings.ReplaceAll(stage, "_", " "))
	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
