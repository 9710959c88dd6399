package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dramagen/internal/config"
	"dramagen/internal/heuristics"
	"dramagen/internal/logging"
	"dramagen/internal/schema"
	"dramagen/internal/services"
	"dramagen/internal/stageexec"
)

// State is a pipeline lifecycle state.
type State string

const (
	StateNoBlueprint    State = "no_blueprint"
	StateBlueprintReady State = "blueprint_ready"
	StateExpanding      State = "expanding"
	StateCompiled       State = "compiled"
	StateAborted        State = "aborted"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateCompiled || s == StateAborted
}

// Stage names used for logging and error wrapping.
const (
	StageBlueprint = "blueprint"
	StageExpansion = "episode_expansion"
	StageCompile   = "compile"
)

// Failure policies for episode expansion.
const (
	FailurePolicyAbort   = config.FailurePolicyAbort
	FailurePolicyIsolate = config.FailurePolicyIsolate
)

// Generator produces validated schema values. *generation.Client satisfies it.
type Generator interface {
	GenerateBlueprint(ctx context.Context, prompt string, caps heuristics.Capabilities) (schema.SeasonBlueprint, error)
	GenerateEpisode(ctx context.Context, prompt string, caps heuristics.Capabilities) (schema.EpisodeOutline, error)
}

// Request describes the season to generate.
type Request struct {
	Theme    string
	Genre    string
	Audience string
	Episodes int
	Minutes  int
	// Expand is the number of leading episodes to outline. It is clamped to
	// [0, blueprint episode count].
	Expand int
	Pacing string
}

// Result is the outcome of a compiled run.
type Result struct {
	RunID    string
	Package  schema.ScriptPackage
	Expanded int
	Duration time.Duration
}

// Event reports progress to an observer.
type Event struct {
	Stage   string
	Episode int
	Total   int
	Err     error
}

// Option customizes a pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithConcurrency bounds parallel episode expansion. Values below 2 keep
// expansion sequential.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		p.concurrency = n
	}
}

// WithFailurePolicy selects abort (default) or isolate.
func WithFailurePolicy(policy string) Option {
	return func(p *Pipeline) {
		p.failurePolicy = strings.ToLower(strings.TrimSpace(policy))
	}
}

// WithCapabilities sets the heuristics offered to the generator.
func WithCapabilities(caps heuristics.Capabilities) Option {
	return func(p *Pipeline) {
		p.caps = caps
	}
}

// WithObserver registers a callback for stage and episode events. Calls are
// serialized.
func WithObserver(fn func(Event)) Option {
	return func(p *Pipeline) {
		p.observer = fn
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(p *Pipeline) {
		p.runID = strings.TrimSpace(id)
	}
}

// Pipeline sequences blueprint generation, expansion, and compilation.
type Pipeline struct {
	gen           Generator
	logger        *slog.Logger
	caps          heuristics.Capabilities
	concurrency   int
	failurePolicy string
	observer      func(Event)
	runID         string

	mu      sync.Mutex
	state   State
	started bool

	observeMu sync.Mutex
}

// New constructs a pipeline around gen.
func New(gen Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:           gen,
		caps:          heuristics.DefaultCapabilities(),
		concurrency:   1,
		failurePolicy: FailurePolicyAbort,
		state:         StateNoBlueprint,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runID == "" {
		p.runID = uuid.NewString()
	}
	p.logger = logging.NewComponentLogger(p.logger, "pipeline")
	return p
}

// State reports the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// RunID reports the run identifier.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run executes the pipeline once. A second call fails.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return Result{}, services.Wrap(services.ErrConfiguration, "pipeline", "run", "pipeline has already run", nil)
	}
	p.started = true
	p.mu.Unlock()

	if err := p.checkSetup(&req); err != nil {
		p.setState(StateAborted)
		return Result{}, err
	}

	started := time.Now()
	ctx = services.WithRunID(ctx, p.runID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("pipeline started",
		logging.String("theme", req.Theme),
		logging.String("genre", req.Genre),
		logging.Int("episodes", req.Episodes),
		logging.Int("expand", req.Expand),
		logging.Int("concurrency", p.concurrency),
		logging.String("failure_policy", p.failurePolicy),
	)

	var blueprint schema.SeasonBlueprint
	err := stageexec.Run(ctx, stageexec.Options{
		Logger:    p.logger,
		StageName: StageBlueprint,
		Handler: stageexec.HandlerFunc(func(ctx context.Context, logger *slog.Logger) error {
			bp, err := p.gen.GenerateBlueprint(ctx, blueprintPrompt(req), p.caps)
			if err != nil {
				return err
			}
			if bp.EpisodeCount != req.Episodes {
				logging.WarnWithContext(logger, "blueprint episode count differs from request", "episode_count_mismatch",
					logging.Int("requested", req.Episodes),
					logging.Int("returned", bp.EpisodeCount),
					logging.String(logging.FieldImpact, "expansion follows the blueprint episode count"),
				)
			}
			blueprint = bp
			return nil
		}),
	})
	p.notify(Event{Stage: StageBlueprint, Err: err})
	if err != nil {
		p.setState(StateAborted)
		return Result{}, err
	}
	p.setState(StateBlueprintReady)

	count := min(req.Expand, blueprint.EpisodeCount)
	var episodes []schema.EpisodeOutline
	var failed []int
	p.setState(StateExpanding)
	err = stageexec.Run(ctx, stageexec.Options{
		Logger:    p.logger,
		StageName: StageExpansion,
		Attrs: []slog.Attr{
			logging.Int("episodes_to_expand", count),
			logging.Int("concurrency", p.concurrency),
		},
		Handler: stageexec.HandlerFunc(func(ctx context.Context, logger *slog.Logger) error {
			var err error
			episodes, failed, err = p.expand(ctx, logger, blueprint, count, heuristics.Pacing(req.Pacing))
			return err
		}),
	})
	if err != nil {
		p.setState(StateAborted)
		return Result{}, err
	}

	var pkg schema.ScriptPackage
	err = stageexec.Run(ctx, stageexec.Options{
		Logger:    p.logger,
		StageName: StageCompile,
		Handler: stageexec.HandlerFunc(func(context.Context, *slog.Logger) error {
			pkg = Compile(blueprint, episodes, failed)
			return nil
		}),
	})
	p.notify(Event{Stage: StageCompile, Err: err})
	if err != nil {
		p.setState(StateAborted)
		return Result{}, err
	}
	p.setState(StateCompiled)

	result := Result{
		RunID:    p.runID,
		Package:  pkg,
		Expanded: count,
		Duration: time.Since(started),
	}
	logger.Info("pipeline compiled",
		logging.Int("episodes", len(pkg.Episodes)),
		logging.Int("failed_episodes", len(pkg.FailedEpisodes)),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func (p *Pipeline) checkSetup(req *Request) error {
	if p.gen == nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "run", "generator not configured", nil)
	}
	req.Theme = strings.TrimSpace(req.Theme)
	if req.Theme == "" {
		return services.Wrap(services.ErrConfiguration, "pipeline", "run", "theme is required", nil)
	}
	if err := config.ValidateEpisodes(req.Episodes); err != nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "run", "invalid request", err)
	}
	if err := config.ValidateMinutes(req.Minutes); err != nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "run", "invalid request", err)
	}
	if err := config.ValidateFailurePolicy(p.failurePolicy); err != nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "run", "invalid failure policy", err)
	}
	req.Expand = max(req.Expand, 0)
	if p.concurrency < 1 {
		p.concurrency = 1
	}
	return nil
}

// expand outlines episodes 1..count. Results are slotted by episode number so
// ordering never depends on completion order.
func (p *Pipeline) expand(ctx context.Context, logger *slog.Logger, bp schema.SeasonBlueprint, count int, pacing heuristics.PacingTemplate) ([]schema.EpisodeOutline, []int, error) {
	if count <= 0 {
		return nil, nil, nil
	}
	slots := make([]*schema.EpisodeOutline, count)
	errs := make([]error, count)

	isolate := p.failurePolicy == FailurePolicyIsolate
	group := &errgroup.Group{}
	groupCtx := ctx
	if !isolate {
		group, groupCtx = errgroup.WithContext(ctx)
	}
	group.SetLimit(p.concurrency)

	for number := 1; number <= count; number++ {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			outline, err := p.expandOne(groupCtx, logger, bp, number, count, pacing)
			if err != nil {
				errs[number-1] = err
				if isolate && !errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			slots[number-1] = &outline
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, services.Wrap(services.ErrCanceled, StageExpansion, "expand", "expansion canceled", err)
	}

	episodes := make([]schema.EpisodeOutline, 0, count)
	var failed []int
	for i, slot := range slots {
		if slot == nil {
			failed = append(failed, i+1)
			continue
		}
		episodes = append(episodes, *slot)
	}
	if len(failed) > 0 {
		logging.WarnWithContext(logger, "episodes failed and were skipped", "episodes_isolated",
			logging.Any("failed_episodes", failed),
			logging.String(logging.FieldImpact, "the package omits the failed episodes"),
			logging.Error(errors.Join(errs...)),
		)
	}
	return episodes, failed, nil
}

func (p *Pipeline) expandOne(ctx context.Context, logger *slog.Logger, bp schema.SeasonBlueprint, number, total int, pacing heuristics.PacingTemplate) (schema.EpisodeOutline, error) {
	ctx = services.WithEpisode(ctx, number)
	episodeLogger := logger.With(logging.Int(logging.FieldEpisodeNumber, number))
	episodeLogger.Info("expanding episode", logging.Int("total", total), logging.String("title", bp.TitleFor(number)))

	outline, err := p.gen.GenerateEpisode(ctx, episodePrompt(bp, number, pacing), p.caps)
	if err != nil {
		episodeLogger.Error("episode expansion failed",
			logging.String(logging.FieldEventType, "episode_failure"),
			logging.Error(err),
		)
		p.notify(Event{Stage: StageExpansion, Episode: number, Total: total, Err: err})
		return schema.EpisodeOutline{}, fmt.Errorf("episode %d: %w", number, err)
	}
	if outline.EpisodeNumber != number {
		logging.WarnWithContext(episodeLogger, "outline episode number differs from request", "episode_number_mismatch",
			logging.Int("returned", outline.EpisodeNumber),
			logging.String(logging.FieldImpact, "compiled order follows the returned episode number"),
		)
	}
	episodeLogger.Info("episode expanded",
		logging.Int("beats", len(outline.Beats)),
		logging.Int("seconds", outline.TotalSeconds()),
	)
	p.notify(Event{Stage: StageExpansion, Episode: number, Total: total})
	return outline, nil
}

func (p *Pipeline) setState(state State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

func (p *Pipeline) notify(event Event) {
	if p.observer == nil {
		return
	}
	p.observeMu.Lock()
	defer p.observeMu.Unlock()
	p.observer(event)
}
