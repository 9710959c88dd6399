package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dramagen/internal/config"
	"dramagen/internal/fileutil"
	"dramagen/internal/generation"
	"dramagen/internal/heuristics"
	"dramagen/internal/pipeline"
	"dramagen/internal/render"
	"dramagen/internal/services"
	"dramagen/internal/stageexec"
)

type generateOptions struct {
	theme         string
	genre         string
	audience      string
	episodes      int
	minutes       int
	expand        int
	output        string
	pacing        string
	concurrency   int
	failurePolicy string
	format        string
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a season blueprint and expand the first episodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts.applyDefaults(cmd, cfg)
			if err := opts.validate(); err != nil {
				return err
			}
			return runGenerate(cmd, ctx, cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.theme, "theme", "", "Theme or plot to build the season around (required)")
	flags.StringVar(&opts.genre, "genre", "", "Genre (default from config: general/urban)")
	flags.StringVar(&opts.audience, "audience", "", "Target audience (default from config: general)")
	flags.IntVar(&opts.episodes, "episodes", 0, "Number of episodes in the season, 1-100 (default 12)")
	flags.IntVar(&opts.minutes, "minutes", 0, "Minutes per episode, 3-30 (default 5)")
	flags.IntVar(&opts.expand, "expand", 0, "Number of leading episodes to outline, clamped to [0, episodes] (default 3)")
	flags.StringVarP(&opts.output, "output", "o", "", "Output document path (default short_drama_script.md)")
	flags.StringVar(&opts.pacing, "pacing", "", "Pacing style for episode outlines: fast or punchy")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "Episodes expanded in parallel (default 1)")
	flags.StringVar(&opts.failurePolicy, "failure-policy", "", "abort on the first failed episode, or isolate failures")
	flags.StringVar(&opts.format, "format", "", "Output format: text, json, or yaml")
	_ = cmd.MarkFlagRequired("theme")

	return cmd
}

// applyDefaults fills every flag the user did not set from the config file.
func (o *generateOptions) applyDefaults(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	p := cfg.Pipeline
	if !flags.Changed("genre") {
		o.genre = p.Genre
	}
	if !flags.Changed("audience") {
		o.audience = p.Audience
	}
	if !flags.Changed("episodes") {
		o.episodes = p.Episodes
	}
	if !flags.Changed("minutes") {
		o.minutes = p.Minutes
	}
	if !flags.Changed("expand") {
		o.expand = p.Expand
	}
	if !flags.Changed("output") {
		o.output = p.Output
	}
	if !flags.Changed("pacing") {
		o.pacing = p.Pacing
	}
	if !flags.Changed("concurrency") {
		o.concurrency = p.Concurrency
	}
	if !flags.Changed("failure-policy") {
		o.failurePolicy = p.FailurePolicy
	}
	if !flags.Changed("format") {
		o.format = p.Format
	}
	o.theme = strings.TrimSpace(o.theme)
	o.pacing = strings.ToLower(strings.TrimSpace(o.pacing))
	o.failurePolicy = strings.ToLower(strings.TrimSpace(o.failurePolicy))
	o.format = strings.ToLower(strings.TrimSpace(o.format))
	if !flags.Changed("output") {
		o.output = withFormatExtension(o.output, o.format)
	}
	o.expand = min(max(o.expand, 0), o.episodes)
}

// withFormatExtension swaps a known document extension for the one matching
// format. Other extensions are left alone.
func withFormatExtension(path, format string) string {
	ext := filepath.Ext(path)
	switch strings.ToLower(ext) {
	case ".md", ".json", ".yaml", ".yml":
		return strings.TrimSuffix(path, ext) + render.Extension(format)
	default:
		return path
	}
}

func (o *generateOptions) validate() error {
	fail := func(err error) error {
		return services.Wrap(services.ErrConfiguration, "cli", "generate", "invalid arguments", err)
	}
	if o.theme == "" {
		return fail(fmt.Errorf("--theme must not be blank"))
	}
	if err := config.ValidateEpisodes(o.episodes); err != nil {
		return fail(err)
	}
	if err := config.ValidateMinutes(o.minutes); err != nil {
		return fail(err)
	}
	if !heuristics.IsPacingStyle(o.pacing) {
		return fail(fmt.Errorf("pacing must be one of %s (got %q)", strings.Join(heuristics.PacingStyles(), ", "), o.pacing))
	}
	if o.concurrency < 1 {
		return fail(fmt.Errorf("concurrency must be at least 1 (got %d)", o.concurrency))
	}
	if err := config.ValidateFailurePolicy(o.failurePolicy); err != nil {
		return fail(err)
	}
	if err := config.ValidateFormat(o.format); err != nil {
		return fail(err)
	}
	if strings.TrimSpace(o.output) == "" {
		return fail(fmt.Errorf("--output must not be blank"))
	}
	return nil
}

func runGenerate(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, opts generateOptions) error {
	runCtx := cmd.Context()
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	backend, err := newBackend(runCtx, cfg)
	if err != nil {
		return err
	}

	caps := heuristics.Capabilities{}
	if cfg.Generation.UseCapabilities {
		caps = heuristics.DefaultCapabilities()
	}
	client := generation.New(backend,
		generation.WithLogger(logger),
		generation.WithCorrectiveReprompt(cfg.Generation.CorrectiveReprompt),
	)

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	colorize := shouldColorize(errOut)
	p := pipeline.New(client,
		pipeline.WithLogger(logger),
		pipeline.WithCapabilities(caps),
		pipeline.WithConcurrency(opts.concurrency),
		pipeline.WithFailurePolicy(opts.failurePolicy),
		pipeline.WithObserver(func(event pipeline.Event) {
			fmt.Fprintln(errOut, progressLine(event, colorize))
		}),
	)

	result, err := p.Run(runCtx, pipeline.Request{
		Theme:    opts.theme,
		Genre:    opts.genre,
		Audience: opts.audience,
		Episodes: opts.episodes,
		Minutes:  opts.minutes,
		Expand:   opts.expand,
		Pacing:   opts.pacing,
	})
	if err != nil {
		return err
	}

	document, err := render.Export(result.Package, opts.format)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "render", "render output", err)
	}
	target, err := config.ExpandPath(opts.output)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if err := fileutil.WriteFileAtomic(target, document, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	model := cfg.LLM.Model
	if named, ok := backend.(modelNamer); ok {
		model = named.Model()
	}
	printSummary(out, cfg, model, opts, result, target, shouldColorize(out))
	return nil
}

func progressLine(event pipeline.Event, colorize bool) string {
	label := stageexec.StageLabel(event.Stage)
	if event.Episode > 0 {
		label = fmt.Sprintf("Episode %d/%d", event.Episode, event.Total)
	}
	switch {
	case event.Err != nil:
		return renderStatusLine(label, statusError, firstLine(event.Err.Error()), colorize)
	default:
		return renderStatusLine(label, statusOK, "", colorize)
	}
}

func printSummary(out io.Writer, cfg *config.Config, model string, opts generateOptions, result pipeline.Result, target string, colorize bool) {
	pkg := result.Package
	bp := pkg.Blueprint

	for _, line := range renderSectionHeader(bp.Theme, colorize) {
		fmt.Fprintln(out, line)
	}
	rows := [][]string{
		{"Run", result.RunID},
		{"Provider", fmt.Sprintf("%s (%s)", cfg.LLM.Provider, model)},
		{"Genre", bp.Genre},
		{"Audience", bp.Audience},
		{"Season", fmt.Sprintf("%d episodes x %d min", bp.EpisodeCount, bp.EpisodeDurationMinutes)},
		{"Expanded", fmt.Sprintf("%d of %d", len(pkg.Episodes), result.Expanded)},
		{"Pacing", opts.pacing},
		{"Tools offered", yesNo(cfg.Generation.UseCapabilities)},
		{"Duration", result.Duration.Round(time.Millisecond).String()},
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))

	if len(pkg.Episodes) > 0 {
		episodeRows := make([][]string, 0, len(pkg.Episodes))
		for _, ep := range pkg.Episodes {
			episodeRows = append(episodeRows, []string{
				fmt.Sprint(ep.EpisodeNumber),
				ep.Title,
				fmt.Sprint(len(ep.Beats)),
				formatSeconds(ep.TotalSeconds()),
			})
		}
		fmt.Fprintln(out, renderTable([]string{"#", "Title", "Beats", "Length"}, episodeRows, []columnAlignment{alignRight, alignLeft, alignRight, alignRight}))
	}

	if len(pkg.FailedEpisodes) > 0 {
		failed := make([]string, len(pkg.FailedEpisodes))
		for i, n := range pkg.FailedEpisodes {
			failed[i] = fmt.Sprint(n)
		}
		fmt.Fprintln(out, renderStatusLine("Failed episodes", statusWarn, strings.Join(failed, ", "), colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Output", statusOK, target, colorize))
}

func formatSeconds(total int) string {
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func firstLine(value string) string {
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		return value[:idx]
	}
	return value
}
