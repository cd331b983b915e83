package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ahclip/internal/audio"
	"ahclip/internal/config"
	"ahclip/internal/history"
	"ahclip/internal/logging"
	"ahclip/internal/normalize"
	"ahclip/internal/pipeline"
	"ahclip/internal/preflight"
	"ahclip/internal/services"
)

// runFlags holds the per-run overrides shared by the root and plan commands.
type runFlags struct {
	duration   float64
	workers    int
	sourceExts []string
	sheet      string
	jsonOutput bool
}

func (f *runFlags) register(cmd *cobra.Command, withWorkers bool) {
	flags := cmd.Flags()
	flags.Float64VarP(&f.duration, "duration", "d", 3.0, "Segment length in seconds")
	flags.StringSliceVar(&f.sourceExts, "source-ext", nil, "Source extension to try (repeatable, default .m4a)")
	flags.StringVar(&f.sheet, "sheet", "", "Worksheet to read from .xlsx manifests")
	flags.BoolVar(&f.jsonOutput, "json", false, "Print results as JSON")
	if withWorkers {
		flags.IntVar(&f.workers, "workers", 1, "Rows processed in parallel")
	}
}

// apply returns a copy of cfg with changed flags layered on top.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	local := *cfg
	local.Audio.SourceExtensions = append([]string(nil), cfg.Audio.SourceExtensions...)

	flags := cmd.Flags()
	if flags.Changed("duration") {
		local.Extraction.DurationSeconds = f.duration
	}
	if flags.Changed("workers") {
		local.Extraction.Workers = f.workers
	}
	if flags.Changed("source-ext") {
		local.Audio.SourceExtensions = config.NormalizeExtensions(f.sourceExts)
	}
	if flags.Changed("sheet") {
		local.Manifest.Sheet = strings.TrimSpace(f.sheet)
	}
	if err := local.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "cli", "flags", "", err)
	}
	return &local, nil
}

func runExtraction(cmd *cobra.Command, ctx *commandContext, flags *runFlags, args []string) error {
	baseCfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg, err := flags.apply(cmd, baseCfg)
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger(cmd)
	if err != nil {
		return err
	}

	opts := pipeline.OptionsFromConfig(cfg)
	opts.ManifestPath, opts.InputDir, opts.OutputDir = args[0], args[1], args[2]

	checks := []preflight.Result{
		preflight.CheckManifest(opts.ManifestPath, cfg),
		preflight.CheckDirectoryAccess("Input directory", opts.InputDir, preflight.ReadOnly),
		preflight.CheckOutputDirectory("Output directory", opts.OutputDir),
	}
	if err := blockingError(checks); err != nil {
		return err
	}

	progress := cmd.OutOrStdout()
	if flags.jsonOutput {
		progress = cmd.ErrOrStderr()
	}
	runnerOpts := []pipeline.RunnerOption{pipeline.WithProgress(progress)}

	if cfg.History.Enabled {
		store, err := history.Open(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run will not be recorded"),
			)
		} else {
			defer store.Close()
			runnerOpts = append(runnerOpts, pipeline.WithRecorder(store))
		}
	}

	normalizer := normalize.New(normalize.OptionsFromConfig(cfg), logger)
	runner := pipeline.NewRunner(normalizer, audio.NewExtractor(logger), logger, runnerOpts...)

	summary, err := runner.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if flags.jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), newRunReport(summary)); err != nil {
			return err
		}
	} else {
		renderRunSummary(cmd.OutOrStdout(), summary, shouldColorize(cmd.OutOrStdout()))
	}

	if ctxErr := cmd.Context().Err(); ctxErr != nil {
		return ctxErr
	}
	if summary.HasFailures() {
		counts := summary.Counts()
		return fmt.Errorf("%d of %d rows failed", counts.Failed, counts.Total())
	}
	return nil
}

// renderRunSummary lists rows that did not produce a segment, then the totals.
func renderRunSummary(out io.Writer, summary pipeline.Summary, colorize bool) {
	var rows [][]string
	for _, r := range summary.Results {
		if r.Status == pipeline.StatusSuccess {
			continue
		}
		detail := r.Reason
		if r.Err != nil {
			detail = r.ErrorText()
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Row.Line),
			r.Row.Subject.String(),
			string(r.Status),
			r.ErrorKind(),
			detail,
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"Line", "Subject", "Status", "Kind", "Detail"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
		))
	}

	counts := summary.Counts()
	kind := statusOK
	for _, r := range summary.Results {
		kind = max(kind, runStatusKind(r.Status))
	}
	message := fmt.Sprintf("%d extracted, %d skipped, %d failed in %s",
		counts.Succeeded, counts.Skipped, counts.Failed, summary.Elapsed().Round(time.Millisecond))
	fmt.Fprintln(out, renderStatusLine("Run "+shortID(summary.RunID), kind, message, colorize))
}

func blockingError(results []preflight.Result) error {
	blocking := preflight.Blocking(results)
	if len(blocking) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(blocking))
	for _, r := range blocking {
		msgs = append(msgs, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "cli", "preflight", "", errors.New(strings.Join(msgs, "; ")))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
