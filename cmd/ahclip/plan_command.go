package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"ahclip/internal/media/probe"
	"ahclip/internal/pipeline"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "plan <manifest> <input_dir> [output_dir]",
		Short: "Show what a run would do without transcoding or writing clips",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			opts.ManifestPath, opts.InputDir = args[0], args[1]
			if len(args) == 3 {
				opts.OutputDir = args[2]
			}

			prober := probe.New(cfg.FFprobeBinary(), logger)
			entries, err := pipeline.Plan(cmd.Context(), opts, prober)
			if err != nil {
				return err
			}
			if flags.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), newPlanReport(entries))
			}
			renderPlan(cmd.OutOrStdout(), entries, opts.Duration, shouldColorize(cmd.OutOrStdout()))
			if !prober.HasFFprobe() {
				fmt.Fprintln(cmd.OutOrStdout(), renderStatusLine("FFprobe", statusInfo,
					"not found; source lengths shown for cached and .mp3 files only", false))
			}
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}

func renderPlan(out io.Writer, entries []pipeline.PlanEntry, duration float64, colorize bool) {
	rows := make([][]string, 0, len(entries))
	counts := map[pipeline.PlanStatus]int{}
	cached := 0
	for _, e := range entries {
		counts[e.Status]++
		if e.Cached {
			cached++
		}
		offset := "-"
		if e.Row.HasOffset && e.Row.OffsetErr == nil {
			offset = strconv.FormatFloat(e.Row.Offset, 'f', -1, 64)
		}
		length := ""
		if e.Length > 0 {
			length = fmt.Sprintf("%.2fs", e.Length.Seconds())
		}
		cache := ""
		if e.Status == pipeline.PlanReady {
			cache = "pending"
			if e.Cached {
				cache = "cached"
			}
		}
		fit := string(e.Fit)
		detail := baseName(e.Source)
		if e.Status != pipeline.PlanReady {
			fit = ""
			detail = e.Reason
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Row.Line),
			e.Row.Subject.String(),
			offset,
			string(e.Status),
			detail,
			cache,
			length,
			fit,
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Line", "Subject", "Offset", "Status", "Source", "Cache", "Length", "Fit"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))

	kind := statusOK
	if counts[pipeline.PlanMissing]+counts[pipeline.PlanInvalid] > 0 {
		kind = statusWarn
	}
	message := fmt.Sprintf("%d ready (%d cached), %d skipped, %d invalid, %d missing; %s s windows",
		counts[pipeline.PlanReady], cached, counts[pipeline.PlanSkip],
		counts[pipeline.PlanInvalid], counts[pipeline.PlanMissing], strconv.FormatFloat(duration, 'f', -1, 64))
	fmt.Fprintln(out, renderStatusLine("Plan", kind, message, colorize))
}
