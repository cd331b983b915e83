package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ahclip/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		runID      string
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs or the rows of one run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "Run history is disabled; set [history] enabled = true in the config file.")
				return nil
			}

			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if id := strings.TrimSpace(runID); id != "" {
				run, err := store.Find(cmd.Context(), id)
				if err != nil {
					return err
				}
				rows, err := store.Rows(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(out, newHistoryRunReport(run, rows))
				}
				renderHistoryRun(out, run, rows, shouldColorize(out))
				return nil
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				reports := make([]historyRunReport, 0, len(runs))
				for _, run := range runs {
					reports = append(reports, newHistoryRunReport(run, nil))
				}
				return writeJSON(out, reports)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			renderHistoryRuns(out, runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to list (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show the rows of the run whose ID starts with this prefix")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	return cmd
}

func renderHistoryRuns(out io.Writer, runs []history.Run) {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			baseName(run.Manifest),
			strconv.FormatFloat(run.Duration, 'f', -1, 64),
			strconv.Itoa(run.Counts.Succeeded),
			strconv.Itoa(run.Counts.Skipped),
			strconv.Itoa(run.Counts.Failed),
			elapsed(run),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Started", "Manifest", "Seconds", "OK", "Skipped", "Failed", "Elapsed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
}

func renderHistoryRun(out io.Writer, run history.Run, records []history.RowRecord, colorize bool) {
	for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.RFC3339), colorize))
	fmt.Fprintln(out, renderStatusLine("Manifest", statusInfo, run.Manifest, colorize))
	fmt.Fprintln(out, renderStatusLine("Input", statusInfo, run.InputDir, colorize))
	fmt.Fprintln(out, renderStatusLine("Output", statusInfo, run.OutputDir, colorize))

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		detail := baseName(rec.Output)
		if rec.Error != "" {
			detail = rec.Error
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.Line),
			rec.Subject,
			string(rec.Status),
			yesNo(rec.Transcoded),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Line", "Subject", "Status", "Transcoded", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
		"", "", "",
		"total",
		fmt.Sprintf("%d ok / %d skipped / %d failed", run.Counts.Succeeded, run.Counts.Skipped, run.Counts.Failed),
	))
}

func elapsed(run history.Run) string {
	if run.FinishedAt.IsZero() {
		return ""
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}
