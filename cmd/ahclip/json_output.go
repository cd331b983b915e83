package main

import (
	"encoding/json"
	"io"
	"path/filepath"
	"time"

	"ahclip/internal/history"
	"ahclip/internal/pipeline"
)

// writeJSON encodes v as indented JSON to w.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type runReport struct {
	RunID     string          `json:"run_id"`
	Started   time.Time       `json:"started_at"`
	Finished  time.Time       `json:"finished_at"`
	Manifest  string          `json:"manifest"`
	InputDir  string          `json:"input_dir"`
	OutputDir string          `json:"output_dir"`
	Duration  float64         `json:"duration_seconds"`
	Counts    pipeline.Counts `json:"counts"`
	Rows      []rowReport     `json:"rows"`
}

type rowReport struct {
	Line       int    `json:"line"`
	Subject    string `json:"subject"`
	Status     string `json:"status"`
	Source     string `json:"source,omitempty"`
	Output     string `json:"output,omitempty"`
	Samples    int    `json:"samples,omitempty"`
	Transcoded bool   `json:"transcoded,omitempty"`
	Reason     string `json:"reason,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Error      string `json:"error,omitempty"`
}

func newRunReport(summary pipeline.Summary) runReport {
	opts := summary.Options
	report := runReport{
		RunID:     summary.RunID,
		Started:   summary.Started.UTC(),
		Finished:  summary.Finished.UTC(),
		Manifest:  opts.ManifestPath,
		InputDir:  opts.InputDir,
		OutputDir: opts.OutputDir,
		Duration:  opts.Duration,
		Counts:    summary.Counts(),
		Rows:      make([]rowReport, 0, len(summary.Results)),
	}
	for _, r := range summary.Results {
		report.Rows = append(report.Rows, rowReport{
			Line:       r.Row.Line,
			Subject:    r.Row.Subject.String(),
			Status:     string(r.Status),
			Source:     r.Source,
			Output:     r.Output,
			Samples:    r.Samples,
			Transcoded: r.Transcoded,
			Reason:     r.Reason,
			ErrorKind:  r.ErrorKind(),
			Error:      r.ErrorText(),
		})
	}
	return report
}

type planReport struct {
	Line    int      `json:"line"`
	Subject string   `json:"subject"`
	Offset  *float64 `json:"offset,omitempty"`
	Status  string   `json:"status"`
	Source  string   `json:"source,omitempty"`
	Cache   string   `json:"cache,omitempty"`
	Cached  bool     `json:"cached"`
	Output  string   `json:"output,omitempty"`
	Length  float64  `json:"length_seconds,omitempty"`
	Method  string   `json:"length_method,omitempty"`
	Fit     string   `json:"fit"`
	Reason  string   `json:"reason,omitempty"`
}

func newPlanReport(entries []pipeline.PlanEntry) []planReport {
	out := make([]planReport, 0, len(entries))
	for _, e := range entries {
		report := planReport{
			Line:    e.Row.Line,
			Subject: e.Row.Subject.String(),
			Status:  string(e.Status),
			Source:  e.Source,
			Cache:   e.Cache,
			Cached:  e.Cached,
			Output:  e.Output,
			Length:  e.Length.Seconds(),
			Method:  string(e.Method),
			Fit:     string(e.Fit),
			Reason:  e.Reason,
		}
		if e.Row.HasOffset && e.Row.OffsetErr == nil {
			offset := e.Row.Offset
			report.Offset = &offset
		}
		out = append(out, report)
	}
	return out
}

type historyRunReport struct {
	ID        string          `json:"run_id"`
	Started   time.Time       `json:"started_at"`
	Finished  time.Time       `json:"finished_at,omitzero"`
	Manifest  string          `json:"manifest"`
	InputDir  string          `json:"input_dir"`
	OutputDir string          `json:"output_dir"`
	Duration  float64         `json:"duration_seconds"`
	Counts    pipeline.Counts `json:"counts"`
	Rows      []rowReport     `json:"rows,omitempty"`
}

func newHistoryRunReport(run history.Run, rows []history.RowRecord) historyRunReport {
	report := historyRunReport{
		ID:        run.ID,
		Started:   run.StartedAt,
		Finished:  run.FinishedAt,
		Manifest:  run.Manifest,
		InputDir:  run.InputDir,
		OutputDir: run.OutputDir,
		Duration:  run.Duration,
		Counts:    run.Counts,
	}
	for _, r := range rows {
		report.Rows = append(report.Rows, rowReport{
			Line:       r.Line,
			Subject:    r.Subject,
			Status:     string(r.Status),
			Source:     r.Source,
			Output:     r.Output,
			Samples:    r.Samples,
			Transcoded: r.Transcoded,
			ErrorKind:  r.ErrorKind,
			Error:      r.Error,
		})
	}
	return report
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
