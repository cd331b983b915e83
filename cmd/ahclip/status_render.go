package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"ahclip/internal/pipeline"
	"ahclip/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var statusStyles = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

// renderStatusLine formats "  Label:   [KIND] message" with the label padded
// to a fixed column, coloured as a whole when colorize is set.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusStyles[kind]
	if !ok {
		style = statusStyles[statusInfo]
	}
	line := fmt.Sprintf("%s%-*s [%s]", statusIndent, statusLabelWidth, label+":", style.label)
	if message != "" {
		line += " " + message
	}
	return paint(line, style.color, colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	return []string{
		paint(heading, ansiBlue, colorize),
		paint(strings.Repeat("-", len(heading)), ansiBlue, colorize),
	}
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

// shouldColorize reports whether w is an interactive terminal.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// preflightLines renders one status line per check followed by a summary.
// Failed optional checks are warnings; failed required checks are errors.
func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results)+1)
	var failed, warned []string
	for _, r := range results {
		kind := statusOK
		switch {
		case r.Passed:
		case r.Optional:
			kind = statusWarn
			warned = append(warned, r.Name)
		default:
			kind = statusError
			failed = append(failed, r.Name)
		}
		detail := strings.TrimSpace(r.Detail)
		if detail == "" && !r.Passed {
			detail = "not available"
		}
		lines = append(lines, renderStatusLine(r.Name, kind, detail, colorize))
	}
	switch {
	case len(failed) > 0:
		lines = append(lines, renderStatusLine("Summary", statusError, "blocked by "+strings.Join(failed, ", "), colorize))
	case len(warned) > 0:
		lines = append(lines, renderStatusLine("Summary", statusWarn, "ready; optional: "+strings.Join(warned, ", "), colorize))
	default:
		lines = append(lines, renderStatusLine("Summary", statusOK, "ready", colorize))
	}
	return lines
}

func runStatusKind(status pipeline.Status) statusKind {
	switch status {
	case pipeline.StatusSuccess:
		return statusOK
	case pipeline.StatusSkipped:
		return statusWarn
	case pipeline.StatusFailed:
		return statusError
	default:
		return statusInfo
	}
}
