package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"ahclip/internal/catalog"
	"ahclip/internal/fileutil"
	"ahclip/internal/media/probe"
	"ahclip/internal/normalize"
	"ahclip/internal/services"
)

// PlanStatus is the predicted outcome of a row.
type PlanStatus string

const (
	PlanReady   PlanStatus = "ready"
	PlanSkip    PlanStatus = "skip"
	PlanInvalid PlanStatus = "invalid"
	PlanMissing PlanStatus = "missing"
)

// Fit describes how the requested window relates to the recording length.
type Fit string

const (
	FitOK Fit = "ok"
	// FitShort windows run past the end and will be truncated.
	FitShort Fit = "short"
	// FitPastEnd windows start after the end and produce an empty clip.
	FitPastEnd Fit = "past end"
	FitUnknown Fit = "unknown"
)

// Prober measures recording durations.
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, probe.Method, error)
}

// PlanEntry is the dry-run view of one manifest row.
type PlanEntry struct {
	Row    catalog.Row
	Status PlanStatus
	Source string
	Cache  string
	Cached bool
	Output string
	// Length is the measured recording duration, zero when unknown.
	Length time.Duration
	Method probe.Method
	Fit    Fit
	Reason string
}

// Plan resolves every row without transcoding or writing anything.
func Plan(ctx context.Context, opts Options, prober Prober) ([]PlanEntry, error) {
	opts = opts.withDefaults()
	if err := opts.validateInputs(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "options", "", err)
	}
	rows, err := catalog.Load(opts.ManifestPath, opts.Manifest)
	if err != nil {
		marker := services.ErrValidation
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "catalog", "load manifest", opts.ManifestPath, err)
	}

	entries := make([]PlanEntry, 0, len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return entries, err
		}
		entries = append(entries, planRow(ctx, row, opts, prober))
	}
	return entries, nil
}

func planRow(ctx context.Context, row catalog.Row, opts Options, prober Prober) PlanEntry {
	entry := PlanEntry{Row: row, Fit: FitUnknown}

	skip, err := checkRow(row, opts)
	if skip != "" {
		entry.Status, entry.Reason = PlanSkip, skip
		return entry
	}
	if err != nil {
		entry.Status, entry.Reason = PlanInvalid, err.Error()
		return entry
	}

	src, err := resolveSource(row, opts)
	if err != nil {
		entry.Status, entry.Reason = PlanMissing, err.Error()
		return entry
	}
	entry.Status = PlanReady
	entry.Source = src.Path
	entry.Cache = normalize.CachePath(opts.InputDir, row.Subject)
	entry.Cached, _ = fileutil.RegularFileExists(entry.Cache)
	if opts.OutputDir != "" {
		entry.Output = OutputPath(opts.OutputDir, row.Subject, opts.Duration)
	}

	if prober == nil {
		return entry
	}
	measured := entry.Source
	if entry.Cached {
		measured = entry.Cache
	}
	length, method, err := prober.Duration(ctx, measured)
	if err != nil {
		entry.Reason = err.Error()
		return entry
	}
	entry.Length, entry.Method = length, method
	entry.Fit = windowFit(row.Offset, opts.Duration, length)
	return entry
}

func windowFit(offset, duration float64, length time.Duration) Fit {
	total := length.Seconds()
	switch {
	case offset >= total:
		return FitPastEnd
	case offset+duration > total:
		return FitShort
	default:
		return FitOK
	}
}
