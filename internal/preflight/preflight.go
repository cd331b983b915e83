package preflight

import (
	"context"
	"fmt"
	"strings"

	"ahclip/internal/config"
	"ahclip/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Optional results never block a run.
	Optional bool
	Detail   string
}

// Targets names the paths a run will touch. Empty fields are not checked.
type Targets struct {
	Manifest  string
	InputDir  string
	OutputDir string
}

// RunAll executes every applicable check for cfg and targets.
func RunAll(ctx context.Context, cfg *config.Config, targets Targets) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(ctx, cfg) {
		results = append(results, fromStatus(status))
	}
	if targets.InputDir != "" {
		results = append(results, CheckDirectoryAccess("Input directory", targets.InputDir, ReadOnly))
	}
	if targets.OutputDir != "" {
		results = append(results, CheckOutputDirectory("Output directory", targets.OutputDir))
	}
	if targets.Manifest != "" {
		results = append(results, CheckManifest(targets.Manifest, cfg))
	}
	if cfg.History.Enabled {
		results = append(results, CheckOutputDirectory("History directory", parentDir(cfg.History.Path)))
	}
	return results
}

// Blocking returns the required checks that failed.
func Blocking(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			out = append(out, r)
		}
	}
	return out
}

// CheckSystemDeps evaluates the external binaries for the given config.
// ffmpeg is required; ffprobe only enriches the plan command.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required to normalize source recordings",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Reports source durations in plan output",
			Optional:    true,
		},
	}
	statuses := deps.CheckBinaries(requirements)
	for i := range statuses {
		if !statuses[i].Available {
			continue
		}
		if version, err := deps.Version(ctx, statuses[i].Path); err == nil {
			statuses[i].Detail = "version " + version
		}
	}
	return statuses
}

func fromStatus(status deps.Status) Result {
	detail := status.Command
	if status.Available {
		detail = status.Path
		if status.Detail != "" {
			detail = fmt.Sprintf("%s (%s)", status.Path, status.Detail)
		}
	} else if status.Detail != "" {
		detail = status.Detail
	}
	return Result{
		Name:     status.Name,
		Passed:   status.Available,
		Optional: status.Optional,
		Detail:   strings.TrimSpace(detail),
	}
}
