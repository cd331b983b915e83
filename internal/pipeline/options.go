package pipeline

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"ahclip/internal/catalog"
	"ahclip/internal/config"
)

// DefaultDuration is the segment length used when Options.Duration is zero.
const DefaultDuration = 3.0

// Options is the explicit configuration handed to every stage of a run.
type Options struct {
	ManifestPath string
	InputDir     string
	OutputDir    string
	// Duration is the segment length in seconds.
	Duration float64
	// Workers is the number of rows processed concurrently; 1 is sequential.
	Workers    int
	SourceExts []string
	Manifest   catalog.Options
}

// OptionsFromConfig seeds run options from configuration. Paths are left for
// the caller to fill in.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Duration:   cfg.Extraction.DurationSeconds,
		Workers:    cfg.Extraction.Workers,
		SourceExts: append([]string(nil), cfg.Audio.SourceExtensions...),
		Manifest: catalog.Options{
			SubjectColumn: cfg.Manifest.SubjectColumn,
			OffsetColumn:  cfg.Manifest.OffsetColumn,
			Sheet:         cfg.Manifest.Sheet,
		},
	}
}

func (o Options) withDefaults() Options {
	if o.Duration == 0 {
		o.Duration = DefaultDuration
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if strings.TrimSpace(o.Manifest.SubjectColumn) == "" {
		o.Manifest.SubjectColumn = catalog.DefaultSubjectColumn
	}
	if strings.TrimSpace(o.Manifest.OffsetColumn) == "" {
		o.Manifest.OffsetColumn = catalog.DefaultOffsetColumn
	}
	return o
}

// Validate reports the first unusable option.
func (o Options) Validate() error {
	if err := o.validateInputs(); err != nil {
		return err
	}
	if strings.TrimSpace(o.OutputDir) == "" {
		return errors.New("output directory is required")
	}
	return nil
}

// validateInputs checks everything a dry run needs; the output directory is
// optional there.
func (o Options) validateInputs() error {
	switch {
	case strings.TrimSpace(o.ManifestPath) == "":
		return errors.New("manifest path is required")
	case strings.TrimSpace(o.InputDir) == "":
		return errors.New("input directory is required")
	case o.Duration <= 0 || math.IsNaN(o.Duration) || math.IsInf(o.Duration, 0):
		return fmt.Errorf("duration must be a positive number of seconds, got %v", o.Duration)
	}
	return nil
}
