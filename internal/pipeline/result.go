package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"ahclip/internal/audio"
	"ahclip/internal/catalog"
	"ahclip/internal/services"
)

// Status is the outcome of a single manifest row.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result records what happened to one row.
type Result struct {
	Row        catalog.Row
	Status     Status
	Source     string
	Normalized string
	Output     string
	Samples    int
	SampleRate int
	// Transcoded is true when ffmpeg ran for this row.
	Transcoded bool
	// Reason explains a skip.
	Reason string
	Err    error
}

// ErrorText returns the failure message, or "" for rows that did not fail.
func (r Result) ErrorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// ErrorKind classifies the failure using the services markers.
func (r Result) ErrorKind() string {
	return services.Kind(r.Err)
}

// Counts tallies row outcomes.
type Counts struct {
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Total is the number of rows counted.
func (c Counts) Total() int { return c.Succeeded + c.Skipped + c.Failed }

// Summary is the outcome of a batch run.
type Summary struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Options  Options
	Results  []Result
}

// Counts tallies the results by status.
func (s Summary) Counts() Counts {
	var c Counts
	for _, r := range s.Results {
		switch r.Status {
		case StatusSuccess:
			c.Succeeded++
		case StatusSkipped:
			c.Skipped++
		case StatusFailed:
			c.Failed++
		}
	}
	return c
}

// HasFailures reports whether any row failed.
func (s Summary) HasFailures() bool {
	return s.Counts().Failed > 0
}

// Elapsed is the wall-clock duration of the run.
func (s Summary) Elapsed() time.Duration {
	if s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started)
}

// OutputPath returns {outputDir}/ah Study NNNN {duration} sec.wav.
func OutputPath(outputDir string, subject catalog.Subject, duration float64) string {
	name := fmt.Sprintf("ah Study %s %s sec.wav", subject.Padded(4), audio.FormatDuration(duration))
	return filepath.Join(outputDir, name)
}
