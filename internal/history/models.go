package history

import (
	"time"

	"ahclip/internal/pipeline"
)

// Run is one recorded batch.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Manifest   string
	InputDir   string
	OutputDir  string
	Duration   float64
	Counts     pipeline.Counts
}

// RowRecord is the stored outcome of one manifest row.
type RowRecord struct {
	RunID      string
	Index      int
	Line       int
	Subject    string
	Status     pipeline.Status
	Source     string
	Output     string
	Samples    int
	Transcoded bool
	ErrorKind  string
	Error      string
}
