package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"ahclip/internal/logging"
)

// ErrInvalidOffset reports a start offset that cannot address a sample.
var ErrInvalidOffset = errors.New("invalid start offset")

// Segment describes a written extraction.
type Segment struct {
	Path       string
	Start      int
	End        int
	Samples    int
	SampleRate int
}

// Extractor slices normalized recordings into fixed-duration segments.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor builds an extractor that logs through logger.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logging.NewComponentLogger(logger, "extractor")}
}

// Extract reads normalizedPath, slices [offset, offset+duration) and writes
// the result to outPath. Windows running past the end of the recording are
// truncated.
func (e *Extractor) Extract(ctx context.Context, normalizedPath, outPath string, offset, duration float64) (Segment, error) {
	if err := ctx.Err(); err != nil {
		return Segment{}, err
	}
	if offset < 0 || math.IsNaN(offset) || math.IsInf(offset, 0) {
		return Segment{}, fmt.Errorf("%w: %v", ErrInvalidOffset, offset)
	}
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return Segment{}, fmt.Errorf("duration must be positive, got %v", duration)
	}

	clip, err := Load(normalizedPath)
	if err != nil {
		return Segment{}, err
	}
	start, end := Window(clip.SampleRate, offset, duration)
	segment := clip.Slice(start, end)
	if segment.Len() < end-start {
		logging.WithContext(ctx, e.logger).Debug("window truncated at end of recording",
			logging.String("source", normalizedPath),
			logging.Int("requested_samples", end-start),
			logging.Int("samples", segment.Len()),
			logging.Duration("recording_length", clip.Duration()),
		)
	}

	if err := ctx.Err(); err != nil {
		return Segment{}, err
	}
	if err := Write(outPath, segment); err != nil {
		return Segment{}, err
	}
	return Segment{
		Path:       outPath,
		Start:      start,
		End:        end,
		Samples:    segment.Len(),
		SampleRate: segment.SampleRate,
	}, nil
}

// FormatDuration renders seconds the way output names expect: the shortest
// decimal that round-trips, always with a fractional part (3 -> "3.0").
func FormatDuration(seconds float64) string {
	s := strconv.FormatFloat(seconds, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
