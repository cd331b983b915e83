// Package probe reports how long a source or cached recording is, using the
// cheapest method available for the file: the WAV header for the normalized
// cache, ffprobe when installed, and an MP3 frame walk otherwise.
package probe

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"ahclip/internal/audio"
	"ahclip/internal/logging"
	"ahclip/internal/media/ffprobe"
	"ahclip/internal/media/mp3dur"
)

// ErrUnknownDuration reports a file no available method could measure.
var ErrUnknownDuration = errors.New("duration unavailable")

// Method names the technique that produced a duration.
type Method string

const (
	MethodWAVHeader Method = "wav"
	MethodFFprobe   Method = "ffprobe"
	MethodMP3Frames Method = "mp3"
)

// Prober measures recording durations.
type Prober struct {
	ffprobe string
	logger  *slog.Logger
}

// New returns a Prober. ffprobeBinary is looked up on PATH; when it cannot be
// found, only the built-in methods are used.
func New(ffprobeBinary string, logger *slog.Logger) *Prober {
	p := &Prober{logger: logging.NewComponentLogger(logger, "probe")}
	if bin := strings.TrimSpace(ffprobeBinary); bin != "" {
		if path, err := exec.LookPath(bin); err == nil {
			p.ffprobe = path
		}
	}
	return p
}

// HasFFprobe reports whether ffprobe was found.
func (p *Prober) HasFFprobe() bool { return p.ffprobe != "" }

// Duration measures path.
func (p *Prober) Duration(ctx context.Context, path string) (time.Duration, Method, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".wav" {
		d, err := audio.ProbeDuration(path)
		if err != nil {
			return 0, MethodWAVHeader, err
		}
		return d, MethodWAVHeader, nil
	}

	if p.ffprobe != "" {
		result, err := ffprobe.Inspect(ctx, p.ffprobe, path)
		if err == nil {
			if d, ok := result.Duration(); ok {
				if len(result.Streams) > 0 {
					p.logger.Debug("ffprobe duration",
						logging.String("path", path),
						logging.Duration("duration", d),
						logging.Int("sample_rate", result.Streams[0].SampleRateHz()))
				}
				return d, MethodFFprobe, nil
			}
		} else {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 0, MethodFFprobe, ctxErr
			}
			p.logger.Debug("ffprobe failed", logging.String("path", path), logging.Error(err))
		}
	}

	if ext == ".mp3" {
		d, err := mp3dur.File(path)
		if err != nil {
			return 0, MethodMP3Frames, err
		}
		return d, MethodMP3Frames, nil
	}
	return 0, "", ErrUnknownDuration
}
