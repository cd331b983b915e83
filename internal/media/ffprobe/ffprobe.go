package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Result is the subset of `ffprobe -of json` output ahclip reads.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
}

// Stream is one audio stream. Numeric fields arrive as strings.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Duration   string `json:"duration"`
}

// Inspect runs ffprobe on path and decodes the container and audio stream
// metadata. Non-audio streams are not requested.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error", "-hide_banner",
		"-select_streams", "a",
		"-show_entries", "format=format_name,duration:stream=index,codec_name,sample_rate,channels,duration",
		"-of", "json", "--", path)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, msg)
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(out, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Duration prefers the container duration and falls back to the first audio
// stream. ok is false when neither holds a positive number.
func (r Result) Duration() (time.Duration, bool) {
	candidates := []string{r.Format.Duration}
	if len(r.Streams) > 0 {
		candidates = append(candidates, r.Streams[0].Duration)
	}
	for _, raw := range candidates {
		seconds, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err == nil && seconds > 0 {
			return time.Duration(seconds * float64(time.Second)), true
		}
	}
	return 0, false
}

// SampleRateHz returns the stream rate, or 0 when missing or malformed.
func (s Stream) SampleRateHz() int {
	rate, err := strconv.Atoi(strings.TrimSpace(s.SampleRate))
	if err != nil || rate < 0 {
		return 0
	}
	return rate
}
