// Package mp3dur measures MP3 duration by walking frame headers, which works
// without ffprobe and for files whose container metadata is missing.
package mp3dur

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tcolgate/mp3"
)

// ErrNoFrames reports input that contained no decodable MP3 frames.
var ErrNoFrames = errors.New("no mp3 frames found")

// File returns the duration of the MP3 at path.
func File(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Read sums the duration of every frame in r.
func Read(r io.Reader) (time.Duration, error) {
	d := mp3.NewDecoder(r)
	var (
		frame   mp3.Frame
		skipped int
		total   time.Duration
		frames  int
	)
	for {
		if err := d.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) && frames > 0 {
				break
			}
			return 0, err
		}
		frames++
		total += frame.Duration()
	}
	if frames == 0 {
		return 0, ErrNoFrames
	}
	return total, nil
}
