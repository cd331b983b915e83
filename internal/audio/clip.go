package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"ahclip/internal/fileutil"
)

// ErrInvalidWAV reports a file that is not a decodable PCM WAV.
var ErrInvalidWAV = errors.New("invalid wav file")

const defaultBitDepth = 16

// Clip is a mono PCM signal at a fixed sample rate.
type Clip struct {
	SampleRate int
	BitDepth   int
	Samples    []int
}

// Len returns the number of samples.
func (c Clip) Len() int { return len(c.Samples) }

// Duration returns the playback length of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}

// Slice returns the samples in [start, end), clamped to the clip bounds.
// Out-of-range windows are truncated, never padded.
func (c Clip) Slice(start, end int) Clip {
	n := len(c.Samples)
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	return Clip{SampleRate: c.SampleRate, BitDepth: c.BitDepth, Samples: c.Samples[start:end]}
}

// maxWindowSamples bounds each half of a window so start+length cannot
// overflow int. It is a power of two so the float comparison is exact. No
// decodable clip comes close to it.
const maxWindowSamples = math.MaxInt>>2 + 1

// Window converts an offset and duration in seconds to a sample range using
// truncating conversion: start = int(sr*offset), end = start + int(sr*duration).
// Both terms saturate at maxWindowSamples, which Slice then clamps to the clip.
func Window(sampleRate int, offset, duration float64) (start, end int) {
	sr := float64(sampleRate)
	start = toSamples(sr * offset)
	end = start + toSamples(sr*duration)
	return start, end
}

func toSamples(v float64) int {
	return int(min(v, float64(maxWindowSamples)))
}

// Load decodes a WAV file at its native sample rate.
func Load(path string) (Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return Decode(file)
}

// Decode reads a WAV stream into a mono clip.
func Decode(r io.ReadSeeker) (Clip, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return Clip{}, ErrInvalidWAV
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}

	channels := int(decoder.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = defaultBitDepth
	}
	return Clip{
		SampleRate: int(decoder.SampleRate),
		BitDepth:   bitDepth,
		Samples:    downmix(buf.Data, channels),
	}, nil
}

// ProbeDuration reports the length of a WAV file from its header without
// decoding the samples.
func ProbeDuration(path string) (time.Duration, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return 0, ErrInvalidWAV
	}
	if err := decoder.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	frameBytes := int64(decoder.NumChans) * int64(decoder.BitDepth) / 8
	if frameBytes <= 0 || decoder.SampleRate == 0 {
		return 0, ErrInvalidWAV
	}
	frames := decoder.PCMLen() / frameBytes
	return time.Duration(float64(frames) / float64(decoder.SampleRate) * float64(time.Second)), nil
}

func downmix(data []int, channels int) []int {
	if channels <= 1 {
		return data
	}
	frames := len(data) / channels
	out := make([]int, frames)
	for i := range frames {
		sum := 0
		for ch := range channels {
			sum += data[i*channels+ch]
		}
		out[i] = int(math.Round(float64(sum) / float64(channels)))
	}
	return out
}

// Write stores clip at path as a mono PCM WAV, replacing any existing file.
func Write(path string, clip Clip) error {
	if clip.SampleRate <= 0 {
		return fmt.Errorf("write %s: sample rate must be positive", path)
	}
	bitDepth := clip.BitDepth
	if bitDepth == 0 {
		bitDepth = defaultBitDepth
	}
	return fileutil.WriteAtomic(path, 0o644, func(f *os.File) error {
		return Encode(f, Clip{SampleRate: clip.SampleRate, BitDepth: bitDepth, Samples: clip.Samples})
	})
}

// Encode writes clip to w as a mono PCM WAV.
func Encode(w io.WriteSeeker, clip Clip) error {
	encoder := wav.NewEncoder(w, clip.SampleRate, clip.BitDepth, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: clip.SampleRate},
		Data:           clip.Samples,
		SourceBitDepth: clip.BitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		_ = encoder.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}
