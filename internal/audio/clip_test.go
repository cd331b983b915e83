package audio_test

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ahclip/internal/audio"
	"ahclip/internal/testsupport"
)

func TestWindow(t *testing.T) {
	cases := []struct {
		name       string
		rate       int
		offset     float64
		duration   float64
		start, end int
	}{
		{"reference row", 44100, 12.5, 3.0, 551250, 683550},
		{"zero offset", 44100, 0, 3.0, 0, 132300},
		{"truncates fractional samples", 8000, 0.00001, 0.00099, 0, 7},
		{"short duration", 16000, 1.0, 0.25, 16000, 20000},
		{"huge duration saturates", 44100, 1.0, 1e15, 44100, 44100 + (math.MaxInt>>2 + 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := audio.Window(tc.rate, tc.offset, tc.duration)
			if start != tc.start || end != tc.end {
				t.Fatalf("Window(%d, %v, %v) = [%d, %d) want [%d, %d)", tc.rate, tc.offset, tc.duration, start, end, tc.start, tc.end)
			}
		})
	}
}

func TestSliceClampsToBounds(t *testing.T) {
	clip := audio.Clip{SampleRate: 10, BitDepth: 16, Samples: []int{0, 1, 2, 3, 4, 5}}

	if got := clip.Slice(2, 4).Samples; len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("unexpected slice: %v", got)
	}
	if got := clip.Slice(4, 100).Samples; len(got) != 2 || got[0] != 4 {
		t.Fatalf("expected truncation at end, got %v", got)
	}
	if got := clip.Slice(10, 20); got.Len() != 0 || got.SampleRate != 10 {
		t.Fatalf("expected empty clip past end, got %+v", got)
	}
	if got := clip.Slice(-3, 1).Samples; len(got) != 1 || got[0] != 0 {
		t.Fatalf("expected negative start clamped, got %v", got)
	}
	if got := clip.Slice(5, 3); got.Len() != 0 {
		t.Fatalf("expected empty clip for inverted window, got %v", got.Samples)
	}
}

func TestLoadDownmixesStereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	testsupport.WriteWAV(t, path, 8000, 2, []int{100, 200, -50, -150, 7, 8})

	clip, err := audio.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if clip.SampleRate != 8000 || clip.BitDepth != 16 {
		t.Fatalf("unexpected format: rate %d depth %d", clip.SampleRate, clip.BitDepth)
	}
	want := []int{150, -100, 8}
	if len(clip.Samples) != len(want) {
		t.Fatalf("unexpected sample count: %v", clip.Samples)
	}
	for i := range want {
		if clip.Samples[i] != want[i] {
			t.Fatalf("sample %d: got %d want %d", i, clip.Samples[i], want[i])
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := audio.Load(filepath.Join(dir, "missing.wav")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}

	garbage := filepath.Join(dir, "garbage.wav")
	if err := os.WriteFile(garbage, []byte("this is not a riff file at all, just text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := audio.Load(garbage); !errors.Is(err, audio.ErrInvalidWAV) {
		t.Fatalf("expected ErrInvalidWAV, got %v", err)
	}
}

func TestWriteRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	in := audio.Clip{SampleRate: 22050, BitDepth: 16, Samples: testsupport.Ramp(500)}

	if err := audio.Write(path, in); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	out, err := audio.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if out.SampleRate != 22050 || out.Len() != 500 {
		t.Fatalf("unexpected clip: rate %d len %d", out.SampleRate, out.Len())
	}
	for i, v := range in.Samples {
		if out.Samples[i] != v {
			t.Fatalf("sample %d: got %d want %d", i, out.Samples[i], v)
		}
	}
}

func TestProbeDurationReadsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	testsupport.WriteWAV(t, path, 8000, 2, testsupport.Ramp(16000))

	got, err := audio.ProbeDuration(path)
	if err != nil {
		t.Fatalf("ProbeDuration returned error: %v", err)
	}
	if got != time.Second {
		t.Fatalf("unexpected duration: got %v want %v", got, time.Second)
	}

	garbage := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(garbage, []byte("not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := audio.ProbeDuration(garbage); !errors.Is(err, audio.ErrInvalidWAV) {
		t.Fatalf("expected ErrInvalidWAV, got %v", err)
	}
}
