package testsupport

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"ahclip/internal/fileutil"
)

// WriteFile creates path (and its parents) holding size filler bytes, at
// least one. Resolver and preflight tests only care that the file exists.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	mkdirParent(t, path)
	if err := os.WriteFile(path, bytes.Repeat([]byte{'B'}, int(max(size, 1))), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mkdirParent(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
}

// Ramp returns n samples whose value encodes their index, wrapped to stay
// within 16-bit range. Slices of a ramp identify their window directly.
func Ramp(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i%30000 - 15000
	}
	return out
}

// WriteWAV writes interleaved 16-bit PCM samples to path.
func WriteWAV(t testing.TB, path string, sampleRate, channels int, samples []int) {
	t.Helper()

	mkdirParent(t, path)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalize %s: %v", path, err)
	}
}

// CopyFile copies src over dst atomically. Command-runner fakes use it to
// stand in for ffmpeg writing its output.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return fileutil.WriteAtomic(dst, 0o644, func(out *os.File) error {
		_, err := io.Copy(out, in)
		return err
	})
}
