package testsupport

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ahclip/internal/config"
)

// ConfigOption adjusts the config built by NewConfig.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t    testing.TB
	base string
	cfg  *config.Config
}

// NewConfig returns defaults rooted in a fresh temp directory: the ledger at
// <base>/state/history.db, logs under <base>/logs and stubs under <base>/bin.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	b := &configBuilder{t: t, base: t.TempDir(), cfg: &cfg}
	cfg.History.Path = filepath.Join(b.base, "state", "history.db")
	cfg.Logging.LogDir = filepath.Join(b.base, "logs")
	for _, opt := range opts {
		opt(b)
	}
	return b.cfg
}

// WithHistory turns the run ledger on.
func WithHistory() ConfigOption {
	return func(b *configBuilder) { b.cfg.History.Enabled = true }
}

// WithStubbedBinaries puts no-op executables named names (default ffmpeg and
// ffprobe) first on PATH for the rest of the test.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		for _, name := range names {
			b.script(name, "exit 0")
		}
		b.t.Setenv("PATH", b.binDir()+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WithFFmpegFixture points the config at an ffmpeg stub that logs its
// arguments (see FFmpegCalls) and copies fixture to its final argument.
func WithFFmpegFixture(fixture string) ConfigOption {
	return func(b *configBuilder) {
		calls := filepath.Join(b.binDir(), "ffmpeg.calls")
		b.cfg.Transcoder.FFmpegBinary = b.script("ffmpeg", fmt.Sprintf(
			"echo \"$@\" >> %s\nfor last; do :; done\ncp %s \"$last\"", shellQuote(calls), shellQuote(fixture)))
	}
}

// WithFailingFFmpeg points the config at an ffmpeg stub that exits 1 with a
// decoder complaint on stderr.
func WithFailingFFmpeg() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcoder.FFmpegBinary = b.script("ffmpeg",
			"echo 'Invalid data found when processing input' >&2\nexit 1")
	}
}

// FFmpegCalls returns one line of arguments per invocation of a
// WithFFmpegFixture stub, oldest first.
func FFmpegCalls(t testing.TB, cfg *config.Config) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(BaseDir(cfg), "bin", "ffmpeg.calls"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatalf("read ffmpeg call log: %v", err)
	}
	return strings.FieldsFunc(string(data), func(r rune) bool { return r == '\n' })
}

// BaseDir returns the temp directory NewConfig rooted cfg in.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.History.Path))
}

func (b *configBuilder) binDir() string {
	dir := filepath.Join(b.base, "bin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		b.t.Fatalf("mkdir %s: %v", dir, err)
	}
	return dir
}

// script writes an executable /bin/sh script into the bin directory.
func (b *configBuilder) script(name, body string) string {
	path := filepath.Join(b.binDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
