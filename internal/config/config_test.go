package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ahclip/internal/config"
)

func TestLoadDefaultConfigWhenFileAbsent(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("AHCLIP_FFMPEG", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	wantPath := filepath.Join(tempHome, ".config", "ahclip", "config.toml")
	if resolved != wantPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, wantPath)
	}
	if cfg.Manifest.SubjectColumn != "Study Number" {
		t.Fatalf("unexpected subject column: %q", cfg.Manifest.SubjectColumn)
	}
	if cfg.Manifest.OffsetColumn != "Start ah" {
		t.Fatalf("unexpected offset column: %q", cfg.Manifest.OffsetColumn)
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Fatalf("unexpected sample rate: %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels != 1 {
		t.Fatalf("unexpected channels: %d", cfg.Audio.Channels)
	}
	if len(cfg.Audio.SourceExtensions) != 1 || cfg.Audio.SourceExtensions[0] != ".m4a" {
		t.Fatalf("unexpected source extensions: %v", cfg.Audio.SourceExtensions)
	}
	if cfg.Extraction.DurationSeconds != 3.0 {
		t.Fatalf("unexpected duration: %v", cfg.Extraction.DurationSeconds)
	}
	if cfg.Extraction.Workers != 1 {
		t.Fatalf("unexpected workers: %d", cfg.Extraction.Workers)
	}
	if cfg.FFmpegBinary() != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.FFmpegBinary())
	}
	if cfg.Transcoder.LogLevel != "warning" {
		t.Fatalf("unexpected transcoder log level: %q", cfg.Transcoder.LogLevel)
	}
	if cfg.History.Enabled {
		t.Fatal("expected history disabled by default")
	}
	wantHistory := filepath.Join(tempHome, ".local", "share", "ahclip", "history.db")
	if cfg.History.Path != wantHistory {
		t.Fatalf("unexpected history path: got %q want %q", cfg.History.Path, wantHistory)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "ahclip.toml")

	type payload struct {
		Manifest struct {
			SubjectColumn string `toml:"subject_column"`
			Sheet         string `toml:"sheet"`
		} `toml:"manifest"`
		Audio struct {
			SourceExtensions []string `toml:"source_extensions"`
		} `toml:"audio"`
		Extraction struct {
			DurationSeconds float64 `toml:"duration_seconds"`
			Workers         int     `toml:"workers"`
		} `toml:"extraction"`
		History struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"history"`
	}
	custom := payload{}
	custom.Manifest.SubjectColumn = "  Subject  "
	custom.Manifest.Sheet = "Annotations"
	custom.Audio.SourceExtensions = []string{"M4A", ".mp3", ".m4a", " "}
	custom.Extraction.DurationSeconds = 2.5
	custom.Extraction.Workers = 4
	custom.History.Enabled = true
	custom.History.Path = filepath.Join(tempDir, "ledger", "runs.db")

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Manifest.SubjectColumn != "Subject" {
		t.Fatalf("expected trimmed subject column, got %q", cfg.Manifest.SubjectColumn)
	}
	if cfg.Manifest.OffsetColumn != "Start ah" {
		t.Fatalf("expected default offset column to survive, got %q", cfg.Manifest.OffsetColumn)
	}
	if cfg.Manifest.Sheet != "Annotations" {
		t.Fatalf("unexpected sheet: %q", cfg.Manifest.Sheet)
	}
	want := []string{".m4a", ".mp3"}
	if strings.Join(cfg.Audio.SourceExtensions, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected extensions: got %v want %v", cfg.Audio.SourceExtensions, want)
	}
	if cfg.Extraction.DurationSeconds != 2.5 {
		t.Fatalf("unexpected duration: %v", cfg.Extraction.DurationSeconds)
	}
	if cfg.Extraction.Workers != 4 {
		t.Fatalf("unexpected workers: %d", cfg.Extraction.Workers)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(filepath.Join(tempDir, "ledger")); err != nil || !info.IsDir() {
		t.Fatalf("expected history directory to be created: %v", err)
	}
}

func TestLoadUsesFFmpegEnvFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AHCLIP_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected env ffmpeg binary, got %q", cfg.FFmpegBinary())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero duration", func(c *config.Config) { c.Extraction.DurationSeconds = 0 }, "extraction.duration_seconds"},
		{"negative duration", func(c *config.Config) { c.Extraction.DurationSeconds = -1 }, "extraction.duration_seconds"},
		{"no workers", func(c *config.Config) { c.Extraction.Workers = 0 }, "extraction.workers"},
		{"zero sample rate", func(c *config.Config) { c.Audio.SampleRate = 0 }, "audio.sample_rate"},
		{"zero channels", func(c *config.Config) { c.Audio.Channels = 0 }, "audio.channels"},
		{"wav source", func(c *config.Config) { c.Audio.SourceExtensions = []string{".wav"} }, "audio.source_extensions"},
		{"bare extension", func(c *config.Config) { c.Audio.SourceExtensions = []string{"m4a"} }, "audio.source_extensions"},
		{"negative retries", func(c *config.Config) { c.Transcoder.MaxRetries = -1 }, "transcoder.max_retries"},
		{"negative timeout", func(c *config.Config) { c.Transcoder.TimeoutSeconds = -5 }, "transcoder.timeout_seconds"},
		{"bad ffmpeg level", func(c *config.Config) { c.Transcoder.LogLevel = "loud" }, "transcoder.log_level"},
		{"same columns", func(c *config.Config) { c.Manifest.OffsetColumn = "study number" }, "must differ"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestWriteSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AHCLIP_FFMPEG", "")
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	written, err := config.WriteSample(target, false)
	if err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if written != target {
		t.Fatalf("unexpected sample path: got %q want %q", written, target)
	}
	if _, err := config.WriteSample(target, false); !errors.Is(err, config.ErrSampleExists) {
		t.Fatalf("expected ErrSampleExists on second write, got %v", err)
	}
	if _, err := config.WriteSample(target, true); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	def := config.Default()
	if cfg.Audio.SampleRate != def.Audio.SampleRate || cfg.Extraction.DurationSeconds != def.Extraction.DurationSeconds {
		t.Fatalf("sample config diverges from defaults: %+v", cfg)
	}
	if cfg.FFmpegBinary() != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary from sample: %q", cfg.FFmpegBinary())
	}

	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(encoded), "Study Number") {
		t.Fatalf("expected encoded config to include subject column, got:\n%s", encoded)
	}
}

func TestNormalizeExtensions(t *testing.T) {
	got := config.NormalizeExtensions([]string{"MP3", ".m4a", "", ".", "mp3", " .Flac "})
	want := []string{".mp3", ".m4a", ".flac"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("NormalizeExtensions: got %v want %v", got, want)
	}
}

func TestLoadFallsBackToProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	t.Chdir(project)
	if err := os.WriteFile("ahclip.toml", []byte("[extraction]\nduration_seconds = 1.5\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "ahclip.toml" {
		t.Fatalf("expected project config to be found, got %q exists=%v", resolved, exists)
	}
	if cfg.Extraction.DurationSeconds != 1.5 {
		t.Fatalf("unexpected duration: %v", cfg.Extraction.DurationSeconds)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/logs/../ahclip")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if want := filepath.Join(home, "ahclip"); got != want {
		t.Fatalf("ExpandPath: got %q want %q", got, want)
	}
	if got, _ := config.ExpandPath(""); got != "" {
		t.Fatalf("expected empty path to stay empty, got %q", got)
	}
}
