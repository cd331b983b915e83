package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ahclip/internal/config"
	"ahclip/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []Access{ReadOnly, ReadWrite} {
		result := CheckDirectoryAccess("test", dir, mode)
		if !result.Passed {
			t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
		}
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"), ReadOnly)
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f, ReadOnly)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputDirectory_Creatable(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "out")
	result := CheckOutputDirectory("Output directory", target)
	if !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("expected creatable output dir, got %+v", result)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatal("check must not create the directory")
	}
}

func TestCheckOutputDirectory_UnderFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckOutputDirectory("Output directory", filepath.Join(f, "out"))
	if result.Passed {
		t.Fatalf("expected failure under a regular file, got %+v", result)
	}
}

func TestCheckManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ah.csv")
	if err := os.WriteFile(path, []byte("Study Number,Start ah\n1,0.5\n2,\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	result := CheckManifest(path, &cfg)
	if !result.Passed || !strings.Contains(result.Detail, "2 rows, 1 without offset") {
		t.Fatalf("unexpected manifest result: %+v", result)
	}

	cfg.Manifest.OffsetColumn = "Onset"
	if result := CheckManifest(path, &cfg); result.Passed {
		t.Fatalf("expected missing column failure, got %+v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Targets{}); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_WithStubbedBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	input := t.TempDir()

	results := RunAll(context.Background(), cfg, Targets{InputDir: input, OutputDir: filepath.Join(input, "out")})
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	if got := strings.Join(names, ","); got != "FFmpeg,FFprobe,Input directory,Output directory" {
		t.Fatalf("unexpected checks: %s", got)
	}
	if blocking := Blocking(results); len(blocking) != 0 {
		t.Fatalf("expected no blocking failures, got %+v", blocking)
	}
}

func TestRunAll_MissingFFmpegBlocks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Transcoder.FFmpegBinary = "definitely-not-ffmpeg"
	cfg.Transcoder.FFprobeBinary = "definitely-not-ffprobe"

	results := RunAll(context.Background(), cfg, Targets{})
	blocking := Blocking(results)
	if len(blocking) != 1 || blocking[0].Name != "FFmpeg" {
		t.Fatalf("expected only ffmpeg to block, got %+v", blocking)
	}
}
