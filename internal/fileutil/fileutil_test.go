package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRegularFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.wav")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if ok, err := RegularFileExists(file); err != nil || !ok {
		t.Fatalf("expected file to exist: ok=%v err=%v", ok, err)
	}
	if ok, err := RegularFileExists(dir); err != nil || ok {
		t.Fatalf("expected directory to be rejected: ok=%v err=%v", ok, err)
	}
	if ok, err := RegularFileExists(filepath.Join(dir, "missing")); err != nil || ok {
		t.Fatalf("expected missing file to report false: ok=%v err=%v", ok, err)
	}
}

func TestWriteAtomicReplacesTarget(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.wav")
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := WriteAtomic(dst, 0o644, func(f *os.File) error {
		_, err := f.WriteString("new")
		return err
	})
	if err != nil {
		t.Fatalf("WriteAtomic returned error: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("unexpected content: %q", got)
	}
	assertOnlyEntry(t, dir, "out.wav")
}

func TestWriteAtomicLeavesTargetOnFailure(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.wav")
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := WriteAtomic(dst, 0o644, func(f *os.File) error {
		_, _ = f.WriteString("partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "old" {
		t.Fatalf("target should be untouched, got %q", got)
	}
	assertOnlyEntry(t, dir, "out.wav")
}

func assertOnlyEntry(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != name {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only %s in %s, got %v", name, dir, names)
	}
}
