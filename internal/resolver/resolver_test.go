package resolver_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ahclip/internal/catalog"
	"ahclip/internal/resolver"
	"ahclip/internal/testsupport"
)

func TestCandidatesOrder(t *testing.T) {
	got := resolver.Candidates(catalog.ParseSubject("7"), "/in", []string{".m4a", ".mp3"})
	want := []string{
		"/in/Study 007.m4a",
		"/in/Study 007.mp3",
		"/in/Study 0007.m4a",
		"/in/Study 0007.mp3",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected candidates: got %v want %v", got, want)
	}
}

func TestCandidatesCollapseWideSubjects(t *testing.T) {
	got := resolver.Candidates(catalog.ParseSubject("1234"), "/in", nil)
	if len(got) != 1 || got[0] != "/in/Study 1234.m4a" {
		t.Fatalf("unexpected candidates: %v", got)
	}
}

func TestResolvePrefersThreeDigitName(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "Study 007.m4a"), 16)
	testsupport.WriteFile(t, filepath.Join(dir, "Study 0007.m4a"), 16)

	src, err := resolver.Resolve(catalog.ParseSubject("7"), dir, nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if filepath.Base(src.Path) != "Study 007.m4a" {
		t.Fatalf("expected 3-digit name, got %s", src.Path)
	}
}

func TestResolveFallsBackToFourDigitName(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "Study 0042.m4a"), 16)

	for _, raw := range []string{"42", "042", "0042", "42.0"} {
		src, err := resolver.Resolve(catalog.ParseSubject(raw), dir, nil)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", raw, err)
		}
		if filepath.Base(src.Path) != "Study 0042.m4a" {
			t.Fatalf("Resolve(%q) = %s", raw, src.Path)
		}
	}
}

func TestResolveIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "Study 005.m4a"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(dir, "Study 0005.m4a"), 16)

	src, err := resolver.Resolve(catalog.ParseSubject("5"), dir, nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if filepath.Base(src.Path) != "Study 0005.m4a" {
		t.Fatalf("expected directory to be skipped, got %s", src.Path)
	}
}

func TestResolveNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := resolver.Resolve(catalog.ParseSubject("9"), dir, nil)
	if !errors.Is(err, resolver.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Study 009.m4a") || !strings.Contains(err.Error(), "Study 0009.m4a") {
		t.Fatalf("expected candidates in error, got %v", err)
	}

	if _, err := resolver.Resolve(catalog.ParseSubject(""), dir, nil); !errors.Is(err, resolver.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank subject, got %v", err)
	}
}
