package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ahclip/internal/catalog"
)

// Prefix is the filename stem shared by every recording and cache file.
const Prefix = "Study "

// Widths lists the zero-padding widths tried, in order.
var Widths = []int{3, 4}

// DefaultExtensions is used when the caller provides none.
var DefaultExtensions = []string{".m4a"}

// ErrNotFound reports that no candidate filename exists for a subject.
var ErrNotFound = errors.New("source recording not found")

// Source is a resolved recording.
type Source struct {
	Path    string
	Subject catalog.Subject
}

// Candidates returns the paths tried for subject, in priority order.
func Candidates(subject catalog.Subject, inputDir string, exts []string) []string {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	seen := make(map[string]struct{}, len(Widths)*len(exts))
	out := make([]string, 0, len(Widths)*len(exts))
	for _, width := range Widths {
		name := Prefix + subject.Padded(width)
		for _, ext := range exts {
			path := filepath.Join(inputDir, name+ext)
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			out = append(out, path)
		}
	}
	return out
}

// Resolve returns the first candidate that exists as a regular file.
func Resolve(subject catalog.Subject, inputDir string, exts []string) (Source, error) {
	if subject.IsZero() {
		return Source{}, fmt.Errorf("%w: subject is blank", ErrNotFound)
	}
	candidates := Candidates(subject, inputDir, exts)
	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Source{}, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		return Source{Path: path, Subject: subject}, nil
	}
	return Source{}, fmt.Errorf("%w: subject %s (tried %s)", ErrNotFound, subject, strings.Join(baseNames(candidates), ", "))
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}
