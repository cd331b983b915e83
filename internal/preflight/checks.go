package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"ahclip/internal/catalog"
	"ahclip/internal/config"
)

// Access selects the permissions CheckDirectoryAccess requires.
type Access int

const (
	ReadOnly Access = iota
	ReadWrite
)

// CheckDirectoryAccess verifies that the directory exists and grants the
// requested access. The input directory needs ReadWrite when the normalized
// cache has to be created there; ReadOnly is enough to list sources.
func CheckDirectoryAccess(name, path string, mode Access) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	want, label := uint32(unix.R_OK|unix.X_OK), "read ok"
	if mode == ReadWrite {
		want, label = unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok"
	}
	if err := unix.Access(path, want); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, label)}
}

// CheckOutputDirectory passes when path is a writable directory or can be
// created under its nearest existing ancestor.
func CheckOutputDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path, ReadWrite)
	}
	ancestor := parentDir(path)
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		next := parentDir(ancestor)
		if next == ancestor {
			break
		}
		ancestor = next
	}
	parent := CheckDirectoryAccess(name, ancestor, ReadWrite)
	if !parent.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s)", path, parent.Detail)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckManifest loads the manifest with the configured columns.
func CheckManifest(path string, cfg *config.Config) Result {
	const name = "Manifest"
	rows, err := catalog.Load(path, catalog.Options{
		SubjectColumn: cfg.Manifest.SubjectColumn,
		OffsetColumn:  cfg.Manifest.OffsetColumn,
		Sheet:         cfg.Manifest.Sheet,
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	missing := 0
	for _, row := range rows {
		if !row.HasOffset {
			missing++
		}
	}
	detail := fmt.Sprintf("%s (%d rows", path, len(rows))
	if missing > 0 {
		detail += fmt.Sprintf(", %d without offset", missing)
	}
	return Result{Name: name, Passed: true, Detail: detail + ")"}
}

func parentDir(path string) string {
	return filepath.Dir(filepath.Clean(path))
}
