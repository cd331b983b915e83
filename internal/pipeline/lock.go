package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created inside the output directory for the duration of a
// run and removed when the run ends.
const LockFileName = ".ahclip.lock"

// ErrLocked reports that another run holds the output directory.
var ErrLocked = errors.New("output directory is locked by another run")

func acquireLock(outputDir string) (*flock.Flock, error) {
	path := filepath.Join(outputDir, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	// A finishing run may have unlinked the file between our open and lock.
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		_ = lock.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return lock, nil
}

// releaseLock removes the lock file while still holding it, then unlocks.
func releaseLock(lock *flock.Flock) error {
	removeErr := os.Remove(lock.Path())
	if errors.Is(removeErr, fs.ErrNotExist) {
		removeErr = nil
	}
	return errors.Join(removeErr, lock.Unlock())
}
