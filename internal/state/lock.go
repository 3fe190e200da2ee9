package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrLocked is returned when another pass holds the lock file.
var ErrLocked = errors.New("sync already running")

// Lock is a single-instance guard for the state files. The mapping and
// observed-state documents are owned exclusively by one pass at a time;
// overlapping schedules must not open them concurrently.
type Lock struct {
	path  string
	owner string
}

// Acquire creates the lock file exclusively. If the file already exists
// the error wraps ErrLocked and names the path so the operator can clear
// a stale lock by hand.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("%w: lock file exists: %s", ErrLocked, path)
	}
	if err != nil {
		return nil, err
	}

	owner := uuid.NewString()
	fmt.Fprintf(f, "pid=%d owner=%s\n", os.Getpid(), owner)
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, err
	}

	return &Lock{path: path, owner: owner}, nil
}

// Release removes the lock file.
func (l *Lock) Release() error {
	return os.Remove(l.path)
}
