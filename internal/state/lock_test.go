package state_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"thingsync/internal/state"
)

func TestLockExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.lock")

	l1, err := state.Acquire(path)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	_, err = state.Acquire(path)
	if !errors.Is(err, state.ErrLocked) {
		t.Fatalf("second Acquire: expected ErrLocked, got %v", err)
	}

	if err := l1.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	l2, err := state.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire after Release: %v", err)
	}
	l2.Release()
}

func TestLockFileNamesOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.lock")

	l, err := state.Acquire(path)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("lock file is empty, operators cannot identify the holder")
	}
}
