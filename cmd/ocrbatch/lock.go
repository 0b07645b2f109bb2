package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = ".ocrbatch.lock"

var errOutputBusy = errors.New("another ocrbatch run is writing to this output directory")

// lockOutputDir takes an exclusive lock on dir for the lifetime of a run.
// The returned function releases it.
func lockOutputDir(dir string) (func(), error) {
	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock output directory: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", errOutputBusy, dir)
	}
	return func() { _ = lock.Unlock() }, nil
}
