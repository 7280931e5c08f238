package runtime

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = ".boxbuild.lock"

// Lock holds an exclusive advisory lock on a workspace so two runs cannot
// mutate the same directory at once.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the workspace lock without blocking. It fails when
// another run already holds the workspace.
func AcquireLock(workDir string) (*Lock, error) {
	fl := flock.New(filepath.Join(workDir, lockFileName))

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock workspace %s: %w", workDir, err)
	}
	if !locked {
		return nil, fmt.Errorf("workspace %s is in use by another run", workDir)
	}

	return &Lock{fl: fl}, nil
}

// Release drops the workspace lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
