package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fabworks/fabdeploy/internal/domain/repositories"
)

// LocalSourceRepository uses an existing directory as the working copy.
// Substitutions still mutate it in place, so callers deploying from a
// checked-out tree should work on a disposable copy.
type LocalSourceRepository struct {
	path string
}

// NewLocalSourceRepository creates a local source for the given directory.
func NewLocalSourceRepository(path string) repositories.SourceRepository {
	return &LocalSourceRepository{path: path}
}

// Acquire validates the directory and returns its absolute path.
func (it *LocalSourceRepository) Acquire(_ context.Context) (string, error) {
	abs, err := filepath.Abs(it.path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", it.path, err)
	}

	info, statErr := os.Stat(abs)
	if statErr != nil {
		return "", fmt.Errorf("local path %q: %w", abs, statErr)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("local path %q is not a directory", abs)
	}

	return abs, nil
}

// Cleanup is a no-op: the directory is owned by the caller.
func (it *LocalSourceRepository) Cleanup() {}

// Describe returns the source label for logging.
func (it *LocalSourceRepository) Describe() string {
	return it.path
}
