package repositories

import (
	"context"
)

// SourceRepository acquires a working copy of the repository holding Fabric
// item folders. The working copy is exclusive to one run; substitutions
// mutate it in place with no rollback.
type SourceRepository interface {
	// Acquire materializes the working copy and returns its root directory.
	Acquire(ctx context.Context) (string, error)
	// Cleanup removes anything Acquire created. Safe to call more than once.
	Cleanup()
	// Describe returns a human-readable source label for logging.
	Describe() string
}
