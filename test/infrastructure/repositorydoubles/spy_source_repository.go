//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/fabworks/fabdeploy/internal/domain/repositories"
)

// SpySourceRepository implements repositories.SourceRepository as a
// configurable spy. Point Root at a prepared directory to hand tests a
// working copy without cloning anything.
type SpySourceRepository struct {
	// --- Acquire ---
	Root       string
	AcquireErr error
	// spy: call counts
	AcquireCallCount int
	CleanupCallCount int
}

var _ repositories.SourceRepository = (*SpySourceRepository)(nil)

func (s *SpySourceRepository) Acquire(_ context.Context) (string, error) {
	s.AcquireCallCount++
	if s.AcquireErr != nil {
		return "", s.AcquireErr
	}
	return s.Root, nil
}

func (s *SpySourceRepository) Cleanup() {
	s.CleanupCallCount++
}

func (s *SpySourceRepository) Describe() string {
	return "spy source " + s.Root
}
