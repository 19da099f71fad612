//go:build unit

package source_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabworks/fabdeploy/internal/infrastructure/repositories/source"
)

func TestLocalSourceRepository(t *testing.T) {
	t.Parallel()

	t.Run("should return the absolute path of an existing directory", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		repo := source.NewLocalSourceRepository(dir)

		// when
		workDir, err := repo.Acquire(context.Background())

		// then
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(workDir))
		info, statErr := os.Stat(workDir)
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	})

	t.Run("should fail when the directory does not exist", func(t *testing.T) {
		t.Parallel()

		// given
		repo := source.NewLocalSourceRepository(filepath.Join(t.TempDir(), "missing"))

		// when
		_, err := repo.Acquire(context.Background())

		// then
		require.Error(t, err)
	})

	t.Run("should fail when the path is a file", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		repo := source.NewLocalSourceRepository(path)

		// when
		_, err := repo.Acquire(context.Background())

		// then
		require.Error(t, err)
	})

	t.Run("should describe the source for logging", func(t *testing.T) {
		t.Parallel()

		// given
		repo := source.NewLocalSourceRepository("/repo")

		// then
		assert.Contains(t, repo.Describe(), "/repo")
	})
}
