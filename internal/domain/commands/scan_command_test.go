//go:build unit

package commands_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabworks/fabdeploy/internal/domain/commands"
	"github.com/fabworks/fabdeploy/internal/domain/entities"
	domainRepos "github.com/fabworks/fabdeploy/internal/domain/repositories"
	infraRepos "github.com/fabworks/fabdeploy/internal/infrastructure/repositories"
	doubles "github.com/fabworks/fabdeploy/test/infrastructure/repositorydoubles"
)

func newScanFixture(t *testing.T) (*commands.ScanCommand, *doubles.SpySourceRepository, string) {
	t.Helper()
	root := t.TempDir()
	source := &doubles.SpySourceRepository{Root: root}
	registry := infraRepos.NewSourceRegistry()
	registry.Register(infraRepos.SourceLocal, func(_ entities.DeployOptions) domainRepos.SourceRepository {
		return source
	})
	return commands.NewScanCommand(registry), source, root
}

func TestScanCommandExecute(t *testing.T) {
	t.Run("should succeed on a repository with items", func(t *testing.T) {
		// given
		cmd, source, root := newScanFixture(t)
		dir := filepath.Join(root, "analysis.Notebook")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "notebook-content.py"), []byte("print('hi')"), 0o600))

		// when
		err := cmd.Execute(context.Background(), entities.DeployOptions{LocalPath: root})

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, source.AcquireCallCount)
		assert.Equal(t, 1, source.CleanupCallCount)
	})

	t.Run("should succeed on an empty repository", func(t *testing.T) {
		// given
		cmd, _, root := newScanFixture(t)

		// when
		err := cmd.Execute(context.Background(), entities.DeployOptions{LocalPath: root})

		// then
		require.NoError(t, err)
	})

	t.Run("should fail when the source cannot be acquired", func(t *testing.T) {
		// given
		cmd, source, root := newScanFixture(t)
		source.AcquireErr = errors.New("clone failed")

		// when
		err := cmd.Execute(context.Background(), entities.DeployOptions{LocalPath: root})

		// then
		require.Error(t, err)
		assert.Equal(t, 1, source.CleanupCallCount)
	})
}
