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
	"github.com/fabworks/fabdeploy/internal/infrastructure/repositories/findreplace"
	"github.com/fabworks/fabdeploy/internal/infrastructure/repositories/keyvalue"
	"github.com/fabworks/fabdeploy/internal/infrastructure/repositories/sparkpool"
	doubles "github.com/fabworks/fabdeploy/test/infrastructure/repositorydoubles"
)

const workspaceGUID = "11111111-1111-1111-1111-111111111111"

// deployFixture wires a DeployCommand against a local working copy and a spy
// publisher, mirroring the production container without any network access.
type deployFixture struct {
	root             string
	source           *doubles.SpySourceRepository
	publisher        *doubles.SpyPublisherRepository
	factoryCallCount int
	command          *commands.DeployCommand
}

func newDeployFixture(t *testing.T) *deployFixture {
	t.Helper()

	f := &deployFixture{
		root:      t.TempDir(),
		publisher: &doubles.SpyPublisherRepository{ID: workspaceGUID},
	}
	f.source = &doubles.SpySourceRepository{Root: f.root}

	sourceRegistry := infraRepos.NewSourceRegistry()
	sourceRegistry.Register(infraRepos.SourceLocal, func(_ entities.DeployOptions) domainRepos.SourceRepository {
		return f.source
	})

	applierRegistry := infraRepos.NewApplierRegistry()
	applierRegistry.Register(findreplace.NewApplierRepository())
	applierRegistry.Register(keyvalue.NewApplierRepository())
	applierRegistry.Register(sparkpool.NewApplierRepository())

	publisherFactory := func(_ string, _ entities.AuthSettings) (domainRepos.PublisherRepository, error) {
		f.factoryCallCount++
		return f.publisher, nil
	}
	schemaFactory := func() (domainRepos.SchemaRepository, error) {
		return &doubles.StubSchemaRepository{}, nil
	}

	f.command = commands.NewDeployCommand(
		sourceRegistry, applierRegistry, publisherFactory, schemaFactory)
	return f
}

func (f *deployFixture) addItem(t *testing.T, folder, file, content string) {
	t.Helper()
	dir := filepath.Join(f.root, folder)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o600))
}

func prodSettings() *entities.Settings {
	return &entities.Settings{
		Environments: map[string]entities.EnvironmentSettings{
			"PROD": {WorkspaceID: workspaceGUID},
		},
	}
}

func prodOptions(f *deployFixture) entities.DeployOptions {
	return entities.DeployOptions{
		Environment: "PROD",
		LocalPath:   f.root,
	}
}

func TestDeployCommandExecute(t *testing.T) {
	t.Run("should publish discovered items in publish order", func(t *testing.T) {
		// given
		f := newDeployFixture(t)
		f.addItem(t, "analysis.Notebook", "notebook-content.py", "print('hi')")
		f.addItem(t, "sales.Lakehouse", "lakehouse.metadata.json", "{}")

		// when
		err := f.command.Execute(context.Background(), prodSettings(), prodOptions(f))

		// then
		require.NoError(t, err)
		require.Len(t, f.publisher.PublishedItems, 2)
		assert.Equal(t, "sales.Lakehouse", f.publisher.PublishedItems[0].String())
		assert.Equal(t, "analysis.Notebook", f.publisher.PublishedItems[1].String())
		assert.Equal(t, 1, f.source.CleanupCallCount)
	})

	t.Run("should publish nothing on a dry run", func(t *testing.T) {
		// given
		f := newDeployFixture(t)
		f.addItem(t, "analysis.Notebook", "notebook-content.py", "print('hi')")
		opts := prodOptions(f)
		opts.DryRun = true

		// when
		err := f.command.Execute(context.Background(), prodSettings(), opts)

		// then
		require.NoError(t, err)
		assert.Zero(t, f.factoryCallCount)
		assert.Empty(t, f.publisher.PublishedItems)
	})

	t.Run("should apply parameter substitutions before publishing", func(t *testing.T) {
		// given
		f := newDeployFixture(t)
		devGUID := "00000000-0000-0000-0000-000000000000"
		f.addItem(t, "analysis.Notebook", "notebook-content.py", "lakehouse = '"+devGUID+"'")
		paramPath := filepath.Join(t.TempDir(), "parameter.yml")
		require.NoError(t, os.WriteFile(paramPath, []byte(`
find_replace:
  - find_value: "`+devGUID+`"
    replace_value:
      PROD: "`+workspaceGUID+`"
`), 0o600))
		opts := prodOptions(f)
		opts.ParameterFile = paramPath

		// when
		err := f.command.Execute(context.Background(), prodSettings(), opts)

		// then
		require.NoError(t, err)
		data, readErr := os.ReadFile(filepath.Join(f.root, "analysis.Notebook", "notebook-content.py"))
		require.NoError(t, readErr)
		assert.Equal(t, "lakehouse = '"+workspaceGUID+"'", string(data))
		assert.Len(t, f.publisher.PublishedItems, 1)
	})

	t.Run("should substitute on a dry run without publishing", func(t *testing.T) {
		// given
		f := newDeployFixture(t)
		f.addItem(t, "analysis.Notebook", "notebook-content.py", "value = 'old'")
		paramPath := filepath.Join(t.TempDir(), "parameter.yml")
		require.NoError(t, os.WriteFile(paramPath, []byte(`
find_replace:
  - find_value: "old"
    replace_value:
      _ALL_: "new"
`), 0o600))
		opts := prodOptions(f)
		opts.ParameterFile = paramPath
		opts.DryRun = true

		// when
		err := f.command.Execute(context.Background(), prodSettings(), opts)

		// then
		require.NoError(t, err)
		assert.Zero(t, f.factoryCallCount)
		data, readErr := os.ReadFile(filepath.Join(f.root, "analysis.Notebook", "notebook-content.py"))
		require.NoError(t, readErr)
		assert.Equal(t, "value = 'new'", string(data))
	})

	t.Run("should fall back to per-item publishing after a bulk failure", func(t *testing.T) {
		// given
		f := newDeployFixture(t)
		f.addItem(t, "aaa.Notebook", "notebook-content.py", "a")
		f.addItem(t, "bbb.Notebook", "notebook-content.py", "b")
		f.addItem(t, "ccc.Notebook", "notebook-content.py", "c")
		f.publisher.PublishErrFor = map[string]error{
			"aaa.Notebook": errors.New("missing connection permission"),
		}

		// when
		err := f.command.Execute(context.Background(), prodSettings(), prodOptions(f))

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 3 items failed to deploy")
		// the failed item is not retried; the remaining two go through per-item
		require.Len(t, f.publisher.PublishedItems, 3)
		assert.Equal(t, "aaa.Notebook", f.publisher.PublishedItems[0].String())
		assert.Equal(t, "bbb.Notebook", f.publisher.PublishedItems[1].String())
		assert.Equal(t, "ccc.Notebook", f.publisher.PublishedItems[2].String())
	})

	t.Run("should report every failure when all items fail", func(t *testing.T) {
		// given
		f := newDeployFixture(t)
		f.addItem(t, "aaa.Notebook", "notebook-content.py", "a")
		f.addItem(t, "bbb.Notebook", "notebook-content.py", "b")
		f.publisher.PublishErr = errors.New("service unavailable")

		// when
		err := f.command.Execute(context.Background(), prodSettings(), prodOptions(f))

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 of 2 items failed to deploy")
	})

	t.Run("should succeed without publishing when the repository has no items", func(t *testing.T) {
		// given
		f := newDeployFixture(t)

		// when
		err := f.command.Execute(context.Background(), prodSettings(), prodOptions(f))

		// then
		require.NoError(t, err)
		assert.Zero(t, f.factoryCallCount)
	})

	t.Run("should restrict publishing to the requested item types", func(t *testing.T) {
		// given
		f := newDeployFixture(t)
		f.addItem(t, "analysis.Notebook", "notebook-content.py", "print('hi')")
		f.addItem(t, "dashboard.Report", "definition.pbir", "{}")
		opts := prodOptions(f)
		opts.ItemTypes = []string{"Notebook"}

		// when
		err := f.command.Execute(context.Background(), prodSettings(), opts)

		// then
		require.NoError(t, err)
		require.Len(t, f.publisher.PublishedItems, 1)
		assert.Equal(t, "analysis.Notebook", f.publisher.PublishedItems[0].String())
	})

	t.Run("should fail on an unsupported item type", func(t *testing.T) {
		// given
		f := newDeployFixture(t)
		opts := prodOptions(f)
		opts.ItemTypes = []string{"Spreadsheet"}

		// when
		err := f.command.Execute(context.Background(), prodSettings(), opts)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unsupported item type "Spreadsheet"`)
	})

	t.Run("should fail for an unknown environment", func(t *testing.T) {
		// given
		f := newDeployFixture(t)
		opts := prodOptions(f)
		opts.Environment = "STAGING"

		// when
		err := f.command.Execute(context.Background(), prodSettings(), opts)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), `environment "STAGING" is not configured`)
	})

	t.Run("should fail when the workspace override is not a GUID", func(t *testing.T) {
		// given
		f := newDeployFixture(t)
		opts := prodOptions(f)
		opts.WorkspaceID = "not-a-guid"

		// when
		err := f.command.Execute(context.Background(), prodSettings(), opts)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a valid GUID")
	})

	t.Run("should fail when the configuration requires a newer tool", func(t *testing.T) {
		// given
		f := newDeployFixture(t)
		settings := prodSettings()
		settings.MinToolVersion = "99.0.0"

		// when
		err := f.command.Execute(context.Background(), settings, prodOptions(f))

		// then
		require.Error(t, err)
		assert.Zero(t, f.source.AcquireCallCount)
	})

	t.Run("should fail when the source cannot be acquired", func(t *testing.T) {
		// given
		f := newDeployFixture(t)
		f.source.AcquireErr = errors.New("clone failed")

		// when
		err := f.command.Execute(context.Background(), prodSettings(), prodOptions(f))

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "clone failed")
		assert.Equal(t, 1, f.source.CleanupCallCount)
	})
}
