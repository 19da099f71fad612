//go:build unit

package entities_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
)

func makeItemFolder(t *testing.T, root, folder, file string) {
	t.Helper()
	dir := filepath.Join(root, folder)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte("content"), 0o600))
}

func TestParseItemFolder(t *testing.T) {
	t.Parallel()

	t.Run("should split a valid item folder name", func(t *testing.T) {
		t.Parallel()

		// when
		name, itemType, ok := entities.ParseItemFolder("analysis.Notebook")

		// then
		assert.True(t, ok)
		assert.Equal(t, "analysis", name)
		assert.Equal(t, "Notebook", itemType)
	})

	t.Run("should keep dots inside the item name", func(t *testing.T) {
		t.Parallel()

		// when
		name, itemType, ok := entities.ParseItemFolder("sales.v2.Report")

		// then
		assert.True(t, ok)
		assert.Equal(t, "sales.v2", name)
		assert.Equal(t, "Report", itemType)
	})

	t.Run("should reject folders without a type suffix", func(t *testing.T) {
		t.Parallel()

		// when
		_, _, ok := entities.ParseItemFolder("plainfolder")

		// then
		assert.False(t, ok)
	})

	t.Run("should reject unsupported item types", func(t *testing.T) {
		t.Parallel()

		// when
		_, _, ok := entities.ParseItemFolder("data.Spreadsheet")

		// then
		assert.False(t, ok)
	})
}

func TestDiscoverItems(t *testing.T) {
	t.Parallel()

	t.Run("should find items in nested folders and return them in publish order", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		makeItemFolder(t, root, "notebooks/analysis.Notebook", "notebook-content.py")
		makeItemFolder(t, root, "storage/sales.Lakehouse", "lakehouse.metadata.json")
		makeItemFolder(t, root, "reports/dashboard.Report", "definition.pbir")

		// when
		items, err := entities.DiscoverItems(root)

		// then
		require.NoError(t, err)
		require.Len(t, items, 3)
		// storage deploys before processing and presentation
		assert.Equal(t, "sales.Lakehouse", items[0].String())
		assert.Equal(t, "analysis.Notebook", items[1].String())
		assert.Equal(t, "dashboard.Report", items[2].String())
	})

	t.Run("should not descend into item folders", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		makeItemFolder(t, root, "outer.Notebook/inner.Notebook", "notebook-content.py")

		// when
		items, err := entities.DiscoverItems(root)

		// then
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "outer", items[0].Name)
	})

	t.Run("should skip the .git directory", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		makeItemFolder(t, root, ".git/objects/fake.Notebook", "data")
		makeItemFolder(t, root, "real.Notebook", "notebook-content.py")

		// when
		items, err := entities.DiscoverItems(root)

		// then
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "real", items[0].Name)
	})

	t.Run("should fail when the root does not exist", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.DiscoverItems(filepath.Join(t.TempDir(), "missing"))

		// then
		require.Error(t, err)
	})
}

func TestFilterItemsByType(t *testing.T) {
	t.Parallel()

	t.Run("should keep everything when no types are given", func(t *testing.T) {
		t.Parallel()

		// given
		items := []entities.Item{{Type: "Notebook"}, {Type: "Report"}}

		// when
		filtered := entities.FilterItemsByType(items, nil)

		// then
		assert.Len(t, filtered, 2)
	})

	t.Run("should keep only the requested types", func(t *testing.T) {
		t.Parallel()

		// given
		items := []entities.Item{
			{Name: "a", Type: "Notebook"},
			{Name: "b", Type: "Report"},
			{Name: "c", Type: "Notebook"},
		}

		// when
		filtered := entities.FilterItemsByType(items, []string{"Notebook"})

		// then
		require.Len(t, filtered, 2)
		assert.Equal(t, "a", filtered[0].Name)
		assert.Equal(t, "c", filtered[1].Name)
	})
}

func TestCountByType(t *testing.T) {
	t.Parallel()

	t.Run("should tally items per type", func(t *testing.T) {
		t.Parallel()

		// given
		items := []entities.Item{{Type: "Notebook"}, {Type: "Notebook"}, {Type: "Report"}}

		// when
		counts := entities.CountByType(items)

		// then
		assert.Equal(t, 2, counts["Notebook"])
		assert.Equal(t, 1, counts["Report"])
	})
}
