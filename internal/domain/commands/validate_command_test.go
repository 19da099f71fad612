//go:build unit

package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabworks/fabdeploy/internal/domain/commands"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestValidateCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should pass without a parameter file", func(t *testing.T) {
		t.Parallel()

		// when
		err := commands.NewValidateCommand().
			Execute(context.Background(), prodSettings(), "")

		// then
		require.NoError(t, err)
	})

	t.Run("should pass when every rule covers a configured environment", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeTempFile(t, "parameter.yml", `
find_replace:
  - find_value: "old"
    replace_value:
      PROD: "new"
  - find_value: "other"
    replace_value:
      _ALL_: "generic"
`)

		// when
		err := commands.NewValidateCommand().
			Execute(context.Background(), prodSettings(), path)

		// then
		require.NoError(t, err)
	})

	t.Run("should fail when a rule covers no configured environment", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeTempFile(t, "parameter.yml", `
find_replace:
  - find_value: "old"
    replace_value:
      STAGING: "new"
`)

		// when
		err := commands.NewValidateCommand().
			Execute(context.Background(), prodSettings(), path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 1 rules cover no configured environment")
	})

	t.Run("should fail on a structurally invalid parameter file", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeTempFile(t, "parameter.yml", `
find_replace:
  - replace_value:
      PROD: "new"
`)

		// when
		err := commands.NewValidateCommand().
			Execute(context.Background(), prodSettings(), path)

		// then
		require.Error(t, err)
	})

	t.Run("should fail when the parameter file does not exist", func(t *testing.T) {
		t.Parallel()

		// when
		err := commands.NewValidateCommand().
			Execute(context.Background(), prodSettings(), filepath.Join(t.TempDir(), "missing.yml"))

		// then
		require.Error(t, err)
	})
}
