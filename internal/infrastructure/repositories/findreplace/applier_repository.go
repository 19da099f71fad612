package findreplace

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
	"github.com/fabworks/fabdeploy/internal/domain/repositories"
)

// ApplierRepository implements repositories.ApplierRepository for
// find_replace rules: literal substring replacement across the files of
// matching items. Re-applying for the same environment is a no-op as long as
// the replacement no longer contains the find value.
type ApplierRepository struct{}

// NewApplierRepository creates a new find_replace applier.
func NewApplierRepository() repositories.ApplierRepository {
	return &ApplierRepository{}
}

// Kind returns the rule kind this applier handles.
func (it *ApplierRepository) Kind() string { return entities.KindFindReplace }

// Apply rewrites every matching file that contains the find value.
func (it *ApplierRepository) Apply(
	ctx context.Context,
	rule entities.Rule,
	env string,
	items []entities.Item,
) (int, error) {
	fr, ok := rule.(*entities.FindReplaceRule)
	if !ok {
		return 0, fmt.Errorf("find_replace applier received a %s rule", rule.Kind())
	}

	value, _, found := fr.ReplaceValue.ForEnv(env)
	if !found {
		logger.Debugf("[find_replace] no value for environment %q, skipping rule", env)
		return 0, nil
	}

	count := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if !fr.MatchesItem(item) {
			continue
		}

		changed, err := replaceInItem(item, fr, value)
		if err != nil {
			return count, err
		}
		count += changed
	}
	return count, nil
}

func replaceInItem(item entities.Item, fr *entities.FindReplaceRule, value string) (int, error) {
	find := []byte(fr.FindValue)
	replace := []byte(value)
	count := 0

	walkErr := filepath.WalkDir(item.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(item.Path, path)
		if relErr != nil {
			return relErr
		}
		if !fr.FilePaths.MatchesPath(rel) {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("failed to read %q: %w", path, readErr)
		}
		if !bytes.Contains(data, find) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		if writeErr := os.WriteFile(path, bytes.ReplaceAll(data, find, replace), info.Mode()); writeErr != nil {
			return fmt.Errorf("failed to write %q: %w", path, writeErr)
		}

		logger.Debugf("[find_replace] %s: replaced %q in %s", item, fr.FindValue, rel)
		count++
		return nil
	})
	if walkErr != nil {
		return count, walkErr
	}
	return count, nil
}
