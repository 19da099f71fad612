package keyvalue

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	logger "github.com/sirupsen/logrus"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
	"github.com/fabworks/fabdeploy/internal/domain/repositories"
)

// ApplierRepository implements repositories.ApplierRepository for
// key_value_replace rules: JSON files of matching items are parsed, the
// JSONPath find_key is evaluated, and every match is overwritten with the
// environment's value. A path with no matches leaves the file byte-for-byte
// unchanged.
type ApplierRepository struct{}

// NewApplierRepository creates a new key_value_replace applier.
func NewApplierRepository() repositories.ApplierRepository {
	return &ApplierRepository{}
}

// Kind returns the rule kind this applier handles.
func (it *ApplierRepository) Kind() string { return entities.KindKeyValueReplace }

// Apply overwrites JSONPath matches in every matching JSON file.
func (it *ApplierRepository) Apply(
	ctx context.Context,
	rule entities.Rule,
	env string,
	items []entities.Item,
) (int, error) {
	kv, ok := rule.(*entities.KeyValueReplaceRule)
	if !ok {
		return 0, fmt.Errorf("key_value_replace applier received a %s rule", rule.Kind())
	}

	value, _, found := kv.ReplaceValue.ForEnv(env)
	if !found {
		logger.Debugf("[key_value_replace] no value for environment %q, skipping rule", env)
		return 0, nil
	}

	expr, parseErr := jp.ParseString(kv.FindKey)
	if parseErr != nil {
		return 0, fmt.Errorf("invalid JSONPath %q: %w", kv.FindKey, parseErr)
	}

	count := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if !kv.MatchesItem(item) {
			continue
		}

		changed, err := replaceInItem(item, kv, expr, value)
		if err != nil {
			return count, err
		}
		count += changed
	}
	return count, nil
}

func replaceInItem(
	item entities.Item,
	kv *entities.KeyValueReplaceRule,
	expr jp.Expr,
	value string,
) (int, error) {
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
		if !kv.FilePaths.MatchesPath(rel) {
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("failed to read %q: %w", path, readErr)
		}

		doc, docErr := oj.Parse(data)
		if docErr != nil {
			return fmt.Errorf("failed to parse %q as JSON: %w", path, docErr)
		}

		// An unmatched JSONPath is a documented no-op: do not rewrite.
		if len(expr.Get(doc)) == 0 {
			logger.Debugf("[key_value_replace] %s: %q matched nothing in %s", item, kv.FindKey, rel)
			return nil
		}

		if setErr := expr.Set(doc, value); setErr != nil {
			return fmt.Errorf("failed to set %q in %q: %w", kv.FindKey, path, setErr)
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		out := oj.JSON(doc, 2) + "\n"
		if writeErr := os.WriteFile(path, []byte(out), info.Mode()); writeErr != nil {
			return fmt.Errorf("failed to write %q: %w", path, writeErr)
		}

		logger.Debugf("[key_value_replace] %s: overwrote %q in %s", item, kv.FindKey, rel)
		count++
		return nil
	})
	if walkErr != nil {
		return count, walkErr
	}
	return count, nil
}
