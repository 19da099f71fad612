package sparkpool

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
	"github.com/fabworks/fabdeploy/internal/domain/repositories"
)

const (
	sparkComputeFile = "Sparkcompute.yml"
	instancePoolKey  = "instance_pool_id"
	poolTypeKey      = "type"
	poolNameKey      = "name"
)

// ApplierRepository implements repositories.ApplierRepository for spark_pool
// rules: inside Environment item definitions, a node referencing the source
// instance pool id is rewritten to the environment's {type, name} pair.
type ApplierRepository struct{}

// NewApplierRepository creates a new spark_pool applier.
func NewApplierRepository() repositories.ApplierRepository {
	return &ApplierRepository{}
}

// Kind returns the rule kind this applier handles.
func (it *ApplierRepository) Kind() string { return entities.KindSparkPool }

// Apply rewrites Sparkcompute definitions of matching Environment items.
func (it *ApplierRepository) Apply(
	ctx context.Context,
	rule entities.Rule,
	env string,
	items []entities.Item,
) (int, error) {
	sp, ok := rule.(*entities.SparkPoolRule)
	if !ok {
		return 0, fmt.Errorf("spark_pool applier received a %s rule", rule.Kind())
	}

	target, found := sp.TargetForEnv(env)
	if !found {
		logger.Debugf("[spark_pool] no target for environment %q, skipping rule", env)
		return 0, nil
	}

	count := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if !sp.MatchesItem(item) {
			continue
		}

		changed, err := replaceInItem(item, sp, target)
		if err != nil {
			return count, err
		}
		count += changed
	}
	return count, nil
}

func replaceInItem(item entities.Item, sp *entities.SparkPoolRule, target entities.SparkPoolTarget) (int, error) {
	count := 0

	walkErr := filepath.WalkDir(item.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != sparkComputeFile {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("failed to read %q: %w", path, readErr)
		}

		var doc map[string]any
		if unmarshalErr := yaml.Unmarshal(data, &doc); unmarshalErr != nil {
			return fmt.Errorf("failed to parse %q: %w", path, unmarshalErr)
		}

		if !remapPool(doc, sp.InstancePoolID, target) {
			return nil
		}

		out, marshalErr := yaml.Marshal(doc)
		if marshalErr != nil {
			return fmt.Errorf("failed to serialize %q: %w", path, marshalErr)
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		if writeErr := os.WriteFile(path, out, info.Mode()); writeErr != nil {
			return fmt.Errorf("failed to write %q: %w", path, writeErr)
		}

		logger.Debugf("[spark_pool] %s: remapped pool %s to %s/%s",
			item, sp.InstancePoolID, target.Type, target.Name)
		count++
		return nil
	})
	if walkErr != nil {
		return count, walkErr
	}
	return count, nil
}

// remapPool walks the document for a mapping whose instance_pool_id equals
// poolID and replaces the reference with the target's type and name.
func remapPool(node any, poolID string, target entities.SparkPoolTarget) bool {
	changed := false

	switch n := node.(type) {
	case map[string]any:
		if id, ok := n[instancePoolKey].(string); ok && id == poolID {
			delete(n, instancePoolKey)
			n[poolTypeKey] = target.Type
			n[poolNameKey] = target.Name
			changed = true
		}
		for _, child := range n {
			if remapPool(child, poolID, target) {
				changed = true
			}
		}
	case []any:
		for _, child := range n {
			if remapPool(child, poolID, target) {
				changed = true
			}
		}
	}

	return changed
}
