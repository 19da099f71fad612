package repositories

import (
	"context"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
)

// ApplierRepository applies one kind of parameter rule to the working copy.
// Apply returns the number of file modifications it performed. An applier
// must leave non-matching files byte-for-byte untouched.
type ApplierRepository interface {
	// Kind returns the rule kind this applier handles.
	Kind() string
	// Apply rewrites files of the matching items for the selected environment.
	Apply(ctx context.Context, rule entities.Rule, env string, items []entities.Item) (int, error)
}
