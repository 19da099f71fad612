//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/fabworks/fabdeploy/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// ItemBuilder helps create test items with a fluent interface.
type ItemBuilder struct {
	*testkit.BaseBuilder
	name     string
	itemType string
	path     string
}

// NewItemBuilder creates a new item builder with sensible defaults.
func NewItemBuilder() *ItemBuilder {
	return &ItemBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "Sample",
		itemType:    "Notebook",
		path:        "/tmp/repo/Sample.Notebook",
	}
}

// WithName sets the item display name.
func (b *ItemBuilder) WithName(name string) *ItemBuilder {
	b.name = name
	return b
}

// WithType sets the item type.
func (b *ItemBuilder) WithType(itemType string) *ItemBuilder {
	b.itemType = itemType
	return b
}

// WithPath sets the item folder path.
func (b *ItemBuilder) WithPath(path string) *ItemBuilder {
	b.path = path
	return b
}

// Build creates the item (satisfies testkit.Builder interface).
func (b *ItemBuilder) Build() interface{} {
	return b.BuildItem()
}

// BuildItem creates the item with a concrete return type.
func (b *ItemBuilder) BuildItem() entities.Item {
	return entities.Item{
		Name: b.name,
		Type: b.itemType,
		Path: b.path,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *ItemBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "Sample"
	b.itemType = "Notebook"
	b.path = "/tmp/repo/Sample.Notebook"
	return b
}

// Clone creates a deep copy of the ItemBuilder.
func (b *ItemBuilder) Clone() testkit.Builder {
	return &ItemBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:        b.name,
		itemType:    b.itemType,
		path:        b.path,
	}
}
