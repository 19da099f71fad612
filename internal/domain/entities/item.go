package entities

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// supportedItemTypes lists every deployable item type, in publish order:
// storage and environments first so notebooks, pipelines, and reports that
// reference them resolve on first pass.
var supportedItemTypes = []string{
	// Storage
	"Lakehouse",
	"Warehouse",
	"SQLDatabase",
	"MirroredDatabase",
	// Compute environments
	"Environment",
	"VariableLibrary",
	// Real-time stores
	"Eventhouse",
	"KQLDatabase",
	// Processing
	"Notebook",
	"DataPipeline",
	"Dataflow",
	"CopyJob",
	"Eventstream",
	"ApacheAirflowJob",
	"MountedDataFactory",
	// Presentation and triggers
	"SemanticModel",
	"Report",
	"KQLQueryset",
	"KQLDashboard",
	"Reflex",
	"GraphQLApi",
}

var itemTypeOrder = func() map[string]int {
	order := make(map[string]int, len(supportedItemTypes))
	for i, t := range supportedItemTypes {
		order[t] = i
	}
	return order
}()

// SupportedItemTypes returns the supported item types in publish order.
func SupportedItemTypes() []string {
	out := make([]string, len(supportedItemTypes))
	copy(out, supportedItemTypes)
	return out
}

// IsSupportedItemType reports whether itemType is deployable.
func IsSupportedItemType(itemType string) bool {
	_, ok := itemTypeOrder[itemType]
	return ok
}

// Item is a Fabric item found in the repository working copy: a directory
// named <item-name>.<item-type> containing the item's definition files.
type Item struct {
	Name string
	Type string
	Path string // absolute path of the item folder
}

// String returns the canonical <name>.<type> label.
func (i Item) String() string {
	return i.Name + "." + i.Type
}

// ParseItemFolder splits a directory name into item name and type. The type
// is the suffix after the last dot and must be a supported item type.
func ParseItemFolder(folderName string) (name, itemType string, ok bool) {
	idx := strings.LastIndex(folderName, ".")
	if idx <= 0 || idx == len(folderName)-1 {
		return "", "", false
	}
	name, itemType = folderName[:idx], folderName[idx+1:]
	if !IsSupportedItemType(itemType) {
		return "", "", false
	}
	return name, itemType, true
}

// DiscoverItems walks the repository working copy and returns all Fabric
// items, in publish order. Item folders are not descended into: nested
// directories inside an item belong to its definition.
func DiscoverItems(root string) ([]Item, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("repository directory %q: %w", root, err)
	}

	var items []Item
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		if path == root {
			return nil
		}

		name, itemType, ok := ParseItemFolder(d.Name())
		if !ok {
			return nil
		}
		items = append(items, Item{Name: name, Type: itemType, Path: path})
		return filepath.SkipDir
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to scan repository: %w", walkErr)
	}

	SortItems(items)
	return items, nil
}

// SortItems orders items by publish order, then by name for stable output.
func SortItems(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		oa, ob := itemTypeOrder[items[a].Type], itemTypeOrder[items[b].Type]
		if oa != ob {
			return oa < ob
		}
		return items[a].Name < items[b].Name
	})
}

// FilterItemsByType keeps only items whose type is in the given set. An empty
// set keeps everything.
func FilterItemsByType(items []Item, itemTypes []string) []Item {
	if len(itemTypes) == 0 {
		return items
	}
	wanted := make(map[string]bool, len(itemTypes))
	for _, t := range itemTypes {
		wanted[t] = true
	}
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if wanted[item.Type] {
			out = append(out, item)
		}
	}
	return out
}

// CountByType tallies items per item type.
func CountByType(items []Item) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		counts[item.Type]++
	}
	return counts
}
