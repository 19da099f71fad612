package repositories

import (
	"fmt"

	domainRepos "github.com/fabworks/fabdeploy/internal/domain/repositories"
)

// ApplierRegistry manages the registered substitution appliers, one per
// parameter rule kind.
type ApplierRegistry struct {
	appliers map[string]domainRepos.ApplierRepository
}

// NewApplierRegistry creates an empty applier registry.
func NewApplierRegistry() *ApplierRegistry {
	return &ApplierRegistry{
		appliers: make(map[string]domainRepos.ApplierRepository),
	}
}

// Register adds an applier under its rule kind.
func (r *ApplierRegistry) Register(a domainRepos.ApplierRepository) {
	r.appliers[a.Kind()] = a
}

// Get returns the applier for the given rule kind.
func (r *ApplierRegistry) Get(kind string) (domainRepos.ApplierRepository, error) {
	a, ok := r.appliers[kind]
	if !ok {
		return nil, fmt.Errorf("no applier registered for rule kind %q", kind)
	}
	return a, nil
}

// Kinds returns the list of registered rule kinds.
func (r *ApplierRegistry) Kinds() []string {
	kinds := make([]string, 0, len(r.appliers))
	for kind := range r.appliers {
		kinds = append(kinds, kind)
	}
	return kinds
}
