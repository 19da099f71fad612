package repositories

import (
	"fmt"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
	domainRepos "github.com/fabworks/fabdeploy/internal/domain/repositories"
)

// Source kinds.
const (
	SourceGit   = "git"
	SourceLocal = "local"
)

// SourceFactory is a constructor function that creates a SourceRepository
// for the given deployment options.
type SourceFactory func(opts entities.DeployOptions) domainRepos.SourceRepository

// SourceRegistry manages the registered repository source implementations.
type SourceRegistry struct {
	sources map[string]SourceFactory
}

// NewSourceRegistry creates an empty source registry.
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{
		sources: make(map[string]SourceFactory),
	}
}

// Register adds a source factory under the given kind.
func (r *SourceRegistry) Register(kind string, factory SourceFactory) {
	r.sources[kind] = factory
}

// Get returns a configured source for the given kind.
func (r *SourceRegistry) Get(kind string, opts entities.DeployOptions) (domainRepos.SourceRepository, error) {
	factory, ok := r.sources[kind]
	if !ok {
		return nil, fmt.Errorf("unknown source kind: %q", kind)
	}
	return factory(opts), nil
}

// KindFor picks the source kind implied by the deployment options.
func KindFor(opts entities.DeployOptions) string {
	if opts.LocalPath != "" {
		return SourceLocal
	}
	return SourceGit
}
