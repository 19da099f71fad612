package repositories

import (
	"go.uber.org/dig"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
	domainRepos "github.com/fabworks/fabdeploy/internal/domain/repositories"
	"github.com/fabworks/fabdeploy/internal/infrastructure/repositories/fabric"
	"github.com/fabworks/fabdeploy/internal/infrastructure/repositories/findreplace"
	"github.com/fabworks/fabdeploy/internal/infrastructure/repositories/keyvalue"
	"github.com/fabworks/fabdeploy/internal/infrastructure/repositories/source"
	"github.com/fabworks/fabdeploy/internal/infrastructure/repositories/sparkpool"
	"github.com/fabworks/fabdeploy/internal/infrastructure/repositories/sqlpackage"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register applier registry with one applier per parameter rule kind
	if err := container.Provide(func() *ApplierRegistry {
		reg := NewApplierRegistry()
		reg.Register(findreplace.NewApplierRepository())
		reg.Register(keyvalue.NewApplierRepository())
		reg.Register(sparkpool.NewApplierRepository())
		return reg
	}); err != nil {
		return err
	}

	// Register source registry with git and local acquisition strategies
	if err := container.Provide(func() *SourceRegistry {
		reg := NewSourceRegistry()
		reg.Register(SourceGit, func(opts entities.DeployOptions) domainRepos.SourceRepository {
			return source.NewGitSourceRepository(opts.RepoURL, opts.Branch)
		})
		reg.Register(SourceLocal, func(opts entities.DeployOptions) domainRepos.SourceRepository {
			return source.NewLocalSourceRepository(opts.LocalPath)
		})
		return reg
	}); err != nil {
		return err
	}

	// Publisher and schema repositories need run-time parameters, so they are
	// provided as factories.
	if err := container.Provide(func() domainRepos.PublisherFactory {
		return fabric.NewPublisherRepository
	}); err != nil {
		return err
	}
	if err := container.Provide(func() domainRepos.SchemaFactory {
		return sqlpackage.NewSchemaRepository
	}); err != nil {
		return err
	}

	return nil
}
