package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
	domainRepos "github.com/fabworks/fabdeploy/internal/domain/repositories"
	infraRepos "github.com/fabworks/fabdeploy/internal/infrastructure/repositories"
)

const (
	warehouseReadyTimeout  = 5 * time.Minute
	warehouseReadyInterval = 10 * time.Second
)

// Schema is the interface for the standalone schema command.
type Schema interface {
	Execute(ctx context.Context, settings *entities.Settings, opts entities.DeployOptions) error
}

// SchemaCommand deploys SQL warehouse schemas without republishing items:
// locate SQL projects, build DACPACs, deploy them to each warehouse's SQL
// endpoint once the warehouse is reachable.
type SchemaCommand struct {
	sourceRegistry   *infraRepos.SourceRegistry
	publisherFactory domainRepos.PublisherFactory
	schemaFactory    domainRepos.SchemaFactory
}

// NewSchemaCommand creates a new SchemaCommand.
func NewSchemaCommand(
	sourceRegistry *infraRepos.SourceRegistry,
	publisherFactory domainRepos.PublisherFactory,
	schemaFactory domainRepos.SchemaFactory,
) *SchemaCommand {
	return &SchemaCommand{
		sourceRegistry:   sourceRegistry,
		publisherFactory: publisherFactory,
		schemaFactory:    schemaFactory,
	}
}

// Execute deploys schemas for every warehouse item found in the repository.
func (it *SchemaCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts entities.DeployOptions,
) error {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	envCfg, err := settings.Environment(opts.Environment)
	if err != nil {
		return err
	}

	workspaceID := opts.WorkspaceID
	if workspaceID == "" {
		workspaceID = envCfg.WorkspaceID
	}
	if _, parseErr := uuid.Parse(workspaceID); parseErr != nil {
		return fmt.Errorf("workspace id %q is not a valid GUID: %w", workspaceID, parseErr)
	}

	if opts.Branch == "" {
		opts.Branch = settings.Source.Branch
	}

	src, err := it.sourceRegistry.Get(infraRepos.KindFor(opts), opts)
	if err != nil {
		return err
	}
	defer src.Cleanup()

	workDir, acquireErr := src.Acquire(ctx)
	if acquireErr != nil {
		return acquireErr
	}

	items, discoverErr := entities.DiscoverItems(workDir)
	if discoverErr != nil {
		return discoverErr
	}

	publisher, pubErr := it.publisherFactory(workspaceID, settings.Auth)
	if pubErr != nil {
		return pubErr
	}

	return deployWarehouseSchemas(ctx, publisher, it.schemaFactory, workDir, items)
}

// deployWarehouseSchemas builds and deploys the SQL projects of every
// Warehouse item. Tool failures abort the schema step; already-published
// Fabric items are untouched.
func deployWarehouseSchemas(
	ctx context.Context,
	publisher domainRepos.PublisherRepository,
	schemaFactory domainRepos.SchemaFactory,
	workDir string,
	items []entities.Item,
) error {
	warehouses := entities.FilterItemsByType(items, []string{"Warehouse"})
	if len(warehouses) == 0 {
		logger.Info("No warehouse items found, skipping schema deployment")
		return nil
	}

	schemaRepo, err := schemaFactory()
	if err != nil {
		return err
	}

	for _, warehouse := range warehouses {
		projects, findErr := schemaRepo.FindProjects(workDir, warehouse.Name)
		if findErr != nil {
			return findErr
		}
		if len(projects) == 0 {
			logger.Infof("No SQL projects for warehouse %q, skipping", warehouse.Name)
			continue
		}

		connectionString, waitErr := awaitWarehouse(ctx, publisher, warehouse.Name)
		if waitErr != nil {
			return waitErr
		}

		for _, project := range projects {
			if deployErr := buildAndDeploy(ctx, schemaRepo, project, connectionString, warehouse.Name); deployErr != nil {
				return deployErr
			}
		}
	}

	logger.Info("Warehouse schema deployment complete")
	return nil
}

func buildAndDeploy(
	ctx context.Context,
	schemaRepo domainRepos.SchemaRepository,
	project, connectionString, warehouseName string,
) error {
	outputDir, err := os.MkdirTemp("", "fabdeploy_dacpac_")
	if err != nil {
		return fmt.Errorf("failed to create build directory: %w", err)
	}
	defer os.RemoveAll(outputDir)

	logger.Infof("Building %s...", project)
	dacpac, buildErr := schemaRepo.BuildPackage(ctx, project, outputDir)
	if buildErr != nil {
		return buildErr
	}

	logger.Infof("Deploying %s to warehouse %q...", dacpac, warehouseName)
	return schemaRepo.DeployPackage(ctx, dacpac, connectionString, warehouseName)
}

// awaitWarehouse polls until the warehouse's SQL endpoint is resolvable. A
// freshly published warehouse can take minutes to become reachable.
func awaitWarehouse(
	ctx context.Context,
	publisher domainRepos.PublisherRepository,
	warehouseName string,
) (string, error) {
	deadline := time.Now().Add(warehouseReadyTimeout)

	for {
		connectionString, err := publisher.WarehouseConnectionString(ctx, warehouseName)
		if err == nil {
			return connectionString, nil
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf(
				"warehouse %q not reachable within %s: %w",
				warehouseName, warehouseReadyTimeout, err,
			)
		}

		logger.Debugf("Warehouse %q not ready yet: %v", warehouseName, err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(warehouseReadyInterval):
		}
	}
}
