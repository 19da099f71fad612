package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
	domainRepos "github.com/fabworks/fabdeploy/internal/domain/repositories"
	infraRepos "github.com/fabworks/fabdeploy/internal/infrastructure/repositories"
)

// Deploy is the interface for the deploy command.
type Deploy interface {
	Execute(ctx context.Context, settings *entities.Settings, opts entities.DeployOptions) error
}

// DeployCommand orchestrates a full deployment run:
// acquire source -> apply substitutions -> discover items -> publish -> report.
// Runs are a single linear pass with no persisted cross-run state.
type DeployCommand struct {
	sourceRegistry   *infraRepos.SourceRegistry
	applierRegistry  *infraRepos.ApplierRegistry
	publisherFactory domainRepos.PublisherFactory
	schemaFactory    domainRepos.SchemaFactory
}

// NewDeployCommand creates a new DeployCommand.
func NewDeployCommand(
	sourceRegistry *infraRepos.SourceRegistry,
	applierRegistry *infraRepos.ApplierRegistry,
	publisherFactory domainRepos.PublisherFactory,
	schemaFactory domainRepos.SchemaFactory,
) *DeployCommand {
	return &DeployCommand{
		sourceRegistry:   sourceRegistry,
		applierRegistry:  applierRegistry,
		publisherFactory: publisherFactory,
		schemaFactory:    schemaFactory,
	}
}

// Execute runs one deployment. It returns an error when any item fails, so
// the process exits non-zero on partial deployments.
func (it *DeployCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts entities.DeployOptions,
) error {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	if err := settings.CheckToolVersion(); err != nil {
		return err
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

	itemTypes := opts.ItemTypes
	if len(itemTypes) == 0 {
		itemTypes = envCfg.ItemTypes
	}
	for _, t := range itemTypes {
		if !entities.IsSupportedItemType(t) {
			return fmt.Errorf("unsupported item type %q", t)
		}
	}

	if opts.Branch == "" {
		opts.Branch = settings.Source.Branch
	}

	src, err := it.sourceRegistry.Get(infraRepos.KindFor(opts), opts)
	if err != nil {
		return err
	}
	defer src.Cleanup()

	logger.Infof("Deploying %s to workspace %s (environment %s)",
		src.Describe(), workspaceID, opts.Environment)

	workDir, acquireErr := src.Acquire(ctx)
	if acquireErr != nil {
		return acquireErr
	}

	// Substitution runs before discovery-based filtering so that rules
	// scoped to item types outside the deployment scope still refuse to fire.
	allItems, discoverErr := entities.DiscoverItems(workDir)
	if discoverErr != nil {
		return discoverErr
	}
	if len(allItems) == 0 {
		logger.Warn("No Fabric items found in the repository")
		return nil
	}

	items := entities.FilterItemsByType(allItems, itemTypes)
	logger.Infof("Discovered %d items (%d in scope)", len(allItems), len(items))

	if substErr := it.applyParameterFile(ctx, workDir, envCfg, opts, items); substErr != nil {
		return substErr
	}

	if opts.DryRun {
		logger.Info("DRY RUN - analysis complete, no items were published")
		for _, item := range items {
			logger.Infof("  would deploy %s", item)
		}
		return nil
	}

	publisher, pubErr := it.publisherFactory(workspaceID, settings.Auth)
	if pubErr != nil {
		return pubErr
	}

	summary := it.publish(ctx, publisher, items)
	summary.Render(os.Stdout)

	if opts.IncludeWarehouseSchemas {
		if schemaErr := deployWarehouseSchemas(ctx, publisher, it.schemaFactory, workDir, items); schemaErr != nil {
			// Published items stay published: there is no rollback across the
			// item/schema boundary.
			return fmt.Errorf("warehouse schema deployment failed: %w", schemaErr)
		}
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d of %d items failed to deploy", summary.Failed(), len(summary.Results))
	}

	logger.Infof("Deployment complete: %d items published", summary.Succeeded())
	return nil
}

// applyParameterFile loads the parameter file (if any) and applies every rule
// for the selected environment. Environment-exact rules run before rules that
// only match via the _ALL_ wildcard, so the exact rule wins when both target
// the same value.
func (it *DeployCommand) applyParameterFile(
	ctx context.Context,
	workDir string,
	envCfg entities.EnvironmentSettings,
	opts entities.DeployOptions,
	items []entities.Item,
) error {
	path := opts.ParameterFile
	if path == "" {
		path = envCfg.ParameterFile
	}
	if path == "" {
		logger.Debug("No parameter file configured, skipping substitution")
		return nil
	}

	params, err := entities.LoadParameterFile(path)
	if err != nil {
		return err
	}

	logger.Infof("Applying parameter file %s for environment %s", path, opts.Environment)

	total := 0
	for _, rule := range orderRules(params.Rules(), opts.Environment) {
		applier, applierErr := it.applierRegistry.Get(rule.Kind())
		if applierErr != nil {
			return applierErr
		}
		count, applyErr := applier.Apply(ctx, rule, opts.Environment, items)
		if applyErr != nil {
			return fmt.Errorf("substitution failed (%s): %w", rule.Kind(), applyErr)
		}
		total += count
	}

	logger.Infof("Substitution complete: %d file modifications", total)
	return nil
}

// orderRules moves rules carrying an exact entry for env ahead of rules that
// only apply via the _ALL_ wildcard, preserving declaration order otherwise.
func orderRules(rules []entities.Rule, env string) []entities.Rule {
	exact := make([]entities.Rule, 0, len(rules))
	wildcard := make([]entities.Rule, 0, len(rules))
	for _, rule := range rules {
		if hasExactEnv(rule, env) {
			exact = append(exact, rule)
		} else {
			wildcard = append(wildcard, rule)
		}
	}
	return append(exact, wildcard...)
}

func hasExactEnv(rule entities.Rule, env string) bool {
	for _, e := range rule.Environments() {
		if e == env {
			return true
		}
	}
	return false
}

// publish performs a bulk pass and, if the bulk pass fails, falls back to
// per-item publishing so one item's failure (for example a missing connection
// permission) does not block the rest.
func (it *DeployCommand) publish(
	ctx context.Context,
	publisher domainRepos.PublisherRepository,
	items []entities.Item,
) *entities.Summary {
	summary := &entities.Summary{}

	logger.Infof("Publishing %d items (bulk)...", len(items))
	failedAt := -1
	for i, item := range items {
		if err := publisher.PublishItem(ctx, item); err != nil {
			logger.Warnf("Bulk publish failed at %s: %v", item, err)
			summary.Add(item, err)
			failedAt = i
			break
		}
		summary.Add(item, nil)
	}
	if failedAt < 0 {
		return summary
	}

	logger.Info("Switching to per-item publishing for the remaining items...")
	currentType := ""
	for _, item := range items[failedAt+1:] {
		if item.Type != currentType {
			currentType = item.Type
			logger.Infof("Processing %s items...", currentType)
		}
		if err := publisher.PublishItem(ctx, item); err != nil {
			logger.Errorf("  failed to deploy %s: %v", item, err)
			summary.Add(item, err)
			continue
		}
		logger.Infof("  deployed %s", item)
		summary.Add(item, nil)
	}

	return summary
}
