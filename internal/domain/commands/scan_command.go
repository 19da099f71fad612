package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	logger "github.com/sirupsen/logrus"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
	infraRepos "github.com/fabworks/fabdeploy/internal/infrastructure/repositories"
)

// Scan is the interface for the scan command (repository analysis only).
type Scan interface {
	Execute(ctx context.Context, opts entities.DeployOptions) error
}

// ScanCommand analyzes a repository without touching any workspace: it
// discovers Fabric items and prints a per-type breakdown.
type ScanCommand struct {
	sourceRegistry *infraRepos.SourceRegistry
}

// NewScanCommand creates a new ScanCommand.
func NewScanCommand(sourceRegistry *infraRepos.SourceRegistry) *ScanCommand {
	return &ScanCommand{sourceRegistry: sourceRegistry}
}

// Execute acquires the source and reports the items found.
func (it *ScanCommand) Execute(ctx context.Context, opts entities.DeployOptions) error {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
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

	if len(items) == 0 {
		logger.Warn("No Fabric items found in the repository")
		logger.Info("Expected structure: <folder>/<item-name>.<item-type>/ (e.g. analysis.Notebook)")
		return nil
	}

	for _, item := range items {
		logger.Debugf("Found %s at %s", item, item.Path)
	}

	counts := entities.CountByType(items)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ITEM TYPE\tCOUNT")
	for _, itemType := range entities.SupportedItemTypes() {
		if n, found := counts[itemType]; found {
			fmt.Fprintf(tw, "%s\t%d\n", itemType, n)
		}
	}
	fmt.Fprintf(tw, "TOTAL\t%d\n", len(items))
	tw.Flush()

	return nil
}
