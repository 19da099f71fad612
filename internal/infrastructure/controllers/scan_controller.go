package controllers

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/fabworks/fabdeploy/internal/domain/commands"
	"github.com/fabworks/fabdeploy/internal/domain/entities"
)

// ScanController handles the "scan" subcommand.
type ScanController struct {
	command commands.Scan
}

// NewScanController creates a new ScanController.
func NewScanController(command commands.Scan) *ScanController {
	return &ScanController{command: command}
}

// GetBind returns the Cobra command metadata for the scan controller.
func (it *ScanController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "scan",
		Short: "Analyze a repository without deploying",
		Long: `Discover the Fabric items in a repository and print a per-type
breakdown. No workspace is contacted and nothing is modified.`,
	}
}

// AddFlags adds the scan-specific flags to the given Cobra command.
func (it *ScanController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("repo-url", "", "Git repository URL to scan")
	cmd.Flags().String("branch", "main", "Git branch to scan")
	cmd.Flags().String("local-path", "", "Local directory to scan (alternative to --repo-url)")
}

// Execute runs the scan command.
func (it *ScanController) Execute(cmd *cobra.Command, _ []string) error {
	repoURL, _ := cmd.Flags().GetString("repo-url")
	branch, _ := cmd.Flags().GetString("branch")
	localPath, _ := cmd.Flags().GetString("local-path")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if repoURL == "" && localPath == "" {
		return errors.New("either --repo-url or --local-path must be specified")
	}
	if repoURL != "" && localPath != "" {
		return errors.New("cannot specify both --repo-url and --local-path")
	}

	//nolint:exhaustruct // scan needs no workspace or substitution options
	return it.command.Execute(context.Background(), entities.DeployOptions{
		RepoURL:   repoURL,
		Branch:    branch,
		LocalPath: localPath,
		Verbose:   verbose,
	})
}
