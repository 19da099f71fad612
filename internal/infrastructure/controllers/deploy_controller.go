package controllers

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fabworks/fabdeploy/internal/domain/commands"
	"github.com/fabworks/fabdeploy/internal/domain/entities"
)

// DeployController handles the "deploy" subcommand.
type DeployController struct {
	command commands.Deploy
}

// NewDeployController creates a new DeployController.
func NewDeployController(command commands.Deploy) *DeployController {
	return &DeployController{command: command}
}

// GetBind returns the Cobra command metadata for the deploy controller.
func (it *DeployController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "deploy",
		Short: "Deploy Fabric items to a workspace",
		Long: `Deploy Fabric items from a Git repository or local directory into a
target workspace.

Environment-specific values are substituted before publishing using the
parameter file configured for the environment (find_replace,
key_value_replace, and spark_pool rules). A failing bulk publish falls
back to per-item publishing so one item cannot block the rest.`,
	}
}

// AddFlags adds the deploy-specific flags to the given Cobra command.
func (it *DeployController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("workspace-id", "", "Target workspace ID (overrides the environment's workspace_id)")
	cmd.Flags().StringP("environment", "e", "", "Target environment name (required)")
	cmd.Flags().String("repo-url", "", "Git repository URL to deploy from")
	cmd.Flags().String("branch", "", "Git branch to deploy from (default from config)")
	cmd.Flags().String("local-path", "", "Local directory containing Fabric items (alternative to --repo-url)")
	cmd.Flags().String("parameter-file", "", "Parameter file path (overrides the environment's parameter_file)")
	cmd.Flags().StringSlice("item-types", nil, "Restrict deployment to these item types")
	cmd.Flags().Bool("include-warehouse-schemas", false, "Also build and deploy SQL warehouse schemas")
}

// Execute runs the deploy command.
func (it *DeployController) Execute(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	opts, optsErr := deployOptionsFromFlags(cmd)
	if optsErr != nil {
		return optsErr
	}
	if opts.Environment == "" {
		return errors.New("--environment is required")
	}

	logger.Info("Starting deployment run...")
	return it.command.Execute(ctx, settings, opts)
}

// deployOptionsFromFlags builds DeployOptions common to deploy and schema.
func deployOptionsFromFlags(cmd *cobra.Command) (entities.DeployOptions, error) {
	workspaceID, _ := cmd.Flags().GetString("workspace-id")
	environment, _ := cmd.Flags().GetString("environment")
	repoURL, _ := cmd.Flags().GetString("repo-url")
	branch, _ := cmd.Flags().GetString("branch")
	localPath, _ := cmd.Flags().GetString("local-path")
	parameterFile, _ := cmd.Flags().GetString("parameter-file")
	itemTypes, _ := cmd.Flags().GetStringSlice("item-types")
	includeSchemas, _ := cmd.Flags().GetBool("include-warehouse-schemas")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if repoURL == "" && localPath == "" {
		return entities.DeployOptions{}, errors.New("either --repo-url or --local-path must be specified")
	}
	if repoURL != "" && localPath != "" {
		return entities.DeployOptions{}, errors.New("cannot specify both --repo-url and --local-path")
	}

	return entities.DeployOptions{
		WorkspaceID:             workspaceID,
		Environment:             environment,
		RepoURL:                 repoURL,
		Branch:                  branch,
		LocalPath:               localPath,
		ParameterFile:           parameterFile,
		ItemTypes:               itemTypes,
		DryRun:                  dryRun,
		Verbose:                 verbose,
		IncludeWarehouseSchemas: includeSchemas,
	}, nil
}

// loadSettings resolves and loads the configuration file.
func loadSettings(cmd *cobra.Command) (*entities.Settings, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		found, err := entities.FindSettingsFile()
		if err != nil {
			return nil, errors.New(
				"no config file found: specify one with --config or create fabdeploy.yaml",
			)
		}
		cfgPath = found
	}

	logger.Infof("Using config file: %s", cfgPath)
	return entities.NewSettings(cfgPath)
}
