package controllers

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/fabworks/fabdeploy/internal/domain/commands"
	"github.com/fabworks/fabdeploy/internal/domain/entities"
)

// SchemaController handles the "schema" subcommand.
type SchemaController struct {
	command commands.Schema
}

// NewSchemaController creates a new SchemaController.
func NewSchemaController(command commands.Schema) *SchemaController {
	return &SchemaController{command: command}
}

// GetBind returns the Cobra command metadata for the schema controller.
func (it *SchemaController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "schema",
		Short: "Deploy SQL warehouse schemas",
		Long: `Build the SQL projects associated with Warehouse items into DACPAC
packages (dotnet build) and deploy them to each warehouse's SQL endpoint
(SqlPackage), waiting for the warehouse to become reachable first.

Items themselves are not republished; use "deploy
--include-warehouse-schemas" for the combined flow.`,
	}
}

// AddFlags adds the schema-specific flags to the given Cobra command.
func (it *SchemaController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("workspace-id", "", "Target workspace ID (overrides the environment's workspace_id)")
	cmd.Flags().StringP("environment", "e", "", "Target environment name (required)")
	cmd.Flags().String("repo-url", "", "Git repository URL holding the SQL projects")
	cmd.Flags().String("branch", "", "Git branch (default from config)")
	cmd.Flags().String("local-path", "", "Local directory holding the SQL projects")
}

// Execute runs the schema command.
func (it *SchemaController) Execute(cmd *cobra.Command, _ []string) error {
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

	return it.command.Execute(context.Background(), settings, opts)
}
