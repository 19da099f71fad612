package controllers

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fabworks/fabdeploy/internal/domain/commands"
	"github.com/fabworks/fabdeploy/internal/domain/entities"
)

// ValidateController handles the "validate" subcommand.
type ValidateController struct {
	command commands.Validate
}

// NewValidateController creates a new ValidateController.
func NewValidateController(command commands.Validate) *ValidateController {
	return &ValidateController{command: command}
}

// GetBind returns the Cobra command metadata for the validate controller.
func (it *ValidateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "validate",
		Short: "Validate the configuration and parameter file",
		Long: `Load the configuration and parameter file, run all structural
validations, and check that every rule covers at least one configured
environment. No network calls are made.`,
	}
}

// AddFlags adds the validate-specific flags to the given Cobra command.
func (it *ValidateController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("parameter-file", "", "Parameter file to validate")
}

// Execute runs the validate command.
func (it *ValidateController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	parameterFile, _ := cmd.Flags().GetString("parameter-file")
	return it.command.Execute(context.Background(), settings, parameterFile)
}
