package controllers

import (
	"go.uber.org/dig"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewDeployController); err != nil {
		return err
	}
	if err := container.Provide(NewScanController); err != nil {
		return err
	}
	if err := container.Provide(NewValidateController); err != nil {
		return err
	}
	if err := container.Provide(NewSchemaController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	deployController *DeployController,
	scanController *ScanController,
	validateController *ValidateController,
	schemaController *SchemaController,
) *[]entities.Controller {
	return &[]entities.Controller{
		deployController,
		scanController,
		validateController,
		schemaController,
	}
}
