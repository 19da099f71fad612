package internal

import (
	"github.com/fabworks/fabdeploy/internal/domain/entities"
)

// AppInternal aggregates everything the CLI entry point needs from the
// container.
type AppInternal struct {
	controllers *[]entities.Controller
}

// NewAppInternal creates the application aggregate.
func NewAppInternal(controllers *[]entities.Controller) *AppInternal {
	return &AppInternal{controllers: controllers}
}

// GetControllers returns all registered subcommand controllers.
func (it *AppInternal) GetControllers() []entities.Controller {
	return *it.controllers
}
