package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
)

// Validate is the interface for the validate command.
type Validate interface {
	Execute(ctx context.Context, settings *entities.Settings, parameterPath string) error
}

// ValidateCommand checks the configuration and parameter file without any
// network calls: structural validation plus environment coverage of every
// rule against the configured environments.
type ValidateCommand struct{}

// NewValidateCommand creates a new ValidateCommand.
func NewValidateCommand() *ValidateCommand {
	return &ValidateCommand{}
}

// Execute validates the parameter file against the configured environments.
func (it *ValidateCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	parameterPath string,
) error {
	logger.Infof("Configuration valid: %d environments", len(settings.Environments))

	if parameterPath == "" {
		logger.Info("No parameter file given, nothing more to validate")
		return nil
	}

	params, err := entities.LoadParameterFile(parameterPath)
	if err != nil {
		return err
	}

	rules := params.Rules()
	logger.Infof("Parameter file valid: %d find_replace, %d key_value_replace, %d spark_pool rules",
		len(params.FindReplace), len(params.KeyValueReplace), len(params.SparkPool))

	// A rule that covers no configured environment can never fire.
	uncovered := 0
	for i, rule := range rules {
		covered := false
		for env := range settings.Environments {
			if ruleCovers(rule, env) {
				covered = true
				break
			}
		}
		if !covered {
			uncovered++
			logger.Warnf("Rule %d (%s) covers none of the configured environments", i, rule.Kind())
		}
	}

	if uncovered > 0 {
		return fmt.Errorf("%d of %d rules cover no configured environment", uncovered, len(rules))
	}

	logger.Info("All rules cover at least one configured environment")
	return nil
}

func ruleCovers(rule entities.Rule, env string) bool {
	for _, e := range rule.Environments() {
		if e == env || e == entities.AllEnvironments {
			return true
		}
	}
	return false
}
