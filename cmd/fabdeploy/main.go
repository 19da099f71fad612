package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fabworks/fabdeploy/internal"
)

// flagBinder is implemented by controllers that register their own flags.
type flagBinder interface {
	AddFlags(cmd *cobra.Command)
}

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "fabdeploy",
		Short: "Deploy Microsoft Fabric workspace items from a Git repository",
		Long: `A CLI tool that deploys Microsoft Fabric workspace items (notebooks,
lakehouses, warehouses, reports, pipelines, ...) from a Git repository or
local directory into a target workspace.

Before publishing, environment-specific values are substituted using a
YAML parameter file (find_replace, key_value_replace, spark_pool rules).
SQL warehouse schemas can optionally be built and deployed via dotnet and
SqlPackage.

Typical usage:
  fabdeploy deploy --environment PROD --repo-url https://dev.azure.com/org/proj/_git/repo
  fabdeploy scan --local-path ./my-fabric-items
  fabdeploy validate --parameter-file config/parameter.yml`,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect fabdeploy.yaml)")
	cmd.PersistentFlags().Bool("dry-run", false,
		"Discover and substitute without publishing anything")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			RunE: func(command *cobra.Command, arguments []string) error {
				return ctrl.Execute(command, arguments)
			},
		}

		// Add controller-specific flags
		if binder, ok := ctrl.(flagBinder); ok {
			binder.AddFlags(subCmd)
		}

		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	cobraRoot := buildRootCommand()

	// Inject controllers via DIG
	appContext := injectAppContext()
	addSubcommands(cobraRoot, appContext)

	if err := cobraRoot.Execute(); err != nil {
		logger.Errorf("Error executing 'fabdeploy': %s", err)
		os.Exit(1)
	}
}
