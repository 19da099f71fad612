package repositories

import (
	"context"
)

// SchemaRepository builds and deploys SQL warehouse schemas via external
// tooling (dotnet build + SqlPackage). Tool failures are surfaced verbatim
// and are fatal to the schema step only.
type SchemaRepository interface {
	// FindProjects locates SQL project files (.sqlproj) associated with the
	// given warehouse item folder, searching the whole working copy when the
	// item folder itself carries none.
	FindProjects(workDir, warehouseName string) ([]string, error)
	// BuildPackage compiles a SQL project into a DACPAC and returns its path.
	BuildPackage(ctx context.Context, projectPath, outputDir string) (string, error)
	// DeployPackage publishes a DACPAC to the warehouse SQL endpoint.
	DeployPackage(ctx context.Context, dacpacPath, connectionString, database string) error
}

// SchemaFactory builds a schema repository. Kept lazy so runs that skip the
// schema step never require the external tools to be installed.
type SchemaFactory func() (SchemaRepository, error)
