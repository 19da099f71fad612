//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/fabworks/fabdeploy/internal/domain/repositories"
)

// StubSchemaRepository is a stub implementation of repositories.SchemaRepository.
type StubSchemaRepository struct {
	// --- FindProjects ---
	Projects        []string
	FindProjectsErr error

	// --- BuildPackage ---
	DacpacPath string
	BuildErr   error
	// spy: projects built
	BuiltProjects []string

	// --- DeployPackage ---
	DeployErr error
	// spy: deployments received
	Deployments []SchemaDeployment
}

// SchemaDeployment records a single invocation of DeployPackage.
type SchemaDeployment struct {
	DacpacPath       string
	ConnectionString string
	Database         string
}

var _ repositories.SchemaRepository = (*StubSchemaRepository)(nil)

func (s *StubSchemaRepository) FindProjects(_, _ string) ([]string, error) {
	return s.Projects, s.FindProjectsErr
}

func (s *StubSchemaRepository) BuildPackage(
	_ context.Context, projectPath, _ string,
) (string, error) {
	s.BuiltProjects = append(s.BuiltProjects, projectPath)
	if s.BuildErr != nil {
		return "", s.BuildErr
	}
	return s.DacpacPath, nil
}

func (s *StubSchemaRepository) DeployPackage(
	_ context.Context, dacpacPath, connectionString, database string,
) error {
	s.Deployments = append(s.Deployments, SchemaDeployment{
		DacpacPath:       dacpacPath,
		ConnectionString: connectionString,
		Database:         database,
	})
	return s.DeployErr
}
