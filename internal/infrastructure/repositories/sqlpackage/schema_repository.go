package sqlpackage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/fabworks/fabdeploy/internal/domain/repositories"
)

// Well-known SqlPackage install locations checked after PATH.
var sqlPackagePaths = []string{
	`C:\Program Files\Microsoft SQL Server\160\DAC\bin\SqlPackage.exe`,
	`C:\Program Files\Microsoft SQL Server\150\DAC\bin\SqlPackage.exe`,
	`C:\Program Files\Microsoft SQL Server\SqlPackage\SqlPackage.exe`,
}

// SchemaRepository implements repositories.SchemaRepository by shelling out
// to dotnet (DACPAC build) and SqlPackage (deploy). External tool output is
// surfaced verbatim on failure.
type SchemaRepository struct {
	sqlPackagePath string
}

// NewSchemaRepository locates SqlPackage and returns the repository. Missing
// SqlPackage is an error: the schema step cannot run without it.
func NewSchemaRepository() (repositories.SchemaRepository, error) {
	path, err := findSQLPackage()
	if err != nil {
		return nil, err
	}
	return &SchemaRepository{sqlPackagePath: path}, nil
}

func findSQLPackage() (string, error) {
	if path, err := exec.LookPath("sqlpackage"); err == nil {
		logger.Debug("Found SqlPackage in PATH")
		return path, nil
	}

	for _, candidate := range sqlPackagePaths {
		if _, err := os.Stat(candidate); err == nil {
			logger.Debugf("Found SqlPackage at %s", candidate)
			return candidate, nil
		}
	}

	return "", fmt.Errorf(
		"SqlPackage not found; install it with: dotnet tool install -g microsoft.sqlpackage",
	)
}

// FindProjects locates .sqlproj files for the given warehouse. Projects
// inside the warehouse's item folder win; otherwise any project whose file
// name matches the warehouse name is used.
func (it *SchemaRepository) FindProjects(workDir, warehouseName string) ([]string, error) {
	var inItem, byName []string

	itemFolder := warehouseName + ".Warehouse"
	walkErr := filepath.WalkDir(workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".sqlproj") {
			return nil
		}

		if strings.Contains(path, string(filepath.Separator)+itemFolder+string(filepath.Separator)) {
			inItem = append(inItem, path)
			return nil
		}
		base := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		if strings.EqualFold(base, warehouseName) {
			byName = append(byName, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to scan for SQL projects: %w", walkErr)
	}

	if len(inItem) > 0 {
		return inItem, nil
	}
	return byName, nil
}

// BuildPackage compiles a SQL project into a DACPAC via dotnet build.
func (it *SchemaRepository) BuildPackage(
	ctx context.Context,
	projectPath, outputDir string,
) (string, error) {
	//nolint:gosec // projectPath comes from the repository working copy
	cmd := exec.CommandContext(ctx, "dotnet", "build", projectPath,
		"--configuration", "Release",
		"--output", outputDir,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("dotnet build failed for %q: %w\n%s", projectPath, err, output)
	}

	matches, globErr := filepath.Glob(filepath.Join(outputDir, "*.dacpac"))
	if globErr != nil {
		return "", globErr
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("dotnet build produced no DACPAC in %q", outputDir)
	}
	return matches[0], nil
}

// DeployPackage publishes a DACPAC to the warehouse SQL endpoint.
func (it *SchemaRepository) DeployPackage(
	ctx context.Context,
	dacpacPath, connectionString, database string,
) error {
	target := fmt.Sprintf(
		"Server=%s;Database=%s;Authentication=ActiveDirectoryDefault;Encrypt=True;",
		connectionString, database,
	)

	//nolint:gosec // dacpacPath comes from the build output directory
	cmd := exec.CommandContext(ctx, it.sqlPackagePath,
		"/Action:Publish",
		"/SourceFile:"+dacpacPath,
		"/TargetConnectionString:"+target,
		"/p:BlockOnPossibleDataLoss=True",
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("SqlPackage deploy failed for %q: %w\n%s", database, err, output)
	}
	return nil
}
