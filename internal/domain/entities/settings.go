package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Settings is the top-level configuration for fabdeploy, loaded from
// fabdeploy.yaml. It maps environment names to target workspaces and holds
// shared authentication material.
type Settings struct {
	Environments   map[string]EnvironmentSettings `yaml:"environments"    validate:"required,min=1,dive"`
	Auth           AuthSettings                   `yaml:"auth"`
	Source         SourceSettings                 `yaml:"source"`
	MinToolVersion string                         `yaml:"min_tool_version"`
}

// EnvironmentSettings describes one deployment target.
type EnvironmentSettings struct {
	WorkspaceID   string   `yaml:"workspace_id"   validate:"required,uuid"`
	ItemTypes     []string `yaml:"item_types"`
	ParameterFile string   `yaml:"parameter_file"`
}

// AuthSettings holds service principal credentials. Values support ${ENV_VAR}
// expansion and token-file indirection. When empty, the ambient Azure
// credential chain is used instead.
type AuthSettings struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// ServicePrincipal reports whether all three credential fields are present.
func (a AuthSettings) ServicePrincipal() bool {
	return a.TenantID != "" && a.ClientID != "" && a.ClientSecret != ""
}

// SourceSettings holds repository acquisition defaults.
type SourceSettings struct {
	Branch string `yaml:"branch" default:"main"`
}

// NewSettings loads, resolves, and validates the settings file at path.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var settings Settings
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	if defaultsErr := defaults.Set(&settings); defaultsErr != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", defaultsErr)
	}

	// Resolve secrets (env vars and file paths)
	settings.Auth.TenantID = ResolveSecret(settings.Auth.TenantID)
	settings.Auth.ClientID = ResolveSecret(settings.Auth.ClientID)
	settings.Auth.ClientSecret = ResolveSecret(settings.Auth.ClientSecret)

	if validateErr := settings.validate(); validateErr != nil {
		return nil, validateErr
	}

	return &settings, nil
}

// Environment returns the settings block for the named environment.
func (s *Settings) Environment(name string) (EnvironmentSettings, error) {
	env, ok := s.Environments[name]
	if !ok {
		names := make([]string, 0, len(s.Environments))
		for n := range s.Environments {
			names = append(names, n)
		}
		return EnvironmentSettings{}, fmt.Errorf(
			"environment %q is not configured (known: %s)",
			name, strings.Join(names, ", "),
		)
	}
	return env, nil
}

func (s *Settings) validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if s.MinToolVersion != "" {
		want := normalizeVersion(s.MinToolVersion)
		if !semver.IsValid(want) {
			return fmt.Errorf("min_tool_version %q is not a valid semantic version", s.MinToolVersion)
		}
	}

	for name, env := range s.Environments {
		for _, itemType := range env.ItemTypes {
			if !IsSupportedItemType(itemType) {
				return fmt.Errorf(
					"environments.%s.item_types: unsupported item type %q",
					name, itemType,
				)
			}
		}
	}

	return nil
}

// CheckToolVersion enforces the min_tool_version gate against the running
// binary. A missing gate always passes.
func (s *Settings) CheckToolVersion() error {
	if s.MinToolVersion == "" {
		return nil
	}
	if semver.Compare(normalizeVersion(ToolVersion), normalizeVersion(s.MinToolVersion)) < 0 {
		return fmt.Errorf(
			"configuration requires fabdeploy >= %s, running %s",
			s.MinToolVersion, ToolVersion,
		)
	}
	return nil
}

func normalizeVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// FindSettingsFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindSettingsFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".fabdeploy.yaml",
		".fabdeploy.yml",
		"fabdeploy.yaml",
		"fabdeploy.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// ResolveSecret expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the secret from the file.
func ResolveSecret(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	// If the resolved value is a path to an existing file, read the secret from it
	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read secret file %q: %v", resolved, readErr)
			return resolved
		}
		return strings.TrimSpace(string(data))
	}

	return resolved
}
