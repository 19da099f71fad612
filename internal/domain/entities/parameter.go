package entities

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// AllEnvironments is the wildcard key in replace_value maps that applies to
// every environment. An entry for the exact environment name always wins
// over the wildcard.
const AllEnvironments = "_ALL_"

// Rule kinds, used as applier registry keys.
const (
	KindFindReplace     = "find_replace"
	KindKeyValueReplace = "key_value_replace"
	KindSparkPool       = "spark_pool"
)

const envTokenPrefix = "$ENV:"

// Rule is the common surface of the three parameter rule variants.
type Rule interface {
	Kind() string
	// Environments lists every environment key the rule carries.
	Environments() []string
}

// StringList accepts either a YAML scalar or a sequence of scalars.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*s = StringList{single}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*s = many
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", value.Line)
	}
}

// Contains reports whether v is in the list. An empty list matches everything.
func (s StringList) Contains(v string) bool {
	if len(s) == 0 {
		return true
	}
	for _, entry := range s {
		if entry == v {
			return true
		}
	}
	return false
}

// MatchesPath reports whether the slash-separated relative path matches any
// glob in the list. An empty list matches every path.
func (s StringList) MatchesPath(relPath string) bool {
	if len(s) == 0 {
		return true
	}
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range s {
		if ok, err := doublestar.Match(filepath.ToSlash(pattern), relPath); err == nil && ok {
			return true
		}
	}
	return false
}

// ReplaceValue maps environment names to replacement values.
type ReplaceValue map[string]string

// ForEnv selects the replacement for env: the exact environment key first,
// then the _ALL_ wildcard. exact reports which one matched.
func (rv ReplaceValue) ForEnv(env string) (value string, exact, ok bool) {
	if v, found := rv[env]; found {
		return ExpandEnvTokens(v), true, true
	}
	if v, found := rv[AllEnvironments]; found {
		return ExpandEnvTokens(v), false, true
	}
	return "", false, false
}

// HasExactEnv reports whether the rule carries an entry for exactly env
// (not via the wildcard).
func (rv ReplaceValue) HasExactEnv(env string) bool {
	_, found := rv[env]
	return found
}

// ExpandEnvTokens resolves $ENV:<name> tokens against process environment
// variables. Unset variables resolve to the empty string with a warning.
func ExpandEnvTokens(value string) string {
	if !strings.HasPrefix(value, envTokenPrefix) {
		return value
	}
	varName := strings.TrimPrefix(value, envTokenPrefix)
	resolved, found := os.LookupEnv(varName)
	if !found {
		logger.Warnf("Parameter value references unset environment variable %q", varName)
	}
	return resolved
}

// FindReplaceRule replaces a literal value inside matching item files.
type FindReplaceRule struct {
	FindValue    string       `yaml:"find_value"`
	ReplaceValue ReplaceValue `yaml:"replace_value"`
	ItemTypes    StringList   `yaml:"item_type"`
	FilePaths    StringList   `yaml:"file_path"`
}

func (r *FindReplaceRule) Kind() string { return KindFindReplace }

func (r *FindReplaceRule) Environments() []string { return envKeys(r.ReplaceValue) }

// MatchesItem reports whether the rule applies to the given item type.
func (r *FindReplaceRule) MatchesItem(item Item) bool {
	return r.ItemTypes.Contains(item.Type)
}

// KeyValueReplaceRule overwrites JSONPath-addressed values in matching files.
type KeyValueReplaceRule struct {
	FindKey      string       `yaml:"find_key"`
	ReplaceValue ReplaceValue `yaml:"replace_value"`
	ItemTypes    StringList   `yaml:"item_type"`
	FilePaths    StringList   `yaml:"file_path"`
}

func (r *KeyValueReplaceRule) Kind() string { return KindKeyValueReplace }

func (r *KeyValueReplaceRule) Environments() []string { return envKeys(r.ReplaceValue) }

// MatchesItem reports whether the rule applies to the given item type.
func (r *KeyValueReplaceRule) MatchesItem(item Item) bool {
	return r.ItemTypes.Contains(item.Type)
}

// SparkPoolTarget is the environment-specific pool reference written by a
// spark_pool rule.
type SparkPoolTarget struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

// SparkPoolRule remaps a Spark instance pool id inside Environment item
// definitions to an environment-specific {type, name} pair.
type SparkPoolRule struct {
	InstancePoolID string                     `yaml:"instance_pool_id"`
	ReplaceValue   map[string]SparkPoolTarget `yaml:"replace_value"`
	ItemNames      StringList                 `yaml:"item_name"`
}

func (r *SparkPoolRule) Kind() string { return KindSparkPool }

func (r *SparkPoolRule) Environments() []string {
	keys := make([]string, 0, len(r.ReplaceValue))
	for k := range r.ReplaceValue {
		keys = append(keys, k)
	}
	return keys
}

// TargetForEnv selects the pool target for env, falling back to _ALL_.
func (r *SparkPoolRule) TargetForEnv(env string) (SparkPoolTarget, bool) {
	if t, found := r.ReplaceValue[env]; found {
		return t, true
	}
	if t, found := r.ReplaceValue[AllEnvironments]; found {
		return t, true
	}
	return SparkPoolTarget{}, false
}

// MatchesItem reports whether the rule applies to the given Environment item.
func (r *SparkPoolRule) MatchesItem(item Item) bool {
	return item.Type == "Environment" && r.ItemNames.Contains(item.Name)
}

// ParameterFile is the parsed parameter.yml: three lists of substitution
// rules keyed by kind.
type ParameterFile struct {
	FindReplace     []*FindReplaceRule     `yaml:"find_replace"`
	KeyValueReplace []*KeyValueReplaceRule `yaml:"key_value_replace"`
	SparkPool       []*SparkPoolRule       `yaml:"spark_pool"`
}

// Rules returns every rule in declaration order, grouped by kind.
func (p *ParameterFile) Rules() []Rule {
	rules := make([]Rule, 0, len(p.FindReplace)+len(p.KeyValueReplace)+len(p.SparkPool))
	for _, r := range p.FindReplace {
		rules = append(rules, r)
	}
	for _, r := range p.KeyValueReplace {
		rules = append(rules, r)
	}
	for _, r := range p.SparkPool {
		rules = append(rules, r)
	}
	return rules
}

// LoadParameterFile reads and validates a parameter file. Malformed YAML and
// structurally invalid rules are fatal: the caller must abort before any
// deployment call.
func LoadParameterFile(path string) (*ParameterFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file %q: %w", path, err)
	}
	defer file.Close()

	var params ParameterFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if decodeErr := decoder.Decode(&params); decodeErr != nil {
		return nil, fmt.Errorf("failed to parse parameter file %q: %w", path, decodeErr)
	}

	if validateErr := params.validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid parameter file %q: %w", path, validateErr)
	}

	return &params, nil
}

func (p *ParameterFile) validate() error {
	for i, r := range p.FindReplace {
		if r.FindValue == "" {
			return fmt.Errorf("find_replace[%d]: find_value is required", i)
		}
		if len(r.ReplaceValue) == 0 {
			return fmt.Errorf("find_replace[%d]: replace_value must have at least one environment", i)
		}
	}
	for i, r := range p.KeyValueReplace {
		if r.FindKey == "" {
			return fmt.Errorf("key_value_replace[%d]: find_key is required", i)
		}
		if !strings.HasPrefix(r.FindKey, "$") {
			return fmt.Errorf("key_value_replace[%d]: find_key must be a JSONPath expression", i)
		}
		if len(r.ReplaceValue) == 0 {
			return fmt.Errorf("key_value_replace[%d]: replace_value must have at least one environment", i)
		}
	}
	for i, r := range p.SparkPool {
		if r.InstancePoolID == "" {
			return fmt.Errorf("spark_pool[%d]: instance_pool_id is required", i)
		}
		if len(r.ReplaceValue) == 0 {
			return fmt.Errorf("spark_pool[%d]: replace_value must have at least one environment", i)
		}
		for env, target := range r.ReplaceValue {
			if target.Name == "" || target.Type == "" {
				return fmt.Errorf("spark_pool[%d].replace_value.%s: type and name are required", i, env)
			}
		}
	}
	return nil
}

func envKeys(rv ReplaceValue) []string {
	keys := make([]string, 0, len(rv))
	for k := range rv {
		keys = append(keys, k)
	}
	return keys
}
