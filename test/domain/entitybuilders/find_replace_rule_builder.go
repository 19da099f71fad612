//go:build integration || unit || test

// Package entitybuilders provides fluent builders for domain entities used in
// tests, built on the testkit builder contract.
package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/fabworks/fabdeploy/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// FindReplaceRuleBuilder helps create test find/replace rules with a fluent interface.
type FindReplaceRuleBuilder struct {
	*testkit.BaseBuilder
	findValue    string
	replaceValue entities.ReplaceValue
	itemTypes    entities.StringList
	filePaths    entities.StringList
}

// NewFindReplaceRuleBuilder creates a new rule builder with sensible defaults.
func NewFindReplaceRuleBuilder() *FindReplaceRuleBuilder {
	return &FindReplaceRuleBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		findValue:   "00000000-0000-0000-0000-000000000000",
		replaceValue: entities.ReplaceValue{
			"PROD": "11111111-1111-1111-1111-111111111111",
		},
	}
}

// WithFindValue sets the literal value to find.
func (b *FindReplaceRuleBuilder) WithFindValue(value string) *FindReplaceRuleBuilder {
	b.findValue = value
	return b
}

// WithReplaceValue sets the environment-to-replacement mapping.
func (b *FindReplaceRuleBuilder) WithReplaceValue(
	value entities.ReplaceValue,
) *FindReplaceRuleBuilder {
	b.replaceValue = value
	return b
}

// WithItemTypes sets the item type filter.
func (b *FindReplaceRuleBuilder) WithItemTypes(types ...string) *FindReplaceRuleBuilder {
	b.itemTypes = types
	return b
}

// WithFilePaths sets the file path filter.
func (b *FindReplaceRuleBuilder) WithFilePaths(paths ...string) *FindReplaceRuleBuilder {
	b.filePaths = paths
	return b
}

// Build creates the rule (satisfies testkit.Builder interface).
func (b *FindReplaceRuleBuilder) Build() interface{} {
	return b.BuildRule()
}

// BuildRule creates the rule with a concrete return type.
func (b *FindReplaceRuleBuilder) BuildRule() *entities.FindReplaceRule {
	return &entities.FindReplaceRule{
		FindValue:    b.findValue,
		ReplaceValue: b.replaceValue,
		ItemTypes:    b.itemTypes,
		FilePaths:    b.filePaths,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *FindReplaceRuleBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.findValue = "00000000-0000-0000-0000-000000000000"
	b.replaceValue = entities.ReplaceValue{
		"PROD": "11111111-1111-1111-1111-111111111111",
	}
	b.itemTypes = nil
	b.filePaths = nil
	return b
}

// Clone creates a deep copy of the FindReplaceRuleBuilder.
func (b *FindReplaceRuleBuilder) Clone() testkit.Builder {
	replaceValue := make(entities.ReplaceValue, len(b.replaceValue))
	for k, v := range b.replaceValue {
		replaceValue[k] = v
	}
	return &FindReplaceRuleBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		findValue:    b.findValue,
		replaceValue: replaceValue,
		itemTypes:    append(entities.StringList(nil), b.itemTypes...),
		filePaths:    append(entities.StringList(nil), b.filePaths...),
	}
}
