package commands

// OrderRules exports orderRules for testing.
var OrderRules = orderRules //nolint:gochecknoglobals // test export

// RuleCovers exports ruleCovers for testing.
var RuleCovers = ruleCovers //nolint:gochecknoglobals // test export
