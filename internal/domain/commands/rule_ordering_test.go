//go:build unit

package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabworks/fabdeploy/internal/domain/commands"
	"github.com/fabworks/fabdeploy/internal/domain/entities"
	"github.com/fabworks/fabdeploy/test/domain/entitybuilders"
)

func TestOrderRules(t *testing.T) {
	t.Parallel()

	t.Run("should apply environment-exact rules before wildcard-only rules", func(t *testing.T) {
		t.Parallel()

		// given
		wildcard := entitybuilders.NewFindReplaceRuleBuilder().
			WithFindValue("wildcard").
			WithReplaceValue(entities.ReplaceValue{entities.AllEnvironments: "generic"}).
			BuildRule()
		exact := entitybuilders.NewFindReplaceRuleBuilder().
			WithFindValue("exact").
			WithReplaceValue(entities.ReplaceValue{"PROD": "specific"}).
			BuildRule()

		// when
		ordered := commands.OrderRules([]entities.Rule{wildcard, exact}, "PROD")

		// then
		require.Len(t, ordered, 2)
		assert.Same(t, exact, ordered[0])
		assert.Same(t, wildcard, ordered[1])
	})

	t.Run("should preserve declaration order within each group", func(t *testing.T) {
		t.Parallel()

		// given
		first := entitybuilders.NewFindReplaceRuleBuilder().
			WithFindValue("first").
			WithReplaceValue(entities.ReplaceValue{"PROD": "a"}).
			BuildRule()
		second := entitybuilders.NewFindReplaceRuleBuilder().
			WithFindValue("second").
			WithReplaceValue(entities.ReplaceValue{"PROD": "b"}).
			BuildRule()

		// when
		ordered := commands.OrderRules([]entities.Rule{first, second}, "PROD")

		// then
		assert.Same(t, first, ordered[0])
		assert.Same(t, second, ordered[1])
	})
}

func TestRuleCovers(t *testing.T) {
	t.Parallel()

	t.Run("should cover via the exact environment or the wildcard", func(t *testing.T) {
		t.Parallel()

		// given
		exact := entitybuilders.NewFindReplaceRuleBuilder().
			WithReplaceValue(entities.ReplaceValue{"PROD": "x"}).
			BuildRule()
		wildcard := entitybuilders.NewFindReplaceRuleBuilder().
			WithReplaceValue(entities.ReplaceValue{entities.AllEnvironments: "x"}).
			BuildRule()

		// then
		assert.True(t, commands.RuleCovers(exact, "PROD"))
		assert.False(t, commands.RuleCovers(exact, "DEV"))
		assert.True(t, commands.RuleCovers(wildcard, "DEV"))
	})
}
