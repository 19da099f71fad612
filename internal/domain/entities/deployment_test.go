//go:build unit

package entities_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fabworks/fabdeploy/internal/domain/entities"
	"github.com/fabworks/fabdeploy/test/domain/entitybuilders"
)

func TestSummary(t *testing.T) {
	t.Parallel()

	t.Run("should tally successes and failures", func(t *testing.T) {
		t.Parallel()

		// given
		summary := &entities.Summary{}
		summary.Add(entitybuilders.NewItemBuilder().WithName("a").BuildItem(), nil)
		summary.Add(entitybuilders.NewItemBuilder().WithName("b").BuildItem(), errors.New("boom"))
		summary.Add(entitybuilders.NewItemBuilder().WithName("c").WithType("Report").BuildItem(), nil)

		// then
		assert.Equal(t, 2, summary.Succeeded())
		assert.Equal(t, 1, summary.Failed())
		assert.True(t, summary.HasFailures())
	})

	t.Run("should report no failures when everything published", func(t *testing.T) {
		t.Parallel()

		// given
		summary := &entities.Summary{}
		summary.Add(entities.Item{Name: "a", Type: "Notebook"}, nil)

		// then
		assert.False(t, summary.HasFailures())
	})

	t.Run("should render a table in publish order with totals", func(t *testing.T) {
		t.Parallel()

		// given
		summary := &entities.Summary{}
		summary.Add(entities.Item{Name: "a", Type: "Notebook"}, nil)
		summary.Add(entities.Item{Name: "b", Type: "Lakehouse"}, errors.New("boom"))

		// when
		var out strings.Builder
		summary.Render(&out)

		// then
		rendered := out.String()
		assert.Contains(t, rendered, "ITEM TYPE")
		assert.Contains(t, rendered, "Lakehouse")
		assert.Contains(t, rendered, "Notebook")
		assert.Contains(t, rendered, "TOTAL")
		// storage types render before processing types
		assert.Less(t,
			strings.Index(rendered, "Lakehouse"),
			strings.Index(rendered, "Notebook"))
	})
}

func TestItemResult(t *testing.T) {
	t.Parallel()

	t.Run("should fail only when an error is present", func(t *testing.T) {
		t.Parallel()

		assert.False(t, entities.ItemResult{}.Failed())
		assert.True(t, entities.ItemResult{Err: errors.New("boom")}.Failed())
	})
}
