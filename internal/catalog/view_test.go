package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestView(t *testing.T) {
	t.Run("FilterChangeResetsPage", func(t *testing.T) {
		v := NewView(3)
		v.SetPage(4)

		category := "Fruits"
		v.SetFilter(CriteriaPatch{Category: &category})

		assert.Equal(t, 1, v.Page().Number)
		assert.Equal(t, "Fruits", v.Criteria().Category)
	})

	t.Run("SearchChangeResetsPage", func(t *testing.T) {
		v := NewView(3)
		v.SetPage(2)
		v.SetSearchQuery("mango")

		assert.Equal(t, 1, v.Page().Number)
		assert.Equal(t, "mango", v.Criteria().Search)
	})

	t.Run("PageClampedAtOne", func(t *testing.T) {
		v := NewView(3)
		v.SetPage(0)
		assert.Equal(t, 1, v.Page().Number)

		v.SetPage(-2)
		assert.Equal(t, 1, v.Page().Number)
	})

	t.Run("PatchNormalizesInvertedRange", func(t *testing.T) {
		v := NewView(0)
		min, max := 200.0, 50.0
		v.SetFilter(CriteriaPatch{PriceMin: &min, PriceMax: &max})

		assert.Equal(t, 50.0, v.Criteria().PriceMin)
		assert.Equal(t, 200.0, v.Criteria().PriceMax)
	})

	t.Run("ResultsUseCurrentState", func(t *testing.T) {
		v := NewView(2)
		v.SetSearchQuery("a")
		v.SetPage(2)

		res := v.Results(fixtureProducts())
		assert.Equal(t, 2, res.Page)
		assert.Equal(t, 2, res.PageSize)
	})
}
