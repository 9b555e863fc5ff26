package coupon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() Catalog {
	return NewStaticCatalog(
		Coupon{Code: "FRESH20", Type: TypePercentage, DiscountValue: 20, MinOrderAmount: 300},
		Coupon{Code: "FIRST50", Type: TypeFixed, DiscountValue: 50, MinOrderAmount: 200},
		Coupon{Code: "MEGA500", Type: TypeFixed, DiscountValue: 500, MinOrderAmount: 0},
	)
}

func TestValidate(t *testing.T) {
	catalog := testCatalog()

	t.Run("UnknownCode", func(t *testing.T) {
		_, _, err := Validate(catalog, "NOPE", 1000)
		assert.ErrorIs(t, err, ErrInvalidCoupon)
	})

	t.Run("MinOrderNotMet", func(t *testing.T) {
		_, discount, err := Validate(catalog, "FRESH20", 200)

		var minErr *MinOrderNotMetError
		require.ErrorAs(t, err, &minErr)
		assert.Equal(t, 100.0, minErr.Deficit())
		assert.Contains(t, minErr.Error(), "100.00")
		assert.Zero(t, discount)
	})

	t.Run("PercentageRounds", func(t *testing.T) {
		c, discount, err := Validate(catalog, "FRESH20", 455)
		require.NoError(t, err)
		assert.Equal(t, "FRESH20", c.Code)
		assert.Equal(t, 91.0, discount)
	})

	t.Run("FixedAmount", func(t *testing.T) {
		_, discount, err := Validate(catalog, "FIRST50", 200)
		require.NoError(t, err)
		assert.Equal(t, 50.0, discount)
	})

	t.Run("FixedClampedToSubtotal", func(t *testing.T) {
		_, discount, err := Validate(catalog, "MEGA500", 120)
		require.NoError(t, err)
		assert.Equal(t, 120.0, discount)
	})

	t.Run("Idempotent", func(t *testing.T) {
		_, first, err := Validate(catalog, "FRESH20", 455)
		require.NoError(t, err)
		_, second, err := Validate(catalog, "FRESH20", 455)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("CodeCaseAndSpaceInsensitive", func(t *testing.T) {
		c, _, err := Validate(catalog, "  fresh20 ", 500)
		require.NoError(t, err)
		assert.Equal(t, "FRESH20", c.Code)
	})
}

func TestEligible(t *testing.T) {
	c := Coupon{Code: "FRESH20", Type: TypePercentage, DiscountValue: 20, MinOrderAmount: 300}

	assert.True(t, Eligible(c, 300))
	assert.False(t, Eligible(c, 299.99))
}
