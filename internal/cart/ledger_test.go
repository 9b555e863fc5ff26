package cart

import (
	"testing"

	"freshcart/internal/catalog"
	"freshcart/internal/coupon"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCoupons() coupon.Catalog {
	return coupon.NewStaticCatalog(
		coupon.Coupon{Code: "FRESH20", Type: coupon.TypePercentage, DiscountValue: 20, MinOrderAmount: 300},
		coupon.Coupon{Code: "FIRST50", Type: coupon.TypeFixed, DiscountValue: 50, MinOrderAmount: 200},
		coupon.Coupon{Code: "MEGA500", Type: coupon.TypeFixed, DiscountValue: 500, MinOrderAmount: 0},
	)
}

func newTestLedger() *Ledger {
	return NewLedger(testCoupons(), DefaultFeePolicy())
}

func product(id int, price float64) catalog.Product {
	return catalog.Product{
		ID:       id,
		Name:     "product",
		Price:    price,
		Category: "Fruits",
		Farmer:   catalog.Farmer{Name: "Green Valley"},
		InStock:  true,
		Unit:     "kg",
	}
}

func TestLedgerMutations(t *testing.T) {
	t.Run("AddRejectsBadQuantity", func(t *testing.T) {
		l := newTestLedger()
		assert.ErrorIs(t, l.AddItem(product(1, 45), 0), ErrInvalidQuantity)
		assert.ErrorIs(t, l.AddItem(product(1, 45), -3), ErrInvalidQuantity)
		assert.Empty(t, l.State().Items)
		assert.Zero(t, l.Totals().Total)
	})

	t.Run("AddMergesByProduct", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 45), 2))
		require.NoError(t, l.AddItem(product(1, 45), 3))

		state := l.State()
		require.Len(t, state.Items, 1)
		assert.Equal(t, 5, state.Items[0].Quantity)
	})

	t.Run("AddSnapshotsProductFields", func(t *testing.T) {
		l := newTestLedger()
		p := product(1, 45)
		p.Images = []string{"mango.jpg", "mango2.jpg"}
		require.NoError(t, l.AddItem(p, 1))

		item := l.State().Items[0]
		assert.Equal(t, "mango.jpg", item.Image)
		assert.Equal(t, "Green Valley", item.Farmer)
		assert.Equal(t, "kg", item.Unit)
	})

	t.Run("UpdateUnknownItem", func(t *testing.T) {
		l := newTestLedger()
		assert.ErrorIs(t, l.UpdateQuantity(99, 2), ErrItemNotFound)
	})

	t.Run("UpdateToZeroRemoves", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 45), 2))
		require.NoError(t, l.UpdateQuantity(1, 0))
		assert.Empty(t, l.State().Items)

		require.NoError(t, l.AddItem(product(1, 45), 2))
		require.NoError(t, l.UpdateQuantity(1, -4))
		assert.Empty(t, l.State().Items)
	})

	t.Run("RemoveUnknownItemIsNoOp", func(t *testing.T) {
		l := newTestLedger()
		l.RemoveItem(42)
		assert.Empty(t, l.State().Items)
		assert.Equal(t, Totals{}, l.Totals())

		require.NoError(t, l.AddItem(product(1, 45), 2))
		l.RemoveItem(42)

		state := l.State()
		require.Len(t, state.Items, 1)
		assert.Equal(t, 90.0, state.Totals.Subtotal)
	})

	t.Run("InsertionOrderPreserved", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(3, 10), 1))
		require.NoError(t, l.AddItem(product(1, 10), 1))
		require.NoError(t, l.AddItem(product(2, 10), 1))
		require.NoError(t, l.AddItem(product(1, 10), 1)) // merge, no reorder

		var got []int
		for _, item := range l.State().Items {
			got = append(got, item.ProductID)
		}
		assert.Equal(t, []int{3, 1, 2}, got)
	})
}

// Subtotal must equal the sum of price*quantity after every step of an
// arbitrary mutation sequence.
func TestSubtotalInvariant(t *testing.T) {
	l := newTestLedger()

	check := func() {
		t.Helper()
		var want float64
		for _, item := range l.State().Items {
			want += item.Price * float64(item.Quantity)
		}
		assert.Equal(t, want, l.Totals().Subtotal)
	}

	require.NoError(t, l.AddItem(product(1, 45), 2))
	check()
	require.NoError(t, l.AddItem(product(2, 60), 1))
	check()
	require.NoError(t, l.UpdateQuantity(1, 7))
	check()
	require.NoError(t, l.AddItem(product(3, 12.5), 4))
	check()
	l.RemoveItem(2)
	check()
	require.NoError(t, l.UpdateQuantity(3, 0))
	check()
	l.Clear()
	check()
}

func TestDeliveryFeeTiers(t *testing.T) {
	t.Run("FreeAtThreshold", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 500), 1))
		assert.Equal(t, 0.0, l.Totals().DeliveryFee)
	})

	t.Run("StandardFeeBelowThreshold", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 499), 1))
		assert.Equal(t, 50.0, l.Totals().DeliveryFee)
	})

	t.Run("SlotOverridePassedThrough", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 100), 1))

		slot := 80.0
		l.SetDeliverySlotFee(&slot)
		assert.Equal(t, 80.0, l.Totals().DeliveryFee)

		l.SetDeliverySlotFee(nil)
		assert.Equal(t, 50.0, l.Totals().DeliveryFee)
	})

	t.Run("SlotOverrideNeverBeatsFreeDelivery", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 600), 1))

		slot := 80.0
		l.SetDeliverySlotFee(&slot)
		assert.Equal(t, 0.0, l.Totals().DeliveryFee)
	})

	t.Run("EmptyCartHasNoFee", func(t *testing.T) {
		l := newTestLedger()
		assert.Equal(t, Totals{}, l.Totals())
	})
}

func TestCoupons(t *testing.T) {
	t.Run("RejectedCouponLeavesStateUntouched", func(t *testing.T) {
		// Scenario A: subtotal 150, FIRST50 requires 200.
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 45), 2))
		require.NoError(t, l.AddItem(product(2, 60), 1))
		require.Equal(t, 150.0, l.Totals().Subtotal)

		err := l.ApplyCoupon("FIRST50")
		var minErr *coupon.MinOrderNotMetError
		require.ErrorAs(t, err, &minErr)
		assert.Equal(t, 50.0, minErr.Deficit())

		totals := l.Totals()
		assert.Nil(t, l.State().Coupon)
		assert.Equal(t, 0.0, totals.Discount)
		assert.Equal(t, 50.0, totals.DeliveryFee)
		assert.Equal(t, 200.0, totals.Total)
	})

	t.Run("PercentageCoupon", func(t *testing.T) {
		// Scenario B: Scenario A cart plus one 305 item.
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 45), 2))
		require.NoError(t, l.AddItem(product(2, 60), 1))
		require.NoError(t, l.AddItem(product(3, 305), 1))
		require.Equal(t, 455.0, l.Totals().Subtotal)

		require.NoError(t, l.ApplyCoupon("FRESH20"))

		totals := l.Totals()
		assert.Equal(t, 91.0, totals.Discount)
		assert.Equal(t, 50.0, totals.DeliveryFee)
		assert.Equal(t, 414.0, totals.Total)
	})

	t.Run("ApplyIsIdempotent", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 455), 1))
		require.NoError(t, l.ApplyCoupon("FRESH20"))
		first := l.Totals()

		require.NoError(t, l.ApplyCoupon("FRESH20"))
		assert.Equal(t, first, l.Totals())
	})

	t.Run("DiscountNeverDrivesTotalNegative", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 120), 1))
		require.NoError(t, l.ApplyCoupon("MEGA500"))

		totals := l.Totals()
		assert.Equal(t, 120.0, totals.Discount)
		assert.GreaterOrEqual(t, totals.Total, 0.0)
	})

	t.Run("DiscountSuspendedWhenSubtotalDropsBelowMinimum", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 200), 1))
		require.NoError(t, l.AddItem(product(2, 200), 1))
		require.NoError(t, l.ApplyCoupon("FRESH20"))
		require.Equal(t, 80.0, l.Totals().Discount)

		// Dropping below the 300 minimum zeroes the discount but keeps the
		// coupon attached.
		l.RemoveItem(2)
		assert.Equal(t, 0.0, l.Totals().Discount)
		require.NotNil(t, l.State().Coupon)

		// Eligibility returns with the subtotal.
		require.NoError(t, l.AddItem(product(3, 200), 1))
		assert.Equal(t, 80.0, l.Totals().Discount)
	})

	t.Run("RemoveCoupon", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 455), 1))
		require.NoError(t, l.ApplyCoupon("FRESH20"))

		l.RemoveCoupon()
		assert.Nil(t, l.State().Coupon)
		assert.Equal(t, 0.0, l.Totals().Discount)
	})

	t.Run("ClearDropsCoupon", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 455), 1))
		require.NoError(t, l.ApplyCoupon("FRESH20"))

		l.Clear()
		state := l.State()
		assert.Empty(t, state.Items)
		assert.Nil(t, state.Coupon)
		assert.Equal(t, Totals{}, state.Totals)
	})

	t.Run("UnknownCode", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 455), 1))
		assert.ErrorIs(t, l.ApplyCoupon("BOGUS"), coupon.ErrInvalidCoupon)
	})
}

func TestRestoreAndReplace(t *testing.T) {
	t.Run("RestoreInsertsOrReplaces", func(t *testing.T) {
		l := newTestLedger()
		l.Restore(Item{ProductID: 1, Name: "Mango", Price: 45, Quantity: 2})
		require.Len(t, l.State().Items, 1)
		assert.Equal(t, 90.0, l.Totals().Subtotal)

		l.Restore(Item{ProductID: 1, Name: "Mango", Price: 45, Quantity: 5})
		require.Len(t, l.State().Items, 1)
		assert.Equal(t, 225.0, l.Totals().Subtotal)
	})

	t.Run("ReplaceHydratesAndRecomputes", func(t *testing.T) {
		l := newTestLedger()
		l.Replace([]Item{
			{ProductID: 1, Price: 45, Quantity: 2},
			{ProductID: 2, Price: 60, Quantity: 1},
		})
		assert.Equal(t, 150.0, l.Totals().Subtotal)
		assert.Equal(t, 200.0, l.Totals().Total)
	})

	t.Run("StateIsACopy", func(t *testing.T) {
		l := newTestLedger()
		require.NoError(t, l.AddItem(product(1, 45), 2))

		state := l.State()
		state.Items[0].Quantity = 99

		assert.Equal(t, 2, l.State().Items[0].Quantity)
	})
}
