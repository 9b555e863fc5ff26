package coupon

import "math"

// Validate resolves a code against the catalog and checks it is usable for
// the given subtotal. It returns the coupon and the discount it grants.
// State is never touched here; attaching the result to a cart is the
// caller's job, so a rejected coupon can never partially discount.
func Validate(catalog Catalog, code string, subtotal float64) (Coupon, float64, error) {
	c, ok := catalog.Lookup(code)
	if !ok {
		return Coupon{}, 0, ErrInvalidCoupon
	}

	if subtotal < c.MinOrderAmount {
		return Coupon{}, 0, &MinOrderNotMetError{
			Code:           c.Code,
			MinOrderAmount: c.MinOrderAmount,
			Subtotal:       subtotal,
		}
	}

	return c, Discount(c, subtotal), nil
}

// Discount computes the amount a coupon takes off the given subtotal,
// clamped so it can never exceed the subtotal itself. Percentage discounts
// round to the nearest unit.
func Discount(c Coupon, subtotal float64) float64 {
	var d float64
	switch c.Type {
	case TypePercentage:
		d = math.Round(subtotal * c.DiscountValue / 100)
	case TypeFixed:
		d = c.DiscountValue
	}

	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}

// Eligible reports whether an already-attached coupon still meets its
// minimum order amount for the current subtotal.
func Eligible(c Coupon, subtotal float64) bool {
	return subtotal >= c.MinOrderAmount
}
