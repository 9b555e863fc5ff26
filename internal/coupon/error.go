package coupon

import (
	"errors"
	"fmt"
)

var ErrInvalidCoupon = errors.New("invalid coupon code")

// MinOrderNotMetError reports how far the current subtotal is from the
// coupon's minimum order amount.
type MinOrderNotMetError struct {
	Code           string
	MinOrderAmount float64
	Subtotal       float64
}

func (e *MinOrderNotMetError) Error() string {
	return fmt.Sprintf(
		"coupon %s requires a minimum order of %.2f; add %.2f more to use it",
		e.Code, e.MinOrderAmount, e.Deficit(),
	)
}

// Deficit is the amount still missing from the subtotal.
func (e *MinOrderNotMetError) Deficit() float64 {
	return e.MinOrderAmount - e.Subtotal
}
