package coupon

// Type discriminates how DiscountValue is interpreted.
type Type string

const (
	// TypePercentage discounts DiscountValue percent of the subtotal.
	TypePercentage Type = "percentage"
	// TypeFixed discounts a flat DiscountValue amount.
	TypeFixed Type = "fixed"
)

type Coupon struct {
	Code           string  `json:"code"`
	Type           Type    `json:"type"`
	DiscountValue  float64 `json:"discount_value"`
	MinOrderAmount float64 `json:"min_order_amount"`
}
