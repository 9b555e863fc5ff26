package cart

import "freshcart/internal/coupon"

// Item is a cart line. Price, name, image, farmer and unit are snapshotted
// from the product at add time so later catalog edits never change what the
// shopper agreed to pay.
type Item struct {
	ProductID int     `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
	Farmer    string  `json:"farmer,omitempty"`
	Unit      string  `json:"unit,omitempty"`
}

// Totals are derived values. They are recomputed from (items, coupon, fee
// policy) after every mutation and never stored independently.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	Discount    float64 `json:"discount"`
	DeliveryFee float64 `json:"delivery_fee"`
	Total       float64 `json:"total"`
}

// State is a point-in-time copy of the ledger: insertion-ordered items, at
// most one attached coupon, and the derived totals.
type State struct {
	Items  []Item         `json:"items"`
	Coupon *coupon.Coupon `json:"coupon,omitempty"`
	Totals Totals         `json:"totals"`
}
