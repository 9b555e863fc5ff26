package cart

import (
	"freshcart/internal/catalog"
	"freshcart/internal/coupon"
)

// FeePolicy maps a subtotal to a delivery charge. Orders at or above
// FreeDeliveryThreshold ship free; everything else pays StandardFee unless
// the UI selected a specific delivery slot, whose fee is passed through
// unmodified.
type FeePolicy struct {
	FreeDeliveryThreshold float64
	StandardFee           float64
}

func DefaultFeePolicy() FeePolicy {
	return FeePolicy{FreeDeliveryThreshold: 500, StandardFee: 50}
}

// Ledger owns the cart state. Every mutation goes through it, and derived
// totals are recomputed as a pure function of (items, coupon) after each one,
// so they can never drift.
//
// The ledger is not safe for concurrent use; the sync dispatcher serializes
// access to it.
type Ledger struct {
	items   []Item
	coupon  *coupon.Coupon
	coupons coupon.Catalog
	fees    FeePolicy
	slotFee *float64
	totals  Totals
}

func NewLedger(coupons coupon.Catalog, fees FeePolicy) *Ledger {
	return &Ledger{coupons: coupons, fees: fees}
}

// AddItem puts qty units of a product into the cart, snapshotting the fields
// the cart needs. Adding an already-present product increments its quantity.
func (l *Ledger) AddItem(p catalog.Product, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	if i := l.indexOf(p.ID); i >= 0 {
		l.items[i].Quantity += qty
	} else {
		l.items = append(l.items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image(),
			Quantity:  qty,
			Farmer:    p.Farmer.Name,
			Unit:      p.Unit,
		})
	}

	l.recompute()
	return nil
}

// UpdateQuantity sets an item's quantity. A quantity of zero or less removes
// the item; a persisted line never carries qty <= 0.
func (l *Ledger) UpdateQuantity(productID, qty int) error {
	i := l.indexOf(productID)
	if i < 0 {
		return ErrItemNotFound
	}

	if qty <= 0 {
		l.items = append(l.items[:i], l.items[i+1:]...)
	} else {
		l.items[i].Quantity = qty
	}

	l.recompute()
	return nil
}

// RemoveItem deletes a cart line. Removal is unconditional: removing a
// product that is not in the cart is a no-op, unlike quantity updates.
func (l *Ledger) RemoveItem(productID int) {
	i := l.indexOf(productID)
	if i < 0 {
		return
	}

	l.items = append(l.items[:i], l.items[i+1:]...)
	l.recompute()
}

// Clear empties the cart and drops any attached coupon.
func (l *Ledger) Clear() {
	l.items = nil
	l.coupon = nil
	l.recompute()
}

// ApplyCoupon validates the code against the coupon catalog and the current
// subtotal, then attaches it. A rejected coupon leaves the state untouched.
// Applying the same code twice is idempotent.
func (l *Ledger) ApplyCoupon(code string) error {
	c, _, err := coupon.Validate(l.coupons, code, l.totals.Subtotal)
	if err != nil {
		return err
	}

	l.coupon = &c
	l.recompute()
	return nil
}

func (l *Ledger) RemoveCoupon() {
	l.coupon = nil
	l.recompute()
}

// SetDeliverySlotFee installs (or clears, with nil) a UI-selected slot fee.
// It overrides the standard fee but never the free-delivery threshold.
func (l *Ledger) SetDeliverySlotFee(fee *float64) {
	l.slotFee = fee
	l.recompute()
}

// Restore force-writes an item, inserting or replacing as needed. It exists
// for the sync layer to roll an item back to its last remote-confirmed
// snapshot; command handlers must use AddItem/UpdateQuantity instead.
func (l *Ledger) Restore(item Item) {
	if i := l.indexOf(item.ProductID); i >= 0 {
		l.items[i] = item
	} else {
		l.items = append(l.items, item)
	}
	l.recompute()
}

// Replace hydrates the ledger from a remote-confirmed snapshot.
func (l *Ledger) Replace(items []Item) {
	l.items = make([]Item, len(items))
	copy(l.items, items)
	l.recompute()
}

// State returns a copy of the cart; callers can hold it freely.
func (l *Ledger) State() State {
	items := make([]Item, len(l.items))
	copy(items, l.items)

	var c *coupon.Coupon
	if l.coupon != nil {
		cc := *l.coupon
		c = &cc
	}

	return State{Items: items, Coupon: c, Totals: l.totals}
}

func (l *Ledger) Totals() Totals { return l.totals }

func (l *Ledger) indexOf(productID int) int {
	for i, item := range l.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// recompute derives subtotal, discount, delivery fee and total. An attached
// coupon whose minimum order is no longer met contributes zero discount but
// stays attached, so eligibility comes back if the subtotal rises again.
func (l *Ledger) recompute() {
	var subtotal float64
	for _, item := range l.items {
		subtotal += item.Price * float64(item.Quantity)
	}

	var discount float64
	if l.coupon != nil && coupon.Eligible(*l.coupon, subtotal) {
		discount = coupon.Discount(*l.coupon, subtotal)
	}

	fee := l.deliveryFee(subtotal)

	total := subtotal - discount + fee
	if total < 0 {
		total = 0
	}

	l.totals = Totals{
		Subtotal:    subtotal,
		Discount:    discount,
		DeliveryFee: fee,
		Total:       total,
	}
}

func (l *Ledger) deliveryFee(subtotal float64) float64 {
	switch {
	case len(l.items) == 0:
		return 0
	case subtotal >= l.fees.FreeDeliveryThreshold:
		return 0
	case l.slotFee != nil:
		return *l.slotFee
	default:
		return l.fees.StandardFee
	}
}
