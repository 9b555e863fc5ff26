package sync

import (
	"context"
	gosync "sync"
	"time"

	"freshcart/internal/cart"
	"freshcart/internal/catalog"
	"freshcart/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ItemStatus is the reconciliation state of one cart line.
type ItemStatus string

const (
	// StatusIdle: the line matches the last remote-confirmed state.
	StatusIdle ItemStatus = "idle"
	// StatusPending: at least one mutation is awaiting remote confirmation.
	StatusPending ItemStatus = "pending"
	// StatusReconciling: an out-of-order or rejected response was observed
	// and the line is unsettled until its newest mutation completes.
	StatusReconciling ItemStatus = "reconciling"
)

// Options tune a Dispatcher. Zero values get sensible defaults.
type Options struct {
	Timeout time.Duration // per remote call, including retries
	Limiter *rate.Limiter // paces outbound calls; nil means unlimited
	// OnRejected is invoked (under the dispatcher lock) after an optimistic
	// change was rolled back because the remote call failed.
	OnRejected func(err error)
	// OnSettled is invoked (outside the dispatcher lock) after a remote
	// completion changed the local cart, so hosts can re-persist snapshots.
	OnSettled func()
}

// Dispatcher wraps the cart ledger with optimistic remote synchronization.
//
// Mutations apply to the local ledger immediately and are confirmed
// asynchronously. Every item carries a monotonic sequence token; a remote
// response older than the item's newest issued token is discarded, so a slow
// response can never overwrite a newer local edit. A rejected response for
// the newest token rolls the item back to its last remote-confirmed
// snapshot.
//
// All state transitions, local mutations and remote completions alike, run
// under one mutex, giving the same no-interleaving guarantee as a
// single-threaded event loop.
type Dispatcher struct {
	mu      gosync.Mutex
	wg      gosync.WaitGroup
	ledger  *cart.Ledger
	client  Client
	limiter *rate.Limiter
	timeout time.Duration
	log     *zap.Logger

	onRejected func(err error)
	onSettled  func()

	// epoch invalidates every in-flight operation when bumped (clear, close).
	epoch uint64

	items     map[int]*itemTrack
	confirmed map[int]cart.Item // last remote-confirmed line per product

	couponSeq       uint64
	confirmedCoupon string // last remote-confirmed coupon code, "" for none
}

type itemTrack struct {
	issued     uint64 // newest sequence token handed out
	inflight   int
	conflicted bool // saw a stale or rejected response since last settled
}

func NewDispatcher(ledger *cart.Ledger, client Client, opts Options) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Inf, 0)
	}

	return &Dispatcher{
		ledger:     ledger,
		client:     client,
		limiter:    opts.Limiter,
		timeout:    opts.Timeout,
		log:        logger.L().With(zap.String("component", "cart_sync")),
		onRejected: opts.OnRejected,
		onSettled:  opts.OnSettled,
		items:      make(map[int]*itemTrack),
		confirmed:  make(map[int]cart.Item),
	}
}

// Hydrate replaces local state with the remote-confirmed cart. Called once
// at session start, before any optimistic mutation.
func (d *Dispatcher) Hydrate(ctx context.Context) error {
	items, err := d.client.FetchCart(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.ledger.Replace(items)
	d.confirmed = make(map[int]cart.Item, len(items))
	for _, item := range items {
		d.confirmed[item.ProductID] = item
	}
	return nil
}

// AddItem optimistically adds to the ledger and persists remotely.
// Validation errors are synchronous and leave all state untouched.
func (d *Dispatcher) AddItem(ctx context.Context, p catalog.Product, qty int) error {
	d.mu.Lock()
	if err := d.ledger.AddItem(p, qty); err != nil {
		d.mu.Unlock()
		return err
	}
	token, epoch := d.issueLocked(p.ID)
	d.mu.Unlock()

	d.dispatchItem(ctx, p.ID, token, epoch, func(cctx context.Context) (*cart.Item, error) {
		return d.client.AddItem(cctx, p.ID, qty)
	})
	return nil
}

// UpdateQuantity optimistically sets (or removes, for qty <= 0) and persists.
func (d *Dispatcher) UpdateQuantity(ctx context.Context, productID, qty int) error {
	d.mu.Lock()
	if err := d.ledger.UpdateQuantity(productID, qty); err != nil {
		d.mu.Unlock()
		return err
	}
	token, epoch := d.issueLocked(productID)
	d.mu.Unlock()

	d.dispatchItem(ctx, productID, token, epoch, func(cctx context.Context) (*cart.Item, error) {
		if qty <= 0 {
			return nil, d.client.RemoveItem(cctx, productID)
		}
		return d.client.UpdateItem(cctx, productID, qty)
	})
	return nil
}

// RemoveItem optimistically deletes and persists. Removal is unconditional;
// a product absent locally may still exist remotely, so the remote delete is
// always issued.
func (d *Dispatcher) RemoveItem(ctx context.Context, productID int) {
	d.mu.Lock()
	d.ledger.RemoveItem(productID)
	token, epoch := d.issueLocked(productID)
	d.mu.Unlock()

	d.dispatchItem(ctx, productID, token, epoch, func(cctx context.Context) (*cart.Item, error) {
		return nil, d.client.RemoveItem(cctx, productID)
	})
}

// Clear empties the cart locally and invalidates every in-flight item
// operation: their eventual responses are ignored. If the remote clear is
// rejected, the authoritative cart is re-fetched.
func (d *Dispatcher) Clear(ctx context.Context) {
	d.mu.Lock()
	d.ledger.Clear()
	d.epoch++
	epoch := d.epoch
	d.items = make(map[int]*itemTrack)
	d.confirmed = make(map[int]cart.Item)
	d.couponSeq++
	d.confirmedCoupon = ""
	d.mu.Unlock()

	d.dispatch(ctx, func(cctx context.Context) {
		err := d.client.ClearCart(cctx)
		if err == nil {
			return
		}

		d.mu.Lock()
		if epoch != d.epoch {
			d.mu.Unlock()
			return
		}
		d.log.Warn("remote clear rejected, re-fetching cart", zap.Error(err))
		d.reject(err)
		d.mu.Unlock()

		d.refetch(ctx, epoch)
	})
}

// ApplyCoupon validates locally (synchronous business-rule errors), attaches
// optimistically and persists remotely.
func (d *Dispatcher) ApplyCoupon(ctx context.Context, code string) error {
	d.mu.Lock()
	if err := d.ledger.ApplyCoupon(code); err != nil {
		d.mu.Unlock()
		return err
	}
	d.couponSeq++
	token, epoch := d.couponSeq, d.epoch
	previous := d.confirmedCoupon
	d.mu.Unlock()

	d.dispatch(ctx, func(cctx context.Context) {
		err := d.client.ApplyCoupon(cctx, code)
		d.resolveCoupon(token, epoch, code, previous, err)
	})
	return nil
}

func (d *Dispatcher) RemoveCoupon(ctx context.Context) {
	d.mu.Lock()
	d.ledger.RemoveCoupon()
	d.couponSeq++
	token, epoch := d.couponSeq, d.epoch
	previous := d.confirmedCoupon
	d.mu.Unlock()

	d.dispatch(ctx, func(cctx context.Context) {
		err := d.client.RemoveCoupon(cctx)
		d.resolveCoupon(token, epoch, "", previous, err)
	})
}

// ReplaceLocal loads items into the ledger without marking them
// remote-confirmed. Used to restore a locally persisted snapshot when the
// remote cart cannot be fetched at session start.
func (d *Dispatcher) ReplaceLocal(items []cart.Item) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ledger.Replace(items)
}

// SetDeliverySlotFee forwards a UI-selected slot fee to the ledger.
func (d *Dispatcher) SetDeliverySlotFee(fee *float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ledger.SetDeliverySlotFee(fee)
}

// State returns the current (optimistic) cart.
func (d *Dispatcher) State() cart.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger.State()
}

// ItemState reports the reconciliation status of one cart line.
func (d *Dispatcher) ItemState(productID int) ItemStatus {
	d.mu.Lock()
	defer d.mu.Unlock()

	tr, ok := d.items[productID]
	switch {
	case !ok || tr.inflight == 0:
		return StatusIdle
	case tr.conflicted:
		return StatusReconciling
	default:
		return StatusPending
	}
}

// Wait blocks until every dispatched remote call has resolved. Test hook.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close invalidates all in-flight operations and waits them out.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.epoch++
	d.mu.Unlock()
	d.wg.Wait()
}

// ---- internals ----

func (d *Dispatcher) issueLocked(productID int) (token, epoch uint64) {
	tr, ok := d.items[productID]
	if !ok {
		tr = &itemTrack{}
		d.items[productID] = tr
	}
	tr.issued++
	tr.inflight++
	return tr.issued, d.epoch
}

func (d *Dispatcher) dispatchItem(ctx context.Context, productID int, token, epoch uint64, call func(context.Context) (*cart.Item, error)) {
	d.dispatch(ctx, func(cctx context.Context) {
		item, err := call(cctx)
		d.resolveItem(productID, token, epoch, item, err)
	})
}

// dispatch runs fn on its own goroutine with the per-call timeout. The
// caller's cancellation is deliberately not inherited: once issued, a
// command's fate is decided by the sequence-token discipline, not by the
// lifetime of the triggering request.
func (d *Dispatcher) dispatch(ctx context.Context, fn func(context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.limiter.Wait(cctx); err != nil {
			fn(cctx) // deadline already gone; fn surfaces the error path
			return
		}
		fn(cctx)
	}()
}

func (d *Dispatcher) resolveItem(productID int, token, epoch uint64, confirmed *cart.Item, err error) {
	if d.applyItemResolution(productID, token, epoch, confirmed, err) {
		d.notifySettled()
	}
}

// applyItemResolution reports whether the completion changed the local cart.
func (d *Dispatcher) applyItemResolution(productID int, token, epoch uint64, confirmed *cart.Item, err error) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if epoch != d.epoch {
		d.log.Debug("ignoring response from invalidated epoch",
			zap.Int("product_id", productID))
		return false
	}

	tr := d.items[productID]
	if tr == nil {
		return false
	}
	tr.inflight--

	if token < tr.issued {
		// A newer command for this item is (or was) in flight: applying this
		// response would resurrect overwritten state.
		tr.conflicted = true
		d.log.Warn("discarding stale remote response",
			zap.Int("product_id", productID),
			zap.Uint64("token", token),
			zap.Uint64("newest", tr.issued),
			zap.Error(ErrStaleResponse),
		)
		d.settleLocked(productID, tr)
		return false
	}

	if err != nil {
		d.rollbackItemLocked(productID, err)
		tr.conflicted = true
		d.settleLocked(productID, tr)
		return true
	}

	// Remote-confirmed result replaces the optimistic line.
	if confirmed != nil {
		d.confirmed[productID] = *confirmed
		d.ledger.Restore(*confirmed)
	} else {
		delete(d.confirmed, productID)
	}
	d.settleLocked(productID, tr)
	return confirmed != nil
}

func (d *Dispatcher) settleLocked(productID int, tr *itemTrack) {
	if tr.inflight == 0 {
		tr.conflicted = false
		if _, stillThere := d.confirmed[productID]; !stillThere && tr.issued > 0 {
			// fully settled and absent remotely; forget the track
			delete(d.items, productID)
		}
	}
}

func (d *Dispatcher) rollbackItemLocked(productID int, cause error) {
	if snap, ok := d.confirmed[productID]; ok {
		d.ledger.Restore(snap)
	} else {
		// never confirmed remotely: the optimistic line simply disappears
		d.ledger.RemoveItem(productID)
	}

	d.log.Warn("remote rejected cart mutation, rolled back optimistic change",
		zap.Int("product_id", productID),
		zap.Error(cause),
	)
	d.reject(cause)
}

func (d *Dispatcher) resolveCoupon(token, epoch uint64, code, previous string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if epoch != d.epoch {
		return
	}
	if token < d.couponSeq {
		d.log.Warn("discarding stale coupon response",
			zap.String("code", code),
			zap.Error(ErrStaleResponse),
		)
		return
	}

	if err != nil {
		// Roll the coupon back to the last confirmed one. Re-validation can
		// itself fail if the subtotal moved; then the cart ends couponless.
		if previous != "" {
			if applyErr := d.ledger.ApplyCoupon(previous); applyErr != nil {
				d.ledger.RemoveCoupon()
				d.confirmedCoupon = ""
			} else {
				d.confirmedCoupon = previous
			}
		} else {
			d.ledger.RemoveCoupon()
			d.confirmedCoupon = ""
		}
		d.log.Warn("remote rejected coupon mutation, rolled back",
			zap.String("code", code),
			zap.Error(err),
		)
		d.reject(err)
		return
	}

	d.confirmedCoupon = code
}

func (d *Dispatcher) reject(err error) {
	if d.onRejected != nil {
		d.onRejected(err)
	}
}

func (d *Dispatcher) notifySettled() {
	if d.onSettled != nil {
		d.onSettled()
	}
}

// refetch replaces local state with the remote cart; used when a cart-scope
// rollback has no local snapshot to restore. The network fetch runs without
// the dispatcher lock so queries and mutations stay responsive; the result is
// applied only if the epoch is still current.
func (d *Dispatcher) refetch(ctx context.Context, epoch uint64) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	items, err := d.client.FetchCart(cctx)
	if err != nil {
		d.log.Error("failed to re-fetch cart after rejected clear", zap.Error(err))
		return
	}

	d.mu.Lock()
	if epoch != d.epoch {
		d.mu.Unlock()
		return
	}
	d.ledger.Replace(items)
	d.confirmed = make(map[int]cart.Item, len(items))
	for _, item := range items {
		d.confirmed[item.ProductID] = item
	}
	d.mu.Unlock()

	d.notifySettled()
}
