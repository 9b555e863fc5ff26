package engine

import (
	"context"
	"errors"
	gosync "sync"

	"freshcart/internal/cart"
	"freshcart/internal/catalog"
	"freshcart/internal/coupon"
	"freshcart/internal/logger"
	"freshcart/internal/store"
	"freshcart/internal/sync"

	"go.uber.org/zap"
)

var ErrProductNotFound = errors.New("product not found")

// Engine is the commerce state engine: one cart ledger synchronized against
// the remote order service, one catalog view, and optional local snapshot
// persistence. It is the single entry surface for UI commands.
type Engine struct {
	mu gosync.Mutex

	log        *zap.Logger
	client     sync.Client
	dispatcher *sync.Dispatcher
	view       *catalog.View
	products   []catalog.Product
	snapshots  store.Snapshots // nil disables local persistence
}

// Params wires an Engine. Coupons and Client are required; Snapshots is
// optional.
type Params struct {
	Coupons   coupon.Catalog
	Client    sync.Client
	Snapshots store.Snapshots
	FeePolicy cart.FeePolicy
	PageSize  int
	Sync      sync.Options
}

func New(p Params) *Engine {
	ledger := cart.NewLedger(p.Coupons, p.FeePolicy)

	e := &Engine{
		log:       logger.L().With(zap.String("component", "engine")),
		client:    p.Client,
		view:      catalog.NewView(p.PageSize),
		snapshots: p.Snapshots,
	}

	// Remote confirmations and rollbacks land after the triggering command
	// already persisted, so the snapshot is rewritten whenever one settles.
	opts := p.Sync
	opts.OnSettled = func() { e.persist(context.Background()) }
	e.dispatcher = sync.NewDispatcher(ledger, p.Client, opts)
	return e
}

// Bootstrap loads the product catalog and the session cart. The remote cart
// is authoritative; if it cannot be fetched, the locally persisted snapshot
// (when configured) keeps the session usable offline.
func (e *Engine) Bootstrap(ctx context.Context) error {
	raws, err := e.client.FetchProducts(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.products = catalog.NormalizeAll(raws)
	e.mu.Unlock()

	if err := e.dispatcher.Hydrate(ctx); err != nil {
		e.log.Warn("remote cart unavailable at bootstrap", zap.Error(err))
		if e.snapshots == nil {
			return err
		}
		items, loadErr := store.LoadCart(ctx, e.snapshots)
		if loadErr != nil {
			return errors.Join(err, loadErr)
		}
		e.dispatcher.ReplaceLocal(items)
	}
	return nil
}

// ---- cart commands ----

func (e *Engine) AddItem(ctx context.Context, productID, qty int) error {
	p, ok := e.lookupProduct(productID)
	if !ok {
		return ErrProductNotFound
	}

	if err := e.dispatcher.AddItem(ctx, p, qty); err != nil {
		return err
	}
	e.persist(ctx)
	return nil
}

func (e *Engine) UpdateQuantity(ctx context.Context, productID, qty int) error {
	if err := e.dispatcher.UpdateQuantity(ctx, productID, qty); err != nil {
		return err
	}
	e.persist(ctx)
	return nil
}

// RemoveItem is unconditional; removing an absent product is a no-op.
func (e *Engine) RemoveItem(ctx context.Context, productID int) {
	e.dispatcher.RemoveItem(ctx, productID)
	e.persist(ctx)
}

func (e *Engine) ClearCart(ctx context.Context) {
	e.dispatcher.Clear(ctx)
	e.persist(ctx)
}

func (e *Engine) ApplyCoupon(ctx context.Context, code string) error {
	return e.dispatcher.ApplyCoupon(ctx, code)
}

func (e *Engine) RemoveCoupon(ctx context.Context) {
	e.dispatcher.RemoveCoupon(ctx)
}

func (e *Engine) SetDeliverySlotFee(fee *float64) {
	e.dispatcher.SetDeliverySlotFee(fee)
}

func (e *Engine) Cart() cart.State {
	return e.dispatcher.State()
}

func (e *Engine) ItemState(productID int) sync.ItemStatus {
	return e.dispatcher.ItemState(productID)
}

// ---- catalog commands ----

func (e *Engine) SetFilter(patch catalog.CriteriaPatch) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SetFilter(patch)
}

func (e *Engine) SetSearchQuery(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SetSearchQuery(text)
}

func (e *Engine) SetPage(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SetPage(n)
}

// Catalog runs the query pipeline for the current view state.
func (e *Engine) Catalog() catalog.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.Results(e.products)
}

// Close invalidates in-flight sync operations and waits them out.
func (e *Engine) Close() {
	e.dispatcher.Close()
}

// Flush waits for all pending remote confirmations. Test hook.
func (e *Engine) Flush() {
	e.dispatcher.Wait()
}

func (e *Engine) lookupProduct(productID int) (catalog.Product, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.products {
		if p.ID == productID {
			return p, true
		}
	}
	return catalog.Product{}, false
}

// persist writes the optimistic cart to local storage, best effort.
func (e *Engine) persist(ctx context.Context) {
	if e.snapshots == nil {
		return
	}
	state := e.dispatcher.State()
	if err := store.SaveCart(ctx, e.snapshots, state.Items); err != nil {
		e.log.Warn("failed to persist cart snapshot", zap.Error(err))
	}
}
