package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flashmarket/storefront/internal/domain/addon"
	domcart "github.com/flashmarket/storefront/internal/domain/cart"
	"github.com/flashmarket/storefront/internal/domain/catalog"
	dominv "github.com/flashmarket/storefront/internal/domain/inventory"
	"github.com/flashmarket/storefront/internal/domain/pricing"
	"github.com/flashmarket/storefront/internal/observability"
	"github.com/flashmarket/storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrEmptyCart = errors.New("cart: cart is empty")
	ErrNoAddOns  = errors.New("cart: line has no add-ons")
)

const (
	componentCart = "cart_facade"
	spanPrefix    = "Cart."

	opAddProduct    = "add_product"
	opRemoveProduct = "remove_product"
	opSetQuantity   = "set_quantity"
	opRedeemCode    = "redeem_discount_code"
	opCheckout      = "checkout"
	opClear         = "clear"
	opApplyAddOns   = "apply_add_ons"
	opRemoveAddOn   = "remove_add_on"
	opUndo          = "undo"
	opRedo          = "redo"
)

// Result is the outcome descriptor every mutating operation returns. Failures
// are recoverable caller-handled outcomes, never panics: Message is always
// human-readable, Err carries the sentinel for programmatic checks.
type Result struct {
	Success bool
	Message string
	Err     error
}

func succeeded(msg string) Result {
	return Result{Success: true, Message: msg}
}

func failed(msg string, err error) Result {
	return Result{Message: msg, Err: err}
}

// RedeemResult extends Result with the discount a redeemed code resolved to.
type RedeemResult struct {
	Result
	Discount pricing.Discount
}

// CheckoutResult extends Result with the final pricing summary and the label
// of the payment method the caller settled with.
type CheckoutResult struct {
	Result
	Summary       Summary
	PaymentMethod string
}

// Summary is the published view of the cart: lines plus derived totals.
type Summary struct {
	Lines         []domcart.Line
	QuantityTotal int
	Totals        pricing.Totals
	Discounts     []pricing.Discount
}

// Subscriber receives the full summary after every successful mutation, undo,
// or redo. Delivery is synchronous and in registration order.
type Subscriber func(Summary)

type subscription struct {
	id int
	fn Subscriber
}

// Service is the cart facade: the single entry point that sequences the
// inventory ledger, line store, pricing engine, add-on transforms, and the
// snapshot history, and publishes change notifications. One instance owns all
// of those exclusively; a mutex serializes operations so the ledger's
// check-then-reserve pair is atomic per instance.
type Service struct {
	mu      sync.Mutex
	store   *domcart.Store
	ledger  *dominv.Ledger
	pricer  *pricing.Engine
	history *History

	subs    []subscription
	nextSub int

	log        observability.Logger
	tel        observability.Observability
	opCounter  observability.Counter
	opDuration observability.Histogram
	revenue    observability.Counter
}

// NewService builds a facade with its own subsystems. historyLimit bounds the
// undo stack (DefaultHistoryLimit when zero). tel may be nil.
func NewService(idGen domcart.IDGenerator, historyLimit int, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		store:      domcart.NewStore(idGen),
		ledger:     dominv.NewLedger(),
		pricer:     pricing.NewEngine(),
		history:    NewHistory(historyLimit),
		log:        tel.Logger().With(observability.F("component", componentCart)),
		tel:        tel,
		opCounter:  tel.Metrics().Counter(observability.MCartOperations),
		opDuration: tel.Metrics().Histogram(observability.MCartOperationDuration),
		revenue:    tel.Metrics().Counter(observability.MCheckoutRevenue),
	}
}

// SeedInventory bridges the catalog into the inventory ledger. Called once
// per catalog load; re-seeding resets stock and reservations.
func (s *Service) SeedInventory(products []catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Initialize(products)
}

// RemoveFromInventory drops a withdrawn product from the ledger.
func (s *Service) RemoveFromInventory(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Remove(productID)
}

// AddProduct checks availability, merges or creates the line, and reserves
// the units. Nothing mutates when the check fails.
func (s *Service) AddProduct(ctx context.Context, product catalog.Product, quantity int) Result {
	if quantity <= 0 {
		quantity = 1
	}
	return s.run(ctx, opAddProduct, func() Result {
		avail := s.ledger.CheckAvailability(product.ID, quantity)
		if !avail.Available {
			return failed(availabilityMessage(avail), avail.Err)
		}

		s.saveSnapshotLocked()
		s.store.AddLine(product, quantity, true)
		s.ledger.Reserve(product.ID, quantity)
		return succeeded("product added to cart")
	})
}

// RemoveProduct removes the matched line (by line id, falling back to base
// product id) and releases its reservation. Removing something absent is a
// no-op success.
func (s *Service) RemoveProduct(ctx context.Context, idOrBaseID string) Result {
	return s.run(ctx, opRemoveProduct, func() Result {
		s.saveSnapshotLocked()
		for _, line := range s.store.FindAll(idOrBaseID) {
			s.ledger.Release(line.BaseID, line.Quantity)
		}
		s.store.RemoveLine(idOrBaseID)
		return succeeded("product removed from cart")
	})
}

// SetQuantity overwrites a line's quantity. Increases re-check availability
// for the delta; decreases release it; zero or less removes the line.
func (s *Service) SetQuantity(ctx context.Context, idOrBaseID string, quantity int) Result {
	return s.run(ctx, opSetQuantity, func() Result {
		line, ok := s.store.Find(idOrBaseID)
		if !ok {
			return failed("product not found in cart", domcart.ErrLineNotFound)
		}

		delta := quantity - line.Quantity
		if delta > 0 {
			avail := s.ledger.CheckAvailability(line.BaseID, delta)
			if !avail.Available {
				return failed(availabilityMessage(avail), avail.Err)
			}
		}

		s.saveSnapshotLocked()
		switch {
		case delta > 0:
			s.ledger.Reserve(line.BaseID, delta)
		case delta < 0:
			s.ledger.Release(line.BaseID, -delta)
		}
		if err := s.store.SetQuantity(line.CartItemID, quantity); err != nil {
			return failed("product not found in cart", err)
		}
		return succeeded("quantity updated")
	})
}

// RedeemDiscountCode resolves a code case-insensitively and registers the
// discount cart-wide.
func (s *Service) RedeemDiscountCode(ctx context.Context, code string) RedeemResult {
	var out RedeemResult
	out.Result = s.run(ctx, opRedeemCode, func() Result {
		discount, ok := LookupDiscountCode(code)
		if !ok {
			return failed("invalid discount code", ErrInvalidCode)
		}

		s.saveSnapshotLocked()
		s.pricer.AddDiscount(discount)
		out.Discount = discount
		return succeeded("discount applied: " + discount.Description)
	})
	return out
}

// Checkout permanently commits the sale: stock drops by the purchased
// quantities, the final summary is captured, and the cart empties with zero
// reservations left. The payment itself is the caller's concern; the facade
// only records the method label.
func (s *Service) Checkout(ctx context.Context, paymentMethod string) CheckoutResult {
	var out CheckoutResult
	out.PaymentMethod = paymentMethod
	out.Result = s.run(ctx, opCheckout, func() Result {
		lines := s.store.Lines()
		if len(lines) == 0 {
			return failed("cart is empty", ErrEmptyCart)
		}

		s.saveSnapshotLocked()

		sales := make([]dominv.Sale, 0, len(lines))
		for _, l := range lines {
			sales = append(sales, dominv.Sale{ProductID: l.BaseID, Quantity: l.Quantity})
		}
		s.ledger.ConfirmPurchase(sales)

		out.Summary = s.summaryLocked()

		// Confirm already consumed the reservations; releasing again is a
		// clamped no-op that keeps clear's contract uniform.
		for _, l := range lines {
			s.ledger.Release(l.BaseID, l.Quantity)
		}
		s.store.Clear()
		s.pricer.ClearDiscounts()

		s.revenue.Add(out.Summary.Totals.Total)
		return succeeded("purchase completed")
	})
	return out
}

// Clear empties lines and discounts and releases every reservation.
func (s *Service) Clear(ctx context.Context) {
	s.run(ctx, opClear, func() Result {
		s.saveSnapshotLocked()
		for _, line := range s.store.Lines() {
			s.ledger.Release(line.BaseID, line.Quantity)
		}
		s.store.Clear()
		s.pricer.ClearDiscounts()
		return succeeded("cart cleared")
	})
}

// ApplyAddOns rebuilds the line's price from its base price, applying the
// requested add-on set in canonical order. Toggling an option off and on
// therefore never drifts the price.
func (s *Service) ApplyAddOns(ctx context.Context, idOrBaseID string, types []addon.Type) Result {
	return s.run(ctx, opApplyAddOns, func() Result {
		line, ok := s.store.Find(idOrBaseID)
		if !ok {
			return failed("product not found in cart", domcart.ErrLineNotFound)
		}

		rebuilt := addon.Rebuild(lineBasePrice(line), addon.Defaults(types))

		s.saveSnapshotLocked()
		err := s.store.UpdateLine(line.CartItemID, func(l *domcart.Line) {
			l.BasePrice = rebuilt.BasePrice
			l.Price = rebuilt.Price
			l.AddOns = rebuilt.Applied
		})
		if err != nil {
			return failed("product not found in cart", err)
		}
		return succeeded("add-ons applied")
	})
}

// RemoveAddOn drops one add-on type from a line and rebuilds the price from
// the remaining set, keeping each survivor's recorded value.
func (s *Service) RemoveAddOn(ctx context.Context, idOrBaseID string, addOnType addon.Type) Result {
	return s.run(ctx, opRemoveAddOn, func() Result {
		line, ok := s.store.Find(idOrBaseID)
		if !ok {
			return failed("product not found in cart", domcart.ErrLineNotFound)
		}
		if len(line.AddOns) == 0 {
			return failed("line has no add-ons", ErrNoAddOns)
		}

		remaining := make([]addon.Applied, 0, len(line.AddOns))
		for _, a := range line.AddOns {
			if a.Type != addOnType {
				remaining = append(remaining, a)
			}
		}
		rebuilt := addon.Rebuild(lineBasePrice(line), remaining)

		s.saveSnapshotLocked()
		err := s.store.UpdateLine(line.CartItemID, func(l *domcart.Line) {
			l.BasePrice = rebuilt.BasePrice
			l.Price = rebuilt.Price
			l.AddOns = rebuilt.Applied
		})
		if err != nil {
			return failed("product not found in cart", err)
		}
		return succeeded("add-on removed")
	})
}

// Undo restores the state before the most recent mutation. The walked-away
// state moves to the redo stack.
func (s *Service) Undo(ctx context.Context) Result {
	return s.run(ctx, opUndo, func() Result {
		snap, err := s.history.Undo(s.captureSnapshotLocked())
		if err != nil {
			return failed("nothing to undo", err)
		}
		s.restoreLocked(snap)
		return succeeded("action undone")
	})
}

// Redo replays the most recently undone mutation.
func (s *Service) Redo(ctx context.Context) Result {
	return s.run(ctx, opRedo, func() Result {
		snap, err := s.history.Redo(s.captureSnapshotLocked())
		if err != nil {
			return failed("nothing to redo", err)
		}
		s.restoreLocked(snap)
		return succeeded("action redone")
	})
}

func (s *Service) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

func (s *Service) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// HistoryStats exposes the caretaker's stack sizes, mostly for debugging UIs.
func (s *Service) HistoryStats() HistoryStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Stats()
}

// Subscribe registers a change listener and returns its unsubscribe func.
func (s *Service) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Summary is a pure read: no mutation, no snapshot, no publish.
func (s *Service) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Service) IsEmpty() bool {
	return s.TotalQuantity() == 0
}

func (s *Service) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.TotalQuantity()
}

// AvailableUnits reports the reservable units for a product.
func (s *Service) AvailableUnits(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.AvailableUnits(productID)
}

// run wraps a mutating operation: span + timing, the facade mutex, and on
// success a synchronous publish to subscribers after the lock is dropped.
func (s *Service) run(ctx context.Context, op string, mutate func() Result) Result {
	logger := logctx.FromOr(ctx, s.log)
	_, span := s.tel.Tracer().Start(ctx, spanPrefix+op,
		attribute.String("cart.op", op),
	)
	start := time.Now()

	s.mu.Lock()
	res := mutate()
	var summary Summary
	var listeners []Subscriber
	if res.Success {
		summary = s.summaryLocked()
		listeners = make([]Subscriber, len(s.subs))
		for i, sub := range s.subs {
			listeners[i] = sub.fn
		}
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(summary)
	}

	outcome := "success"
	if !res.Success {
		outcome = "error"
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Message)
	} else {
		span.SetStatus(codes.Ok, res.Message)
	}
	span.End()

	s.opCounter.Add(1,
		observability.L("op", op),
		observability.L("outcome", outcome),
	)
	s.opDuration.Observe(time.Since(start).Seconds(),
		observability.L("op", op),
	)

	fields := []observability.Field{
		observability.F("op", op),
		observability.F("outcome", outcome),
		observability.F("message", res.Message),
	}
	if res.Err != nil {
		fields = append(fields, observability.F("error", res.Err.Error()))
	}
	logger.Info("cart_operation_done", fields...)

	return res
}

func (s *Service) summaryLocked() Summary {
	lines := s.store.Lines()
	discounts := s.pricer.Discounts()
	return Summary{
		Lines:         lines,
		QuantityTotal: s.store.TotalQuantity(),
		Totals:        s.pricer.ComputeTotals(lines, discounts),
		Discounts:     discounts,
	}
}

func (s *Service) captureSnapshotLocked() Snapshot {
	return Snapshot{
		Lines:     s.store.Lines(),
		Discounts: s.pricer.Discounts(),
		Inventory: s.ledger.ExportState(),
		TakenAt:   time.Now().UTC(),
	}
}

func (s *Service) saveSnapshotLocked() {
	s.history.Save(s.captureSnapshotLocked())
}

// restoreLocked writes a snapshot back into all three subsystems atomically
// with respect to the facade mutex.
func (s *Service) restoreLocked(snap Snapshot) {
	s.store.ReplaceAll(snap.Lines)
	s.pricer.SetDiscounts(snap.Discounts)
	s.ledger.ImportState(snap.Inventory)
}

func lineBasePrice(line domcart.Line) float64 {
	if line.BasePrice != 0 {
		return line.BasePrice
	}
	return line.Price
}

func availabilityMessage(a dominv.Availability) string {
	switch {
	case errors.Is(a.Err, dominv.ErrNotFound):
		return "product not found"
	case errors.Is(a.Err, dominv.ErrUnavailable):
		return "product not available"
	case errors.Is(a.Err, dominv.ErrInsufficientStock):
		return fmt.Sprintf("only %d units available", a.UnitsLeft)
	default:
		return "product unavailable"
	}
}
