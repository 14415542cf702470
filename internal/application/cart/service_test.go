package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/flashmarket/storefront/internal/domain/addon"
	domcart "github.com/flashmarket/storefront/internal/domain/cart"
	"github.com/flashmarket/storefront/internal/domain/catalog"
	dominv "github.com/flashmarket/storefront/internal/domain/inventory"
)

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("line-%d", g.n)
}

var (
	widget = catalog.Product{ID: "widget", Name: "Widget", Price: 10, Stock: 5}
	gadget = catalog.Product{ID: "gadget", Name: "Gadget", Price: 25, Stock: 2}
)

func newTestService() *Service {
	s := NewService(&seqIDGen{}, 0, nil)
	s.SeedInventory([]catalog.Product{widget, gadget})
	return s
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestAddProductComputesTotals(t *testing.T) {
	s := newTestService()

	res := s.AddProduct(context.Background(), widget, 2)
	if !res.Success {
		t.Fatalf("add failed: %+v", res)
	}

	sum := s.Summary()
	if !almostEqual(sum.Totals.Subtotal, 20) {
		t.Fatalf("subtotal: expected 20, got %v", sum.Totals.Subtotal)
	}
	if !almostEqual(sum.Totals.Tax, 2.6) {
		t.Fatalf("tax: expected 2.60, got %v", sum.Totals.Tax)
	}
	if !almostEqual(sum.Totals.Total, 22.6) {
		t.Fatalf("total: expected 22.60, got %v", sum.Totals.Total)
	}
	if got := s.AvailableUnits("widget"); got != 3 {
		t.Fatalf("expected 3 reservable units, got %d", got)
	}
}

func TestAddProductMergesLines(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	s.AddProduct(ctx, widget, 2)
	s.AddProduct(ctx, widget, 1)

	sum := s.Summary()
	if len(sum.Lines) != 1 {
		t.Fatalf("expected one line per product, got %d", len(sum.Lines))
	}
	if sum.Lines[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", sum.Lines[0].Quantity)
	}
}

func TestAddProductDefaultsQuantityToOne(t *testing.T) {
	s := newTestService()
	s.AddProduct(context.Background(), widget, 0)
	if got := s.TotalQuantity(); got != 1 {
		t.Fatalf("expected quantity 1, got %d", got)
	}
}

func TestAddProductInsufficientStockLeavesCartUnchanged(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	before := s.Summary()
	res := s.AddProduct(ctx, gadget, 3)
	if res.Success {
		t.Fatal("expected failure for 3 of a 2-unit product")
	}
	if !errors.Is(res.Err, dominv.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", res.Err)
	}
	if res.Message != "only 2 units available" {
		t.Fatalf("unexpected message: %q", res.Message)
	}

	after := s.Summary()
	if len(after.Lines) != len(before.Lines) || s.AvailableUnits("gadget") != 2 {
		t.Fatal("failed add mutated state")
	}
	if s.CanUndo() {
		t.Fatal("failed add must not create history")
	}
}

func TestAddUnknownProduct(t *testing.T) {
	s := newTestService()
	res := s.AddProduct(context.Background(), catalog.Product{ID: "ghost", Price: 1}, 1)
	if res.Success || !errors.Is(res.Err, dominv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %+v", res)
	}
}

func TestRemoveProductReleasesReservation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	s.AddProduct(ctx, widget, 3)
	res := s.RemoveProduct(ctx, "widget")
	if !res.Success {
		t.Fatalf("remove failed: %+v", res)
	}
	if !s.IsEmpty() {
		t.Fatal("expected empty cart")
	}
	if got := s.AvailableUnits("widget"); got != 5 {
		t.Fatalf("expected reservation released, got %d units", got)
	}

	// Removing something absent is still a success.
	if res := s.RemoveProduct(ctx, "ghost"); !res.Success {
		t.Fatalf("expected no-op success, got %+v", res)
	}
}

func TestSetQuantityAdjustsReservation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	s.AddProduct(ctx, widget, 2)

	if res := s.SetQuantity(ctx, "widget", 4); !res.Success {
		t.Fatalf("increase failed: %+v", res)
	}
	if got := s.AvailableUnits("widget"); got != 1 {
		t.Fatalf("expected 1 unit free after increase, got %d", got)
	}

	if res := s.SetQuantity(ctx, "widget", 1); !res.Success {
		t.Fatalf("decrease failed: %+v", res)
	}
	if got := s.AvailableUnits("widget"); got != 4 {
		t.Fatalf("expected 4 units free after decrease, got %d", got)
	}

	res := s.SetQuantity(ctx, "widget", 9)
	if res.Success || !errors.Is(res.Err, dominv.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock on over-increase, got %+v", res)
	}

	if res := s.SetQuantity(ctx, "widget", 0); !res.Success {
		t.Fatalf("zero failed: %+v", res)
	}
	if !s.IsEmpty() {
		t.Fatal("expected line removed at quantity zero")
	}

	res = s.SetQuantity(ctx, "ghost", 1)
	if res.Success || !errors.Is(res.Err, domcart.ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %+v", res)
	}
}

func TestRedeemDiscountCode(t *testing.T) {
	book := catalog.Product{ID: "book", Name: "Book", Price: 20, Stock: 10}
	s := NewService(&seqIDGen{}, 0, nil)
	s.SeedInventory([]catalog.Product{book})
	ctx := context.Background()

	if res := s.AddProduct(ctx, book, 5); !res.Success { // $100 subtotal
		t.Fatalf("add failed: %+v", res)
	}

	res := s.RedeemDiscountCode(ctx, "flash10")
	if !res.Success {
		t.Fatalf("redeem failed: %+v", res)
	}
	if res.Discount.Value != 10 {
		t.Fatalf("expected 10%% discount, got %+v", res.Discount)
	}

	sum := s.Summary()
	if !almostEqual(sum.Totals.Discount, 10) {
		t.Fatalf("discount: expected 10, got %v", sum.Totals.Discount)
	}
	if !almostEqual(sum.Totals.Tax, 11.7) {
		t.Fatalf("tax: expected 11.70, got %v", sum.Totals.Tax)
	}
	if !almostEqual(sum.Totals.Total, 101.7) {
		t.Fatalf("total: expected 101.70, got %v", sum.Totals.Total)
	}

	bad := s.RedeemDiscountCode(ctx, "NOPE")
	if bad.Success || !errors.Is(bad.Err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %+v", bad)
	}
}

func TestApplyAddOnsRebuildsFromBase(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	s.AddProduct(ctx, widget, 1)

	if res := s.ApplyAddOns(ctx, "widget", []addon.Type{addon.TypeExpedited}); !res.Success {
		t.Fatalf("apply expedited: %+v", res)
	}
	if got := s.Summary().Lines[0].Price; !almostEqual(got, 15) {
		t.Fatalf("expected 15 with expedited, got %v", got)
	}

	res := s.ApplyAddOns(ctx, "widget", []addon.Type{addon.TypeExpedited, addon.TypeWarranty})
	if !res.Success {
		t.Fatalf("apply warranty: %+v", res)
	}
	line := s.Summary().Lines[0]
	if !almostEqual(line.Price, 16.5) {
		t.Fatalf("expected 16.50 with expedited+warranty, got %v", line.Price)
	}
	if !almostEqual(line.BasePrice, 10) {
		t.Fatalf("base price drifted: %v", line.BasePrice)
	}

	// Re-applying the same set must not compound.
	s.ApplyAddOns(ctx, "widget", []addon.Type{addon.TypeExpedited, addon.TypeWarranty})
	if got := s.Summary().Lines[0].Price; !almostEqual(got, 16.5) {
		t.Fatalf("re-apply compounded the price: %v", got)
	}
}

func TestRemoveAddOn(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	s.AddProduct(ctx, widget, 1)
	s.ApplyAddOns(ctx, "widget", []addon.Type{addon.TypeExpedited, addon.TypeWarranty})

	if res := s.RemoveAddOn(ctx, "widget", addon.TypeWarranty); !res.Success {
		t.Fatalf("remove add-on: %+v", res)
	}
	line := s.Summary().Lines[0]
	if !almostEqual(line.Price, 15) {
		t.Fatalf("expected 15 after dropping warranty, got %v", line.Price)
	}
	if len(line.AddOns) != 1 || line.AddOns[0].Type != addon.TypeExpedited {
		t.Fatalf("unexpected remaining add-ons: %+v", line.AddOns)
	}

	s.RemoveAddOn(ctx, "widget", addon.TypeExpedited)
	res := s.RemoveAddOn(ctx, "widget", addon.TypeExpedited)
	if res.Success || !errors.Is(res.Err, ErrNoAddOns) {
		t.Fatalf("expected ErrNoAddOns on bare line, got %+v", res)
	}
}

func TestUndoFirstAddRestoresEmptyCart(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	s.AddProduct(ctx, widget, 2)
	res := s.Undo(ctx)
	if !res.Success {
		t.Fatalf("undo failed: %+v", res)
	}
	if !s.IsEmpty() {
		t.Fatal("expected empty cart after undoing the first add")
	}
	if got := s.AvailableUnits("widget"); got != 5 {
		t.Fatalf("expected reservation rolled back, got %d units", got)
	}

	redo := s.Redo(ctx)
	if !redo.Success {
		t.Fatalf("redo failed: %+v", redo)
	}
	if got := s.TotalQuantity(); got != 2 {
		t.Fatalf("expected quantity 2 after redo, got %d", got)
	}
	if got := s.AvailableUnits("widget"); got != 3 {
		t.Fatalf("expected reservation re-applied, got %d units", got)
	}
}

func TestUndoRemoveRestoresLineAndReservation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	s.AddProduct(ctx, widget, 2)
	s.RemoveProduct(ctx, "widget")
	if got := s.AvailableUnits("widget"); got != 5 {
		t.Fatalf("expected release after remove, got %d", got)
	}

	if res := s.Undo(ctx); !res.Success {
		t.Fatalf("undo failed: %+v", res)
	}
	if got := s.TotalQuantity(); got != 2 {
		t.Fatalf("expected line back, got quantity %d", got)
	}
	if got := s.AvailableUnits("widget"); got != 3 {
		t.Fatalf("expected reservation restored with the line, got %d units", got)
	}
}

func TestUndoNothing(t *testing.T) {
	s := newTestService()
	res := s.Undo(context.Background())
	if res.Success || !errors.Is(res.Err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %+v", res)
	}
	res = s.Redo(context.Background())
	if res.Success || !errors.Is(res.Err, ErrNothingToRedo) {
		t.Fatalf("expected ErrNothingToRedo, got %+v", res)
	}
}

func TestCheckoutCommitsSaleAndEmptiesCart(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	s.AddProduct(ctx, widget, 2)
	res := s.Checkout(ctx, "card")
	if !res.Success {
		t.Fatalf("checkout failed: %+v", res)
	}
	if res.PaymentMethod != "card" {
		t.Fatalf("expected method label carried, got %q", res.PaymentMethod)
	}
	if !almostEqual(res.Summary.Totals.Total, 22.6) {
		t.Fatalf("expected captured total 22.60, got %v", res.Summary.Totals.Total)
	}

	if !s.IsEmpty() {
		t.Fatal("expected empty cart after checkout")
	}
	if got := s.AvailableUnits("widget"); got != 3 {
		t.Fatalf("expected stock permanently down to 3, got %d", got)
	}

	second := s.Checkout(ctx, "card")
	if second.Success || !errors.Is(second.Err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart on empty checkout, got %+v", second)
	}
}

func TestCheckoutClearsDiscounts(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	s.AddProduct(ctx, widget, 1)
	s.RedeemDiscountCode(ctx, "FLASH20")

	s.Checkout(ctx, "paypal")
	if got := s.Summary().Discounts; len(got) != 0 {
		t.Fatalf("expected discounts cleared after checkout, got %+v", got)
	}
}

func TestClearReleasesEverything(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	s.AddProduct(ctx, widget, 2)
	s.AddProduct(ctx, gadget, 1)
	s.RedeemDiscountCode(ctx, "FREESHIP")

	s.Clear(ctx)
	if !s.IsEmpty() {
		t.Fatal("expected empty cart")
	}
	if s.AvailableUnits("widget") != 5 || s.AvailableUnits("gadget") != 2 {
		t.Fatal("expected all reservations released")
	}
	if len(s.Summary().Discounts) != 0 {
		t.Fatal("expected discounts cleared")
	}

	// Clearing twice lands on the same empty state.
	s.Clear(ctx)
	if !s.IsEmpty() || s.AvailableUnits("widget") != 5 {
		t.Fatal("second clear changed state")
	}
}

func TestRemoveFromInventory(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if !s.RemoveFromInventory("gadget") {
		t.Fatal("expected withdrawal to succeed")
	}
	res := s.AddProduct(ctx, gadget, 1)
	if res.Success || !errors.Is(res.Err, dominv.ErrNotFound) {
		t.Fatalf("expected withdrawn product to be gone, got %+v", res)
	}
	if s.RemoveFromInventory("gadget") {
		t.Fatal("second withdrawal should report false")
	}
}

func TestSubscribersNotifiedInOrder(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	var order []string
	s.Subscribe(func(Summary) { order = append(order, "first") })
	unsub := s.Subscribe(func(Summary) { order = append(order, "second") })

	s.AddProduct(ctx, widget, 1)
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected delivery order: %v", order)
	}

	// Failed operations publish nothing.
	order = nil
	s.AddProduct(ctx, gadget, 99)
	if len(order) != 0 {
		t.Fatalf("failed op notified subscribers: %v", order)
	}

	unsub()
	order = nil
	s.AddProduct(ctx, widget, 1)
	if len(order) != 1 || order[0] != "first" {
		t.Fatalf("unsubscribe did not take effect: %v", order)
	}
}

func TestSubscriberSeesFreshSummary(t *testing.T) {
	s := newTestService()
	var got Summary
	s.Subscribe(func(sum Summary) { got = sum })

	s.AddProduct(context.Background(), widget, 2)
	if got.QuantityTotal != 2 || !almostEqual(got.Totals.Subtotal, 20) {
		t.Fatalf("subscriber got stale summary: %+v", got)
	}
}

func TestSubscriberMayReenterFacade(t *testing.T) {
	s := newTestService()
	done := make(chan int, 1)
	s.Subscribe(func(Summary) {
		done <- s.TotalQuantity()
	})

	s.AddProduct(context.Background(), widget, 1)
	if got := <-done; got != 1 {
		t.Fatalf("re-entrant read saw %d", got)
	}
}

func TestHistoryStats(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	s.AddProduct(ctx, widget, 1)
	s.AddProduct(ctx, widget, 1)
	s.Undo(ctx)

	stats := s.HistoryStats()
	if stats.HistorySize != 1 || stats.RedoSize != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if !stats.CanUndo || !stats.CanRedo {
		t.Fatalf("expected both directions available: %+v", stats)
	}
	if stats.Limit != DefaultHistoryLimit {
		t.Fatalf("expected default limit, got %d", stats.Limit)
	}
}

func TestLookupDiscountCodeNormalizes(t *testing.T) {
	d, ok := LookupDiscountCode("  flash20 ")
	if !ok || d.Value != 20 {
		t.Fatalf("expected FLASH20 resolved, got %+v ok=%v", d, ok)
	}
	if _, ok := LookupDiscountCode("EXPIRED"); ok {
		t.Fatal("unknown code resolved")
	}
}

func TestDiscountCodesSorted(t *testing.T) {
	codes := DiscountCodes()
	if len(codes) != 3 {
		t.Fatalf("expected 3 codes, got %v", codes)
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
}
