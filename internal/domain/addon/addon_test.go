package addon

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestApplyTransformsStack(t *testing.T) {
	item := Item{Price: 10, BasePrice: 10}

	item = ApplyExpedited(item, DefaultExpeditedCost)
	if !almostEqual(item.Price, 15) {
		t.Fatalf("expected 15 after expedited, got %v", item.Price)
	}

	item = ApplyWarranty(item, DefaultWarrantyPercent)
	if !almostEqual(item.Price, 16.5) {
		t.Fatalf("expected 16.5 after warranty, got %v", item.Price)
	}

	item = ApplyGiftWrap(item, DefaultGiftWrapCost)
	if !almostEqual(item.Price, 18.5) {
		t.Fatalf("expected 18.5 after gift wrap, got %v", item.Price)
	}

	if len(item.Applied) != 3 {
		t.Fatalf("expected 3 applied add-ons, got %d", len(item.Applied))
	}
}

func TestTransformsDoNotMutateInput(t *testing.T) {
	base := Item{Price: 10, BasePrice: 10}
	_ = ApplyExpedited(base, 5)
	if base.Price != 10 || len(base.Applied) != 0 {
		t.Fatalf("input mutated: %+v", base)
	}
}

func TestRebuildCanonicalOrder(t *testing.T) {
	// Warranty applies to the running price, so order matters: rebuild must
	// apply expedited before warranty regardless of the request order.
	out := Rebuild(10, []Applied{
		{Type: TypeWarranty, Value: 10},
		{Type: TypeExpedited, Value: 5},
	})
	if !almostEqual(out.Price, 16.5) {
		t.Fatalf("expected 16.5 from canonical order, got %v", out.Price)
	}
	if out.Applied[0].Type != TypeExpedited || out.Applied[1].Type != TypeWarranty {
		t.Fatalf("expected canonical applied order, got %+v", out.Applied)
	}
}

func TestRebuildZeroValueFallsBackToDefault(t *testing.T) {
	out := Rebuild(10, []Applied{{Type: TypeGiftWrap}})
	if !almostEqual(out.Price, 12) {
		t.Fatalf("expected default gift wrap cost applied, got %v", out.Price)
	}
}

func TestRebuildDropsUnknownTypes(t *testing.T) {
	out := Rebuild(10, []Applied{{Type: Type("unknown"), Value: 100}})
	if !almostEqual(out.Price, 10) || len(out.Applied) != 0 {
		t.Fatalf("unknown type leaked into rebuild: %+v", out)
	}
}

func TestRebuildRoundsToCents(t *testing.T) {
	out := Rebuild(9.99, []Applied{{Type: TypeWarranty, Value: 10}})
	if !almostEqual(out.Price, 10.99) {
		t.Fatalf("expected 10.99, got %v", out.Price)
	}
}

func TestClearResetsToBasePrice(t *testing.T) {
	item := Rebuild(10, Defaults([]Type{TypeExpedited, TypeWarranty}))
	item = Clear(item)
	if !almostEqual(item.Price, 10) || item.Applied != nil {
		t.Fatalf("expected clean item at base price, got %+v", item)
	}
}

func TestEnsureBasePriceIdempotent(t *testing.T) {
	item := Item{Price: 12.5}
	item = EnsureBasePrice(item)
	if item.BasePrice != 12.5 {
		t.Fatalf("expected base anchored at 12.5, got %v", item.BasePrice)
	}

	item.Price = 20
	item = EnsureBasePrice(item)
	if item.BasePrice != 12.5 {
		t.Fatalf("expected base unchanged on second call, got %v", item.BasePrice)
	}
}

func TestDefaults(t *testing.T) {
	got := Defaults([]Type{TypeGiftWrap, TypeExpedited, Type("bogus")})
	if len(got) != 2 {
		t.Fatalf("expected 2 applied records, got %d", len(got))
	}
	if got[0].Type != TypeGiftWrap || got[0].Value != DefaultGiftWrapCost {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
}
