// Package addon holds the pure price transforms for optional line extras.
// Every function returns a new Item and never mutates its input, so the cart
// facade can rebuild a line's price from scratch on each change instead of
// trying to invert individual transforms.
package addon

import "math"

type Type string

const (
	TypeExpedited Type = "expedited"
	TypeWarranty  Type = "warranty"
	TypeGiftWrap  Type = "giftwrap"
)

// Default costs: flat fees for expedited handling and gift wrap, a percentage
// of the running price for the extended warranty.
const (
	DefaultExpeditedCost   = 5.0
	DefaultWarrantyPercent = 10.0
	DefaultGiftWrapCost    = 2.0
)

// Applied records one add-on on a cart line: its type and the cost or
// percentage it was applied with.
type Applied struct {
	Type  Type
	Value float64
}

// Item carries the price fields a transform operates on. BasePrice anchors
// rebuilds; Price is the effective unit price after the applied add-ons.
type Item struct {
	Price     float64
	BasePrice float64
	Applied   []Applied
}

// ApplyExpedited adds a flat handling fee.
func ApplyExpedited(item Item, cost float64) Item {
	item.Price = round2(item.Price + cost)
	item.Applied = appendApplied(item.Applied, Applied{Type: TypeExpedited, Value: cost})
	return item
}

// ApplyWarranty adds a percentage of the price before this transform.
func ApplyWarranty(item Item, percent float64) Item {
	item.Price = round2(item.Price + item.Price*percent/100)
	item.Applied = appendApplied(item.Applied, Applied{Type: TypeWarranty, Value: percent})
	return item
}

// ApplyGiftWrap adds a flat wrapping fee.
func ApplyGiftWrap(item Item, cost float64) Item {
	item.Price = round2(item.Price + cost)
	item.Applied = appendApplied(item.Applied, Applied{Type: TypeGiftWrap, Value: cost})
	return item
}

// Clear resets the price to the base price and drops all add-ons.
func Clear(item Item) Item {
	if item.BasePrice != 0 {
		item.Price = item.BasePrice
	}
	item.Applied = nil
	return item
}

// EnsureBasePrice anchors the base price to the current price when unset, so
// repeated decoration never compounds. Idempotent.
func EnsureBasePrice(item Item) Item {
	if item.BasePrice == 0 {
		item.BasePrice = item.Price
	}
	return item
}

// Rebuild constructs an item from basePrice applying the requested add-ons in
// the canonical order expedited, warranty, gift wrap. Add-ons keep their
// recorded values; unknown types are dropped. Rebuilding instead of toggling
// keeps the price independent of the order a user clicked options in.
func Rebuild(basePrice float64, desired []Applied) Item {
	item := Item{Price: basePrice, BasePrice: basePrice}
	for _, want := range canonicalOrder(desired) {
		switch want.Type {
		case TypeExpedited:
			item = ApplyExpedited(item, valueOr(want.Value, DefaultExpeditedCost))
		case TypeWarranty:
			item = ApplyWarranty(item, valueOr(want.Value, DefaultWarrantyPercent))
		case TypeGiftWrap:
			item = ApplyGiftWrap(item, valueOr(want.Value, DefaultGiftWrapCost))
		}
	}
	return item
}

// Defaults returns the Applied records for a list of types with their default
// values, ready to feed Rebuild.
func Defaults(types []Type) []Applied {
	out := make([]Applied, 0, len(types))
	for _, t := range types {
		switch t {
		case TypeExpedited:
			out = append(out, Applied{Type: TypeExpedited, Value: DefaultExpeditedCost})
		case TypeWarranty:
			out = append(out, Applied{Type: TypeWarranty, Value: DefaultWarrantyPercent})
		case TypeGiftWrap:
			out = append(out, Applied{Type: TypeGiftWrap, Value: DefaultGiftWrapCost})
		}
	}
	return out
}

func canonicalOrder(desired []Applied) []Applied {
	ordered := make([]Applied, 0, len(desired))
	for _, t := range []Type{TypeExpedited, TypeWarranty, TypeGiftWrap} {
		for _, d := range desired {
			if d.Type == t {
				ordered = append(ordered, d)
				break
			}
		}
	}
	return ordered
}

func appendApplied(list []Applied, a Applied) []Applied {
	out := make([]Applied, 0, len(list)+1)
	out = append(out, list...)
	return append(out, a)
}

func valueOr(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
