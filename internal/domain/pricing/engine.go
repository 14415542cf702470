package pricing

import (
	"github.com/flashmarket/storefront/internal/domain/cart"
)

// TaxRate is the fixed sales tax applied to the discounted subtotal.
const TaxRate = 0.13

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Discount is a cart-wide reduction: a percentage of the subtotal or a flat
// amount.
type Discount struct {
	Type        DiscountType
	Value       float64
	Description string
}

// Totals is the derived pricing summary. It is recomputed on every read and
// never cached across mutations.
type Totals struct {
	Subtotal float64
	Discount float64
	Tax      float64
	Total    float64
}

// Engine does the cart arithmetic and keeps the currently active discount
// set. The arithmetic methods are stateless over their inputs.
type Engine struct {
	discounts []Discount
}

func NewEngine() *Engine {
	return &Engine{}
}

// Subtotal is the sum of effective unit price times quantity over all lines.
func (e *Engine) Subtotal(lines []cart.Line) float64 {
	total := 0.0
	for _, l := range lines {
		total += l.Price * float64(l.Quantity)
	}
	return total
}

// DiscountTotal sums the given discounts against a subtotal. The result is
// deliberately not clamped to the subtotal: a large fixed code can push the
// final total negative, matching the storefront's historical behavior.
func (e *Engine) DiscountTotal(subtotal float64, discounts []Discount) float64 {
	total := 0.0
	for _, d := range discounts {
		switch d.Type {
		case DiscountPercentage:
			total += subtotal * d.Value / 100
		case DiscountFixed:
			total += d.Value
		}
	}
	return total
}

// Tax applies the fixed rate to the discounted subtotal.
func (e *Engine) Tax(subtotal, discountTotal float64) float64 {
	return (subtotal - discountTotal) * TaxRate
}

// ComputeTotals composes subtotal, discount, and tax into the full summary.
func (e *Engine) ComputeTotals(lines []cart.Line, discounts []Discount) Totals {
	subtotal := e.Subtotal(lines)
	discount := e.DiscountTotal(subtotal, discounts)
	tax := e.Tax(subtotal, discount)
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal - discount + tax,
	}
}

// AddDiscount registers a discount in the active set.
func (e *Engine) AddDiscount(d Discount) {
	e.discounts = append(e.discounts, d)
}

// Discounts returns a copy of the active discount set.
func (e *Engine) Discounts() []Discount {
	out := make([]Discount, len(e.discounts))
	copy(out, e.discounts)
	return out
}

func (e *Engine) ClearDiscounts() {
	e.discounts = nil
}

// SetDiscounts overwrites the active set, for snapshot restore.
func (e *Engine) SetDiscounts(discounts []Discount) {
	e.discounts = make([]Discount, len(discounts))
	copy(e.discounts, discounts)
}
