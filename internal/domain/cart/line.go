package cart

import (
	"errors"

	"github.com/flashmarket/storefront/internal/domain/addon"
)

var ErrLineNotFound = errors.New("cart: line not found")

// Line is one distinguishable row of the cart: a quantity of a base product
// plus its current add-on set. BasePrice is the unit price snapshotted when
// the line was first created; Price is the effective unit price after
// add-ons.
type Line struct {
	CartItemID string
	BaseID     string
	Name       string
	Image      string
	Quantity   int
	BasePrice  float64
	Price      float64
	AddOns     []addon.Applied
	GroupKey   string
}

// Clone returns a deep copy of the line.
func (l Line) Clone() Line {
	c := l
	if l.AddOns != nil {
		c.AddOns = make([]addon.Applied, len(l.AddOns))
		copy(c.AddOns, l.AddOns)
	}
	return c
}

// CloneLines deep-copies a line slice.
func CloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
	}
	return out
}

// groupKey derives the merge key for a line. One line per base product: two
// lines for the same product always merge, whatever their add-ons.
func groupKey(baseID string) string {
	return baseID
}
