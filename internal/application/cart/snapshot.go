package cart

import (
	"time"

	domcart "github.com/flashmarket/storefront/internal/domain/cart"
	dominv "github.com/flashmarket/storefront/internal/domain/inventory"
	"github.com/flashmarket/storefront/internal/domain/pricing"
)

// Snapshot is a deep-copied bundle of the three cart subsystems, taken before
// every mutation. Restoring one never aliases live state.
type Snapshot struct {
	Lines     []domcart.Line
	Discounts []pricing.Discount
	Inventory []dominv.Record
	TakenAt   time.Time
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{TakenAt: s.TakenAt}
	out.Lines = domcart.CloneLines(s.Lines)
	out.Discounts = make([]pricing.Discount, len(s.Discounts))
	copy(out.Discounts, s.Discounts)
	out.Inventory = make([]dominv.Record, len(s.Inventory))
	copy(out.Inventory, s.Inventory)
	return out
}
