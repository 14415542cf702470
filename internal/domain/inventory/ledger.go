package inventory

import (
	"errors"
	"fmt"

	"github.com/flashmarket/storefront/internal/domain/catalog"
)

var (
	ErrNotFound          = errors.New("inventory: product not found")
	ErrUnavailable       = errors.New("inventory: product not available")
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
)

// DefaultStock seeds products whose catalog record carries no stock figure.
const DefaultStock = 100

// Record tracks the units of one product: total stock, units soft-held by
// carts, and a flag a seller can flip to withdraw the product from sale.
type Record struct {
	ProductID string
	Stock     int
	Reserved  int
	Available bool
}

// AvailableUnits is stock minus current reservations.
func (r Record) AvailableUnits() int {
	return r.Stock - r.Reserved
}

// Availability is the outcome of a pre-reserve check. Err is nil when the
// requested quantity can be reserved; otherwise it wraps one of the package
// sentinels.
type Availability struct {
	Available bool
	UnitsLeft int
	Err       error
}

// Ledger is the source of truth for how many units of each product are free
// to reserve. It is owned exclusively by one cart facade instance, which
// serializes access; the ledger itself does no locking.
type Ledger struct {
	records map[string]*Record
}

func NewLedger() *Ledger {
	return &Ledger{records: make(map[string]*Record)}
}

// Initialize resets the ledger and seeds a record per product. Products with
// no positive stock figure get DefaultStock units.
func (l *Ledger) Initialize(products []catalog.Product) {
	l.records = make(map[string]*Record, len(products))
	for _, p := range products {
		stock := p.Stock
		if stock <= 0 {
			stock = DefaultStock
		}
		l.records[p.ID] = &Record{
			ProductID: p.ID,
			Stock:     stock,
			Reserved:  0,
			Available: true,
		}
	}
}

// CheckAvailability reports whether quantity units of the product can be
// reserved right now. It never mutates the ledger; Reserve trusts callers to
// have checked first (two-phase check-then-commit, safe because the facade
// serializes both calls).
func (l *Ledger) CheckAvailability(productID string, quantity int) Availability {
	rec, ok := l.records[productID]
	if !ok {
		return Availability{Err: ErrNotFound}
	}
	if !rec.Available {
		return Availability{Err: ErrUnavailable}
	}
	left := rec.AvailableUnits()
	if left < quantity {
		return Availability{
			UnitsLeft: left,
			Err:       fmt.Errorf("%w: only %d units left", ErrInsufficientStock, left),
		}
	}
	return Availability{Available: true, UnitsLeft: left}
}

// Reserve soft-holds quantity units. Returns false when the product is not
// seeded; it does not re-validate stock.
func (l *Ledger) Reserve(productID string, quantity int) bool {
	rec, ok := l.records[productID]
	if !ok {
		return false
	}
	rec.Reserved += quantity
	return true
}

// Release returns quantity reserved units. Clamped at zero so a double
// release never drives Reserved negative.
func (l *Ledger) Release(productID string, quantity int) bool {
	rec, ok := l.records[productID]
	if !ok {
		return false
	}
	rec.Reserved -= quantity
	if rec.Reserved < 0 {
		rec.Reserved = 0
	}
	return true
}

// Sale is one line of a confirmed purchase.
type Sale struct {
	ProductID string
	Quantity  int
}

// ConfirmPurchase permanently commits sold units: stock and the matching
// reservation both drop by the sold quantity.
func (l *Ledger) ConfirmPurchase(sales []Sale) {
	for _, s := range sales {
		rec, ok := l.records[s.ProductID]
		if !ok {
			continue
		}
		rec.Stock -= s.Quantity
		rec.Reserved -= s.Quantity
		if rec.Reserved < 0 {
			rec.Reserved = 0
		}
	}
}

// Remove drops a product entirely, e.g. when a seller unpublishes it.
func (l *Ledger) Remove(productID string) bool {
	if _, ok := l.records[productID]; !ok {
		return false
	}
	delete(l.records, productID)
	return true
}

// AvailableUnits returns the reservable units for a product, zero if unseeded.
func (l *Ledger) AvailableUnits(productID string) int {
	rec, ok := l.records[productID]
	if !ok {
		return 0
	}
	return rec.AvailableUnits()
}

// ExportState returns a value copy of every record, for snapshotting.
func (l *Ledger) ExportState() []Record {
	out := make([]Record, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, *rec)
	}
	return out
}

// ImportState replaces the ledger contents with the given records.
func (l *Ledger) ImportState(records []Record) {
	l.records = make(map[string]*Record, len(records))
	for _, rec := range records {
		r := rec
		l.records[r.ProductID] = &r
	}
}
