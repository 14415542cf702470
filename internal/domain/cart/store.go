package cart

import (
	"github.com/flashmarket/storefront/internal/domain/catalog"
)

// IDGenerator mints unique cart line ids.
type IDGenerator interface {
	NewID() string
}

// Store is the authoritative ordered list of cart lines. It is owned by one
// facade instance, which serializes access.
type Store struct {
	lines []Line
	idGen IDGenerator
}

func NewStore(idGen IDGenerator) *Store {
	return &Store{idGen: idGen}
}

// AddLine adds quantity units of a product. When merge is true and a line
// with the same group key exists, the quantity folds into that line;
// otherwise a new line is created, snapshotting the product's current price
// as the line's base price.
func (s *Store) AddLine(product catalog.Product, quantity int, merge bool) Line {
	key := groupKey(product.ID)

	if merge {
		for i := range s.lines {
			if s.lines[i].GroupKey == key {
				s.lines[i].Quantity += quantity
				return s.lines[i].Clone()
			}
		}
	}

	line := Line{
		CartItemID: s.idGen.NewID(),
		BaseID:     product.ID,
		Name:       product.Name,
		Image:      product.Image,
		Quantity:   quantity,
		BasePrice:  product.Price,
		Price:      product.Price,
		GroupKey:   key,
	}
	s.lines = append(s.lines, line)
	return line.Clone()
}

// Find locates a line by cart item id, falling back to base product id.
func (s *Store) Find(idOrBaseID string) (Line, bool) {
	for _, l := range s.lines {
		if l.CartItemID == idOrBaseID {
			return l.Clone(), true
		}
	}
	for _, l := range s.lines {
		if l.BaseID == idOrBaseID {
			return l.Clone(), true
		}
	}
	return Line{}, false
}

// FindAll returns every line matching by cart item id or base product id.
func (s *Store) FindAll(idOrBaseID string) []Line {
	var out []Line
	for _, l := range s.lines {
		if l.CartItemID == idOrBaseID || l.BaseID == idOrBaseID {
			out = append(out, l.Clone())
		}
	}
	return out
}

// RemoveLine removes by exact line id first; when nothing matches, it removes
// every line for that base product id.
func (s *Store) RemoveLine(idOrBaseID string) bool {
	for i, l := range s.lines {
		if l.CartItemID == idOrBaseID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return true
		}
	}
	kept := s.lines[:0]
	removed := false
	for _, l := range s.lines {
		if l.BaseID == idOrBaseID {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	s.lines = kept
	return removed
}

// SetQuantity overwrites the quantity on the matched line. A quantity of zero
// or less removes the line instead.
func (s *Store) SetQuantity(idOrBaseID string, quantity int) error {
	idx := s.indexOf(idOrBaseID)
	if idx < 0 {
		return ErrLineNotFound
	}
	if quantity <= 0 {
		s.RemoveLine(s.lines[idx].CartItemID)
		return nil
	}
	s.lines[idx].Quantity = quantity
	return nil
}

// UpdateLine applies a mutation to the matched line, then re-derives its
// group key. If the key now collides with another line, the two merge:
// quantities sum into the surviving line and the updated one is discarded.
// The merge keeps the one-line-per-product invariant even after add-on
// changes.
func (s *Store) UpdateLine(idOrBaseID string, apply func(*Line)) error {
	idx := s.indexOf(idOrBaseID)
	if idx < 0 {
		return ErrLineNotFound
	}

	line := &s.lines[idx]
	apply(line)
	line.GroupKey = groupKey(line.BaseID)

	for i := range s.lines {
		if i != idx && s.lines[i].GroupKey == line.GroupKey {
			s.lines[i].Quantity += line.Quantity
			s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
			return nil
		}
	}
	return nil
}

// Lines returns a defensive deep copy of the line list.
func (s *Store) Lines() []Line {
	return CloneLines(s.lines)
}

// TotalQuantity sums all line quantities.
func (s *Store) TotalQuantity() int {
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

func (s *Store) Clear() {
	s.lines = nil
}

// ReplaceAll overwrites the line list, deep-copying the input. Used by
// snapshot restore.
func (s *Store) ReplaceAll(lines []Line) {
	s.lines = CloneLines(lines)
}

func (s *Store) indexOf(idOrBaseID string) int {
	for i, l := range s.lines {
		if l.CartItemID == idOrBaseID {
			return i
		}
	}
	for i, l := range s.lines {
		if l.BaseID == idOrBaseID {
			return i
		}
	}
	return -1
}
