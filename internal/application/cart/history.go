package cart

import "errors"

var (
	ErrNothingToUndo = errors.New("cart: nothing to undo")
	ErrNothingToRedo = errors.New("cart: nothing to redo")
)

// DefaultHistoryLimit bounds the undo stack when no limit is configured.
const DefaultHistoryLimit = 20

// History is the caretaker for cart snapshots: a bounded undo stack and the
// redo stack vacated by undos. It never inspects snapshot contents and does
// not know the live state; callers pass the current state into Undo/Redo so
// the walked-away-from state lands on the opposite stack.
type History struct {
	past   []Snapshot
	future []Snapshot
	limit  int
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Save pushes a pre-mutation snapshot. Any redo branch is discarded: a new
// action invalidates forward history. The oldest entry is evicted past the
// limit.
func (h *History) Save(s Snapshot) {
	h.past = append(h.past, s.Clone())
	h.future = nil
	if len(h.past) > h.limit {
		h.past = h.past[1:]
	}
}

// Undo pops the most recent snapshot, parking the caller's current state on
// the redo stack. The returned snapshot is the state to restore.
func (h *History) Undo(current Snapshot) (Snapshot, error) {
	if len(h.past) == 0 {
		return Snapshot{}, ErrNothingToUndo
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, current.Clone())
	return prev, nil
}

// Redo pops the most recently undone state back, parking the caller's current
// state on the undo stack.
func (h *History) Redo(current Snapshot) (Snapshot, error) {
	if len(h.future) == 0 {
		return Snapshot{}, ErrNothingToRedo
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, current.Clone())
	return next, nil
}

func (h *History) CanUndo() bool { return len(h.past) > 0 }
func (h *History) CanRedo() bool { return len(h.future) > 0 }

type HistoryStats struct {
	HistorySize int
	RedoSize    int
	Limit       int
	CanUndo     bool
	CanRedo     bool
}

func (h *History) Stats() HistoryStats {
	return HistoryStats{
		HistorySize: len(h.past),
		RedoSize:    len(h.future),
		Limit:       h.limit,
		CanUndo:     h.CanUndo(),
		CanRedo:     h.CanRedo(),
	}
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.past = nil
	h.future = nil
}
