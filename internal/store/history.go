package store

import "github.com/cleared-dev/tally/internal/model"

// MaxHistory bounds the undo history. Older snapshots are dropped first.
const MaxHistory = 20

// snapshot is a full copy of the collection. Expense values hold no shared
// mutable state, so copying the slice is enough to isolate it.
type snapshot []model.Expense

func takeSnapshot(expenses []model.Expense) snapshot {
	s := make(snapshot, len(expenses))
	copy(s, expenses)
	return s
}

// history is a bounded LIFO of snapshots.
type history struct {
	limit int
	items []snapshot
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

func (h *history) push(s snapshot) {
	h.items = append(h.items, s)
	if len(h.items) > h.limit {
		// evict oldest
		h.items = append(h.items[:0:0], h.items[len(h.items)-h.limit:]...)
	}
}

func (h *history) pop() (snapshot, bool) {
	if len(h.items) == 0 {
		return nil, false
	}
	last := h.items[len(h.items)-1]
	h.items[len(h.items)-1] = nil
	h.items = h.items[:len(h.items)-1]
	return last, true
}

func (h *history) clear() {
	h.items = nil
}

func (h *history) len() int {
	return len(h.items)
}
