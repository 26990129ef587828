package lotofacil

import (
	"context"
	"slices"
	"sync"
)

// HistoryStore is the append-only ledger of combinations produced in a session.
// No uniqueness is enforced on Record; Snapshot returns a copy in append order.
type HistoryStore interface {
	Record(ctx context.Context, numbers []int) error
	Snapshot(ctx context.Context) ([][]int, error)
}

// MemoryHistory keeps the session history in process memory; it is lost on restart
type MemoryHistory struct {
	mu      sync.RWMutex
	entries [][]int
}

// NewMemoryHistory creates an empty in-memory history
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

// Record appends a copy of numbers
func (h *MemoryHistory) Record(_ context.Context, numbers []int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, slices.Clone(numbers))
	return nil
}

// Snapshot returns every recorded combination, oldest first
func (h *MemoryHistory) Snapshot(_ context.Context) ([][]int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return cloneCombinations(h.entries), nil
}

// Len returns the number of recorded combinations
func (h *MemoryHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}
