package engine

import (
	"sync"

	"github.com/smarterdog/grooming/services/grooming-service/internal/model"
)

// History is the append-only sequence of confirmed bookings. When limit is positive the
// oldest records are evicted once it is exceeded.
type History struct {
	mu      sync.RWMutex
	limit   int
	records []model.BookingRecord
}

func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{limit: limit}
}

func (h *History) Append(rec model.BookingRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	if h.limit > 0 && len(h.records) > h.limit {
		drop := len(h.records) - h.limit
		h.records = append(h.records[:0:0], h.records[drop:]...)
	}
}

// List returns a copy in insertion order.
func (h *History) List() []model.BookingRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]model.BookingRecord(nil), h.records...)
}

// Recent returns up to n records, newest first. n <= 0 returns all of them.
func (h *History) Recent(n int) []model.BookingRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n <= 0 || n > len(h.records) {
		n = len(h.records)
	}
	out := make([]model.BookingRecord, 0, n)
	for i := len(h.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.records[i])
	}
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}
