package server

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one finished run.
type HistoryEntry struct {
	ID        uuid.UUID
	Username  string
	Score     int
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration returns how long the run lasted.
func (e HistoryEntry) Duration() time.Duration {
	return e.EndedAt.Sub(e.StartedAt)
}

// History keeps the most recent finished runs, newest first, up to a fixed cap.
// It is not safe for concurrent use; the server guards it with its mutex.
type History struct {
	entries []HistoryEntry
	size    int
}

// NewHistory creates a history holding at most size entries.
// A size below 1 is treated as 1.
func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{
		entries: make([]HistoryEntry, 0, size),
		size:    size,
	}
}

// Add records a run, evicting the oldest one when full.
func (h *History) Add(e HistoryEntry) {
	if len(h.entries) < h.size {
		h.entries = append(h.entries, HistoryEntry{})
	}
	copy(h.entries[1:], h.entries[:len(h.entries)-1])
	h.entries[0] = e
}

// Recent returns a copy of the stored runs, newest first.
func (h *History) Recent() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of stored runs.
func (h *History) Len() int {
	return len(h.entries)
}
