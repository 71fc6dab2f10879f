package store

import (
	"sync"

	"github.com/i474232898/weather-cli/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory history. It backs the HTTP
// surface when no history file is wanted and is handy in tests.
type MemoryStore struct {
	mu sync.RWMutex

	records []weather.Record

	// max number of records kept (0 = unlimited)
	maxHistory int
}

// NewMemoryStore creates a new MemoryStore.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{maxHistory: maxHistory}
}

// Load returns a copy of the history in insertion order.
func (s *MemoryStore) Load() ([]weather.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Append adds a record and enforces retention by count.
func (s *MemoryStore) Append(r weather.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, r)

	if s.maxHistory > 0 && len(s.records) > s.maxHistory {
		over := len(s.records) - s.maxHistory
		s.records = s.records[over:]
	}
	return nil
}

// Clear drops every record and reports whether there were any.
func (s *MemoryStore) Clear() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	had := len(s.records) > 0
	s.records = nil
	return had, nil
}
