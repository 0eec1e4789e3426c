package research

import (
	"sync"

	"stocksage/internal/models"
)

// DefaultMemoryCapacity bounds how many learning entries the orchestrator
// retains process-wide.
const DefaultMemoryCapacity = 10

// MemoryStore is a bounded, newest-kept store of AgentMemory entries. One
// entry is appended per research cycle; the oldest entries are evicted past
// capacity. All access is serialized for multi-cycle safety.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	entries  []*models.AgentMemory
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity}
}

// Append stores a new entry, evicting the oldest beyond capacity.
func (s *MemoryStore) Append(entry *models.AgentMemory) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	if len(s.entries) > s.capacity {
		s.entries = s.entries[len(s.entries)-s.capacity:]
	}
}

// MostRecentFor scans newest to oldest and returns the first entry for the
// symbol, if any.
func (s *MemoryStore) MostRecentFor(symbol string) (*models.AgentMemory, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].StockSymbol == symbol {
			return s.entries[i], true
		}
	}
	return nil, false
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a snapshot in chronological order.
func (s *MemoryStore) Entries() []*models.AgentMemory {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.AgentMemory, len(s.entries))
	copy(out, s.entries)
	return out
}
