package picture

import "sync"

// Store is the ordered list of picture records received during a display session.
// It is append-only: records are never reordered or deduplicated, so a record the
// backend sends twice shows up twice.
type Store struct {
	mu      sync.RWMutex
	records []Record
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Append adds records in arrival order
func (s *Store) Append(records ...Record) {
	if len(records) == 0 {
		return
	}
	s.mu.Lock()
	s.records = append(s.records, records...)
	s.mu.Unlock()
}

// Len returns the number of records received so far
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns a copy of the records in arrival order
func (s *Store) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// At returns the record at position i (0-based)
func (s *Store) At(i int) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.records) {
		return Record{}, false
	}
	return s.records[i], true
}

// Last returns the most recently appended record
func (s *Store) Last() (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return Record{}, false
	}
	return s.records[len(s.records)-1], true
}
