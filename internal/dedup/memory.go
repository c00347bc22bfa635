package dedup

import "sync"

// MemoryStore is a Store that never persists. Dry runs use it on top of a
// snapshot of the real log so nothing they see is marked as seen, and live
// runs fall back to it when the redis log is unreachable.
type MemoryStore struct {
	mu  sync.Mutex
	set *SeenSet
}

func NewMemory(set *SeenSet) *MemoryStore {
	if set == nil {
		set = NewSeenSet(1000)
	}
	return &MemoryStore{set: set}
}

func (s *MemoryStore) HasSeen(fp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Has(fp)
}

func (s *MemoryStore) Record(fp string) {
	s.mu.Lock()
	s.set.Add(fp)
	s.mu.Unlock()
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Len()
}

func (s *MemoryStore) Flush() error { return nil }
func (s *MemoryStore) Close() error { return nil }
