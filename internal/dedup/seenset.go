package dedup

// SeenSet is a bounded set of fingerprints. Membership is a map lookup;
// once full, the oldest inserted fingerprint is evicted first.
type SeenSet struct {
	capacity int
	order    []string // ring buffer, oldest at head
	head     int
	index    map[string]struct{}
}

func NewSeenSet(capacity int) *SeenSet {
	if capacity <= 0 {
		capacity = 1
	}
	return &SeenSet{
		capacity: capacity,
		order:    make([]string, 0, capacity),
		index:    make(map[string]struct{}, capacity),
	}
}

// NewSeenSetFrom rebuilds a set from a persisted log (oldest first). Only
// the most recent capacity entries survive.
func NewSeenSetFrom(capacity int, log []string) *SeenSet {
	s := NewSeenSet(capacity)
	for _, fp := range log {
		s.Add(fp)
	}
	return s
}

func (s *SeenSet) Has(fp string) bool {
	_, ok := s.index[fp]
	return ok
}

// Add inserts fp. Re-adding a member is a no-op and does not refresh its
// position.
func (s *SeenSet) Add(fp string) {
	if fp == "" || s.Has(fp) {
		return
	}
	if len(s.order) < s.capacity {
		s.order = append(s.order, fp)
		s.index[fp] = struct{}{}
		return
	}
	evicted := s.order[s.head]
	delete(s.index, evicted)
	s.order[s.head] = fp
	s.index[fp] = struct{}{}
	s.head = (s.head + 1) % s.capacity
}

func (s *SeenSet) Len() int { return len(s.order) }

func (s *SeenSet) Cap() int { return s.capacity }

// Entries returns the members oldest first.
func (s *SeenSet) Entries() []string {
	out := make([]string, 0, len(s.order))
	out = append(out, s.order[s.head:]...)
	out = append(out, s.order[:s.head]...)
	return out
}
