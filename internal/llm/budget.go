package llm

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Budget caps model calls per run and spaces them out. Reset starts a new
// run; spacing carries over.
type Budget struct {
	mu   sync.Mutex
	max  int
	used int
	lim  *rate.Limiter
}

func NewBudget(maxCalls int, spacing time.Duration) *Budget {
	every := rate.Inf
	if spacing > 0 {
		every = rate.Every(spacing)
	}
	return &Budget{max: maxCalls, lim: rate.NewLimiter(every, 1)}
}

// Acquire reserves one call, waiting for the spacing interval. It returns
// false without waiting when the cap is spent, and false when ctx ends
// first; a cancelled wait gives the reservation back.
func (b *Budget) Acquire(ctx context.Context) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	if b.used >= b.max {
		b.mu.Unlock()
		return false
	}
	b.used++
	b.mu.Unlock()

	if err := b.lim.Wait(ctx); err != nil {
		b.mu.Lock()
		b.used--
		b.mu.Unlock()
		return false
	}
	return true
}

func (b *Budget) Remaining() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.max - b.used
}

func (b *Budget) Used() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

func (b *Budget) Reset() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.used = 0
	b.mu.Unlock()
}
