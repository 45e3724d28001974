package distribute

import (
	"context"
	"sync"
)

// Barrier blocks each caller of Wait until n callers have arrived. It can
// be reused once a generation has been released.
type Barrier struct {
	n     int
	mu    sync.Mutex
	count int
	gen   chan struct{}
}

// NewBarrier returns a barrier for n parties.
func NewBarrier(n int) *Barrier {
	return &Barrier{n: n, gen: make(chan struct{})}
}

// Wait blocks until all parties have called Wait or ctx is done.
func (b *Barrier) Wait(ctx context.Context) error {
	b.mu.Lock()
	gen := b.gen
	b.count++
	if b.count == b.n {
		b.count = 0
		b.gen = make(chan struct{})
		b.mu.Unlock()
		close(gen)
		return nil
	}
	b.mu.Unlock()

	select {
	case <-gen:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
