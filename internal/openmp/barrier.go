package openmp

import "sync"

// cyclicBarrier is a reusable N-party rendezvous: exactly n participants
// must call wait() before any of them proceeds, and the barrier resets
// itself for the next cycle. golang.org/x/sync offers errgroup,
// semaphore, and singleflight but nothing modeling a reusable N-party
// barrier, so it is built directly on sync.Cond.
type cyclicBarrier struct {
	n int

	mu      sync.Mutex
	cond    *sync.Cond
	waiting int
	cycle   uint64
}

func newCyclicBarrier(n int) *cyclicBarrier {
	b := &cyclicBarrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// wait blocks until n participants have called wait() in the current
// cycle, then releases them all and advances to the next cycle.
func (b *cyclicBarrier) wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	cycle := b.cycle
	b.waiting++

	if b.waiting == b.n {
		b.waiting = 0
		b.cycle++
		b.cond.Broadcast()
		return
	}

	for cycle == b.cycle {
		b.cond.Wait()
	}
}
