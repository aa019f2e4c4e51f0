package gateway

import "sync"

// QueryCounter tracks remote calls per operation. The gateway owns it so
// the reconciliation logic stays free of hidden state; callers read a
// snapshot for the end-of-run report.
type QueryCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewQueryCounter() *QueryCounter {
	return &QueryCounter{counts: make(map[string]int)}
}

func (c *QueryCounter) Increment(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[op]++
}

// Snapshot returns a copy of the per-operation counts.
func (c *QueryCounter) Snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counts))
	for op, n := range c.counts {
		out[op] = n
	}
	return out
}

// Total returns the number of queries issued across all operations.
func (c *QueryCounter) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}
