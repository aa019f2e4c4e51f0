package usecase

import (
	"sync"
	"time"
)

// Phase is one timed step of a run.
type Phase struct {
	Name    string
	Elapsed time.Duration
}

// Timings collects phase durations. Safe for the concurrent fetches the
// aggregator runs; order of observation is preserved.
type Timings struct {
	mu     sync.Mutex
	phases []Phase
}

func NewTimings() *Timings { return &Timings{} }

// Observe records a finished phase.
func (t *Timings) Observe(name string, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Elapsed: elapsed})
}

// Track runs fn and records its wall time under name.
func (t *Timings) Track(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	t.Observe(name, time.Since(start))
	return err
}

// Phases returns the recorded phases in observation order.
func (t *Timings) Phases() []Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Phase, len(t.phases))
	copy(out, t.phases)
	return out
}
