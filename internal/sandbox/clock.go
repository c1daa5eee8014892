package sandbox

import (
	"sync"
	"time"
)

// TimeSource reports seconds since an arbitrary origin.
type TimeSource interface {
	Now() float64
}

// MonotonicSource reads the process monotonic clock.
type MonotonicSource struct {
	start time.Time
}

func NewMonotonicSource() *MonotonicSource {
	return &MonotonicSource{start: time.Now()}
}

func (m *MonotonicSource) Now() float64 {
	return time.Since(m.start).Seconds()
}

// ManualSource only moves when told to. Headless runs and tests use it to
// make frame timing deterministic.
type ManualSource struct {
	mu  sync.Mutex
	now float64
}

func NewManualSource() *ManualSource { return &ManualSource{} }

func (m *ManualSource) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualSource) Set(t float64) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

func (m *ManualSource) Advance(dt float64) {
	m.mu.Lock()
	m.now += dt
	m.mu.Unlock()
}

// Clock turns a time source into per-frame deltas. Elapsed time never
// decreases: a source that jumps backwards yields a zero delta until it
// catches up again.
type Clock struct {
	src     TimeSource
	origin  float64
	elapsed float64
}

func NewClock(src TimeSource) *Clock {
	if src == nil {
		src = NewMonotonicSource()
	}
	return &Clock{src: src, origin: src.Now()}
}

// Tick returns the seconds since the previous tick, never negative.
func (c *Clock) Tick() float64 {
	now := c.src.Now() - c.origin
	delta := now - c.elapsed
	if !(delta > 0) {
		return 0
	}
	c.elapsed = now
	return delta
}

func (c *Clock) Elapsed() float64 { return c.elapsed }
