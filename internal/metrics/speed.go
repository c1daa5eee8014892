package metrics

import (
	"math"

	"github.com/san-kum/sandbox/internal/physics"
)

// MaxSpeed reports the fastest linear speed seen in the latest frame and
// keeps the peak over all frames since the last reset.
type MaxSpeed struct {
	name    string
	current float64
	peak    float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(bodies []*physics.Body, t float64) {
	m.current = 0
	for _, b := range bodies {
		m.current = math.Max(m.current, b.Velocity.Len())
	}
	m.peak = math.Max(m.peak, m.current)
}

func (m *MaxSpeed) Value() float64 { return m.current }

func (m *MaxSpeed) Peak() float64 { return m.peak }

func (m *MaxSpeed) Reset() {
	m.current = 0
	m.peak = 0
}
