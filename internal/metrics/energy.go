package metrics

import (
	"github.com/san-kum/sandbox/internal/physics"
)

const defaultHistory = 256

// Energy is the total mechanical energy of the observed bodies: kinetic
// plus gravitational potential measured from a reference height.
type Energy struct {
	name      string
	gravity   float64
	reference float64
	current   float64
	history   []float64
	capacity  int
}

func NewEnergy(gravity, reference float64) *Energy {
	return &Energy{
		name:      "energy",
		gravity:   gravity,
		reference: reference,
		history:   make([]float64, 0, defaultHistory),
		capacity:  defaultHistory,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(bodies []*physics.Body, t float64) {
	total := 0.0
	for _, b := range bodies {
		if b.IsStatic() {
			continue
		}
		total += b.KineticEnergy()
		total += b.Mass * e.gravity * (b.Position[1] - e.reference)
	}
	e.current = total

	if len(e.history) == e.capacity {
		copy(e.history, e.history[1:])
		e.history = e.history[:len(e.history)-1]
	}
	e.history = append(e.history, total)
}

func (e *Energy) Value() float64 { return e.current }

// History returns up to the last 256 observed totals, oldest first.
func (e *Energy) History() []float64 {
	out := make([]float64, len(e.history))
	copy(out, e.history)
	return out
}

func (e *Energy) Reset() {
	e.current = 0
	e.history = e.history[:0]
}
