package sandbox

import (
	"context"

	"github.com/san-kum/sandbox/internal/physics"
	"github.com/san-kum/sandbox/internal/scene"
)

// PhysicsWorld is the part of the physics engine the sandbox drives.
type PhysicsWorld interface {
	Step(fixedDt, realDt float64, maxSubSteps int) (int, error)
	AddBody(b *physics.Body) error
	HasBody(b *physics.Body) bool
}

type Renderer interface {
	Render(s *scene.Scene, cam *scene.Camera) error
	SetSize(width, height int)
	SetPixelRatio(ratio float64)
}

// Controls is a camera or interaction controller advanced once per frame.
type Controls interface {
	Update(dt float64)
}

type Metric interface {
	Name() string
	Observe(bodies []*physics.Body, t float64)
	Value() float64
	Reset()
}

// Observer is notified after the copy phase of every frame, with the
// simulation locked.
type Observer interface {
	OnFrame(frame uint64, t float64, r *Registry)
}

// Scheduler blocks until the next frame is due. It returns ErrSchedulerDone
// when no frames remain.
type Scheduler interface {
	Next(ctx context.Context) error
}

// NopRenderer draws nothing. Headless runs use it.
type NopRenderer struct{}

func (NopRenderer) Render(*scene.Scene, *scene.Camera) error { return nil }
func (NopRenderer) SetSize(int, int)                         {}
func (NopRenderer) SetPixelRatio(float64)                    {}
