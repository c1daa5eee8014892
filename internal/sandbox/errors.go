package sandbox

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrInvalidShapeParameters indicates a non-positive or non-finite dimension.
	ErrInvalidShapeParameters = errors.New("sandbox: invalid shape parameters")

	// ErrInvalidSpawnPosition indicates a spawn position with a NaN or Inf coordinate.
	ErrInvalidSpawnPosition = errors.New("sandbox: invalid spawn position")

	// ErrRegistrationInconsistency indicates a pair whose body or mesh is
	// missing, already paired, or not present in the world or scene. It is
	// never expected and callers should treat it as fatal.
	ErrRegistrationInconsistency = errors.New("sandbox: registration inconsistency")

	// ErrSchedulerDone is returned by a Scheduler that has no more frames.
	ErrSchedulerDone = errors.New("sandbox: scheduler finished")
)

// SpawnError wraps a rejected spawn with the parameters it was called with.
type SpawnError struct {
	Shape    string
	Dims     []float64
	Position mgl64.Vec3
	Wrapped  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s %v at %v: %v", e.Shape, e.Dims, e.Position, e.Wrapped)
}

func (e *SpawnError) Unwrap() error {
	return e.Wrapped
}

// FrameError wraps a failure inside RunFrame. Phase is "step" or "render".
type FrameError struct {
	Frame   uint64
	Phase   string
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d %s: %v", e.Frame, e.Phase, e.Wrapped)
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}
