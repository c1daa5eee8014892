package physics

import "errors"

var (
	// ErrInvalidTimestep indicates a non-positive fixed step, a negative or
	// non-finite elapsed time, or a sub-step cap below one.
	ErrInvalidTimestep = errors.New("physics: invalid timestep")

	ErrNilBody = errors.New("physics: nil body")

	// ErrDuplicateBody indicates a body that is already part of a world.
	ErrDuplicateBody = errors.New("physics: body already added to world")

	ErrUnknownBroadphase = errors.New("physics: unknown broadphase")
)
