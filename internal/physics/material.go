package physics

import "sync/atomic"

var materialIDCounter atomic.Int64

// Material tags a body so the world can pick the contact material used
// when two bodies touch.
type Material struct {
	Name string
	ID   int64
}

func NewMaterial(name string) *Material {
	return &Material{Name: name, ID: materialIDCounter.Add(1)}
}

// ContactMaterial defines friction and restitution between two materials.
// It is shared and treated as immutable once added to a world.
type ContactMaterial struct {
	A, B        *Material
	Friction    float64
	Restitution float64
}

func NewContactMaterial(a, b *Material, friction, restitution float64) *ContactMaterial {
	return &ContactMaterial{A: a, B: b, Friction: friction, Restitution: restitution}
}

func (c *ContactMaterial) matches(a, b *Material) bool {
	return (c.A == a && c.B == b) || (c.A == b && c.B == a)
}
