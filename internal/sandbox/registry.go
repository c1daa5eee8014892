package sandbox

import (
	"fmt"
	"iter"

	"github.com/san-kum/sandbox/internal/physics"
	"github.com/san-kum/sandbox/internal/scene"
)

// ObjectPair links a mesh to the body it shows. Neither side is owned by
// the pair.
type ObjectPair struct {
	Mesh *scene.Mesh
	Body *physics.Body
}

func (p ObjectPair) complete() bool {
	return p.Mesh != nil && p.Body != nil
}

// Registry is the insertion-ordered list of pairs kept in sync each frame.
// Pairs are never removed or re-paired. It is not safe for concurrent use;
// the owning Simulation guards it.
type Registry struct {
	pairs  []ObjectPair
	bodies map[*physics.Body]struct{}
	meshes map[*scene.Mesh]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		pairs:  make([]ObjectPair, 0),
		bodies: make(map[*physics.Body]struct{}),
		meshes: make(map[*scene.Mesh]struct{}),
	}
}

// Register appends p. Incomplete pairs and a body or mesh that is already
// paired are rejected with ErrRegistrationInconsistency.
func (r *Registry) Register(p ObjectPair) error {
	if !p.complete() {
		return fmt.Errorf("%w: incomplete pair (mesh=%t body=%t)", ErrRegistrationInconsistency, p.Mesh != nil, p.Body != nil)
	}
	if _, ok := r.bodies[p.Body]; ok {
		return fmt.Errorf("%w: body %d already paired", ErrRegistrationInconsistency, p.Body.ID)
	}
	if _, ok := r.meshes[p.Mesh]; ok {
		return fmt.Errorf("%w: mesh already paired", ErrRegistrationInconsistency)
	}
	r.bodies[p.Body] = struct{}{}
	r.meshes[p.Mesh] = struct{}{}
	r.pairs = append(r.pairs, p)
	return nil
}

func (r *Registry) Len() int { return len(r.pairs) }

func (r *Registry) At(i int) ObjectPair { return r.pairs[i] }

func (r *Registry) Contains(b *physics.Body) bool {
	_, ok := r.bodies[b]
	return ok
}

// ForEach calls fn for every pair in insertion order.
func (r *Registry) ForEach(fn func(i int, p ObjectPair)) {
	for i, p := range r.pairs {
		fn(i, p)
	}
}

// All iterates pairs in insertion order. Each range over it starts afresh.
func (r *Registry) All() iter.Seq[ObjectPair] {
	return func(yield func(ObjectPair) bool) {
		for _, p := range r.pairs {
			if !yield(p) {
				return
			}
		}
	}
}

func (r *Registry) Bodies() []*physics.Body {
	out := make([]*physics.Body, len(r.pairs))
	for i, p := range r.pairs {
		out[i] = p.Body
	}
	return out
}
