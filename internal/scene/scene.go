package scene

import "image/color"

type Scene struct {
	Background color.RGBA
	meshes     []*Mesh
	index      map[*Mesh]int
}

func New() *Scene {
	return &Scene{
		Background: color.RGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff},
		meshes:     make([]*Mesh, 0),
		index:      make(map[*Mesh]int),
	}
}

// Add appends m unless it is nil or already present. It reports whether m
// was added.
func (s *Scene) Add(m *Mesh) bool {
	if m == nil {
		return false
	}
	if _, ok := s.index[m]; ok {
		return false
	}
	s.index[m] = len(s.meshes)
	s.meshes = append(s.meshes, m)
	return true
}

func (s *Scene) Contains(m *Mesh) bool {
	_, ok := s.index[m]
	return ok
}

// Meshes returns the meshes in insertion order. The slice is a copy.
func (s *Scene) Meshes() []*Mesh {
	out := make([]*Mesh, len(s.meshes))
	copy(out, s.meshes)
	return out
}

func (s *Scene) Len() int { return len(s.meshes) }
