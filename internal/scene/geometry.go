package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type GeometryKind int

const (
	GeometrySphere GeometryKind = iota
	GeometryBox
)

func (k GeometryKind) String() string {
	switch k {
	case GeometrySphere:
		return "sphere"
	case GeometryBox:
		return "box"
	default:
		return "unknown"
	}
}

// Geometry is a wireframe in local space: vertices plus index pairs that
// form its edges. Radius and Size record the dimensions it was built with.
type Geometry struct {
	Kind     GeometryKind
	Radius   float64
	Size     mgl64.Vec3
	Vertices []mgl64.Vec3
	Edges    [][2]int
}

// NewSphereGeometry builds a UV sphere of latitude rings and meridians.
func NewSphereGeometry(radius float64, widthSegments, heightSegments int) *Geometry {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	g := &Geometry{
		Kind:   GeometrySphere,
		Radius: radius,
		Size:   mgl64.Vec3{2 * radius, 2 * radius, 2 * radius},
	}
	for iy := 0; iy <= heightSegments; iy++ {
		phi := math.Pi * float64(iy) / float64(heightSegments)
		for ix := 0; ix < widthSegments; ix++ {
			theta := 2 * math.Pi * float64(ix) / float64(widthSegments)
			g.Vertices = append(g.Vertices, mgl64.Vec3{
				-radius * math.Cos(theta) * math.Sin(phi),
				radius * math.Cos(phi),
				radius * math.Sin(theta) * math.Sin(phi),
			})
		}
	}

	index := func(ix, iy int) int { return iy*widthSegments + ix%widthSegments }
	for iy := 0; iy <= heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			if iy > 0 && iy < heightSegments {
				g.Edges = append(g.Edges, [2]int{index(ix, iy), index(ix+1, iy)})
			}
			if iy < heightSegments {
				g.Edges = append(g.Edges, [2]int{index(ix, iy), index(ix, iy+1)})
			}
		}
	}
	return g
}

func NewBoxGeometry(width, height, depth float64) *Geometry {
	x, y, z := width/2, height/2, depth/2
	return &Geometry{
		Kind: GeometryBox,
		Size: mgl64.Vec3{width, height, depth},
		Vertices: []mgl64.Vec3{
			{-x, -y, -z}, {x, -y, -z}, {x, y, -z}, {-x, y, -z},
			{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z},
		},
		Edges: [][2]int{
			{0, 1}, {1, 2}, {2, 3}, {3, 0},
			{4, 5}, {5, 6}, {6, 7}, {7, 4},
			{0, 4}, {1, 5}, {2, 6}, {3, 7},
		},
	}
}
