package sandbox

import (
	"image/color"

	"github.com/san-kum/sandbox/internal/physics"
	"github.com/san-kum/sandbox/internal/scene"
)

const (
	sphereWidthSegments  = 20
	sphereHeightSegments = 20
)

// ShapeTemplates are built once and shared by reference with every spawned
// object. Spawned meshes scale the unit geometries to their dimensions.
type ShapeTemplates struct {
	SphereGeometry  *scene.Geometry
	BoxGeometry     *scene.Geometry
	ObjectMaterial  *scene.Material
	FloorMaterial   *scene.Material
	PhysicsMaterial *physics.Material
}

func NewShapeTemplates() *ShapeTemplates {
	floor := scene.NewStandardMaterial("floor", color.RGBA{R: 0x77, G: 0x77, B: 0x77, A: 0xff})
	return &ShapeTemplates{
		SphereGeometry:  scene.NewSphereGeometry(1, sphereWidthSegments, sphereHeightSegments),
		BoxGeometry:     scene.NewBoxGeometry(1, 1, 1),
		ObjectMaterial:  scene.NewStandardMaterial("object", color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}),
		FloorMaterial:   floor,
		PhysicsMaterial: physics.NewMaterial("default"),
	}
}
