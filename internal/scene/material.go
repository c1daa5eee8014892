package scene

import "image/color"

// Material describes how a mesh surface is shaded. Renderers without
// lighting use Color only.
type Material struct {
	Name            string
	Color           color.RGBA
	Metalness       float64
	Roughness       float64
	EnvMapIntensity float64
}

func NewStandardMaterial(name string, c color.RGBA) *Material {
	return &Material{
		Name:            name,
		Color:           c,
		Metalness:       0.3,
		Roughness:       0.4,
		EnvMapIntensity: 0.5,
	}
}

// Shade darkens c by f in [0, 1]. Alpha is kept.
func Shade(c color.RGBA, f float64) color.RGBA {
	k := 1 - max(0, min(f, 1))
	return color.RGBA{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: c.A,
	}
}
