package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const minPolar = 1e-3

// OrbitControls moves a camera on a sphere around its target. Rotations and
// dolly requests accumulate and are applied on Update; with damping enabled
// they are eased in over several updates.
type OrbitControls struct {
	Camera *Camera
	Target mgl64.Vec3

	EnableDamping bool
	DampingFactor float64
	MinDistance   float64
	MaxDistance   float64

	// AutoRotateSpeed is in radians per second around the vertical axis.
	AutoRotateSpeed float64

	radius, theta, phi float64
	deltaTheta         float64
	deltaPhi           float64
	scale              float64
}

func NewOrbitControls(cam *Camera) *OrbitControls {
	o := &OrbitControls{
		Camera:        cam,
		Target:        cam.Target,
		DampingFactor: 0.05,
		MinDistance:   0.5,
		MaxDistance:   100,
		scale:         1,
	}
	o.sync()
	return o
}

// sync reads the spherical coordinates from the camera position.
func (o *OrbitControls) sync() {
	off := o.Camera.Position.Sub(o.Target)
	o.radius = off.Len()
	if o.radius == 0 {
		o.theta, o.phi = 0, math.Pi/2
		return
	}
	o.theta = math.Atan2(off.X(), off.Z())
	o.phi = math.Acos(mgl64.Clamp(off.Y()/o.radius, -1, 1))
}

func (o *OrbitControls) RotateLeft(angle float64) { o.deltaTheta -= angle }
func (o *OrbitControls) RotateUp(angle float64)   { o.deltaPhi -= angle }

// Dolly scales the distance to the target. Factors below one move closer.
func (o *OrbitControls) Dolly(factor float64) {
	if factor > 0 {
		o.scale *= factor
	}
}

func (o *OrbitControls) Distance() float64 { return o.radius }

func (o *OrbitControls) Update(dt float64) {
	if o.AutoRotateSpeed != 0 {
		o.RotateLeft(o.AutoRotateSpeed * dt)
	}

	if o.EnableDamping {
		o.theta += o.deltaTheta * o.DampingFactor
		o.phi += o.deltaPhi * o.DampingFactor
		o.deltaTheta *= 1 - o.DampingFactor
		o.deltaPhi *= 1 - o.DampingFactor
	} else {
		o.theta += o.deltaTheta
		o.phi += o.deltaPhi
		o.deltaTheta, o.deltaPhi = 0, 0
	}
	o.phi = mgl64.Clamp(o.phi, minPolar, math.Pi-minPolar)

	o.radius = mgl64.Clamp(o.radius*o.scale, o.MinDistance, o.MaxDistance)
	o.scale = 1

	sinPhi := math.Sin(o.phi)
	off := mgl64.Vec3{
		o.radius * sinPhi * math.Sin(o.theta),
		o.radius * math.Cos(o.phi),
		o.radius * sinPhi * math.Cos(o.theta),
	}
	o.Camera.Position = o.Target.Add(off)
	o.Camera.LookAt(o.Target)
}
