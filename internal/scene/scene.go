// Package scene is the small scene graph the sculpture is drawn from:
// a rotating group of point-like petals, two lights, fog and a camera.
package scene

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Primitive is one point-like visual with a settable position.
type Primitive struct {
	Position mgl64.Vec3
	Color    colorful.Color
	Radius   float64 // world units
}

// Group holds primitives under a shared Euler rotation (radians, XYZ order).
type Group struct {
	Rotation mgl64.Vec3
	Children []Primitive
}

// Model returns the group's model matrix.
func (g *Group) Model() mgl64.Mat4 {
	return mgl64.HomogRotate3DX(g.Rotation.X()).
		Mul4(mgl64.HomogRotate3DY(g.Rotation.Y())).
		Mul4(mgl64.HomogRotate3DZ(g.Rotation.Z()))
}

// AmbientLight lights every petal evenly.
type AmbientLight struct {
	Color     colorful.Color
	Intensity float64
}

// PointLight falls off linearly to zero at Distance.
type PointLight struct {
	Color     colorful.Color
	Position  mgl64.Vec3
	Intensity float64
	Distance  float64
}

// Attenuation returns the light's contribution factor at p.
func (l PointLight) Attenuation(p mgl64.Vec3) float64 {
	if l.Distance <= 0 {
		return l.Intensity
	}
	d := l.Position.Sub(p).Len()
	if d >= l.Distance {
		return 0
	}
	return l.Intensity * (1 - d/l.Distance)
}

// Fog blends colours linearly towards Color between Near and Far.
type Fog struct {
	Color     colorful.Color
	Near, Far float64
}

// Factor returns 0 at or before Near and 1 at or beyond Far.
func (f Fog) Factor(depth float64) float64 {
	if f.Far <= f.Near {
		return 0
	}
	t := (depth - f.Near) / (f.Far - f.Near)
	return math.Max(0, math.Min(1, t))
}

// Breathing is the time-varying intensity of the point light.
type Breathing struct {
	Base      float64
	Amplitude float64
	Omega     float64 // rad/s
}

// DefaultBreathing is 1.2 ± 0.3 at 1 rad/s.
var DefaultBreathing = Breathing{Base: 1.2, Amplitude: 0.3, Omega: 1}

// At returns the intensity after elapsed monotonic time.
func (b Breathing) At(elapsed time.Duration) float64 {
	return b.Base + b.Amplitude*math.Sin(elapsed.Seconds()*b.Omega)
}

// Scene is the root handed to a rendering surface.
type Scene struct {
	Flower     Group
	Ambient    AmbientLight
	Sun        PointLight
	Fog        Fog
	Background colorful.Color
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// New returns a scene with n petals, all at the origin, a warm ambient
// light, a point light up and to the right, and black fog.
func New(n int) *Scene {
	return &Scene{
		Flower: Group{Children: make([]Primitive, n)},
		Ambient: AmbientLight{
			Color:     mustHex("#ffcc66"),
			Intensity: 0.5,
		},
		Sun: PointLight{
			Color:     mustHex("#ffaa33"),
			Position:  mgl64.Vec3{6, 6, 6},
			Intensity: DefaultBreathing.Base,
			Distance:  20,
		},
		Fog: Fog{
			Color: colorful.Color{},
			Near:  4,
			Far:   12,
		},
	}
}
