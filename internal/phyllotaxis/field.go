// Package phyllotaxis lays petals out on a golden-angle spiral.
package phyllotaxis

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// GoldenAngle is π(3-√5) radians, roughly 137.5°.
var GoldenAngle = math.Pi * (3 - math.Sqrt(5))

// ErrEmptyField is returned when a field is requested with fewer than one petal.
var ErrEmptyField = errors.New("phyllotaxis: petal count must be >= 1")

// Petal is the fixed polar identity of one particle.
type Petal struct {
	Index int
	R     float64 // in [0,1)
	Theta float64 // unwrapped, may exceed 2π
}

// Layout holds the constants that turn a polar petal into a 3D position.
type Layout struct {
	Spread float64
	Depth  float64
}

// DefaultLayout spreads petals three units wide with a shallow cone.
var DefaultLayout = Layout{Spread: 3, Depth: 0.45}

// Position returns the petal position for the given bloom factor.
func (p Petal) Position(bloom float64, l Layout) mgl64.Vec3 {
	r := p.R * bloom * l.Spread
	return mgl64.Vec3{
		r * math.Cos(p.Theta),
		r * math.Sin(p.Theta),
		r * l.Depth,
	}
}

// Color is the petal's base colour, a warm gradient from the core outwards.
func (p Petal) Color() colorful.Color {
	return colorful.Hsl(42+p.R*25, 0.95, 0.55)
}

// Field is an immutable set of petals.
type Field struct {
	petals []Petal
}

// NewField builds n petals with r = √(i/n) and θ = i·GoldenAngle.
func NewField(n int) (*Field, error) {
	if n < 1 {
		return nil, ErrEmptyField
	}
	petals := make([]Petal, n)
	for i := range petals {
		petals[i] = Petal{
			Index: i,
			R:     math.Sqrt(float64(i) / float64(n)),
			Theta: float64(i) * GoldenAngle,
		}
	}
	return &Field{petals: petals}, nil
}

// Len returns the number of petals.
func (f *Field) Len() int { return len(f.petals) }

// Petals returns a copy of the petals.
func (f *Field) Petals() []Petal {
	out := make([]Petal, len(f.petals))
	copy(out, f.petals)
	return out
}

// At returns the i-th petal.
func (f *Field) At(i int) Petal { return f.petals[i] }

// Layout writes every petal position into dst, growing it if needed, and
// returns the filled slice.
func (f *Field) Layout(bloom float64, l Layout, dst []mgl64.Vec3) []mgl64.Vec3 {
	if cap(dst) < len(f.petals) {
		dst = make([]mgl64.Vec3, len(f.petals))
	}
	dst = dst[:len(f.petals)]
	for i, p := range f.petals {
		dst[i] = p.Position(bloom, l)
	}
	return dst
}
