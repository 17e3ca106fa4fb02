// Package control carries fingertip-derived targets from the pose side to
// the render tick.
package control

import "math"

// Bloom target range reached when the fingertip sweeps the frame top to bottom.
const (
	MinBloom   = 0.3
	BloomRange = 1.5
	MaxBloom   = MinBloom + BloomRange
)

// Signal is the target the motion smoother eases towards.
type Signal struct {
	Rotate float64 // radians, [0, 2π]; the right edge gives 2π, not 0
	Bloom  float64 // [MinBloom, MaxBloom]
	Tilt   float64 // radians, [-π/2, π/2]
}

// Neutral is used until the first fingertip is observed.
func Neutral() Signal {
	return Signal{Rotate: 0, Bloom: 1, Tilt: 0}
}

// FromFingertip maps a normalised fingertip (origin top-left) onto targets.
// Coordinates outside [0,1] are clamped; detectors report slightly
// out-of-frame points near the edges.
func FromFingertip(x, y float64) Signal {
	x = clamp01(x)
	y = clamp01(y)
	return Signal{
		Rotate: x * 2 * math.Pi,
		Bloom:  MinBloom + (1-y)*BloomRange,
		Tilt:   (y - 0.5) * math.Pi,
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
