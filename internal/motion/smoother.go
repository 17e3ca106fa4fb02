// Package motion eases the sculpture's rotation, tilt and bloom towards the
// latest control targets.
package motion

import (
	"errors"
	"fmt"
	"math"

	"github.com/iburimskiy/sunflower/internal/control"
)

// DefaultDamping is the fraction of the remaining gap closed per tick.
const DefaultDamping = 0.04

// ErrDamping is returned for a damping coefficient outside (0,1).
var ErrDamping = errors.New("motion: damping must be in (0,1)")

// State is the smoothed pose of the sculpture.
type State struct {
	Rotation float64
	Tilt     float64
	Bloom    float64
}

// StateOf returns the state that sits exactly on s.
func StateOf(s control.Signal) State {
	return State{Rotation: s.Rotate, Tilt: s.Tilt, Bloom: s.Bloom}
}

// Smoother is a first-order exponential low-pass filter. It never
// overshoots and never oscillates.
type Smoother struct {
	K float64
}

// NewSmoother validates k.
func NewSmoother(k float64) (Smoother, error) {
	if !(k > 0 && k < 1) {
		return Smoother{}, fmt.Errorf("%w: got %v", ErrDamping, k)
	}
	return Smoother{K: k}, nil
}

// Step advances every channel one tick towards target.
func (sm Smoother) Step(s State, target control.Signal) State {
	return State{
		Rotation: ease(s.Rotation, target.Rotate, sm.K),
		Tilt:     ease(s.Tilt, target.Tilt, sm.K),
		Bloom:    ease(s.Bloom, target.Bloom, sm.K),
	}
}

// After is the closed form of n Steps against a constant target:
// T - (T-S0)(1-k)^n.
func (sm Smoother) After(s0 State, target control.Signal, n int) State {
	f := math.Pow(1-sm.K, float64(n))
	return State{
		Rotation: target.Rotate - (target.Rotate-s0.Rotation)*f,
		Tilt:     target.Tilt - (target.Tilt-s0.Tilt)*f,
		Bloom:    target.Bloom - (target.Bloom-s0.Bloom)*f,
	}
}

// TicksWithin returns how many ticks shrink a unit gap below eps,
// ⌈ln ε / ln(1-k)⌉. Multiply eps by 1/|gap| for other gaps. A gap never
// closes completely, so eps <= 0 (or NaN) returns -1.
func (sm Smoother) TicksWithin(eps float64) int {
	switch {
	case math.IsNaN(eps) || eps <= 0:
		return -1
	case eps >= 1:
		return 0
	}
	return int(math.Ceil(math.Log(eps) / math.Log(1-sm.K)))
}

// TimeConstant is the approximate number of ticks for a 1/e decay.
func (sm Smoother) TimeConstant() float64 { return 1 / sm.K }

func ease(cur, target, k float64) float64 {
	return cur + (target-cur)*k
}
