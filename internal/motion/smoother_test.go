package motion

import (
	"math"
	"testing"

	"github.com/iburimskiy/sunflower/internal/control"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSmootherValidates(t *testing.T) {
	for _, k := range []float64{0, 1, -0.1, 1.5, math.NaN()} {
		_, err := NewSmoother(k)
		assert.ErrorIs(t, err, ErrDamping, "k=%v", k)
	}
	sm, err := NewSmoother(DefaultDamping)
	require.NoError(t, err)
	assert.Equal(t, DefaultDamping, sm.K)
	assert.InDelta(t, 25, sm.TimeConstant(), 1e-12)
}

func TestClosedFormMatchesIteration(t *testing.T) {
	sm, _ := NewSmoother(DefaultDamping)
	target := control.Signal{Rotate: 4.2, Bloom: 1.8, Tilt: -1.1}
	s0 := State{Rotation: -1, Tilt: 0.7, Bloom: 0.3}

	s := s0
	for n := 1; n <= 500; n++ {
		s = sm.Step(s, target)
		want := sm.After(s0, target, n)
		assert.InDelta(t, want.Rotation, s.Rotation, 1e-9, "n=%d", n)
		assert.InDelta(t, want.Tilt, s.Tilt, 1e-9, "n=%d", n)
		assert.InDelta(t, want.Bloom, s.Bloom, 1e-9, "n=%d", n)
	}
}

func TestNeverOvershoots(t *testing.T) {
	for _, k := range []float64{0.01, DefaultDamping, 0.5, 0.99} {
		sm, err := NewSmoother(k)
		require.NoError(t, err)
		target := control.Signal{Rotate: math.Pi, Bloom: 0.3, Tilt: math.Pi / 2}
		s := State{Rotation: 0, Tilt: -math.Pi / 2, Bloom: 1.8}

		for n := 0; n < 300; n++ {
			next := sm.Step(s, target)
			assert.LessOrEqual(t, math.Abs(next.Rotation-target.Rotate), math.Abs(s.Rotation-target.Rotate))
			assert.LessOrEqual(t, math.Abs(next.Tilt-target.Tilt), math.Abs(s.Tilt-target.Tilt))
			assert.LessOrEqual(t, math.Abs(next.Bloom-target.Bloom), math.Abs(s.Bloom-target.Bloom))
			// stays on the starting side of the target
			assert.LessOrEqual(t, next.Rotation, target.Rotate)
			assert.GreaterOrEqual(t, next.Bloom, target.Bloom)
			s = next
		}
	}
}

func TestConvergesAfterDropout(t *testing.T) {
	sm, _ := NewSmoother(DefaultDamping)
	target := control.Signal{Rotate: math.Pi, Bloom: 1, Tilt: 0}
	s := StateOf(control.Neutral())

	// 100 ticks is not enough for 1e-6 on a gap of π
	for i := 0; i < 100; i++ {
		s = sm.Step(s, target)
	}
	gap := math.Abs(s.Rotation - math.Pi)
	assert.InDelta(t, math.Pi*math.Pow(0.96, 100), gap, 1e-9)
	assert.Greater(t, gap, 1e-6)

	need := sm.TicksWithin(1e-6 / math.Pi)
	s = StateOf(control.Neutral())
	for i := 0; i < need; i++ {
		s = sm.Step(s, target)
	}
	assert.InDelta(t, math.Pi, s.Rotation, 1e-6)
}

func TestTicksWithin(t *testing.T) {
	sm, _ := NewSmoother(DefaultDamping)
	assert.Equal(t, 0, sm.TicksWithin(1))
	assert.Equal(t, -1, sm.TicksWithin(0))
	assert.Equal(t, -1, sm.TicksWithin(-1e-3))
	assert.Equal(t, -1, sm.TicksWithin(math.NaN()))
	n := sm.TicksWithin(1e-3)
	assert.LessOrEqual(t, math.Pow(0.96, float64(n)), 1e-3)
	assert.Greater(t, math.Pow(0.96, float64(n-1)), 1e-3)
}
