package control

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromFingertip(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want Signal
	}{
		{"centre", 0.5, 0.5, Signal{Rotate: math.Pi, Bloom: 1.05, Tilt: 0}},
		{"top-left", 0, 0, Signal{Rotate: 0, Bloom: 1.8, Tilt: -math.Pi / 2}},
		{"bottom-right", 1, 1, Signal{Rotate: 2 * math.Pi, Bloom: 0.3, Tilt: math.Pi / 2}},
		{"clamped", -0.2, 1.4, Signal{Rotate: 0, Bloom: 0.3, Tilt: math.Pi / 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromFingertip(tt.x, tt.y)
			assert.InDelta(t, tt.want.Rotate, got.Rotate, 1e-12)
			assert.InDelta(t, tt.want.Bloom, got.Bloom, 1e-12)
			assert.InDelta(t, tt.want.Tilt, got.Tilt, 1e-12)
		})
	}
}

func TestFromFingertipRightEdgeDoesNotWrap(t *testing.T) {
	// wrapping to 0 would make the smoother spin the whole way back
	near := FromFingertip(0.999, 0.5)
	edge := FromFingertip(1, 0.5)
	assert.Equal(t, 2*math.Pi, edge.Rotate)
	assert.Greater(t, edge.Rotate, near.Rotate)
	assert.Less(t, edge.Rotate-near.Rotate, 0.01)
}

func TestNeutral(t *testing.T) {
	assert.Equal(t, Signal{Rotate: 0, Bloom: 1, Tilt: 0}, Neutral())
}

func TestRegisterLastWriterWins(t *testing.T) {
	r := NewRegister(Neutral())

	s, fresh := r.Latest()
	assert.False(t, fresh)
	assert.Equal(t, Neutral(), s)

	r.Publish(Signal{Rotate: 1})
	r.Publish(Signal{Rotate: 2})
	r.Publish(Signal{Rotate: 3})

	s, fresh = r.Latest()
	assert.True(t, fresh)
	assert.Equal(t, 3.0, s.Rotate)

	// nothing new: last value persists
	s, fresh = r.Latest()
	assert.False(t, fresh)
	assert.Equal(t, 3.0, s.Rotate)
}

func TestRegisterConcurrentPublishNeverBlocks(t *testing.T) {
	r := NewRegister(Neutral())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r.Publish(Signal{Rotate: float64(i)})
			}
		}(i)
	}
	wg.Wait()

	s, fresh := r.Latest()
	assert.True(t, fresh)
	assert.GreaterOrEqual(t, s.Rotate, 0.0)
	assert.Less(t, s.Rotate, 8.0)

	_, fresh = r.Latest()
	assert.False(t, fresh)
}
