package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/sunflower/internal/logging"
)

func TestDroneSilentAtZeroGain(t *testing.T) {
	d := newDrone(44100, 110)
	buf := make([][2]float64, 512)
	n, ok := d.Stream(buf)
	assert.Equal(t, 512, n)
	assert.True(t, ok)
	for _, s := range buf {
		assert.Equal(t, 0.0, s[0])
	}
}

func TestDroneBoundedByGain(t *testing.T) {
	d := newDrone(44100, 220)
	d.set(220, 0.5)
	buf := make([][2]float64, 2048)
	d.Stream(buf)
	var peak float64
	for _, s := range buf {
		assert.Equal(t, s[0], s[1])
		peak = math.Max(peak, math.Abs(s[0]))
	}
	assert.LessOrEqual(t, peak, 0.5)
	assert.Greater(t, peak, 0.1)

	d.set(220, 7)
	assert.Equal(t, 1.0, d.gain)
}

func TestTapLevel(t *testing.T) {
	d := newDrone(44100, 220)
	tp := newTap(d, 1024)
	assert.Equal(t, 0.0, tp.level(256))

	d.set(220, 1)
	buf := make([][2]float64, 4096)
	tp.Stream(buf)
	lvl := tp.level(1024)
	assert.Greater(t, lvl, 0.3)
	assert.Less(t, lvl, 1.0)
	assert.Equal(t, 0.0, tp.level(0))
}

func TestPlayerFollow(t *testing.T) {
	p := NewPlayer(Config{SampleRate: 44100, BaseFreq: 110, Volume: 0.3}, logging.Discard())

	freq, gain := p.params(1, 1.5)
	assert.InDelta(t, 110, freq, 1e-12)
	assert.InDelta(t, 0.3, gain, 1e-12)

	freq, _ = p.params(1.8, 1.2)
	assert.InDelta(t, 154, freq, 1e-9)

	p.Follow(0.3, 0.9)
	assert.InDelta(t, 71.5, p.drone.freq, 1e-9)

	// not started: speaker untouched
	p.TogglePause()
	p.Close()
	assert.False(t, p.ctrl.Paused)
}

func TestTapCountsUnplayedSlotsAsSilence(t *testing.T) {
	d := newDrone(44100, 220)
	d.set(220, 1)
	tp := newTap(d, 1024)

	buf := make([][2]float64, 256)
	tp.Stream(buf)
	full := tp.level(256)
	require.Greater(t, full, 0.3)

	// 256 played samples over a 1024 window: a quarter of the energy
	assert.InDelta(t, full/2, tp.level(1024), 0.02)
	assert.Equal(t, tp.level(1024), tp.level(5000), "window is capped at the ring size")
}
