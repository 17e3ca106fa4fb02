// Package audio plays a soft drone that follows the sculpture: pitch rises
// as the flower opens and loudness breathes with the light.
package audio

import (
	"math"
	"sync"

	"github.com/faiface/beep"
)

// drone is a two-partial sine generator. Parameters are set from the render
// tick; the speaker goroutine reads them per buffer.
type drone struct {
	sr beep.SampleRate

	mu    sync.Mutex
	freq  float64
	gain  float64
	phase float64
}

func newDrone(sr beep.SampleRate, freq float64) *drone {
	return &drone{sr: sr, freq: freq}
}

func (d *drone) set(freq, gain float64) {
	d.mu.Lock()
	d.freq = freq
	d.gain = math.Max(0, math.Min(1, gain))
	d.mu.Unlock()
}

func (d *drone) Stream(samples [][2]float64) (int, bool) {
	d.mu.Lock()
	freq, gain, phase := d.freq, d.gain, d.phase
	d.mu.Unlock()

	step := 2 * math.Pi * freq / float64(d.sr)
	for i := range samples {
		v := gain * (0.7*math.Sin(phase) + 0.3*math.Sin(2*phase))
		samples[i][0] = v
		samples[i][1] = v
		phase += step
		if phase > 2*math.Pi {
			phase -= 2 * math.Pi
		}
	}

	d.mu.Lock()
	d.phase = phase
	d.mu.Unlock()
	return len(samples), true
}

func (d *drone) Err() error { return nil }
