package audio

import (
	"math"
	"sync"

	"github.com/faiface/beep"
)

// tap passes a stream through unchanged and keeps the mono energy of the
// most recent samples, so the HUD can meter the drone without copying audio.
type tap struct {
	beep.Streamer

	mu     sync.RWMutex
	energy []float64 // mono sample squared, ring
	head   int       // next slot to write
	filled int
}

func newTap(src beep.Streamer, ringSize int) *tap {
	return &tap{Streamer: src, energy: make([]float64, ringSize)}
}

func (t *tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Streamer.Stream(samples)
	if n <= 0 {
		return n, ok
	}

	t.mu.Lock()
	for _, s := range samples[:n] {
		m := (s[0] + s[1]) / 2
		t.energy[t.head] = m * m
		t.head = (t.head + 1) % len(t.energy)
	}
	t.filled = min(t.filled+n, len(t.energy))
	t.mu.Unlock()
	return n, ok
}

// level is the RMS over the last n samples, counting unplayed slots as
// silence.
func (t *tap) level(n int) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n = min(n, len(t.energy))
	if n <= 0 {
		return 0
	}
	var sum float64
	for i, idx := 0, t.head; i < min(n, t.filled); i++ {
		idx--
		if idx < 0 {
			idx += len(t.energy)
		}
		sum += t.energy[idx]
	}
	return math.Sqrt(sum / float64(n))
}
