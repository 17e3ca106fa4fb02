package pose

import (
	"context"
	"sync"
	"time"
)

// PointerSource turns pointer positions into single-hand results whose
// fingertip sits under the pointer. It lets the sculpture be driven with a
// mouse when no camera is available.
type PointerSource struct {
	mu       sync.Mutex
	onResult func(Result)
	ctx      context.Context
}

// NewPointerSource returns an idle source; Feed is a no-op until Start.
func NewPointerSource() *PointerSource {
	return &PointerSource{}
}

// Start registers onResult.
func (p *PointerSource) Start(ctx context.Context, onResult func(Result)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctx = ctx
	p.onResult = onResult
	return nil
}

// Feed reports a pointer at normalised (x, y). inside=false reports an
// empty frame, the pointer equivalent of the hand leaving the camera.
func (p *PointerSource) Feed(x, y float64, inside bool) {
	p.mu.Lock()
	cb, ctx := p.onResult, p.ctx
	p.mu.Unlock()
	if cb == nil || ctx.Err() != nil {
		return
	}

	res := Result{At: time.Now()}
	if inside {
		hand := make(Hand, HandLandmarks)
		hand[IndexFingerTip] = Landmark{X: x, Y: y}
		res.Hands = []Hand{hand}
	}
	cb(res)
}
