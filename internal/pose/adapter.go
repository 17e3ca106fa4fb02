package pose

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iburimskiy/sunflower/internal/control"
)

// Stats counts what the adapter has seen.
type Stats struct {
	Results   uint64 // results received
	Published uint64 // results that carried a fingertip
	Dropouts  uint64 // results with no hand
	LastSeen  time.Time
}

// Adapter republishes fingertip observations into a control register.
type Adapter struct {
	src      Source
	register *control.Register
	logger   *slog.Logger

	results   atomic.Uint64
	published atomic.Uint64
	dropouts  atomic.Uint64
	lastSeen  atomic.Int64 // unix nanos

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

// NewAdapter wires src to register.
func NewAdapter(src Source, register *control.Register, logger *slog.Logger) *Adapter {
	return &Adapter{
		src:      src,
		register: register,
		logger:   logger.With("component", "pose"),
	}
}

// Start brings the source up. An error means hand control is unavailable;
// the register keeps its last (initially neutral) value.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := a.src.Start(ctx, a.handle); err != nil {
		cancel()
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	a.cancel = cancel
	a.running = true
	a.logger.Info("pose source started")
	return nil
}

// Stop cancels the source. Results already in flight may still land.
func (a *Adapter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	a.cancel()
	a.running = false
	a.logger.Info("pose source stopped", "results", a.results.Load(), "dropouts", a.dropouts.Load())
}

// Tracking reports whether a fingertip was seen within window.
func (a *Adapter) Tracking(now time.Time, window time.Duration) bool {
	last := a.lastSeen.Load()
	return last != 0 && now.Sub(time.Unix(0, last)) <= window
}

// Stats returns a snapshot of the counters.
func (a *Adapter) Stats() Stats {
	var last time.Time
	if n := a.lastSeen.Load(); n != 0 {
		last = time.Unix(0, n)
	}
	return Stats{
		Results:   a.results.Load(),
		Published: a.published.Load(),
		Dropouts:  a.dropouts.Load(),
		LastSeen:  last,
	}
}

func (a *Adapter) handle(r Result) {
	a.results.Add(1)
	tip, ok := r.Fingertip()
	if !ok {
		// dropout: leave the target where it was
		a.dropouts.Add(1)
		return
	}
	at := r.At
	if at.IsZero() {
		at = time.Now()
	}
	a.lastSeen.Store(at.UnixNano())
	a.published.Add(1)
	a.register.Publish(control.FromFingertip(tip.X, tip.Y))
}
