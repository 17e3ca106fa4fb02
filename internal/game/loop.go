package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iburimskiy/sunflower/internal/render"
)

// DefaultInterval is one frame at 60 Hz.
const DefaultInterval = time.Second / 60

// TickFunc observes the driver after every tick.
type TickFunc func(d *Driver)

// Loop drives a Driver on a timer without a window.
type Loop struct {
	driver  *Driver
	surface render.Surface
	logger  *slog.Logger
	onTick  TickFunc

	stopOnce sync.Once
	stop     chan struct{}
}

// NewLoop returns a stopped loop. onTick may be nil.
func NewLoop(d *Driver, surface render.Surface, onTick TickFunc, logger *slog.Logger) *Loop {
	return &Loop{
		driver:  d,
		surface: surface,
		logger:  logger.With("component", "loop"),
		onTick:  onTick,
		stop:    make(chan struct{}),
	}
}

// Run ticks and renders every interval until ctx is cancelled, Stop is
// called, or a frame fails fatally. Only the fatal frame error is returned.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	l.logger.Info("render loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("render loop stopped", "reason", ctx.Err())
			return nil
		case <-l.stop:
			l.logger.Info("render loop stopped", "reason", "stop")
			return nil
		case <-ticker.C:
			if err := l.step(time.Since(start)); err != nil {
				return err
			}
		}
	}
}

// RunTicks runs exactly n frames back to back with a simulated dt between
// them. It stops early on Stop or a fatal frame.
func (l *Loop) RunTicks(n int, dt time.Duration) error {
	for i := 1; i <= n; i++ {
		select {
		case <-l.stop:
			return nil
		default:
		}
		if err := l.step(time.Duration(i) * dt); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) step(elapsed time.Duration) error {
	l.driver.Tick(elapsed)
	if l.onTick != nil {
		l.onTick(l.driver)
	}
	return l.driver.Frame(l.surface)
}

// Stop ends Run or RunTicks before their next frame. It is safe to call more
// than once and from any goroutine.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
