package pose

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Frame is one captured video frame.
type Frame struct {
	Seq    uint64
	Width  int
	Height int
	Pix    []byte
	At     time.Time
}

// Capture is a video source. Start returns once capture is running (or
// failed to start) and then calls onFrame for every frame until ctx ends.
type Capture interface {
	Start(ctx context.Context, width, height int, onFrame func(Frame)) error
}

// Detector runs hand detection on a frame. It may be slow.
type Detector interface {
	Configure(opts Options) error
	Detect(ctx context.Context, f Frame) (Result, error)
}

// Pipeline feeds captured frames to a detector. A frame that arrives while
// an inference is still running is skipped, never queued.
//
// Pipeline is the seam for running capture and detection in-process. The
// shipped detector runs in the browser behind bridge.Server, which applies
// the same skip-while-busy rule on its side.
type Pipeline struct {
	capture  Capture
	detector Detector
	opts     Options
	width    int
	height   int
	logger   *slog.Logger

	busy    atomic.Bool
	skipped atomic.Uint64
	failed  atomic.Uint64
	wg      sync.WaitGroup
}

// NewPipeline returns a Source that captures at width x height.
func NewPipeline(c Capture, d Detector, opts Options, width, height int, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		capture:  c,
		detector: d,
		opts:     opts,
		width:    width,
		height:   height,
		logger:   logger.With("component", "pipeline"),
	}
}

// Start configures the detector and starts capture.
func (p *Pipeline) Start(ctx context.Context, onResult func(Result)) error {
	if err := p.detector.Configure(p.opts); err != nil {
		return err
	}
	return p.capture.Start(ctx, p.width, p.height, func(f Frame) {
		p.onFrame(ctx, f, onResult)
	})
}

func (p *Pipeline) onFrame(ctx context.Context, f Frame, onResult func(Result)) {
	if ctx.Err() != nil {
		return
	}
	if !p.busy.CompareAndSwap(false, true) {
		p.skipped.Add(1)
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.busy.Store(false)

		res, err := p.detector.Detect(ctx, f)
		if err != nil {
			p.failed.Add(1)
			p.logger.Debug("detection failed, dropping frame", "seq", f.Seq, "error", err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		if res.At.IsZero() {
			res.At = f.At
		}
		onResult(res)
	}()
}

// Wait blocks until in-flight inferences finish.
func (p *Pipeline) Wait() { p.wg.Wait() }

// Skipped returns how many frames were dropped because inference was busy.
func (p *Pipeline) Skipped() uint64 { return p.skipped.Load() }

// Failed returns how many inferences returned an error.
func (p *Pipeline) Failed() uint64 { return p.failed.Load() }
