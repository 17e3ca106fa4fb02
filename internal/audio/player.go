package audio

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// visualRingSize is how many recent samples the level meter looks at.
const visualRingSize = 4096

// Config configures the drone.
type Config struct {
	SampleRate int
	BaseFreq   float64 // Hz at bloom 1
	Volume     float64 // 0..1
}

// Player owns the speaker while the drone is playing.
type Player struct {
	cfg    Config
	logger *slog.Logger

	drone *drone
	tap   *tap
	ctrl  *beep.Ctrl

	started bool
}

// NewPlayer builds the drone chain without touching the speaker.
func NewPlayer(cfg Config, logger *slog.Logger) *Player {
	d := newDrone(beep.SampleRate(cfg.SampleRate), cfg.BaseFreq)
	t := newTap(d, visualRingSize)
	return &Player{
		cfg:    cfg,
		logger: logger.With("component", "audio"),
		drone:  d,
		tap:    t,
		ctrl:   &beep.Ctrl{Streamer: t},
	}
}

// Start initialises the speaker and starts playing.
func (p *Player) Start() error {
	sr := beep.SampleRate(p.cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/20)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(p.ctrl)
	p.started = true
	p.logger.Info("drone playing", "sample_rate", p.cfg.SampleRate, "base_hz", p.cfg.BaseFreq)
	return nil
}

// Follow maps the sculpture state onto the drone. Call it once per tick.
func (p *Player) Follow(bloom, lightIntensity float64) {
	freq, gain := p.params(bloom, lightIntensity)
	p.drone.set(freq, gain)
}

func (p *Player) params(bloom, lightIntensity float64) (freq, gain float64) {
	freq = p.cfg.BaseFreq * (1 + (bloom-1)*0.5)
	gain = p.cfg.Volume * lightIntensity / 1.5
	return freq, gain
}

// TogglePause pauses or resumes playback.
func (p *Player) TogglePause() {
	if !p.started {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = !p.ctrl.Paused
	speaker.Unlock()
}

// Level is the recent RMS output level, for metering.
func (p *Player) Level() float64 {
	return p.tap.level(visualRingSize / 4)
}

// Close silences the speaker.
func (p *Player) Close() {
	if !p.started {
		return
	}
	speaker.Lock()
	speaker.Clear()
	speaker.Unlock()
	p.started = false
}
