package config

import (
	"errors"
	"sync/atomic"
)

// Tuning holds the knobs that may change while the sculpture is running.
type Tuning struct {
	Damping        float64
	LightBase      float64
	LightAmplitude float64
	LightOmega     float64
}

// Validate checks the tuning values.
func (t Tuning) Validate() error {
	if !(t.Damping > 0 && t.Damping < 1) {
		return errors.New("motion.damping must be in (0,1)")
	}
	if t.LightBase < 0 || t.LightAmplitude < 0 {
		return errors.New("light.base and light.amplitude must be >= 0")
	}
	if t.LightOmega < 0 {
		return errors.New("light.omega must be >= 0")
	}
	return nil
}

// LiveTuning is a Tuning shared between the config watcher and the render
// tick.
type LiveTuning struct {
	v atomic.Pointer[Tuning]
}

// NewLiveTuning starts with t.
func NewLiveTuning(t Tuning) *LiveTuning {
	l := &LiveTuning{}
	l.Store(t)
	return l
}

// Load returns the current tuning.
func (l *LiveTuning) Load() Tuning { return *l.v.Load() }

// Store replaces the current tuning.
func (l *LiveTuning) Store(t Tuning) { l.v.Store(&t) }
