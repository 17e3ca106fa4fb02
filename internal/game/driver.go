// Package game runs the sculpture: a per-frame driver that eases the flower
// towards the latest hand targets, plus the loops that call it.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/iburimskiy/sunflower/internal/config"
	"github.com/iburimskiy/sunflower/internal/control"
	"github.com/iburimskiy/sunflower/internal/motion"
	"github.com/iburimskiy/sunflower/internal/phyllotaxis"
	"github.com/iburimskiy/sunflower/internal/render"
	"github.com/iburimskiy/sunflower/internal/scene"
)

// Settings are the fixed parts of a Driver.
type Settings struct {
	Petals      int
	PetalRadius float64
	Layout      phyllotaxis.Layout
	Width       int
	Height      int
}

// SettingsFrom extracts driver settings from a config.
func SettingsFrom(cfg config.Config) Settings {
	return Settings{
		Petals:      cfg.Field.Petals,
		PetalRadius: cfg.Field.PetalRadius,
		Layout:      phyllotaxis.Layout{Spread: cfg.Field.Spread, Depth: cfg.Field.Depth},
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
	}
}

// Stats counts what the driver has done so far.
type Stats struct {
	Ticks   uint64
	Frames  uint64
	Dropped uint64
}

// Driver owns everything one frame needs. It is not safe for concurrent use;
// only the render goroutine calls it. The control register is the only state
// shared with the pose side.
type Driver struct {
	logger *slog.Logger

	field    *phyllotaxis.Field
	layout   phyllotaxis.Layout
	register *control.Register
	tuning   *config.LiveTuning

	state motion.State
	light float64

	scene     *scene.Scene
	camera    *scene.Camera
	viewport  *scene.Viewport
	positions []mgl64.Vec3

	stats Stats
}

// NewDriver builds the field, scene and camera and sizes them to the
// configured window. surface may be nil for a driver that never draws.
func NewDriver(set Settings, register *control.Register, tuning *config.LiveTuning, surface render.Surface, logger *slog.Logger) (*Driver, error) {
	field, err := phyllotaxis.NewField(set.Petals)
	if err != nil {
		return nil, err
	}
	t := tuning.Load()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("driver tuning: %w", err)
	}

	d := &Driver{
		logger:   logger.With("component", "driver"),
		field:    field,
		layout:   set.Layout,
		register: register,
		tuning:   tuning,
		scene:    scene.New(field.Len()),
		camera:   scene.DefaultCamera(float64(set.Width) / float64(set.Height)),
		light:    t.LightBase,
	}
	d.scene.Sun.Intensity = d.light
	// state starts on the current target
	target, _ := register.Latest()
	d.state = motion.StateOf(target)

	for i, p := range field.Petals() {
		d.scene.Flower.Children[i] = scene.Primitive{
			Color:  p.Color(),
			Radius: set.PetalRadius,
		}
	}
	d.place()

	var sizer scene.Sizer
	if surface != nil {
		sizer = surface
	}
	d.viewport = scene.NewViewport(d.camera, sizer)
	d.viewport.Resize(set.Width, set.Height, 1)
	return d, nil
}

// Tick advances one frame: ease the state towards the latest target, update
// the breathing light, then lay out the petals and rotate the flower.
// elapsed is monotonic time since the loop started.
func (d *Driver) Tick(elapsed time.Duration) {
	t := d.tuning.Load()

	target, _ := d.register.Latest()
	d.state = motion.Smoother{K: t.Damping}.Step(d.state, target)

	d.light = scene.Breathing{Base: t.LightBase, Amplitude: t.LightAmplitude, Omega: t.LightOmega}.At(elapsed)
	d.scene.Sun.Intensity = d.light

	d.place()
	d.stats.Ticks++
}

func (d *Driver) place() {
	d.positions = d.field.Layout(d.state.Bloom, d.layout, d.positions)
	for i, p := range d.positions {
		d.scene.Flower.Children[i].Position = p
	}
	d.scene.Flower.Rotation = mgl64.Vec3{d.state.Tilt, d.state.Rotation, 0}
}

// Frame renders the current scene. A failure wrapping render.ErrFatal is
// returned; any other failure drops the frame and returns nil.
func (d *Driver) Frame(surface render.Surface) error {
	err := surface.Render(d.scene, d.camera)
	switch {
	case err == nil:
		d.stats.Frames++
		return nil
	case errors.Is(err, render.ErrFatal):
		d.logger.Error("render surface failed", "error", err)
		return err
	default:
		d.stats.Dropped++
		d.logger.Debug("frame dropped", "error", err)
		return nil
	}
}

// Resize forwards a window size change to the viewport.
func (d *Driver) Resize(width, height int, pixelRatio float64) bool {
	changed := d.viewport.Resize(width, height, pixelRatio)
	if changed {
		d.logger.Debug("viewport resized", "width", width, "height", height, "ratio", pixelRatio)
	}
	return changed
}

// Pixels is the backing buffer size of the viewport.
func (d *Driver) Pixels() (width, height int) { return d.viewport.Pixels() }

// State is the current smoothed state.
func (d *Driver) State() motion.State { return d.state }

// Light is the point light intensity of the last tick.
func (d *Driver) Light() float64 { return d.light }

// Scene exposes the scene for inspection.
func (d *Driver) Scene() *scene.Scene { return d.scene }

// Camera exposes the camera for inspection.
func (d *Driver) Camera() *scene.Camera { return d.camera }

// Stats returns the frame counters.
func (d *Driver) Stats() Stats { return d.stats }
