package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/iburimskiy/sunflower/internal/pose"
)

const (
	WindowWidth  = 1024
	WindowHeight = 768

	PetalCount  = 1200
	PetalRadius = 0.03
	Spread      = 3.0
	Depth       = 0.45

	Damping = 0.04

	LightBase      = 1.2
	LightAmplitude = 0.3
	LightOmega     = 1.0 // rad/s

	CaptureWidth  = 640
	CaptureHeight = 480

	BridgeAddr = "127.0.0.1:8765"

	SampleRate = 44100
	DroneHz    = 110.0
	DroneGain  = 0.25
)

// Pose source kinds.
const (
	SourceBridge  = "bridge"
	SourcePointer = "pointer"
	SourceNone    = "none"
)

// Config is the YAML configuration. Every field has a default, so an
// empty or missing file is valid.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Field   FieldConfig   `yaml:"field"`
	Motion  MotionConfig  `yaml:"motion"`
	Light   LightConfig   `yaml:"light"`
	Pose    PoseConfig    `yaml:"pose"`
	Bridge  BridgeConfig  `yaml:"bridge"`
	Audio   AudioConfig   `yaml:"audio"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type FieldConfig struct {
	Petals      int     `yaml:"petals"`
	PetalRadius float64 `yaml:"petal_radius"`
	Spread      float64 `yaml:"spread"`
	Depth       float64 `yaml:"depth"`
}

type MotionConfig struct {
	Damping float64 `yaml:"damping"`
}

type LightConfig struct {
	Base      float64 `yaml:"base"`
	Amplitude float64 `yaml:"amplitude"`
	Omega     float64 `yaml:"omega"`
}

type PoseConfig struct {
	Source        string       `yaml:"source"` // bridge | pointer | none
	Options       pose.Options `yaml:"options"`
	CaptureWidth  int          `yaml:"capture_width"`
	CaptureHeight int          `yaml:"capture_height"`
}

type BridgeConfig struct {
	Listen string `yaml:"listen"`
}

type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	BaseFreq   float64 `yaml:"base_freq"`
	Volume     float64 `yaml:"volume"`
}

type UIConfig struct {
	Dialogs bool `yaml:"dialogs"` // native warning when hand tracking is unavailable
	HUD     bool `yaml:"hud"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a fully-populated Config with defaults.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:  WindowWidth,
			Height: WindowHeight,
			Title:  "Sunflower - move your index finger, Space: HUD, Esc/Q: quit",
		},
		Field: FieldConfig{
			Petals:      PetalCount,
			PetalRadius: PetalRadius,
			Spread:      Spread,
			Depth:       Depth,
		},
		Motion: MotionConfig{Damping: Damping},
		Light: LightConfig{
			Base:      LightBase,
			Amplitude: LightAmplitude,
			Omega:     LightOmega,
		},
		Pose: PoseConfig{
			Source:        SourceBridge,
			Options:       pose.DefaultOptions(),
			CaptureWidth:  CaptureWidth,
			CaptureHeight: CaptureHeight,
		},
		Bridge: BridgeConfig{Listen: BridgeAddr},
		Audio: AudioConfig{
			Enabled:    false,
			SampleRate: SampleRate,
			BaseFreq:   DroneHz,
			Volume:     DroneGain,
		},
		UI:      UIConfig{Dialogs: true, HUD: true},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML file on top of the defaults. Unknown fields are rejected.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes on top of the defaults.
func Parse(b []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(b)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return Config{}, errors.New("decode config yaml: unexpected trailing document")
	}
	return cfg, nil
}

// FlagOverrides carries command-line values; nil pointers are ignored.
type FlagOverrides struct {
	Source    *string
	Listen    *string
	LogLevel  *string
	Petals    *int
	Damping   *float64
	Audio     *bool
	NoDialogs *bool
}

// Apply merges the overrides into cfg.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.Source != nil {
		cfg.Pose.Source = *o.Source
	}
	if o.Listen != nil {
		cfg.Bridge.Listen = *o.Listen
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
	if o.Petals != nil {
		cfg.Field.Petals = *o.Petals
	}
	if o.Damping != nil {
		cfg.Motion.Damping = *o.Damping
	}
	if o.Audio != nil {
		cfg.Audio.Enabled = *o.Audio
	}
	if o.NoDialogs != nil && *o.NoDialogs {
		cfg.UI.Dialogs = false
	}
}

// Validate checks config invariants and returns a user-friendly error.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.New("window.width and window.height must be > 0")
	}
	if c.Field.Petals < 1 {
		return errors.New("field.petals must be >= 1")
	}
	if c.Field.PetalRadius <= 0 {
		return errors.New("field.petal_radius must be > 0")
	}
	if c.Field.Spread <= 0 {
		return errors.New("field.spread must be > 0")
	}
	if err := c.Tuning().Validate(); err != nil {
		return err
	}

	switch c.Pose.Source {
	case SourceBridge, SourcePointer, SourceNone:
	default:
		return fmt.Errorf("pose.source must be %q, %q or %q", SourceBridge, SourcePointer, SourceNone)
	}
	o := c.Pose.Options
	if o.MaxHands < 1 {
		return errors.New("pose.options.max_hands must be >= 1")
	}
	if o.ModelComplexity < 0 || o.ModelComplexity > 1 {
		return errors.New("pose.options.model_complexity must be 0 or 1")
	}
	if o.MinDetectionConfidence < 0 || o.MinDetectionConfidence > 1 {
		return errors.New("pose.options.min_detection_confidence must be in [0,1]")
	}
	if o.MinTrackingConfidence < 0 || o.MinTrackingConfidence > 1 {
		return errors.New("pose.options.min_tracking_confidence must be in [0,1]")
	}
	if c.Pose.CaptureWidth <= 0 || c.Pose.CaptureHeight <= 0 {
		return errors.New("pose.capture_width and pose.capture_height must be > 0")
	}
	if c.Pose.Source == SourceBridge && c.Bridge.Listen == "" {
		return errors.New("bridge.listen must not be empty when pose.source is bridge")
	}

	if c.Audio.Enabled {
		if c.Audio.SampleRate < 8000 {
			return errors.New("audio.sample_rate must be >= 8000")
		}
		if c.Audio.BaseFreq <= 0 {
			return errors.New("audio.base_freq must be > 0")
		}
		if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
			return errors.New("audio.volume must be in [0,1]")
		}
	}

	if c.Logging.Level == "" {
		return errors.New("logging.level must not be empty")
	}
	return nil
}

// Tuning extracts the live-reloadable part of the config.
func (c *Config) Tuning() Tuning {
	return Tuning{
		Damping:        c.Motion.Damping,
		LightBase:      c.Light.Base,
		LightAmplitude: c.Light.Amplitude,
		LightOmega:     c.Light.Omega,
	}
}

// ExpandPath expands a leading "~" in a path using $HOME.
func ExpandPath(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}
