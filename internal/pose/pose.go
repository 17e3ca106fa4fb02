// Package pose turns hand-landmark detections into control targets.
//
// Detection itself happens elsewhere: a Source delivers Results
// asynchronously, and the Adapter republishes the index fingertip of the
// first hand as a control.Signal. Sources may run at any rate relative to
// the render loop.
package pose

import (
	"context"
	"errors"
	"time"
)

// IndexFingerTip is the landmark index of the index fingertip in the
// 21-point hand topology.
const IndexFingerTip = 8

// HandLandmarks is the number of points in one hand.
const HandLandmarks = 21

// ErrUnavailable wraps any failure to bring a pose source up.
var ErrUnavailable = errors.New("pose: source unavailable")

// Landmark is a normalised point; X and Y are in [0,1] with the origin at
// the top-left of the video frame.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand is an ordered set of landmarks.
type Hand []Landmark

// Result is one processed video frame. Hands may be empty.
type Result struct {
	Hands []Hand    `json:"multiHandLandmarks"`
	At    time.Time `json:"-"`
}

// Fingertip returns the index fingertip of the first hand, if any.
func (r Result) Fingertip() (Landmark, bool) {
	if len(r.Hands) == 0 || len(r.Hands[0]) <= IndexFingerTip {
		return Landmark{}, false
	}
	return r.Hands[0][IndexFingerTip], true
}

// Options configures the detection engine.
type Options struct {
	MaxHands               int     `json:"maxNumHands" yaml:"max_hands"`
	ModelComplexity        int     `json:"modelComplexity" yaml:"model_complexity"`
	MinDetectionConfidence float64 `json:"minDetectionConfidence" yaml:"min_detection_confidence"`
	MinTrackingConfidence  float64 `json:"minTrackingConfidence" yaml:"min_tracking_confidence"`
}

// DefaultOptions tracks a single hand with fairly strict confidence.
func DefaultOptions() Options {
	return Options{
		MaxHands:               1,
		ModelComplexity:        1,
		MinDetectionConfidence: 0.75,
		MinTrackingConfidence:  0.75,
	}
}

// Source produces detection results.
//
// Start returns initialisation errors synchronously. Once it returns nil the
// source calls onResult from its own goroutine(s) until ctx is cancelled.
// onResult must not block.
type Source interface {
	Start(ctx context.Context, onResult func(Result)) error
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, onResult func(Result)) error

// Start calls f.
func (f SourceFunc) Start(ctx context.Context, onResult func(Result)) error {
	return f(ctx, onResult)
}
