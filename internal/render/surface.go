// Package render draws a scene.Scene.
package render

import (
	"errors"

	"github.com/iburimskiy/sunflower/internal/scene"
)

var (
	// ErrFatal marks a surface failure the render loop cannot continue from.
	ErrFatal = errors.New("render: fatal surface error")

	// ErrNoTarget means no frame buffer was bound for this frame; the frame is skipped.
	ErrNoTarget = errors.New("render: no target bound")

	// ErrInvalidSize is returned when a surface is created with a non-positive size.
	ErrInvalidSize = errors.New("render: invalid surface size")
)

// Surface is the drawing collaborator of the render loop.
type Surface interface {
	Render(s *scene.Scene, cam *scene.Camera) error
	SetSize(width, height int)
	SetPixelRatio(ratio float64)
}
