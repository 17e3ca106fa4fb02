package render

import (
	"fmt"

	"github.com/iburimskiy/sunflower/internal/scene"
)

// HeadlessSurface projects and shades every frame like EbitenSurface but
// keeps the result instead of painting it. It needs no window.
type HeadlessSurface struct {
	width, height int
	ratio         float64

	dots   []dot
	frames uint64
}

// NewHeadlessSurface creates a headless surface of the given logical size.
func NewHeadlessSurface(width, height int) (*HeadlessSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &HeadlessSurface{width: width, height: height, ratio: 1}, nil
}

func (s *HeadlessSurface) SetSize(width, height int) {
	s.width, s.height = width, height
}

func (s *HeadlessSurface) SetPixelRatio(ratio float64) {
	if ratio <= 0 {
		ratio = 1
	}
	s.ratio = ratio
}

func (s *HeadlessSurface) Render(sc *scene.Scene, cam *scene.Camera) error {
	w := float64(s.width) * s.ratio
	h := float64(s.height) * s.ratio
	s.dots = project(sc, cam, w, h, s.dots[:0])
	s.frames++
	return nil
}

// Visible is how many petals the last frame put on screen.
func (s *HeadlessSurface) Visible() int { return len(s.dots) }

// Frames counts rendered frames.
func (s *HeadlessSurface) Frames() uint64 { return s.frames }

// Bounds returns the screen-space bounding box of the last frame's dots.
func (s *HeadlessSurface) Bounds() (minX, minY, maxX, maxY float32, ok bool) {
	if len(s.dots) == 0 {
		return 0, 0, 0, 0, false
	}
	minX, minY = s.dots[0].x, s.dots[0].y
	maxX, maxY = minX, minY
	for _, d := range s.dots[1:] {
		minX, maxX = min(minX, d.x), max(maxX, d.x)
		minY, maxY = min(minY, d.y), max(maxY, d.y)
	}
	return minX, minY, maxX, maxY, true
}
