package render

import (
	"fmt"
	"image/color"
	"math"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/iburimskiy/sunflower/internal/scene"
)

// minDotRadius keeps far petals visible as at least a sub-pixel dot.
const minDotRadius = 0.75

// dot is one projected petal waiting to be painted.
type dot struct {
	x, y, r float32
	depth   float64
	clr     color.RGBA
}

// EbitenSurface paints petals as filled circles on an ebiten image, far to
// near. Bind must be called with the frame's screen before Render.
type EbitenSurface struct {
	width, height int
	ratio         float64

	target *ebiten.Image
	dots   []dot
}

// NewEbitenSurface creates a surface for a logical width x height window.
func NewEbitenSurface(width, height int) (*EbitenSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &EbitenSurface{width: width, height: height, ratio: 1}, nil
}

// SetSize sets the logical size.
func (s *EbitenSurface) SetSize(width, height int) {
	s.width, s.height = width, height
}

// SetPixelRatio sets the device pixel ratio.
func (s *EbitenSurface) SetPixelRatio(ratio float64) {
	if ratio <= 0 {
		ratio = 1
	}
	s.ratio = ratio
}

// Bind sets the image the next Render paints into.
func (s *EbitenSurface) Bind(target *ebiten.Image) { s.target = target }

// Render draws one frame. The target is unbound afterwards.
func (s *EbitenSurface) Render(sc *scene.Scene, cam *scene.Camera) error {
	dst := s.target
	s.target = nil
	if dst == nil {
		return ErrNoTarget
	}

	w := float64(s.width) * s.ratio
	h := float64(s.height) * s.ratio
	if b := dst.Bounds(); b.Dx() > 0 && b.Dy() > 0 {
		w, h = float64(b.Dx()), float64(b.Dy())
	}

	dst.Fill(rgba(sc.Background))
	s.dots = project(sc, cam, w, h, s.dots[:0])
	for _, d := range s.dots {
		vector.DrawFilledCircle(dst, d.x, d.y, d.r, d.clr, true)
	}
	return nil
}

// project transforms, shades and depth-sorts every petal into dots.
func project(sc *scene.Scene, cam *scene.Camera, w, h float64, dots []dot) []dot {
	model := sc.Flower.Model()
	ambient := scale(sc.Ambient.Color, sc.Ambient.Intensity)

	for _, p := range sc.Flower.Children {
		world := model.Mul4x1(p.Position.Vec4(1)).Vec3()
		x, y, depth, ok := cam.Project(world, w, h)
		if !ok {
			continue
		}
		r := math.Max(p.Radius*cam.PixelsPerUnit(depth, h), minDotRadius)

		light := add(ambient, scale(sc.Sun.Color, sc.Sun.Attenuation(world)))
		c := multiply(p.Color, light).Clamped()
		c = c.BlendRgb(sc.Fog.Color, sc.Fog.Factor(depth)).Clamped()

		dots = append(dots, dot{
			x:     float32(x),
			y:     float32(y),
			r:     float32(r),
			depth: depth,
			clr:   rgba(c),
		})
	}
	slices.SortStableFunc(dots, func(a, b dot) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		}
		return 0
	})
	return dots
}

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func scale(c colorful.Color, k float64) colorful.Color {
	return colorful.Color{R: c.R * k, G: c.G * k, B: c.B * k}
}

func add(a, b colorful.Color) colorful.Color {
	return colorful.Color{R: a.R + b.R, G: a.G + b.G, B: a.B + b.B}
}

func multiply(a, b colorful.Color) colorful.Color {
	return colorful.Color{R: a.R * b.R, G: a.G * b.G, B: a.B * b.B}
}

