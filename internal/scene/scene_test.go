package scene

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSizer struct {
	sizes  [][2]int
	ratios []float64
}

func (r *recordingSizer) SetSize(w, h int) { r.sizes = append(r.sizes, [2]int{w, h}) }
func (r *recordingSizer) SetPixelRatio(x float64) { r.ratios = append(r.ratios, x) }

func TestViewportResizeIdempotent(t *testing.T) {
	cam := DefaultCamera(1)
	s := &recordingSizer{}
	vp := NewViewport(cam, s)

	assert.True(t, vp.Resize(1280, 720, 2))
	once := *cam

	assert.False(t, vp.Resize(1280, 720, 2))
	assert.Equal(t, once, *cam)
	assert.Len(t, s.sizes, 1)

	assert.InDelta(t, 1280.0/720.0, cam.Aspect, 1e-12)
	w, h := vp.Pixels()
	assert.Equal(t, 2560, w)
	assert.Equal(t, 1440, h)
}

func TestViewportIgnoresDegenerateSizes(t *testing.T) {
	cam := DefaultCamera(1.5)
	vp := NewViewport(cam, nil)
	assert.False(t, vp.Resize(0, 600, 1))
	assert.False(t, vp.Resize(800, -1, 1))
	assert.Equal(t, 1.5, cam.Aspect)

	assert.True(t, vp.Resize(800, 600, 0))
	_, _, ratio := vp.Size()
	assert.Equal(t, 1.0, ratio)
}

func TestViewportProjectionTracksAspect(t *testing.T) {
	cam := DefaultCamera(1)
	vp := NewViewport(cam, nil)
	vp.Resize(400, 200, 1)
	want := mgl64.Perspective(mgl64.DegToRad(60), 2, 0.1, 100)
	assert.True(t, want.ApproxEqual(cam.Projection()))
}

func TestProjectOriginToCentre(t *testing.T) {
	cam := DefaultCamera(4.0 / 3.0)
	x, y, depth, ok := cam.Project(mgl64.Vec3{0, 0, 0}, 640, 480)
	require.True(t, ok)
	assert.InDelta(t, 320, x, 1e-9)
	assert.InDelta(t, 240, y, 1e-9)
	assert.InDelta(t, 7, depth, 1e-9)

	// up in world is up on screen
	_, yUp, _, ok := cam.Project(mgl64.Vec3{0, 1, 0}, 640, 480)
	require.True(t, ok)
	assert.Less(t, yUp, 240.0)

	_, _, _, ok = cam.Project(mgl64.Vec3{0, 0, 8}, 640, 480)
	assert.False(t, ok, "behind the camera")
}

func TestPixelsPerUnit(t *testing.T) {
	cam := DefaultCamera(1)
	ppu := cam.PixelsPerUnit(7, 480)
	_, y0, _, _ := cam.Project(mgl64.Vec3{0, 0, 0}, 480, 480)
	_, y1, _, _ := cam.Project(mgl64.Vec3{0, 1, 0}, 480, 480)
	assert.InDelta(t, ppu, y0-y1, 1e-9)
	assert.Equal(t, 0.0, cam.PixelsPerUnit(0, 480))
}

func TestGroupModel(t *testing.T) {
	g := Group{Rotation: mgl64.Vec3{0, math.Pi / 2, 0}}
	p := g.Model().Mul4x1(mgl64.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 0, p.X(), 1e-12)
	assert.InDelta(t, -1, p.Z(), 1e-12)

	g = Group{}
	assert.True(t, g.Model().ApproxEqual(mgl64.Ident4()))
}

func TestBreathing(t *testing.T) {
	b := DefaultBreathing
	assert.InDelta(t, 1.2, b.At(0), 1e-12)
	quarter := math.Pi / 2
	assert.InDelta(t, 1.5, b.At(time.Duration(quarter*float64(time.Second))), 1e-9)
	for i := 0; i < 100; i++ {
		v := b.At(time.Duration(i) * 137 * time.Millisecond)
		assert.GreaterOrEqual(t, v, 0.9-1e-12)
		assert.LessOrEqual(t, v, 1.5+1e-12)
	}
}

func TestFogAndAttenuation(t *testing.T) {
	f := Fog{Near: 4, Far: 12}
	assert.Equal(t, 0.0, f.Factor(2))
	assert.InDelta(t, 0.5, f.Factor(8), 1e-12)
	assert.Equal(t, 1.0, f.Factor(20))

	l := PointLight{Position: mgl64.Vec3{0, 0, 0}, Intensity: 2, Distance: 10}
	assert.InDelta(t, 1, l.Attenuation(mgl64.Vec3{5, 0, 0}), 1e-12)
	assert.Equal(t, 0.0, l.Attenuation(mgl64.Vec3{11, 0, 0}))
}

func TestNewScene(t *testing.T) {
	s := New(12)
	assert.Len(t, s.Flower.Children, 12)
	assert.Equal(t, 0.5, s.Ambient.Intensity)
	assert.Equal(t, 20.0, s.Sun.Distance)
	assert.Equal(t, "#ffaa33", s.Sun.Color.Hex())
}
