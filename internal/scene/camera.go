package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera looking down -Z at the origin.
type Camera struct {
	FOV      float64 // vertical, degrees
	Aspect   float64
	Near     float64
	Far      float64
	Position mgl64.Vec3

	projection mgl64.Mat4
	view       mgl64.Mat4
}

// NewCamera returns a camera with the projection already computed.
func NewCamera(fov, aspect, near, far float64, pos mgl64.Vec3) *Camera {
	c := &Camera{FOV: fov, Aspect: aspect, Near: near, Far: far, Position: pos}
	c.UpdateProjection()
	return c
}

// DefaultCamera is a 60 degree camera seven units back on the z axis.
func DefaultCamera(aspect float64) *Camera {
	return NewCamera(60, aspect, 0.1, 100, mgl64.Vec3{0, 0, 7})
}

// UpdateProjection recomputes the projection and view matrices from the
// public fields. Call it after changing any of them.
func (c *Camera) UpdateProjection() {
	c.projection = mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
	c.view = mgl64.LookAtV(c.Position, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0})
}

// Projection returns the current projection matrix.
func (c *Camera) Projection() mgl64.Mat4 { return c.projection }

// View returns the current view matrix.
func (c *Camera) View() mgl64.Mat4 { return c.view }

// Project maps a world-space point to viewport pixels. depth is the distance
// along the view axis; ok is false when the point is outside the clip volume
// in depth.
func (c *Camera) Project(world mgl64.Vec3, width, height float64) (x, y, depth float64, ok bool) {
	eye := c.view.Mul4x1(world.Vec4(1))
	clip := c.projection.Mul4x1(eye)
	if clip.W() <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return 0, 0, 0, false
	}
	x = (ndc.X() + 1) / 2 * width
	y = (1 - ndc.Y()) / 2 * height
	return x, y, -eye.Z(), true
}

// PixelsPerUnit returns how many pixels a world unit spans at the given depth.
func (c *Camera) PixelsPerUnit(depth, height float64) float64 {
	if depth <= 0 {
		return 0
	}
	// At(1,1) is cot(fov/2)
	return c.projection.At(1, 1) * height / (2 * depth)
}
