package scene

// Sizer is the part of a drawing surface a viewport resizes.
type Sizer interface {
	SetSize(width, height int)
	SetPixelRatio(ratio float64)
}

// Viewport binds window size changes to the camera and the drawing surface.
type Viewport struct {
	camera  *Camera
	surface Sizer

	width, height int
	ratio         float64
}

// NewViewport wires cam and surface together. surface may be nil.
func NewViewport(cam *Camera, surface Sizer) *Viewport {
	return &Viewport{camera: cam, surface: surface}
}

// Resize applies a new logical window size at the given pixel density.
// It is idempotent; non-positive sizes are ignored. changed reports whether
// anything was updated.
func (v *Viewport) Resize(width, height int, pixelRatio float64) (changed bool) {
	if width <= 0 || height <= 0 {
		return false
	}
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	if width == v.width && height == v.height && pixelRatio == v.ratio {
		return false
	}
	v.width, v.height, v.ratio = width, height, pixelRatio

	v.camera.Aspect = float64(width) / float64(height)
	v.camera.UpdateProjection()
	if v.surface != nil {
		v.surface.SetPixelRatio(pixelRatio)
		v.surface.SetSize(width, height)
	}
	return true
}

// Size returns the last applied logical size and pixel ratio.
func (v *Viewport) Size() (width, height int, pixelRatio float64) {
	return v.width, v.height, v.ratio
}

// Pixels returns the backing buffer size, logical size times pixel ratio.
func (v *Viewport) Pixels() (width, height int) {
	return int(float64(v.width) * v.ratio), int(float64(v.height) * v.ratio)
}
