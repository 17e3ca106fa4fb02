package phyllotaxis

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldRejectsEmpty(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := NewField(n)
		assert.ErrorIs(t, err, ErrEmptyField)
	}
}

func TestFieldShape(t *testing.T) {
	for _, n := range []int{1, 2, 7, 100, 1200} {
		f, err := NewField(n)
		require.NoError(t, err)
		petals := f.Petals()
		require.Len(t, petals, n)

		for i, p := range petals {
			assert.Equal(t, i, p.Index)
			assert.GreaterOrEqual(t, p.R, 0.0)
			assert.LessOrEqual(t, p.R, 1.0)
			if i > 0 {
				assert.GreaterOrEqual(t, p.R, petals[i-1].R, "n=%d i=%d", n, i)
				assert.InDelta(t, GoldenAngle, p.Theta-petals[i-1].Theta, 1e-9, "n=%d i=%d", n, i)
			}
		}
	}
}

func TestThetaIsExactMultiple(t *testing.T) {
	f, err := NewField(1200)
	require.NoError(t, err)
	for i := 0; i < f.Len(); i++ {
		assert.Equal(t, float64(i)*GoldenAngle, f.At(i).Theta)
	}
}

func TestGoldenAngle(t *testing.T) {
	assert.InDelta(t, 137.5077640500378, GoldenAngle*180/math.Pi, 1e-9)
}

func TestDeterministic(t *testing.T) {
	a, _ := NewField(300)
	b, _ := NewField(300)
	assert.Equal(t, a.Petals(), b.Petals())
}

func TestCentrePetalAtOrigin(t *testing.T) {
	f, err := NewField(1200)
	require.NoError(t, err)
	p := f.At(0)
	assert.Equal(t, 0.0, p.R)
	assert.Equal(t, 0.0, p.Theta)
	assert.Equal(t, mgl64.Vec3{0, 0, 0}, p.Position(1, DefaultLayout))
}

func TestPosition(t *testing.T) {
	p := Petal{R: 0.5, Theta: math.Pi / 2}
	got := p.Position(2, DefaultLayout)
	// r = 0.5 * 2 * 3 = 3
	assert.InDelta(t, 0, got.X(), 1e-12)
	assert.InDelta(t, 3, got.Y(), 1e-12)
	assert.InDelta(t, 1.35, got.Z(), 1e-12)
}

func TestLayoutReusesBuffer(t *testing.T) {
	f, _ := NewField(50)
	buf := make([]mgl64.Vec3, 0, 64)
	out := f.Layout(1, DefaultLayout, buf)
	require.Len(t, out, 50)
	assert.Equal(t, &buf[:1][0], &out[0])

	for i, v := range out {
		assert.Equal(t, f.At(i).Position(1, DefaultLayout), v)
	}
}

func TestColorGradient(t *testing.T) {
	inner := Petal{R: 0}.Color()
	outer := Petal{R: 1}.Color()
	hi, _, _ := inner.Hsl()
	ho, _, _ := outer.Hsl()
	assert.InDelta(t, 42, hi, 0.5)
	assert.InDelta(t, 67, ho, 0.5)
}
