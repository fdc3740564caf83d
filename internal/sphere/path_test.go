package sphere

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreatCirclePath_EquatorQuarter(t *testing.T) {
	p, err := GreatCirclePath(Vec2{0, 0}, Vec2{90, 0}, 1)
	require.NoError(t, err)

	assert.InDelta(t, 90, p.AngleDeg, 1e-9)
	require.Len(t, p.Points, 90)

	// Endpoints are preserved.
	assert.InDelta(t, 0, p.Points[0][0], 1e-9)
	assert.InDelta(t, 90, p.Points[len(p.Points)-1][0], 1e-9)

	// The whole path stays on the equator.
	for _, g := range p.Points {
		assert.InDelta(t, 0, g[1], 1e-9, "lat at lon %v", g[0])
	}

	// Longitudes increase monotonically.
	for i := 1; i < len(p.Points); i++ {
		assert.Greater(t, p.Points[i][0], p.Points[i-1][0])
	}
}

func TestGreatCirclePath_IdenticalEndpoints(t *testing.T) {
	g := Vec2{142, -26}
	p, err := GreatCirclePath(g, g, 0.1)
	require.NoError(t, err)

	assert.Equal(t, 0.0, p.AngleDeg)
	require.Len(t, p.Points, 1)
	assert.Equal(t, g, p.Points[0])
}

func TestGreatCirclePath_Antimeridian(t *testing.T) {
	// A short hop across the antimeridian must come back as a continuous
	// longitude sequence, not a ~358 degree jump.
	p, err := GreatCirclePath(Vec2{179, 0}, Vec2{-179, 0}, 0.25)
	require.NoError(t, err)

	assert.InDelta(t, 2, p.AngleDeg, 1e-9)
	for i := 1; i < len(p.Points); i++ {
		step := math.Abs(p.Points[i][0] - p.Points[i-1][0])
		assert.Less(t, step, 1.0, "longitude jump between samples %d and %d", i-1, i)
	}
	last := p.Points[len(p.Points)-1]
	assert.InDelta(t, 181, last[0], 1e-9, "unwrapped longitude continues past 180")
}

func TestGreatCirclePath_AntipodalEndpoints(t *testing.T) {
	_, err := GreatCirclePath(Vec2{0, 0}, Vec2{180, 0}, 1)
	assert.ErrorIs(t, err, ErrAntipodal)

	_, err = GreatCirclePath(Vec2{0, 90}, Vec2{0, -90}, 1)
	assert.ErrorIs(t, err, ErrAntipodal)
}

func TestGreatCirclePath_InvalidResolution(t *testing.T) {
	_, err := GreatCirclePath(Vec2{0, 0}, Vec2{10, 10}, 0)
	assert.Error(t, err)

	_, err = GreatCirclePath(Vec2{0, 0}, Vec2{10, 10}, -1)
	assert.Error(t, err)
}

func TestGreatCirclePath_CoarseResolutionKeepsEndpoints(t *testing.T) {
	// Separation smaller than the resolution still produces both
	// endpoints rather than a truncated path.
	p, err := GreatCirclePath(Vec2{10, 10}, Vec2{10.5, 10}, 5)
	require.NoError(t, err)
	require.Len(t, p.Points, 2)
	assert.InDelta(t, 10, p.Points[0][0], 1e-9)
	assert.InDelta(t, 10.5, p.Points[1][0], 1e-9)
}

func TestGreatCirclePath_SampleCountTracksResolution(t *testing.T) {
	p, err := GreatCirclePath(Vec2{142, -26}, Vec2{189, -5.5}, 0.1)
	require.NoError(t, err)

	want := int(math.Ceil(p.AngleDeg / 0.1))
	assert.Len(t, p.Points, want)

	// Distance along consecutive samples is roughly uniform (slerp is a
	// constant-angular-velocity interpolation).
	var first, prev float64
	for i := 1; i < len(p.Points); i++ {
		a := Geo2Sph(Vec3{1, p.Points[i-1][0], p.Points[i-1][1]}, false)
		b := Geo2Sph(Vec3{1, p.Points[i][0], p.Points[i][1]}, false)
		d, err := GreatCircleDistance(a, b, Spherical, 0)
		require.NoError(t, err)
		if i == 1 {
			first = d
		} else {
			assert.InDelta(t, prev, d, first*1e-6)
		}
		prev = d
	}
}
