package plotter

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantle-data/tomography.report/internal/sphere"
	"github.com/mantle-data/tomography.report/internal/xsection"
)

func testSection() *xsection.Section {
	// 60 degree section, 3 radii (surface first), 4 samples.
	theta := []float64{120 * math.Pi / 180, 100 * math.Pi / 180, 80 * math.Pi / 180, 60 * math.Pi / 180}
	values := [][]float64{
		{1, 2, -3, 0.5},
		{0, 1, 1, math.NaN()},
		{-1, 0, 2, 1},
	}
	return &xsection.Section{
		Theta:  theta,
		R:      []float64{6371e3, 5000e3, 3480e3},
		Values: values,
		Angle:  60,
		Path: &sphere.Path{
			Points:   []sphere.Vec2{{0, 0}, {20, 0}, {40, 0}, {60, 0}},
			AngleDeg: 60,
		},
	}
}

func TestSectionGridAdapter(t *testing.T) {
	g := sectionGrid{testSection()}

	c, r := g.Dims()
	assert.Equal(t, 4, c)
	assert.Equal(t, 3, r)

	// X ascends along the path from 0 to the section angle.
	assert.InDelta(t, 0, g.X(0), 1e-9)
	assert.InDelta(t, 20, g.X(1), 1e-9)
	assert.InDelta(t, 60, g.X(3), 1e-9)

	// Y ascends in km from the bottom radius to the surface.
	assert.Equal(t, 3480.0, g.Y(0))
	assert.Equal(t, 6371.0, g.Y(2))

	// Z maps (col, row) back to Values[radius][sample].
	assert.Equal(t, -1.0, g.Z(0, 0)) // bottom row, first sample
	assert.Equal(t, 1.0, g.Z(0, 2))  // surface row, first sample
	assert.Equal(t, -3.0, g.Z(2, 2))
}

func TestValueRange(t *testing.T) {
	min, max := valueRange(testSection())
	assert.Equal(t, -3.0, min)
	assert.Equal(t, 3.0, max)

	empty := &xsection.Section{Values: [][]float64{{math.NaN()}}}
	min, max = valueRange(empty)
	assert.Equal(t, -1.0, min)
	assert.Equal(t, 1.0, max)
}

func TestSaveSectionPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "section.png")
	require.NoError(t, SaveSectionPNG(testSection(), "TEST dlnVp_percent", path))

	var buf bytes.Buffer
	require.NoError(t, WriteSectionPNG(testSection(), "TEST dlnVp_percent", &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestWritePathHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePathHTML(testSection().Path, "path preview", &buf))
	assert.Contains(t, buf.String(), "echarts")
}

func TestWriteSectionHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSectionHTML(testSection(), "section preview", 0, &buf))
	out := buf.String()
	assert.Contains(t, out, "echarts")
	// The NaN sample is dropped from the payload.
	assert.False(t, strings.Contains(out, "NaN"))
}
