package grid

import (
	"fmt"
	"math"
	"sort"
)

// locate finds the interval of ascending ax bracketing x and the linear
// interpolation parameter t within it. With extrapolate set, x outside
// the axis maps onto the nearest end interval with t outside [0, 1];
// otherwise ok is false.
func locate(ax []float64, x float64, extrapolate bool) (i int, t float64, ok bool) {
	n := len(ax)
	if n == 0 {
		return 0, 0, false
	}
	if n == 1 {
		return 0, 0, x == ax[0] || extrapolate
	}

	j := sort.SearchFloat64s(ax, x)
	switch {
	case j == 0:
		if x == ax[0] {
			return 0, 0, true
		}
		if !extrapolate {
			return 0, 0, false
		}
		i = 0
	case j == n:
		if !extrapolate {
			return 0, 0, false
		}
		i = n - 2
	default:
		i = j - 1
	}
	return i, (x - ax[i]) / (ax[i+1] - ax[i]), true
}

// Interp3 evaluates a variable at the point (r, lat, lon) by trilinear
// interpolation. The radius extrapolates linearly beyond the axis ends
// (the normalized grids are defined CMB to surface and callers may probe
// slightly past either); latitude and longitude outside the grid yield
// NaN. Longitudes are tried modulo 360 so unwrapped path longitudes work
// against a bipolar axis.
func (d *Dataset) Interp3(name string, r, lat, lon float64) (float64, error) {
	v, err := d.Var(name)
	if err != nil {
		return 0, err
	}
	return d.interp3(v.Grid, r, lat, lon), nil
}

func (d *Dataset) interp3(g *Grid3, r, lat, lon float64) float64 {
	ri, rt, ok := locate(d.R, r, true)
	if !ok {
		return math.NaN()
	}
	li, lt, ok := locate(d.Lat, lat, false)
	if !ok {
		return math.NaN()
	}
	oi, ot, ok := d.locateLon(lon)
	if !ok {
		return math.NaN()
	}

	// Clamp the upper corner index for single-layer axes and exact hits
	// on the last sample.
	r1, l1, o1 := ri+1, li+1, oi+1
	if r1 >= len(d.R) {
		r1 = ri
	}
	if l1 >= len(d.Lat) {
		l1 = li
	}
	if o1 >= len(d.Lon) {
		o1 = oi
	}

	c000 := g.At(ri, li, oi)
	c001 := g.At(ri, li, o1)
	c010 := g.At(ri, l1, oi)
	c011 := g.At(ri, l1, o1)
	c100 := g.At(r1, li, oi)
	c101 := g.At(r1, li, o1)
	c110 := g.At(r1, l1, oi)
	c111 := g.At(r1, l1, o1)

	c00 := c000 + (c001-c000)*ot
	c01 := c010 + (c011-c010)*ot
	c10 := c100 + (c101-c100)*ot
	c11 := c110 + (c111-c110)*ot

	c0 := c00 + (c01-c00)*lt
	c1 := c10 + (c11-c10)*lt

	return c0 + (c1-c0)*rt
}

// locateLon behaves like locate on the longitude axis, additionally
// trying lon-360 and lon+360 when the raw value falls outside it.
func (d *Dataset) locateLon(lon float64) (int, float64, bool) {
	if i, t, ok := locate(d.Lon, lon, false); ok {
		return i, t, ok
	}
	if i, t, ok := locate(d.Lon, lon-360, false); ok {
		return i, t, ok
	}
	return locate(d.Lon, lon+360, false)
}

// InterpPath samples a variable along a surface path at several radii:
// the result is indexed [radius][path sample]. lats and lons must have
// equal length.
func (d *Dataset) InterpPath(name string, rs, lats, lons []float64) ([][]float64, error) {
	if len(lats) != len(lons) {
		return nil, fmt.Errorf("path has %d latitudes and %d longitudes", len(lats), len(lons))
	}
	v, err := d.Var(name)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(rs))
	for i, r := range rs {
		row := make([]float64, len(lats))
		for j := range lats {
			row[j] = d.interp3(v.Grid, r, lats[j], lons[j])
		}
		out[i] = row
	}
	return out, nil
}
