package grid

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// SortBipolar remaps the longitude axis into [-180, 180] and reorders the
// axis and every variable so longitudes ascend. Vendor grids frequently
// arrive on a [0, 360) axis. The seam values -180 and 180 are left alone
// so a grid carrying both still has a seam for DropSeam to remove.
func (d *Dataset) SortBipolar() {
	n := len(d.Lon)
	remapped := make([]float64, n)
	for i, lon := range d.Lon {
		switch {
		case lon > 180:
			remapped[i] = lon - 360
		case lon < -180:
			remapped[i] = lon + 360
		default:
			remapped[i] = lon
		}
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool { return remapped[perm[a]] < remapped[perm[b]] })

	sorted := make([]float64, n)
	for i, p := range perm {
		sorted[i] = remapped[p]
	}
	d.Lon = sorted

	for _, v := range d.Vars {
		g := v.Grid
		ng := &Grid3{nr: g.nr, nlat: g.nlat, nlon: g.nlon, data: make([]float64, len(g.data))}
		for i := 0; i < g.nr; i++ {
			for j := 0; j < g.nlat; j++ {
				for k, p := range perm {
					ng.Set(i, j, k, g.At(i, j, p))
				}
			}
		}
		v.Grid = ng
	}
}

// DropSeam removes the final longitude sample when it duplicates the
// first one 360 degrees later (a grid carrying both lon=-180 and
// lon=180).
func (d *Dataset) DropSeam() {
	n := len(d.Lon)
	if n < 2 || math.Abs(d.Lon[n-1]-d.Lon[0]-360) > 1e-9 {
		return
	}

	d.Lon = d.Lon[:n-1]
	for _, v := range d.Vars {
		g := v.Grid
		ng := NewGrid3(g.nr, g.nlat, n-1)
		for i := 0; i < g.nr; i++ {
			for j := 0; j < g.nlat; j++ {
				for k := 0; k < n-1; k++ {
					ng.Set(i, j, k, g.At(i, j, k))
				}
			}
		}
		v.Grid = ng
	}
}

// Reverse flips one dimension of the dataset in place, so descending
// vendor axes (latitudes from 90 down, radii from the surface down) can
// be turned ascending.
func (d *Dataset) Reverse(dim string) error {
	switch dim {
	case DimR:
		floats.Reverse(d.R)
		if d.Depth != nil {
			floats.Reverse(d.Depth)
		}
	case DimLat:
		floats.Reverse(d.Lat)
	case DimLon:
		floats.Reverse(d.Lon)
	default:
		return fmt.Errorf("unknown dimension %q", dim)
	}

	for _, v := range d.Vars {
		g := v.Grid
		ng := &Grid3{nr: g.nr, nlat: g.nlat, nlon: g.nlon, data: make([]float64, len(g.data))}
		for i := 0; i < g.nr; i++ {
			for j := 0; j < g.nlat; j++ {
				for k := 0; k < g.nlon; k++ {
					si, sj, sk := i, j, k
					switch dim {
					case DimR:
						si = g.nr - 1 - i
					case DimLat:
						sj = g.nlat - 1 - j
					case DimLon:
						sk = g.nlon - 1 - k
					}
					ng.Set(i, j, k, g.At(si, sj, sk))
				}
			}
		}
		v.Grid = ng
	}
	return nil
}

// ExtendRadii reindexes the radius axis onto newR, interpolating every
// variable linearly along r and extrapolating beyond the original ends.
// Normalizers use it to push a model out to the surface and down to the
// core-mantle boundary. The depth coordinate, linear in r, is reindexed
// the same way.
func (d *Dataset) ExtendRadii(newR []float64) {
	nlat, nlon := len(d.Lat), len(d.Lon)

	for _, v := range d.Vars {
		g := v.Grid
		ng := NewGrid3(len(newR), nlat, nlon)
		col := make([]float64, len(d.R))
		for j := 0; j < nlat; j++ {
			for k := 0; k < nlon; k++ {
				for i := range d.R {
					col[i] = g.At(i, j, k)
				}
				for i, r := range newR {
					ng.Set(i, j, k, interp1(d.R, col, r))
				}
			}
		}
		v.Grid = ng
	}

	if d.Depth != nil {
		nd := make([]float64, len(newR))
		for i, r := range newR {
			nd[i] = interp1(d.R, d.Depth, r)
		}
		d.Depth = nd
	}

	d.R = append([]float64(nil), newR...)
}

// interp1 is 1-D linear interpolation on an ascending axis with linear
// extrapolation at the ends.
func interp1(ax, vals []float64, x float64) float64 {
	i, t, ok := locate(ax, x, true)
	if !ok {
		return math.NaN()
	}
	if i+1 >= len(ax) {
		return vals[i]
	}
	return vals[i] + (vals[i+1]-vals[i])*t
}
