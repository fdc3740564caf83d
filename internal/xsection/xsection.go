// Package xsection builds great-circle cross-sections through normalized
// tomography datasets: a 2-D (radius, angle) slab of one variable sampled
// along the great circle between two geographic points.
package xsection

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/mantle-data/tomography.report/internal/grid"
	"github.com/mantle-data/tomography.report/internal/sphere"
)

// Params selects the slab to cut.
type Params struct {
	// Start and End are the geographic endpoints, (lon, lat) in degrees.
	Start, End sphere.Vec2

	// ResDeg is the angular sampling resolution along the path, degrees
	// per sample.
	ResDeg float64

	// RMin and RMax bound the radius range in metres and NR is the number
	// of radial samples. Zero bounds default to the dataset's radius
	// range.
	RMin, RMax float64
	NR         int

	// Var names the dataset variable to sample.
	Var string
}

// Section is a sampled cross-section. Values is indexed [radius][angle]
// and holds NaN where the path leaves the dataset's coverage.
type Section struct {
	// Theta places each path sample on a polar axis, in radians,
	// descending from 90+angle/2 to 90-angle/2 degrees so the section is
	// centred on twelve o'clock.
	Theta []float64

	// R holds the radial samples in metres, surface side first.
	R []float64

	Values [][]float64

	// Angle is the angular separation of the endpoints in degrees.
	Angle float64

	// Path is the sampled great circle, for map previews.
	Path *sphere.Path
}

// Build cuts a section through ds along the great circle between the
// endpoints in p.
func Build(ds *grid.Dataset, p Params) (*Section, error) {
	if _, err := ds.Var(p.Var); err != nil {
		return nil, err
	}
	if p.NR < 2 {
		return nil, fmt.Errorf("need at least 2 radial samples, got %d", p.NR)
	}
	if len(ds.R) == 0 {
		return nil, fmt.Errorf("dataset %q has an empty radius axis", ds.ID)
	}

	rMin, rMax := p.RMin, p.RMax
	if rMin == 0 {
		rMin = ds.R[0]
	}
	if rMax == 0 {
		rMax = ds.R[len(ds.R)-1]
	}
	if rMin >= rMax {
		return nil, fmt.Errorf("invalid radius range [%v, %v]", rMin, rMax)
	}

	path, err := sphere.GreatCirclePath(p.Start, p.End, p.ResDeg)
	if err != nil {
		return nil, err
	}
	if path.AngleDeg == 0 {
		return nil, fmt.Errorf("cross-section endpoints coincide")
	}

	lats := make([]float64, len(path.Points))
	lons := make([]float64, len(path.Points))
	for i, pt := range path.Points {
		lons[i] = pt[0]
		lats[i] = pt[1]
	}

	rs := floats.Span(make([]float64, p.NR), rMax, rMin)
	values, err := ds.InterpPath(p.Var, rs, lats, lons)
	if err != nil {
		return nil, err
	}

	thetaDeg := floats.Span(make([]float64, len(path.Points)), 90+path.AngleDeg/2, 90-path.AngleDeg/2)
	theta := make([]float64, len(thetaDeg))
	for i, t := range thetaDeg {
		theta[i] = t * math.Pi / 180
	}

	return &Section{
		Theta:  theta,
		R:      rs,
		Values: values,
		Angle:  path.AngleDeg,
		Path:   path,
	}, nil
}
