// Package grid implements the minimal labelled-grid engine behind the
// tomography toolkit: a canonical 3-D grid over (radius, latitude,
// longitude), a 1-D radial profile for reference models, and the
// interpolation and axis operations the normalizers and the cross-section
// builder need. Values are float64 with NaN marking missing data.
package grid

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Attrs holds free-form metadata for a dataset, axis or variable
// (long_name, units, reference, doi, ...).
type Attrs map[string]string

// Dimension names of the canonical grid.
const (
	DimR   = "r"
	DimLat = "lat"
	DimLon = "lon"
)

// Grid3 is a dense 3-D block of values over (r, lat, lon), stored
// contiguously with r as the slowest dimension.
type Grid3 struct {
	nr, nlat, nlon int
	data           []float64
}

// NewGrid3 allocates a grid of the given dimensions with every cell set
// to NaN.
func NewGrid3(nr, nlat, nlon int) *Grid3 {
	g := &Grid3{nr: nr, nlat: nlat, nlon: nlon, data: make([]float64, nr*nlat*nlon)}
	for i := range g.data {
		g.data[i] = math.NaN()
	}
	return g
}

// Dims returns the grid dimensions (nr, nlat, nlon).
func (g *Grid3) Dims() (nr, nlat, nlon int) { return g.nr, g.nlat, g.nlon }

// At returns the value at (i, j, k) = (r, lat, lon) indices.
func (g *Grid3) At(i, j, k int) float64 { return g.data[(i*g.nlat+j)*g.nlon+k] }

// Set stores a value at (i, j, k).
func (g *Grid3) Set(i, j, k int, v float64) { g.data[(i*g.nlat+j)*g.nlon+k] = v }

// Raw exposes the backing slice in (r, lat, lon) order. It is the caller's
// view of the same memory, used by the store for serialization.
func (g *Grid3) Raw() []float64 { return g.data }

// Grid3FromRaw wraps an existing value slice. len(data) must equal
// nr*nlat*nlon.
func Grid3FromRaw(nr, nlat, nlon int, data []float64) (*Grid3, error) {
	if len(data) != nr*nlat*nlon {
		return nil, fmt.Errorf("grid data has %d values, want %d", len(data), nr*nlat*nlon)
	}
	return &Grid3{nr: nr, nlat: nlat, nlon: nlon, data: data}, nil
}

// Variable is a named grid with its metadata.
type Variable struct {
	Grid  *Grid3
	Attrs Attrs
}

// Dataset is a canonical 3-D tomography model: shared axes, any number of
// gridded variables, and dataset-level attributes (id, reference, doi,
// source).
type Dataset struct {
	ID    string
	Attrs Attrs

	// Axes. R is in metres and ascending after normalization (CMB to
	// surface); Lat in degrees ascending; Lon in bipolar degrees
	// ascending.
	R, Lat, Lon []float64

	// Depth is an optional secondary coordinate along R, in km positive
	// down.
	Depth []float64

	Vars map[string]*Variable
}

// NewDataset creates an empty dataset with the given axes.
func NewDataset(id string, r, lat, lon []float64) *Dataset {
	return &Dataset{
		ID:    id,
		Attrs: Attrs{},
		R:     r,
		Lat:   lat,
		Lon:   lon,
		Vars:  map[string]*Variable{},
	}
}

// AddVar attaches a variable to the dataset. The grid dimensions must
// match the dataset axes.
func (d *Dataset) AddVar(name string, g *Grid3, attrs Attrs) error {
	nr, nlat, nlon := g.Dims()
	if nr != len(d.R) || nlat != len(d.Lat) || nlon != len(d.Lon) {
		return fmt.Errorf("variable %q has dims (%d,%d,%d), axes are (%d,%d,%d)",
			name, nr, nlat, nlon, len(d.R), len(d.Lat), len(d.Lon))
	}
	if attrs == nil {
		attrs = Attrs{}
	}
	d.Vars[name] = &Variable{Grid: g, Attrs: attrs}
	return nil
}

// Var returns a variable by name.
func (d *Dataset) Var(name string) (*Variable, error) {
	v, ok := d.Vars[name]
	if !ok {
		return nil, fmt.Errorf("dataset %q has no variable %q", d.ID, name)
	}
	return v, nil
}

// VarNames returns the variable names in sorted order.
func (d *Dataset) VarNames() []string {
	names := make([]string, 0, len(d.Vars))
	for name := range d.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rename renames a variable, carrying its grid and attributes over.
func (d *Dataset) Rename(from, to string) error {
	v, ok := d.Vars[from]
	if !ok {
		return fmt.Errorf("dataset %q has no variable %q", d.ID, from)
	}
	delete(d.Vars, from)
	d.Vars[to] = v
	return nil
}

// Scale multiplies every value of a variable in place (e.g. km/s to m/s).
func (d *Dataset) Scale(name string, factor float64) error {
	v, err := d.Var(name)
	if err != nil {
		return err
	}
	floats.Scale(factor, v.Grid.data)
	return nil
}
