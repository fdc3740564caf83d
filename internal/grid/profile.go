package grid

import (
	"fmt"
	"math"
)

// Column is one named value series of a radial profile.
type Column struct {
	Values []float64
	Attrs  Attrs
}

// Profile is a 1-D reference model over radius: the radial counterpart of
// Dataset, used for reference velocity and density profiles.
type Profile struct {
	ID    string
	Attrs Attrs

	// R is ascending, in metres. Depth is the matching secondary
	// coordinate in km positive down.
	R     []float64
	Depth []float64

	Columns map[string]*Column
}

// NewProfile creates an empty profile over the given radii.
func NewProfile(id string, r []float64) *Profile {
	return &Profile{ID: id, Attrs: Attrs{}, R: r, Columns: map[string]*Column{}}
}

// AddColumn attaches a value series; its length must match the radius
// axis.
func (p *Profile) AddColumn(name string, values []float64, attrs Attrs) error {
	if len(values) != len(p.R) {
		return fmt.Errorf("column %q has %d values, radius axis has %d", name, len(values), len(p.R))
	}
	if attrs == nil {
		attrs = Attrs{}
	}
	p.Columns[name] = &Column{Values: values, Attrs: attrs}
	return nil
}

// Interp evaluates a column at radius r by linear interpolation,
// extrapolating past the profile ends.
func (p *Profile) Interp(name string, r float64) (float64, error) {
	c, ok := p.Columns[name]
	if !ok {
		return math.NaN(), fmt.Errorf("profile %q has no column %q", p.ID, name)
	}
	return interp1(p.R, c.Values, r), nil
}
