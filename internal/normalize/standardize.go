package normalize

import (
	"fmt"

	"github.com/mantle-data/tomography.report/internal/grid"
	"github.com/mantle-data/tomography.report/internal/units"
)

// StandardizeConfig describes the cleanup applied to a model that already
// arrives gridded but with vendor naming, units and axis conventions.
type StandardizeConfig struct {
	Model  ModelInfo `json:"model"`
	Planet Planet    `json:"planet"`

	// Renames maps vendor variable names to canonical ones.
	Renames map[string]string `json:"renames"`

	// ScaleToMPS lists variables stored in km/s that must become m/s.
	ScaleToMPS []string `json:"scale_to_mps"`

	// VarAttrs holds attributes for the canonical variables, replacing
	// whatever the vendor shipped.
	VarAttrs map[string]grid.Attrs `json:"var_attrs"`

	// DropSeam removes a duplicated lon=180 column.
	DropSeam bool `json:"drop_seam"`

	// ExtendToCMB and ExtendToSurface extrapolate the radius axis to the
	// planet bounds.
	ExtendToCMB     bool `json:"extend_to_cmb"`
	ExtendToSurface bool `json:"extend_to_surface"`
}

// Standardize rewrites a gridded vendor dataset into canonical form in
// place: renames, unit scaling, attributes, ascending axes, derived depth
// coordinate and radius extension.
func Standardize(d *grid.Dataset, cfg StandardizeConfig) error {
	if err := cfg.Planet.validate(); err != nil {
		return fmt.Errorf("invalid standardize config: %w", err)
	}

	for from, to := range cfg.Renames {
		if err := d.Rename(from, to); err != nil {
			return err
		}
	}
	for _, name := range cfg.ScaleToMPS {
		scale, err := units.VelocityScale(units.KMPS, units.MPS)
		if err != nil {
			return err
		}
		if err := d.Scale(name, scale); err != nil {
			return err
		}
	}

	cfg.Model.apply(d)
	for name, attrs := range cfg.VarAttrs {
		v, err := d.Var(name)
		if err != nil {
			return err
		}
		v.Attrs = attrs
	}

	// Canonical axis order: everything ascending.
	if len(d.R) > 1 && d.R[0] > d.R[len(d.R)-1] {
		if err := d.Reverse(grid.DimR); err != nil {
			return err
		}
	}
	if len(d.Lat) > 1 && d.Lat[0] > d.Lat[len(d.Lat)-1] {
		if err := d.Reverse(grid.DimLat); err != nil {
			return err
		}
	}
	d.SortBipolar()
	if cfg.DropSeam {
		d.DropSeam()
	}

	if d.Depth == nil {
		d.Depth = make([]float64, len(d.R))
		for i, r := range d.R {
			d.Depth[i] = units.RadiusToDepth(cfg.Planet.EarthRadiusMeters, r)
		}
	}

	extendToPlanet(d, cfg.Planet, cfg.ExtendToCMB, cfg.ExtendToSurface)
	return nil
}

// extendToPlanet extrapolates the radius axis out to the core-mantle
// boundary and the surface, skipping either bound the model already
// reaches.
func extendToPlanet(d *grid.Dataset, p Planet, toCMB, toSurface bool) {
	if len(d.R) == 0 {
		return
	}
	extended := make([]float64, 0, len(d.R)+2)
	if toCMB && d.R[0] > p.CMBRadiusMeters {
		extended = append(extended, p.CMBRadiusMeters)
	}
	extended = append(extended, d.R...)
	if toSurface && d.R[len(d.R)-1] < p.EarthRadiusMeters {
		extended = append(extended, p.EarthRadiusMeters)
	}
	if len(extended) == len(d.R) {
		return
	}
	d.ExtendRadii(extended)
}
