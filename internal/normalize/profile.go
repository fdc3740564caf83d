package normalize

import (
	"fmt"
	"io"
	"sort"

	"github.com/mantle-data/tomography.report/internal/grid"
	"github.com/mantle-data/tomography.report/internal/units"
)

// ProfileConfig describes a 1-D reference model: a whitespace table with
// a header line, one row per radius.
type ProfileConfig struct {
	Model  ModelInfo `json:"model"`
	Planet Planet    `json:"planet"`

	// RadiusCol names the radius column (metres).
	RadiusCol string `json:"radius_col"`

	// IsotropicPairs derives isotropic columns as the harmonic mean of a
	// (vertical, horizontal) pair, e.g. Vp from Vpv and Vph.
	IsotropicPairs map[string][2]string `json:"isotropic_pairs"`

	// ColumnAttrs holds attributes for the output columns.
	ColumnAttrs map[string]grid.Attrs `json:"column_attrs"`
}

// Validate checks the config before any parsing happens.
func (c *ProfileConfig) Validate() error {
	if err := c.Planet.validate(); err != nil {
		return err
	}
	if c.RadiusCol == "" {
		return fmt.Errorf("radius_col must be set")
	}
	return nil
}

// ReadProfile normalizes a radial reference model. Reference models carry
// first-order discontinuities as repeated radii with different values;
// those are nudged 0.1 m apart (lower value down, upper value up) so the
// radius axis stays strictly ascending and both sides of the
// discontinuity survive interpolation.
func ReadProfile(r io.Reader, cfg ProfileConfig) (*grid.Profile, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile config: %w", err)
	}

	t, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	radiusIdx, err := t.columnIndex(cfg.RadiusCol)
	if err != nil {
		return nil, err
	}

	// Sort rows by radius ascending before de-duplicating.
	rows := append([][]float64(nil), t.rows...)
	sort.SliceStable(rows, func(a, b int) bool { return rows[a][radiusIdx] < rows[b][radiusIdx] })

	radii := make([]float64, len(rows))
	for i, row := range rows {
		radii[i] = row[radiusIdx]
	}
	for i := 1; i < len(radii); i++ {
		if radii[i] == radii[i-1] {
			radii[i-1] -= 0.1
			radii[i] += 0.1
		}
	}
	for i := 1; i < len(radii); i++ {
		if radii[i] <= radii[i-1] {
			return nil, fmt.Errorf("radius axis not strictly ascending at row %d (%v after %v)",
				i, radii[i], radii[i-1])
		}
	}

	p := grid.NewProfile(cfg.Model.ID, radii)
	p.Attrs["id"] = cfg.Model.ID
	p.Attrs["reference"] = cfg.Model.Reference
	p.Attrs["doi"] = cfg.Model.DOI
	p.Attrs["source"] = cfg.Model.Source

	p.Depth = make([]float64, len(radii))
	for i, radius := range radii {
		p.Depth[i] = units.RadiusToDepth(cfg.Planet.EarthRadiusMeters, radius)
	}

	for colIdx, name := range t.columns {
		if colIdx == radiusIdx {
			continue
		}
		vals := make([]float64, len(rows))
		for i, row := range rows {
			vals[i] = row[colIdx]
		}
		if err := p.AddColumn(name, vals, cfg.ColumnAttrs[name]); err != nil {
			return nil, err
		}
	}

	for name, pair := range cfg.IsotropicPairs {
		v, ok := p.Columns[pair[0]]
		if !ok {
			return nil, fmt.Errorf("isotropic pair for %q references missing column %q", name, pair[0])
		}
		h, ok := p.Columns[pair[1]]
		if !ok {
			return nil, fmt.Errorf("isotropic pair for %q references missing column %q", name, pair[1])
		}
		vals := make([]float64, len(radii))
		for i := range vals {
			vals[i] = 2 / (1/v.Values[i] + 1/h.Values[i])
		}
		if err := p.AddColumn(name, vals, cfg.ColumnAttrs[name]); err != nil {
			return nil, err
		}
	}

	return p, nil
}
