package normalize

import (
	"fmt"
	"io"

	"github.com/mantle-data/tomography.report/internal/grid"
	"github.com/mantle-data/tomography.report/internal/units"
)

// TableConfig describes a whitespace table model: a header line naming
// the columns, then one row per grid point carrying its own coordinates.
type TableConfig struct {
	Model  ModelInfo `json:"model"`
	Planet Planet    `json:"planet"`

	// Column names in the vendor header.
	LatCol   string `json:"lat_col"`
	LonCol   string `json:"lon_col"`
	DepthCol string `json:"depth_col"`

	// Vars maps vendor column names to canonical variable names.
	Vars map[string]string `json:"vars"`

	// VarAttrs holds attributes for the canonical variables.
	VarAttrs map[string]grid.Attrs `json:"var_attrs"`
}

// Validate checks the config before any parsing happens.
func (c *TableConfig) Validate() error {
	if err := c.Planet.validate(); err != nil {
		return err
	}
	if c.LatCol == "" || c.LonCol == "" || c.DepthCol == "" {
		return fmt.Errorf("lat_col, lon_col and depth_col must all be set")
	}
	if len(c.Vars) == 0 {
		return fmt.Errorf("vars must not be empty")
	}
	return nil
}

// ReadTable normalizes a coordinate-per-row table model into a canonical
// dataset. The table must cover the full (lat, lon, depth) product; a
// sparse table is an error, not a partial grid.
func ReadTable(r io.Reader, cfg TableConfig) (*grid.Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table config: %w", err)
	}

	t, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	latIdx, err := t.columnIndex(cfg.LatCol)
	if err != nil {
		return nil, err
	}
	lonIdx, err := t.columnIndex(cfg.LonCol)
	if err != nil {
		return nil, err
	}
	depthIdx, err := t.columnIndex(cfg.DepthCol)
	if err != nil {
		return nil, err
	}

	lats, err := t.column(cfg.LatCol)
	if err != nil {
		return nil, err
	}
	lons, err := t.column(cfg.LonCol)
	if err != nil {
		return nil, err
	}
	depths, err := t.column(cfg.DepthCol)
	if err != nil {
		return nil, err
	}

	latAxis := uniqueSorted(lats)
	lonAxis := uniqueSorted(lons)
	depthAxis := uniqueSorted(depths)

	if want := len(latAxis) * len(lonAxis) * len(depthAxis); len(t.rows) != want {
		return nil, fmt.Errorf("table has %d rows, want %d (%d lat x %d lon x %d depth)",
			len(t.rows), want, len(latAxis), len(lonAxis), len(depthAxis))
	}

	// Depths ascending means radii descending; build in that order and
	// reverse below.
	radii := make([]float64, len(depthAxis))
	for i, depth := range depthAxis {
		radii[i] = units.DepthToRadius(cfg.Planet.EarthRadiusMeters, depth)
	}

	latOf := indexOf(latAxis)
	lonOf := indexOf(lonAxis)
	depthOf := indexOf(depthAxis)

	d := grid.NewDataset(cfg.Model.ID, radii, latAxis, lonAxis)
	d.Depth = append([]float64(nil), depthAxis...)
	cfg.Model.apply(d)

	for vendorCol, name := range cfg.Vars {
		colIdx, err := t.columnIndex(vendorCol)
		if err != nil {
			return nil, err
		}
		g := grid.NewGrid3(len(radii), len(latAxis), len(lonAxis))
		for _, row := range t.rows {
			i := depthOf[row[depthIdx]]
			j := latOf[row[latIdx]]
			k := lonOf[row[lonIdx]]
			g.Set(i, j, k, row[colIdx])
		}
		if err := d.AddVar(name, g, cfg.VarAttrs[name]); err != nil {
			return nil, err
		}
	}

	if err := d.Reverse(grid.DimR); err != nil {
		return nil, err
	}
	d.SortBipolar()
	extendToPlanet(d, cfg.Planet, true, true)

	return d, nil
}
