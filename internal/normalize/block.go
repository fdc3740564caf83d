package normalize

import (
	"fmt"
	"io"

	"github.com/mantle-data/tomography.report/internal/grid"
	"github.com/mantle-data/tomography.report/internal/units"
)

// BlockConfig describes a raw block-text model: a bare stream of values
// ordered layer-by-layer, latitude from the north pole down, longitude
// from 0 to 360, with the grid geometry documented in the vendor README
// rather than the file itself.
type BlockConfig struct {
	Model  ModelInfo `json:"model"`
	Planet Planet    `json:"planet"`

	NLat int `json:"nlat"`
	NLon int `json:"nlon"`

	// DepthsKm are the layer midpoint depths, shallowest first.
	DepthsKm []float64 `json:"depths_km"`

	// VarName and VarLongName describe the single variable the block
	// carries, e.g. dlnVp_percent / "P-wave velocity perturbation".
	VarName     string `json:"var_name"`
	VarLongName string `json:"var_long_name"`
}

// Validate checks the config before any parsing happens.
func (c *BlockConfig) Validate() error {
	if err := c.Planet.validate(); err != nil {
		return err
	}
	if c.NLat <= 0 || c.NLon <= 0 {
		return fmt.Errorf("nlat and nlon must be positive, got %d and %d", c.NLat, c.NLon)
	}
	if len(c.DepthsKm) == 0 {
		return fmt.Errorf("depths_km must not be empty")
	}
	if c.VarName == "" {
		return fmt.Errorf("var_name must be set")
	}
	return nil
}

// ReadBlock normalizes a raw block-text model into a canonical dataset.
func ReadBlock(r io.Reader, cfg BlockConfig) (*grid.Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid block config: %w", err)
	}

	vals, err := scanFloats(r)
	if err != nil {
		return nil, fmt.Errorf("read block values: %w", err)
	}
	nlayers := len(cfg.DepthsKm)
	if want := nlayers * cfg.NLat * cfg.NLon; len(vals) != want {
		return nil, fmt.Errorf("block has %d values, want %d (%d layers x %d lat x %d lon)",
			len(vals), want, nlayers, cfg.NLat, cfg.NLon)
	}

	// Axes in file order: radii surface-down, block-centre latitudes from
	// the north pole down, block-centre longitudes from 0 to 360.
	radii := make([]float64, nlayers)
	depths := make([]float64, nlayers)
	for i, depth := range cfg.DepthsKm {
		depths[i] = depth
		radii[i] = units.DepthToRadius(cfg.Planet.EarthRadiusMeters, depth)
	}
	lats := make([]float64, cfg.NLat)
	for j := range lats {
		lats[j] = 90 - (float64(j)+0.5)*180/float64(cfg.NLat)
	}
	lons := make([]float64, cfg.NLon)
	for k := range lons {
		lons[k] = (float64(k) + 0.5) * 360 / float64(cfg.NLon)
	}

	// The value stream is already in (layer, lat, lon) order, which is
	// the grid's native layout.
	g, err := grid.Grid3FromRaw(nlayers, cfg.NLat, cfg.NLon, vals)
	if err != nil {
		return nil, err
	}

	d := grid.NewDataset(cfg.Model.ID, radii, lats, lons)
	d.Depth = depths
	cfg.Model.apply(d)
	attrs := grid.Attrs{"long_name": cfg.VarLongName, "units": units.Percent}
	if err := d.AddVar(cfg.VarName, g, attrs); err != nil {
		return nil, err
	}

	// Into canonical order: latitudes ascending, radii CMB to surface,
	// bipolar longitudes, then extrapolate to the surface and the CMB.
	if err := d.Reverse(grid.DimLat); err != nil {
		return nil, err
	}
	if err := d.Reverse(grid.DimR); err != nil {
		return nil, err
	}
	d.SortBipolar()
	extendToPlanet(d, cfg.Planet, true, true)

	return d, nil
}
