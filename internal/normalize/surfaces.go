package normalize

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/mantle-data/tomography.report/internal/grid"
	"github.com/mantle-data/tomography.report/internal/units"
)

// SurfacesConfig describes a model delivered as one coordinates file plus
// a set of per-depth "surface" files, each carrying values for every
// surface point.
type SurfacesConfig struct {
	Model  ModelInfo `json:"model"`
	Planet Planet    `json:"planet"`

	// CoordColumns names the columns of the coordinates file in order.
	// LatCol/LonCol select which of them carry the grid coordinates.
	CoordColumns []string `json:"coord_columns"`
	LatCol       string   `json:"lat_col"`
	LonCol       string   `json:"lon_col"`

	// SurfaceColumns names the columns of each surface file in order.
	// RadiusCol is the per-point radius in km; Vars maps surface columns
	// to canonical variable names.
	SurfaceColumns []string          `json:"surface_columns"`
	RadiusCol      string            `json:"radius_col"`
	Vars           map[string]string `json:"vars"`

	// VarAttrs holds attributes for the canonical variables.
	VarAttrs map[string]grid.Attrs `json:"var_attrs"`
}

// Validate checks the config before any parsing happens.
func (c *SurfacesConfig) Validate() error {
	if err := c.Planet.validate(); err != nil {
		return err
	}
	if len(c.CoordColumns) == 0 || len(c.SurfaceColumns) == 0 {
		return fmt.Errorf("coord_columns and surface_columns must be set")
	}
	if c.LatCol == "" || c.LonCol == "" || c.RadiusCol == "" {
		return fmt.Errorf("lat_col, lon_col and radius_col must all be set")
	}
	if len(c.Vars) == 0 {
		return fmt.Errorf("vars must not be empty")
	}
	return nil
}

var surfaceIndexRe = regexp.MustCompile(`(\d+)`)

// surfaceIndex extracts the last integer in a filename, used to order the
// per-depth surface files from shallow to deep.
func surfaceIndex(path string) (int, error) {
	matches := surfaceIndexRe.FindAllString(path, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("surface file %q has no numeric index", path)
	}
	return strconv.Atoi(matches[len(matches)-1])
}

// ReadSurfaces normalizes a coordinates-plus-surfaces model into a
// canonical dataset. Each surface file holds one depth layer; its radius
// is the mean of the per-point radii (the grid is spherical, the source
// spheroidal), and duplicate layer radii are nudged 100 m apart so phase
// transitions survive as separate layers.
func ReadSurfaces(coordsPath string, surfacePaths []string, cfg SurfacesConfig) (*grid.Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid surfaces config: %w", err)
	}
	if len(surfacePaths) == 0 {
		return nil, fmt.Errorf("no surface files given")
	}

	// Order the surface files by their numeric index.
	paths := append([]string(nil), surfacePaths...)
	var sortErr error
	sort.Slice(paths, func(a, b int) bool {
		ia, err := surfaceIndex(paths[a])
		if err != nil {
			sortErr = err
		}
		ib, err := surfaceIndex(paths[b])
		if err != nil {
			sortErr = err
		}
		return ia < ib
	})
	if sortErr != nil {
		return nil, sortErr
	}

	lats, lons, err := readCoords(coordsPath, cfg)
	if err != nil {
		return nil, err
	}
	latAxis := uniqueSorted(lats)
	lonAxis := uniqueSorted(lons)
	if want := len(latAxis) * len(lonAxis); len(lats) != want {
		return nil, fmt.Errorf("coordinates file has %d points, want %d (%d lat x %d lon)",
			len(lats), want, len(latAxis), len(lonAxis))
	}
	latOf := indexOf(latAxis)
	lonOf := indexOf(lonAxis)

	radiusIdx := -1
	for i, c := range cfg.SurfaceColumns {
		if c == cfg.RadiusCol {
			radiusIdx = i
		}
	}
	if radiusIdx < 0 {
		return nil, fmt.Errorf("surface_columns has no %q column", cfg.RadiusCol)
	}

	type layer struct {
		radius float64
		values map[string][]float64 // canonical name -> per-point values
	}
	layers := make([]layer, 0, len(paths))
	previousRadius := 0.0

	for _, path := range paths {
		rows, err := readSurfaceRows(path, len(cfg.SurfaceColumns))
		if err != nil {
			return nil, err
		}
		if len(rows) != len(lats) {
			return nil, fmt.Errorf("surface %q has %d rows, coordinates file has %d points",
				path, len(rows), len(lats))
		}

		// Mean radius of the layer, km to metres.
		var sum float64
		for _, row := range rows {
			sum += row[radiusIdx]
		}
		radius := sum / float64(len(rows)) * 1e3
		if radius == previousRadius {
			radius += 100
		}
		previousRadius = radius

		l := layer{radius: radius, values: map[string][]float64{}}
		for i, col := range cfg.SurfaceColumns {
			name, ok := cfg.Vars[col]
			if !ok {
				continue
			}
			vals := make([]float64, len(rows))
			for p, row := range rows {
				vals[p] = row[i]
			}
			l.values[name] = vals
		}
		layers = append(layers, l)
	}

	// Radii ascending, CMB side first.
	sort.Slice(layers, func(a, b int) bool { return layers[a].radius < layers[b].radius })

	radii := make([]float64, len(layers))
	for i, l := range layers {
		radii[i] = l.radius
	}

	d := grid.NewDataset(cfg.Model.ID, radii, latAxis, lonAxis)
	cfg.Model.apply(d)
	d.Depth = make([]float64, len(radii))
	for i, r := range radii {
		d.Depth[i] = units.RadiusToDepth(cfg.Planet.EarthRadiusMeters, r)
	}

	for _, name := range sortedVarNames(cfg.Vars) {
		g := grid.NewGrid3(len(radii), len(latAxis), len(lonAxis))
		for i, l := range layers {
			vals := l.values[name]
			for p := range vals {
				g.Set(i, latOf[lats[p]], lonOf[lons[p]], vals[p])
			}
		}
		if err := d.AddVar(name, g, cfg.VarAttrs[name]); err != nil {
			return nil, err
		}
	}

	d.SortBipolar()
	d.DropSeam()
	extendToPlanet(d, cfg.Planet, false, true)

	return d, nil
}

// readCoords loads the lat/lon columns of the coordinates file.
func readCoords(path string, cfg SurfacesConfig) (lats, lons []float64, err error) {
	rows, err := readSurfaceRows(path, len(cfg.CoordColumns))
	if err != nil {
		return nil, nil, err
	}
	latIdx, lonIdx := -1, -1
	for i, c := range cfg.CoordColumns {
		switch c {
		case cfg.LatCol:
			latIdx = i
		case cfg.LonCol:
			lonIdx = i
		}
	}
	if latIdx < 0 || lonIdx < 0 {
		return nil, nil, fmt.Errorf("coord_columns has no %q or %q column", cfg.LatCol, cfg.LonCol)
	}
	lats = make([]float64, len(rows))
	lons = make([]float64, len(rows))
	for i, row := range rows {
		lats[i] = row[latIdx]
		lons[i] = row[lonIdx]
	}
	return lats, lons, nil
}

// readSurfaceRows loads a headerless whitespace file with a fixed column
// count.
func readSurfaceRows(path string, ncols int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	vals, err := scanFloats(f)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}
	if len(vals)%ncols != 0 {
		return nil, fmt.Errorf("%q has %d values, not a multiple of %d columns", path, len(vals), ncols)
	}
	rows := make([][]float64, len(vals)/ncols)
	for i := range rows {
		rows[i] = vals[i*ncols : (i+1)*ncols]
	}
	return rows, nil
}

// sortedVarNames returns the canonical variable names in sorted order for
// deterministic dataset construction.
func sortedVarNames(vars map[string]string) []string {
	names := make([]string, 0, len(vars))
	for _, name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
