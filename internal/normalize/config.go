// Package normalize converts vendor-specific tomography model layouts
// (raw text grids, whitespace tables, per-depth surface files, radial
// reference profiles) into the canonical grid representation: radius in
// metres ascending from the core-mantle boundary to the surface, latitude
// ascending in degrees, bipolar longitude ascending in degrees.
//
// Every reader takes an explicit config carrying the model metadata and
// the planet radii; there are no package-level constants.
package normalize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mantle-data/tomography.report/internal/grid"
)

// ModelInfo identifies a tomography model and its provenance. The fields
// become dataset-level attributes.
type ModelInfo struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	DOI       string `json:"doi"`
	Source    string `json:"source"`
}

func (m ModelInfo) apply(d *grid.Dataset) {
	d.ID = m.ID
	if d.Attrs == nil {
		d.Attrs = grid.Attrs{}
	}
	d.Attrs["id"] = m.ID
	d.Attrs["reference"] = m.Reference
	d.Attrs["doi"] = m.DOI
	d.Attrs["source"] = m.Source
}

// Planet carries the radii every normalizer needs. These are
// configuration values, never process-wide state.
type Planet struct {
	EarthRadiusMeters float64 `json:"earth_radius_meters"`
	CMBRadiusMeters   float64 `json:"cmb_radius_meters"`
}

func (p Planet) validate() error {
	if p.EarthRadiusMeters <= 0 {
		return fmt.Errorf("earth_radius_meters must be positive, got %v", p.EarthRadiusMeters)
	}
	if p.CMBRadiusMeters <= 0 || p.CMBRadiusMeters >= p.EarthRadiusMeters {
		return fmt.Errorf("cmb_radius_meters must be in (0, earth radius), got %v", p.CMBRadiusMeters)
	}
	return nil
}

// LoadConfig reads a reader config from a JSON file. Fields omitted from
// the JSON keep their zero values, so partial configs are safe; the
// reader's Validate catches anything required.
func LoadConfig(path string, cfg any) error {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return nil
}
