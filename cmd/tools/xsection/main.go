// Command xsection renders a great-circle cross-section of a stored
// dataset to a PNG file.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/mantle-data/tomography.report/internal/plotter"
	"github.com/mantle-data/tomography.report/internal/sphere"
	"github.com/mantle-data/tomography.report/internal/store"
	"github.com/mantle-data/tomography.report/internal/xsection"
)

func main() {
	dbFile := flag.String("db", "tomography.db", "sqlite database path")
	dataset := flag.String("dataset", "", "dataset id or model id")
	varName := flag.String("var", "dlnVp_percent", "variable to sample")
	g0 := flag.String("g0", "", "start point as lon,lat in degrees")
	g1 := flag.String("g1", "", "end point as lon,lat in degrees")
	res := flag.Float64("res", 1, "angular resolution in degrees per sample")
	nr := flag.Int("nr", 200, "number of radial samples")
	rMin := flag.Float64("rmin", 0, "minimum radius in metres (default: dataset bottom)")
	rMax := flag.Float64("rmax", 0, "maximum radius in metres (default: dataset top)")
	out := flag.String("out", "section.png", "output PNG path")
	flag.Parse()

	if *dataset == "" || *g0 == "" || *g1 == "" {
		flag.Usage()
		log.Fatal("dataset, g0 and g1 are required")
	}

	start, err := parseGeo(*g0)
	if err != nil {
		log.Fatalf("invalid g0: %v", err)
	}
	end, err := parseGeo(*g1)
	if err != nil {
		log.Fatalf("invalid g1: %v", err)
	}

	db, err := store.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	id := *dataset
	if _, err := db.LoadDataset(id); err != nil {
		if id, err = db.FindDataset(*dataset); err != nil {
			log.Fatalf("failed to resolve dataset: %v", err)
		}
	}
	d, err := db.LoadDataset(id)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}

	section, err := xsection.Build(d, xsection.Params{
		Start:  start,
		End:    end,
		ResDeg: *res,
		RMin:   *rMin,
		RMax:   *rMax,
		NR:     *nr,
		Var:    *varName,
	})
	if err != nil {
		log.Fatalf("failed to build section: %v", err)
	}

	title := fmt.Sprintf("%s %s", d.ID, *varName)
	if err := plotter.SaveSectionPNG(section, title, *out); err != nil {
		log.Fatalf("failed to render section: %v", err)
	}
	log.Printf("✓ Created: %s (%.1f deg, %d x %d samples)", *out, section.Angle, len(section.R), len(section.Theta))
}

// parseGeo parses a "lon,lat" pair in degrees.
func parseGeo(s string) (sphere.Vec2, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return sphere.Vec2{}, fmt.Errorf("want lon,lat, got %q", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return sphere.Vec2{}, err
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return sphere.Vec2{}, err
	}
	return sphere.Vec2{lon, lat}, nil
}
