// Command normalize converts a vendor tomography model file into the
// canonical grid form and stores it in the dataset database. The reader
// config (model metadata, planet radii, vendor layout) comes from a JSON
// file.
//
// Formats:
//
//	block     raw value stream (-in), e.g. GAP_P4
//	table     whitespace table with header (-in), e.g. MITP08
//	surfaces  coordinates file (-in) plus per-depth surface files as args
//	profile   radial reference model (-in), written as JSON to -out
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/mantle-data/tomography.report/internal/grid"
	"github.com/mantle-data/tomography.report/internal/normalize"
	"github.com/mantle-data/tomography.report/internal/store"
)

func main() {
	format := flag.String("format", "", "input format: block, table, surfaces or profile")
	configPath := flag.String("config", "", "reader config JSON")
	in := flag.String("in", "", "input file (coordinates file for surfaces)")
	dbFile := flag.String("db", "tomography.db", "sqlite database path")
	out := flag.String("out", "", "output path for the profile format")
	flag.Parse()

	if *format == "" || *configPath == "" || *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	var d *grid.Dataset
	switch *format {
	case "block":
		var cfg normalize.BlockConfig
		mustLoadConfig(*configPath, &cfg)
		f := mustOpen(*in)
		defer f.Close()
		var err error
		if d, err = normalize.ReadBlock(f, cfg); err != nil {
			log.Fatalf("failed to read block model: %v", err)
		}

	case "table":
		var cfg normalize.TableConfig
		mustLoadConfig(*configPath, &cfg)
		f := mustOpen(*in)
		defer f.Close()
		var err error
		if d, err = normalize.ReadTable(f, cfg); err != nil {
			log.Fatalf("failed to read table model: %v", err)
		}

	case "surfaces":
		var cfg normalize.SurfacesConfig
		mustLoadConfig(*configPath, &cfg)
		var err error
		if d, err = normalize.ReadSurfaces(*in, flag.Args(), cfg); err != nil {
			log.Fatalf("failed to read surfaces model: %v", err)
		}

	case "profile":
		var cfg normalize.ProfileConfig
		mustLoadConfig(*configPath, &cfg)
		f := mustOpen(*in)
		defer f.Close()
		p, err := normalize.ReadProfile(f, cfg)
		if err != nil {
			log.Fatalf("failed to read profile model: %v", err)
		}
		if *out == "" {
			log.Fatal("profile format requires -out")
		}
		writeProfile(p, *out)
		log.Printf("✓ Wrote profile %s to %s", p.ID, *out)
		return

	default:
		log.Fatalf("unknown format %q", *format)
	}

	db, err := store.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	id, err := db.SaveDataset(d)
	if err != nil {
		log.Fatalf("failed to save dataset: %v", err)
	}
	log.Printf("✓ Saved %s as dataset %s (%d vars, %dx%dx%d grid)",
		d.ID, id, len(d.Vars), len(d.R), len(d.Lat), len(d.Lon))
}

func mustLoadConfig(path string, cfg any) {
	if err := normalize.LoadConfig(path, cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
}

func mustOpen(path string) *os.File {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open input: %v", err)
	}
	return f
}

func writeProfile(p *grid.Profile, path string) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode profile: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("failed to write profile: %v", err)
	}
}
