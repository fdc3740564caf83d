// Package api exposes the HTTP surface of the tomography server:
// dataset listings, cross-section rendering and debug previews.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mantle-data/tomography.report/internal/grid"
	"github.com/mantle-data/tomography.report/internal/plotter"
	"github.com/mantle-data/tomography.report/internal/sphere"
	"github.com/mantle-data/tomography.report/internal/store"
	"github.com/mantle-data/tomography.report/internal/xsection"
)

type Server struct {
	db *store.DB
}

func NewServer(db *store.DB) *Server {
	return &Server{db: db}
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/datasets", s.listDatasets)
	mux.HandleFunc("/datasets/", s.datasetDetail)
	mux.HandleFunc("/xsection.png", s.sectionPNG)
	mux.HandleFunc("/xsection.html", s.sectionHTML)
	mux.HandleFunc("/path", s.pathPreview)
	mux.HandleFunc("/", s.homeHandler)
	return mux
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Welcome to the Tomography Server!"))
}

func (s *Server) listDatasets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	infos, err := s.db.ListDatasets()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list datasets: %v", err), http.StatusInternalServerError)
		return
	}
	if infos == nil {
		infos = []store.DatasetInfo{}
	}
	writeJSON(w, infos)
}

// datasetDetail returns a dataset summary: attributes, axis extents and
// variable names. The path element may be a dataset id or a model id.
func (s *Server) datasetDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/datasets/")
	if key == "" || strings.Contains(key, "/") {
		http.Error(w, "Dataset not found", http.StatusNotFound)
		return
	}

	d, err := s.loadDataset(key)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load dataset: %v", err), http.StatusNotFound)
		return
	}

	type axisSummary struct {
		Len int     `json:"len"`
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}
	summarize := func(vals []float64) axisSummary {
		if len(vals) == 0 {
			return axisSummary{}
		}
		return axisSummary{Len: len(vals), Min: vals[0], Max: vals[len(vals)-1]}
	}

	writeJSON(w, map[string]any{
		"model_id":  d.ID,
		"attrs":     d.Attrs,
		"r":         summarize(d.R),
		"lat":       summarize(d.Lat),
		"lon":       summarize(d.Lon),
		"variables": d.VarNames(),
	})
}

func (s *Server) sectionPNG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	d, p, err := s.sectionParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	section, err := xsection.Build(d, p)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to build section: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	title := fmt.Sprintf("%s %s", d.ID, p.Var)
	if err := plotter.WriteSectionPNG(section, title, w); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render section: %v", err), http.StatusInternalServerError)
		return
	}
}

func (s *Server) sectionHTML(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	d, p, err := s.sectionParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	section, err := xsection.Build(d, p)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to build section: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title := fmt.Sprintf("%s %s", d.ID, p.Var)
	if err := plotter.WriteSectionHTML(section, title, 0, w); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render section: %v", err), http.StatusInternalServerError)
		return
	}
}

// pathPreview renders the great-circle path between g0 and g1 without
// touching any dataset.
func (s *Server) pathPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	g0, err := parseGeo(r.URL.Query().Get("g0"))
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid g0: %v", err), http.StatusBadRequest)
		return
	}
	g1, err := parseGeo(r.URL.Query().Get("g1"))
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid g1: %v", err), http.StatusBadRequest)
		return
	}
	res := 1.0
	if v := r.URL.Query().Get("res"); v != "" {
		if res, err = strconv.ParseFloat(v, 64); err != nil {
			http.Error(w, fmt.Sprintf("Invalid res: %v", err), http.StatusBadRequest)
			return
		}
	}

	path, err := sphere.GreatCirclePath(g0, g1, res)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to build path: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title := fmt.Sprintf("Great circle %v to %v", g0, g1)
	if err := plotter.WritePathHTML(path, title, w); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render path: %v", err), http.StatusInternalServerError)
		return
	}
}

// sectionParams loads the dataset and assembles xsection.Params from the
// request query.
func (s *Server) sectionParams(r *http.Request) (d *grid.Dataset, p xsection.Params, err error) {
	q := r.URL.Query()

	key := q.Get("dataset")
	if key == "" {
		return nil, p, fmt.Errorf("missing dataset parameter")
	}
	d, err = s.loadDataset(key)
	if err != nil {
		return nil, p, fmt.Errorf("failed to load dataset: %v", err)
	}

	p.Var = q.Get("var")
	if p.Var == "" {
		return nil, p, fmt.Errorf("missing var parameter")
	}

	if p.Start, err = parseGeo(q.Get("g0")); err != nil {
		return nil, p, fmt.Errorf("invalid g0: %v", err)
	}
	if p.End, err = parseGeo(q.Get("g1")); err != nil {
		return nil, p, fmt.Errorf("invalid g1: %v", err)
	}

	p.ResDeg = 1
	if v := q.Get("res"); v != "" {
		if p.ResDeg, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, p, fmt.Errorf("invalid res: %v", err)
		}
	}
	p.NR = 200
	if v := q.Get("nr"); v != "" {
		if p.NR, err = strconv.Atoi(v); err != nil {
			return nil, p, fmt.Errorf("invalid nr: %v", err)
		}
	}
	return d, p, nil
}

// loadDataset resolves key as a dataset id first, then as a model id.
func (s *Server) loadDataset(key string) (*grid.Dataset, error) {
	d, err := s.db.LoadDataset(key)
	if err == nil {
		return d, nil
	}
	id, ferr := s.db.FindDataset(key)
	if ferr != nil {
		return nil, err
	}
	return s.db.LoadDataset(id)
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

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}
