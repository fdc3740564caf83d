package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantle-data/tomography.report/internal/grid"
	"github.com/mantle-data/tomography.report/internal/store"
)

func testServer(t *testing.T) (*Server, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewServer(db), db
}

func saveTestDataset(t *testing.T, db *store.DB) string {
	t.Helper()
	d := grid.NewDataset("MITP08",
		[]float64{3480e3, 5000e3, 6371e3},
		[]float64{-30, 0, 30},
		[]float64{-60, 0, 60})
	d.Attrs["reference"] = "Nobody et al. (2026)"
	g := grid.NewGrid3(3, 3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				g.Set(i, j, k, float64(i+j+k))
			}
		}
	}
	require.NoError(t, d.AddVar("dlnVp_percent", g, grid.Attrs{"units": "percent"}))
	id, err := db.SaveDataset(d)
	require.NoError(t, err)
	return id
}

func TestListDatasets(t *testing.T) {
	s, db := testServer(t)
	mux := s.ServeMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/datasets", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "[]\n", rec.Body.String())

	saveTestDataset(t, db)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/datasets", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []store.DatasetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "MITP08", infos[0].ModelID)
}

func TestListDatasetsMethodNotAllowed(t *testing.T) {
	s, _ := testServer(t)
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/datasets", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDatasetDetail(t *testing.T) {
	s, db := testServer(t)
	id := saveTestDataset(t, db)
	mux := s.ServeMux()

	for _, key := range []string{id, "MITP08"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/datasets/"+key, nil))
		require.Equal(t, http.StatusOK, rec.Code, "key %q", key)

		var detail struct {
			ModelID   string            `json:"model_id"`
			Attrs     map[string]string `json:"attrs"`
			Variables []string          `json:"variables"`
			R         struct {
				Len int     `json:"len"`
				Min float64 `json:"min"`
				Max float64 `json:"max"`
			} `json:"r"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		assert.Equal(t, "MITP08", detail.ModelID)
		assert.Equal(t, "Nobody et al. (2026)", detail.Attrs["reference"])
		assert.Equal(t, []string{"dlnVp_percent"}, detail.Variables)
		assert.Equal(t, 3, detail.R.Len)
		assert.Equal(t, 3480e3, detail.R.Min)
		assert.Equal(t, 6371e3, detail.R.Max)
	}
}

func TestDatasetDetailNotFound(t *testing.T) {
	s, _ := testServer(t)
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/datasets/absent", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSectionPNG(t *testing.T) {
	s, db := testServer(t)
	saveTestDataset(t, db)

	rec := httptest.NewRecorder()
	url := "/xsection.png?dataset=MITP08&var=dlnVp_percent&g0=-40,0&g1=40,0&res=2&nr=20"
	s.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestSectionPNGBadRequest(t *testing.T) {
	s, db := testServer(t)
	saveTestDataset(t, db)
	mux := s.ServeMux()

	for name, url := range map[string]string{
		"missing dataset": "/xsection.png?var=dlnVp_percent&g0=0,0&g1=10,0",
		"missing var":     "/xsection.png?dataset=MITP08&g0=0,0&g1=10,0",
		"bad g0":          "/xsection.png?dataset=MITP08&var=dlnVp_percent&g0=oops&g1=10,0",
		"absent var":      "/xsection.png?dataset=MITP08&var=absent&g0=0,0&g1=10,0",
		"coincident":      "/xsection.png?dataset=MITP08&var=dlnVp_percent&g0=5,5&g1=5,5",
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSectionHTML(t *testing.T) {
	s, db := testServer(t)
	saveTestDataset(t, db)

	rec := httptest.NewRecorder()
	url := "/xsection.html?dataset=MITP08&var=dlnVp_percent&g0=-40,0&g1=40,0&res=2&nr=10"
	s.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "echarts")
}

func TestPathPreview(t *testing.T) {
	s, _ := testServer(t)
	mux := s.ServeMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/path?g0=170,10&g1=-170,20&res=1", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "echarts")

	// Antipodal endpoints have no unique great circle.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/path?g0=0,0&g1=180,0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseGeo(t *testing.T) {
	g, err := parseGeo("120.5, -45")
	require.NoError(t, err)
	assert.Equal(t, 120.5, g[0])
	assert.Equal(t, -45.0, g[1])

	_, err = parseGeo("120.5")
	assert.Error(t, err)
	_, err = parseGeo("a,b")
	assert.Error(t, err)
}

func TestHome(t *testing.T) {
	s, _ := testServer(t)
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tomography")
}
