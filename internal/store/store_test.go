package store

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantle-data/tomography.report/internal/grid"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testDataset(id string) *grid.Dataset {
	d := grid.NewDataset(id, []float64{3480e3, 5000e3, 6371e3}, []float64{-10, 0, 10}, []float64{-90, 0, 90, 180})
	d.Attrs["reference"] = "Nobody et al. (2026)"
	d.Depth = []float64{2891, 1371, 0}
	g := grid.NewGrid3(3, 3, 4)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 4; k++ {
				g.Set(i, j, k, float64(100*i+10*j+k))
			}
		}
	}
	d.AddVar("dlnVp_percent", g, grid.Attrs{"units": "percent"})
	return d
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	d := testDataset("MITP08")

	id, err := db.SaveDataset(d)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := db.LoadDataset(id)
	require.NoError(t, err)

	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, d.Attrs, got.Attrs)
	assert.Empty(t, cmp.Diff(d.R, got.R))
	assert.Empty(t, cmp.Diff(d.Lat, got.Lat))
	assert.Empty(t, cmp.Diff(d.Lon, got.Lon))
	assert.Empty(t, cmp.Diff(d.Depth, got.Depth))

	v, err := got.Var("dlnVp_percent")
	require.NoError(t, err)
	assert.Equal(t, "percent", v.Attrs["units"])
	assert.Empty(t, cmp.Diff(d.Vars["dlnVp_percent"].Grid.Raw(), v.Grid.Raw()))
}

func TestSaveReplacesModel(t *testing.T) {
	db := openTestDB(t)

	first, err := db.SaveDataset(testDataset("GAP_P4"))
	require.NoError(t, err)
	second, err := db.SaveDataset(testDataset("GAP_P4"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	infos, err := db.ListDatasets()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, second, infos[0].DatasetID)

	_, err = db.LoadDataset(first)
	assert.Error(t, err)
}

func TestFindDataset(t *testing.T) {
	db := openTestDB(t)

	id, err := db.SaveDataset(testDataset("LLNL_G3D_JPS"))
	require.NoError(t, err)

	got, err := db.FindDataset("LLNL_G3D_JPS")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = db.FindDataset("absent")
	assert.Error(t, err)
}

func TestListDatasets(t *testing.T) {
	db := openTestDB(t)

	infos, err := db.ListDatasets()
	require.NoError(t, err)
	assert.Empty(t, infos)

	_, err = db.SaveDataset(testDataset("MITP08"))
	require.NoError(t, err)
	_, err = db.SaveDataset(testDataset("GAP_P4"))
	require.NoError(t, err)

	infos, err = db.ListDatasets()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	models := []string{infos[0].ModelID, infos[1].ModelID}
	assert.ElementsMatch(t, []string{"MITP08", "GAP_P4"}, models)
}

func TestDeleteDataset(t *testing.T) {
	db := openTestDB(t)

	id, err := db.SaveDataset(testDataset("SEMUCB_WM1"))
	require.NoError(t, err)
	require.NoError(t, db.DeleteDataset(id))

	_, err = db.LoadDataset(id)
	assert.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM variables").Scan(&count))
	assert.Zero(t, count)
}

func TestMigrateUp(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.MigrateUp("migrations"))
	version, dirty, err := db.MigrateVersion("migrations")
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)

	// A second run is a no-op.
	require.NoError(t, db.MigrateUp("migrations"))
}

func TestBlobRoundTrip(t *testing.T) {
	vals := []float64{0, -1.5, 3.25e9, 6371e3}
	assert.Equal(t, vals, blobToFloats(floatsToBlob(vals)))
	assert.Empty(t, blobToFloats(nil))
}
