// Package store persists normalized tomography datasets in sqlite.
// Axis and variable values are stored as little-endian float64 blobs;
// attributes as JSON. One dataset per model id.
package store

import (
	"database/sql"
	_ "embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mantle-data/tomography.report/internal/grid"
)

//go:embed schema.sql
var schemaSQL string

type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the sqlite database at path and
// ensures the base schema exists. Schema evolution beyond the base
// tables runs through MigrateUp.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply base schema: %w", err)
	}
	return &DB{db}, nil
}

// DatasetInfo is one row of the dataset listing.
type DatasetInfo struct {
	DatasetID string `json:"dataset_id"`
	ModelID   string `json:"model_id"`
	CreatedAt string `json:"created_at"`
}

// Axis names used in the axes table. Dataset axes are identified by
// name, with position preserving their order.
const (
	axisR     = "r"
	axisLat   = "lat"
	axisLon   = "lon"
	axisDepth = "depth"
)

// SaveDataset stores a dataset and returns its generated id. An existing
// dataset with the same model id is replaced.
func (db *DB) SaveDataset(d *grid.Dataset) (string, error) {
	attrs, err := json.Marshal(d.Attrs)
	if err != nil {
		return "", fmt.Errorf("failed to encode dataset attrs: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	// Replace any prior version of this model.
	var oldID string
	err = tx.QueryRow("SELECT dataset_id FROM datasets WHERE model_id = ?", d.ID).Scan(&oldID)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return "", err
	default:
		if err := deleteDatasetTx(tx, oldID); err != nil {
			return "", err
		}
	}

	id := uuid.NewString()
	if _, err := tx.Exec(
		"INSERT INTO datasets (dataset_id, model_id, attrs) VALUES (?, ?, ?)",
		id, d.ID, string(attrs),
	); err != nil {
		return "", err
	}

	axes := []struct {
		name string
		vals []float64
	}{
		{axisR, d.R},
		{axisLat, d.Lat},
		{axisLon, d.Lon},
		{axisDepth, d.Depth},
	}
	for pos, ax := range axes {
		if ax.vals == nil {
			continue
		}
		if _, err := tx.Exec(
			"INSERT INTO axes (dataset_id, name, position, vals) VALUES (?, ?, ?, ?)",
			id, ax.name, pos, floatsToBlob(ax.vals),
		); err != nil {
			return "", err
		}
	}

	for _, name := range d.VarNames() {
		v := d.Vars[name]
		varAttrs, err := json.Marshal(v.Attrs)
		if err != nil {
			return "", fmt.Errorf("failed to encode attrs for variable %q: %w", name, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO variables (dataset_id, name, attrs, vals) VALUES (?, ?, ?, ?)",
			id, name, string(varAttrs), floatsToBlob(v.Grid.Raw()),
		); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// LoadDataset reconstructs a dataset by its id.
func (db *DB) LoadDataset(id string) (*grid.Dataset, error) {
	var modelID, attrsJSON string
	err := db.QueryRow(
		"SELECT model_id, attrs FROM datasets WHERE dataset_id = ?", id,
	).Scan(&modelID, &attrsJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no dataset with id %q", id)
	}
	if err != nil {
		return nil, err
	}

	var attrs grid.Attrs
	if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
		return nil, fmt.Errorf("failed to decode dataset attrs: %w", err)
	}

	axes := map[string][]float64{}
	rows, err := db.Query("SELECT name, vals FROM axes WHERE dataset_id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var blob []byte
		if err := rows.Scan(&name, &blob); err != nil {
			return nil, err
		}
		axes[name] = blobToFloats(blob)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, name := range []string{axisR, axisLat, axisLon} {
		if axes[name] == nil {
			return nil, fmt.Errorf("dataset %q is missing the %s axis", id, name)
		}
	}

	d := grid.NewDataset(modelID, axes[axisR], axes[axisLat], axes[axisLon])
	d.Attrs = attrs
	d.Depth = axes[axisDepth]

	vrows, err := db.Query("SELECT name, attrs, vals FROM variables WHERE dataset_id = ?", id)
	if err != nil {
		return nil, err
	}
	defer vrows.Close()
	for vrows.Next() {
		var name, varAttrsJSON string
		var blob []byte
		if err := vrows.Scan(&name, &varAttrsJSON, &blob); err != nil {
			return nil, err
		}
		var varAttrs grid.Attrs
		if err := json.Unmarshal([]byte(varAttrsJSON), &varAttrs); err != nil {
			return nil, fmt.Errorf("failed to decode attrs for variable %q: %w", name, err)
		}
		g, err := grid.Grid3FromRaw(len(d.R), len(d.Lat), len(d.Lon), blobToFloats(blob))
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		if err := d.AddVar(name, g, varAttrs); err != nil {
			return nil, err
		}
	}
	if err := vrows.Err(); err != nil {
		return nil, err
	}

	return d, nil
}

// FindDataset resolves a model id to its dataset id.
func (db *DB) FindDataset(modelID string) (string, error) {
	var id string
	err := db.QueryRow("SELECT dataset_id FROM datasets WHERE model_id = ?", modelID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no dataset for model %q", modelID)
	}
	return id, err
}

// ListDatasets returns all stored datasets, newest first.
func (db *DB) ListDatasets() ([]DatasetInfo, error) {
	rows, err := db.Query(
		"SELECT dataset_id, model_id, created_at FROM datasets ORDER BY created_at DESC, model_id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []DatasetInfo
	for rows.Next() {
		var info DatasetInfo
		if err := rows.Scan(&info.DatasetID, &info.ModelID, &info.CreatedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteDataset removes a dataset and all its axes and variables.
func (db *DB) DeleteDataset(id string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := deleteDatasetTx(tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteDatasetTx(tx *sql.Tx, id string) error {
	for _, stmt := range []string{
		"DELETE FROM variables WHERE dataset_id = ?",
		"DELETE FROM axes WHERE dataset_id = ?",
		"DELETE FROM datasets WHERE dataset_id = ?",
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			return err
		}
	}
	return nil
}

func floatsToBlob(vals []float64) []byte {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func blobToFloats(blob []byte) []float64 {
	vals := make([]float64, len(blob)/8)
	for i := range vals {
		vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return vals
}
