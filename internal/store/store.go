// Package store persists imported parcel datasets. SQLite is the default
// backend for single-user runs; PostgreSQL is available for shared
// deployments. Geometries are stored as EWKB so either backend can round
// trip them byte for byte.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/masslots/parcelviz/internal/parcel"
)

// ErrNotFound is returned when a named dataset does not exist.
var ErrNotFound = eris.New("store: dataset not found")

// Dataset describes one imported parcel set.
type Dataset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	ValueField  string    `json:"value_field"`
	RecordCount int       `json:"record_count"`
	ETag        string    `json:"etag,omitempty"`
	ImportedAt  time.Time `json:"imported_at"`
}

// Store is the persistence interface for parcel datasets.
type Store interface {
	// SaveDataset stores the dataset metadata and its records,
	// replacing values for parcels already present under the same
	// dataset name.
	SaveDataset(ctx context.Context, ds Dataset, records []parcel.Record) (*Dataset, error)

	// GetDataset returns the metadata for a named dataset.
	GetDataset(ctx context.Context, name string) (*Dataset, error)

	// ListDatasets returns all datasets, newest first.
	ListDatasets(ctx context.Context) ([]Dataset, error)

	// LoadRecords returns every record of a named dataset.
	LoadRecords(ctx context.Context, name string) ([]parcel.Record, error)

	// DeleteDataset removes a dataset and its records.
	DeleteDataset(ctx context.Context, name string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// encodeGeom serializes a record geometry to EWKB.
func encodeGeom(r parcel.Record) ([]byte, error) {
	data, err := ewkb.Marshal(r.Geom, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrapf(err, "store: encode geometry for parcel %s", r.ID)
	}
	return data, nil
}

// decodeGeom deserializes an EWKB geometry blob.
func decodeGeom(id string, data []byte) (parcel.Record, error) {
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return parcel.Record{}, eris.Wrapf(err, "store: decode geometry for parcel %s", id)
	}
	return parcel.Record{ID: id, Geom: g}, nil
}
