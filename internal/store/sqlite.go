package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/masslots/parcelviz/internal/parcel"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS datasets (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	source       TEXT NOT NULL,
	value_field  TEXT NOT NULL,
	record_count INTEGER NOT NULL DEFAULT 0,
	etag         TEXT,
	imported_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS parcels (
	dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	parcel_id  TEXT NOT NULL,
	value      REAL NOT NULL,
	geom       BLOB NOT NULL,
	PRIMARY KEY (dataset_id, parcel_id)
);

CREATE INDEX IF NOT EXISTS idx_parcels_dataset_id ON parcels(dataset_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDataset(ctx context.Context, ds Dataset, records []parcel.Record) (*Dataset, error) {
	if ds.ID == "" {
		ds.ID = uuid.New().String()
	}
	ds.RecordCount = len(records)
	ds.ImportedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	// Re-importing under the same name replaces the whole dataset.
	if _, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, ds.Name); err != nil {
		return nil, eris.Wrapf(err, "sqlite: replace dataset %s", ds.Name)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO datasets (id, name, source, value_field, record_count, etag, imported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ds.ID, ds.Name, ds.Source, ds.ValueField, ds.RecordCount, ds.ETag, ds.ImportedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert dataset %s", ds.Name)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO parcels (dataset_id, parcel_id, value, geom) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare parcel insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range records {
		geomBlob, err := encodeGeom(r)
		if err != nil {
			return nil, err
		}
		if _, err := stmt.ExecContext(ctx, ds.ID, r.ID, r.Value, geomBlob); err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert parcel %s", r.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit tx")
	}

	zap.L().Info("store: dataset saved",
		zap.String("backend", "sqlite"),
		zap.String("dataset", ds.Name),
		zap.Int("records", ds.RecordCount),
	)
	return &ds, nil
}

func (s *SQLiteStore) GetDataset(ctx context.Context, name string) (*Dataset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, source, value_field, record_count, COALESCE(etag, ''), imported_at
		 FROM datasets WHERE name = ?`, name)

	var ds Dataset
	err := row.Scan(&ds.ID, &ds.Name, &ds.Source, &ds.ValueField, &ds.RecordCount, &ds.ETag, &ds.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: dataset %q", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get dataset %s", name)
	}
	return &ds, nil
}

func (s *SQLiteStore) ListDatasets(ctx context.Context) ([]Dataset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source, value_field, record_count, COALESCE(etag, ''), imported_at
		 FROM datasets ORDER BY imported_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list datasets")
	}
	defer rows.Close() //nolint:errcheck

	var out []Dataset
	for rows.Next() {
		var ds Dataset
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.Source, &ds.ValueField, &ds.RecordCount, &ds.ETag, &ds.ImportedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan dataset")
		}
		out = append(out, ds)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate datasets")
}

func (s *SQLiteStore) LoadRecords(ctx context.Context, name string) ([]parcel.Record, error) {
	ds, err := s.GetDataset(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT parcel_id, value, geom FROM parcels WHERE dataset_id = ?`, ds.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load records for %s", name)
	}
	defer rows.Close() //nolint:errcheck

	var records []parcel.Record
	for rows.Next() {
		var (
			id    string
			value float64
			blob  []byte
		)
		if err := rows.Scan(&id, &value, &blob); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan parcel")
		}
		rec, err := decodeGeom(id, blob)
		if err != nil {
			return nil, err
		}
		rec.Value = value
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: iterate parcels")
}

func (s *SQLiteStore) DeleteDataset(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, name)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete dataset %s", name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: dataset %q", name)
	}
	return nil
}
