package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/masslots/parcelviz/internal/db"
	"github.com/masslots/parcelviz/internal/parcel"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS datasets (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name         TEXT NOT NULL UNIQUE,
	source       TEXT NOT NULL,
	value_field  TEXT NOT NULL,
	record_count INTEGER NOT NULL DEFAULT 0,
	etag         TEXT,
	imported_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS parcels (
	dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	parcel_id  TEXT NOT NULL,
	value      DOUBLE PRECISION NOT NULL,
	geom       BYTEA NOT NULL,
	PRIMARY KEY (dataset_id, parcel_id)
);

CREATE INDEX IF NOT EXISTS idx_parcels_dataset_id ON parcels(dataset_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveDataset(ctx context.Context, ds Dataset, records []parcel.Record) (*Dataset, error) {
	if ds.ID == "" {
		ds.ID = uuid.New().String()
	}
	ds.RecordCount = len(records)
	ds.ImportedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO datasets (id, name, source, value_field, record_count, etag, imported_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (name) DO UPDATE SET
		   source = EXCLUDED.source,
		   value_field = EXCLUDED.value_field,
		   record_count = EXCLUDED.record_count,
		   etag = EXCLUDED.etag,
		   imported_at = EXCLUDED.imported_at`,
		ds.ID, ds.Name, ds.Source, ds.ValueField, ds.RecordCount, ds.ETag, ds.ImportedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert dataset %s", ds.Name)
	}

	// The dataset id may differ from ds.ID when the name already existed.
	var datasetID string
	if err := s.pool.QueryRow(ctx, `SELECT id FROM datasets WHERE name = $1`, ds.Name).Scan(&datasetID); err != nil {
		return nil, eris.Wrapf(err, "postgres: resolve dataset id for %s", ds.Name)
	}
	ds.ID = datasetID

	rows := make([][]any, 0, len(records))
	for _, r := range records {
		geomBlob, err := encodeGeom(r)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []any{datasetID, r.ID, r.Value, geomBlob})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "parcels",
		Columns:      []string{"dataset_id", "parcel_id", "value", "geom"},
		ConflictKeys: []string{"dataset_id", "parcel_id"},
	}, rows)
	if err != nil {
		return nil, err
	}

	zap.L().Info("store: dataset saved",
		zap.String("backend", "postgres"),
		zap.String("dataset", ds.Name),
		zap.Int64("rows", n),
	)
	return &ds, nil
}

func (s *PostgresStore) GetDataset(ctx context.Context, name string) (*Dataset, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, source, value_field, record_count, COALESCE(etag, ''), imported_at
		 FROM datasets WHERE name = $1`, name)

	var ds Dataset
	err := row.Scan(&ds.ID, &ds.Name, &ds.Source, &ds.ValueField, &ds.RecordCount, &ds.ETag, &ds.ImportedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: dataset %q", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get dataset %s", name)
	}
	return &ds, nil
}

func (s *PostgresStore) ListDatasets(ctx context.Context) ([]Dataset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, source, value_field, record_count, COALESCE(etag, ''), imported_at
		 FROM datasets ORDER BY imported_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list datasets")
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		var ds Dataset
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.Source, &ds.ValueField, &ds.RecordCount, &ds.ETag, &ds.ImportedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan dataset")
		}
		out = append(out, ds)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate datasets")
}

func (s *PostgresStore) LoadRecords(ctx context.Context, name string) ([]parcel.Record, error) {
	ds, err := s.GetDataset(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT parcel_id, value, geom FROM parcels WHERE dataset_id = $1`, ds.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load records for %s", name)
	}
	defer rows.Close()

	var records []parcel.Record
	for rows.Next() {
		var (
			id    string
			value float64
			blob  []byte
		)
		if err := rows.Scan(&id, &value, &blob); err != nil {
			return nil, eris.Wrap(err, "postgres: scan parcel")
		}
		rec, err := decodeGeom(id, blob)
		if err != nil {
			return nil, err
		}
		rec.Value = value
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: iterate parcels")
}

func (s *PostgresStore) DeleteDataset(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM datasets WHERE name = $1`, name)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete dataset %s", name)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: dataset %q", name)
	}
	return nil
}
