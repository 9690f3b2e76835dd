package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masslots/parcelviz/internal/geometry"
	"github.com/masslots/parcelviz/internal/parcel"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgres_Migrate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS datasets").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetDataset(t *testing.T) {
	s, mock := newMockStore(t)

	imported := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, name, source, value_field").
		WithArgs("boston").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "name", "source", "value_field", "record_count", "etag", "imported_at"}).
			AddRow("ds-1", "boston", "https://example.com", "TOTAL_VAL", 98000, "", imported))

	ds, err := s.GetDataset(context.Background(), "boston")
	require.NoError(t, err)
	assert.Equal(t, "ds-1", ds.ID)
	assert.Equal(t, 98000, ds.RecordCount)
	assert.True(t, ds.ImportedAt.Equal(imported))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetDataset_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, source, value_field").
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetDataset(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListDatasets(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, name, source, value_field").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "name", "source", "value_field", "record_count", "etag", "imported_at"}).
			AddRow("ds-2", "cambridge", "b", "TOTAL_VAL", 40000, "", now).
			AddRow("ds-1", "boston", "a", "TOTAL_VAL", 98000, "", now.Add(-time.Hour)))

	list, err := s.ListDatasets(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "cambridge", list[0].Name)
	assert.Equal(t, "boston", list[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveDataset(t *testing.T) {
	s, mock := newMockStore(t)

	records := []parcel.Record{
		{ID: "M_1", Geom: geometry.NewRect(-71.1, 42.3, -71.0, 42.4).Polygon(), Value: 450000},
		{ID: "M_2", Geom: geometry.NewRect(-71.2, 42.2, -71.1, 42.3).Polygon(), Value: 980000},
	}

	mock.ExpectExec("INSERT INTO datasets").
		WithArgs(pgxmock.AnyArg(), "boston", "src", "TOTAL_VAL", 2, "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT id FROM datasets").
		WithArgs("boston").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("ds-existing"))

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_parcels"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_parcels"},
		[]string{"dataset_id", "parcel_id", "value", "geom"}).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "parcels"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	ds, err := s.SaveDataset(context.Background(),
		Dataset{Name: "boston", Source: "src", ValueField: "TOTAL_VAL"}, records)
	require.NoError(t, err)

	// The id resolves to the row that already owned the name.
	assert.Equal(t, "ds-existing", ds.ID)
	assert.Equal(t, 2, ds.RecordCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveDataset_UpsertError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO datasets").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(fmt.Errorf("unique violation"))

	_, err := s.SaveDataset(context.Background(),
		Dataset{Name: "boston", Source: "src", ValueField: "TOTAL_VAL"}, testRecords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert dataset boston")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_LoadRecords(t *testing.T) {
	s, mock := newMockStore(t)

	rec := parcel.Record{ID: "M_1", Geom: geometry.NewRect(-71.1, 42.3, -71.0, 42.4).Polygon(), Value: 450000}
	blob, err := encodeGeom(rec)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, name, source, value_field").
		WithArgs("boston").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "name", "source", "value_field", "record_count", "etag", "imported_at"}).
			AddRow("ds-1", "boston", "src", "TOTAL_VAL", 1, "", time.Now()))
	mock.ExpectQuery("SELECT parcel_id, value, geom FROM parcels").
		WithArgs("ds-1").
		WillReturnRows(pgxmock.NewRows([]string{"parcel_id", "value", "geom"}).
			AddRow("M_1", 450000.0, blob))

	records, err := s.LoadRecords(context.Background(), "boston")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "M_1", records[0].ID)
	assert.InDelta(t, 450000, records[0].Value, 1e-9)

	b := geometry.BoundsOf(records[0].Geom)
	assert.InDelta(t, -71.1, b.MinX, 1e-12)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteDataset(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM datasets").
		WithArgs("boston").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, s.DeleteDataset(context.Background(), "boston"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteDataset_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM datasets").
		WithArgs("nope").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteDataset(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
