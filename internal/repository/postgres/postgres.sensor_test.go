package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/database"
	apierrors "github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*SensorRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSensorRepository(database.Wrap(sqlx.NewDb(db, "sqlmock"))), mock
}

func TestUpdateLastReading(t *testing.T) {
	repo, mock := newMockRepo(t)
	reading := models.JSON{"value": 25.5, "unit": "celsius"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sensors SET")).
		WithArgs(reading, "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := database.WithTx(context.Background(), repo, func(tx database.Transaction) error {
		return repo.UpdateLastReading(context.Background(), tx, "s1", reading)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLastReadingUnknownSensorRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sensors SET")).
		WithArgs(models.JSON{"value": 1.0}, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := database.WithTx(context.Background(), repo, func(tx database.Transaction) error {
		return repo.UpdateLastReading(context.Background(), tx, "missing", models.JSON{"value": 1.0})
	})
	assert.True(t, apierrors.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLastReadingMalformedJSON(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sensors SET")).
		WillReturnError(&pq.Error{Code: "22P02", Message: "invalid input syntax for type json"})
	mock.ExpectRollback()

	err := database.WithTx(context.Background(), repo, func(tx database.Transaction) error {
		return repo.UpdateLastReading(context.Background(), tx, "s1", models.JSON{"value": 1.0})
	})
	assert.True(t, apierrors.IsValidation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeLastReading(t *testing.T) {
	repo, mock := newMockRepo(t)
	path := "images/cam1/2024-01-01T00:00:00.000000.jpg"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("last_reading = jsonb_set(")).
		WithArgs(pq.Array([]string{"image_url"}), `"`+path+`"`, "cam1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := database.WithTx(context.Background(), repo, func(tx database.Transaction) error {
		return repo.MergeLastReading(context.Background(), tx, "cam1", "image_url", path)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeLastReadingDatabaseFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("last_reading = jsonb_set(")).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	err := database.WithTx(context.Background(), repo, func(tx database.Transaction) error {
		return repo.MergeLastReading(context.Background(), tx, "cam1", "image_url", "x.jpg")
	})
	assert.True(t, apierrors.IsDatabase(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveByZone(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "type", "last_reading"}).
		AddRow("s1", "temperature", []byte(`{"value":25.5,"unit":"celsius"}`)).
		AddRow("s2", "water_quality", nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.zone_id = $1")).
		WithArgs("zone-1").
		WillReturnRows(rows)

	states, err := repo.ListActiveByZone(context.Background(), "zone-1")
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, models.ZoneSensorState{ID: "s1", Type: models.Temperature, LastReading: models.JSON{"value": 25.5, "unit": "celsius"}}, states[0])
	assert.Equal(t, models.WaterQuality, states[1].Type)
	assert.Nil(t, states[1].LastReading)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSensor(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "zone_id", "name", "type", "is_active", "last_reading"}).
		AddRow("s1", "zone-1", nil, "temperature", true, []byte(`{"value":25.5}`))
	mock.ExpectQuery(regexp.QuoteMeta("FROM sensors WHERE id = $1")).WithArgs("s1").WillReturnRows(rows)

	sensor, err := repo.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "zone-1", sensor.ZoneID)
	assert.Nil(t, sensor.Name)
	assert.True(t, sensor.IsActive)
	assert.Equal(t, models.JSON{"value": 25.5}, sensor.LastReading)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sensors WHERE id = $1")).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.Get(context.Background(), "nope")
	assert.True(t, apierrors.IsNotFound(err))
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewSensorRepository(database.Wrap(sqlx.NewDb(db, "sqlmock")))

	mock.ExpectPing()
	require.NoError(t, repo.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.True(t, apierrors.IsDatabase(repo.Ping(context.Background())))
	require.NoError(t, mock.ExpectationsWereMet())
}
