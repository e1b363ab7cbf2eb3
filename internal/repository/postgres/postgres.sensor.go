// FilePath: server/telemetry/internal/repository/postgres/postgres.sensor.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/itsatony/w4b_v3/server/telemetry/internal/database"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/repository"
	"github.com/lib/pq"
	nuts "github.com/vaudience/go-nuts"
)

// invalid_text_representation, raised when a jsonb parameter does not parse
const pqInvalidTextRepresentation = "22P02"

type SensorRepo struct {
	PostgresBaseRepo
}

func NewSensorRepository(db database.DB) *SensorRepo {
	repo := &PostgresBaseRepo{db: db}
	return &SensorRepo{PostgresBaseRepo: *repo}
}

func (r *SensorRepo) Get(ctx context.Context, id string) (*models.Sensor, error) {
	sensor := &models.Sensor{}
	query := `SELECT id, zone_id, name, type, is_active, last_reading FROM sensors WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, sensor, query, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("sensor not found", repository.ErrNotFound)
		}
		return nil, errors.NewDatabaseError("failed to get sensor", err)
	}
	return sensor, nil
}

func (r *SensorRepo) UpdateLastReading(ctx context.Context, tx database.Transaction, id string, reading models.JSON) error {
	query := `
		UPDATE sensors SET
			last_reading = $1
		WHERE id = $2`

	result, err := tx.ExecContext(ctx, query, reading, id)
	if err != nil {
		return classifyWriteError("failed to update last reading", err)
	}
	return expectOneRow(result)
}

func (r *SensorRepo) MergeLastReading(ctx context.Context, tx database.Transaction, id string, key string, value interface{}) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return errors.NewValidationError("failed to encode reading value", err)
	}

	// anything that is not a JSON object (SQL NULL, JSON null, scalars) is replaced by a new object
	query := `
		UPDATE sensors SET
			last_reading = jsonb_set(
				CASE WHEN jsonb_typeof(last_reading) = 'object' THEN last_reading ELSE '{}'::jsonb END,
				$1::text[],
				$2::jsonb
			)
		WHERE id = $3`

	result, err := tx.ExecContext(ctx, query, pq.Array([]string{key}), string(encoded), id)
	if err != nil {
		return classifyWriteError("failed to merge last reading", err)
	}
	return expectOneRow(result)
}

func (r *SensorRepo) ListActiveByZone(ctx context.Context, zoneID string) ([]models.ZoneSensorState, error) {
	states := []models.ZoneSensorState{}
	query := `
		SELECT s.id, s.type, s.last_reading
		FROM sensors s
		WHERE s.zone_id = $1
		AND s.is_active = true
		ORDER BY s.id ASC`

	err := r.db.GetDB().SelectContext(ctx, &states, query, zoneID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list zone sensors", err)
	}

	nuts.L.Debugf("[SensorRepo] Loaded %d active sensors for zone %s", len(states), zoneID)
	return states, nil
}

func classifyWriteError(msg string, err error) error {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == pqInvalidTextRepresentation {
		return errors.NewValidationError("malformed JSON reading", err)
	}
	return errors.NewDatabaseError(msg, err)
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}

	if rows == 0 {
		return errors.NewNotFoundError("sensor not found", repository.ErrNotFound)
	}

	return nil
}
