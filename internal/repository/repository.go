// FilePath: server/telemetry/internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"github.com/itsatony/w4b_v3/server/telemetry/internal/database"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
)

// SensorRepository defines the relational operations on the sensors table
type SensorRepository interface {
	database.Repository
	// Ping verifies the sensors store is reachable
	Ping(ctx context.Context) error
	Get(ctx context.Context, id string) (*models.Sensor, error)
	// UpdateLastReading replaces last_reading for the sensor
	UpdateLastReading(ctx context.Context, tx database.Transaction, id string, reading models.JSON) error
	// MergeLastReading sets a single top-level key of last_reading, creating the document if absent
	MergeLastReading(ctx context.Context, tx database.Transaction, id string, key string, value interface{}) error
	// ListActiveByZone returns the active sensors of a zone ordered by id
	ListActiveByZone(ctx context.Context, zoneID string) ([]models.ZoneSensorState, error)
}

// ArchiveRepository is the object store that keeps raw ingestion payloads
type ArchiveRepository interface {
	// Put writes data under path, replacing any existing object
	Put(ctx context.Context, obj models.ArchiveObject, data []byte) error
	Delete(ctx context.Context, path string) error
}
