package service

import (
	"time"

	"github.com/itsatony/w4b_v3/server/telemetry/internal/cache"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Options tunes ingestion and reporting behaviour
type Options struct {
	// CollisionPolicy is applied when several active sensors of one zone share a type
	CollisionPolicy models.CollisionPolicy
	// CompensateOrphans deletes the archived blob when the state update fails
	CompensateOrphans bool
}

// Service ingests sensor payloads and builds zone reports. It is safe for
// concurrent use; every unit of work acquires its own transaction.
type Service struct {
	sensors repository.SensorRepository
	archive repository.ArchiveRepository
	reports cache.ReportCache
	events  *nuts.EventEmitter
	options Options
	now     func() time.Time
}

// New creates a new service instance. reports may be nil to disable caching.
func New(
	sensors repository.SensorRepository,
	archive repository.ArchiveRepository,
	reports cache.ReportCache,
	options Options,
) *Service {
	if options.CollisionPolicy == "" {
		options.CollisionPolicy = models.LastWins
	}
	return &Service{
		sensors: sensors,
		archive: archive,
		reports: reports,
		events:  nuts.NewEventEmitter(),
		options: options,
		now:     time.Now,
	}
}

// Validate checks if all required repositories are initialized
func (s *Service) Validate() error {
	if s.sensors == nil {
		return ErrMissingRepository("sensors")
	}
	if s.archive == nil {
		return ErrMissingRepository("archive")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}
