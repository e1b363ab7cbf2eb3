package service

import (
	"fmt"

	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const (
	EventReadingIngested    = "reading.ingested"
	EventImageIngested      = "image.ingested"
	EventArchiveOrphaned    = "archive.orphaned"
	EventArchiveCompensated = "archive.compensated"
)

// IngestEvent is passed to handlers registered with OnEvent
type IngestEvent struct {
	Name   string
	Object models.ArchiveObject
	Err    error
}

// OnEvent registers a callback for ingestion events. Handlers run
// synchronously on the ingesting goroutine.
func (s *Service) OnEvent(event string, handler func(IngestEvent)) error {
	if _, err := s.events.On(event, nuts.NID("evh", 8), handler); err != nil {
		return fmt.Errorf("failed to register %s handler: %w", event, err)
	}
	return nil
}

func (s *Service) emit(name string, obj models.ArchiveObject, err error) {
	if emitErr := s.events.Emit(name, IngestEvent{Name: name, Object: obj, Err: err}); emitErr != nil {
		nuts.L.Errorf("[Ingestor] Failed to deliver %s event for %s: %v", name, obj.Path, emitErr)
	}
}
