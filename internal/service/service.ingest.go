package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/itsatony/w4b_v3/server/telemetry/internal/database"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const imageURLKey = "image_url"

// IngestReading archives the raw reading and replaces the sensor's last_reading with it.
// The archive write is not undone when the state update fails unless
// Options.CompensateOrphans is set.
func (s *Service) IngestReading(ctx context.Context, sensorID string, reading models.JSON) error {
	if err := validateSensorID(sensorID); err != nil {
		return err
	}

	body, err := json.Marshal(reading)
	if err != nil {
		err = errors.NewValidationError("reading is not JSON encodable", err)
		nuts.L.Errorf("[Ingestor] Error processing sensor data for %s: %v", sensorID, err)
		return err
	}

	obj := models.NewArchiveObject(models.SensorDataCategory, sensorID, s.now(), len(body))
	err = s.archiveAndUpdate(ctx, obj, body, func(tx database.Transaction) error {
		return s.sensors.UpdateLastReading(ctx, tx, sensorID, reading)
	})
	if err != nil {
		nuts.L.Errorf("[Ingestor] Error processing sensor data for %s: %v", sensorID, err)
		return err
	}

	nuts.L.Infof("[Ingestor] Successfully processed data for sensor %s (%s)", sensorID, obj.Path)
	s.emit(EventReadingIngested, obj, nil)
	return nil
}

// IngestImage archives the image and merges its archive path into last_reading as image_url,
// keeping every other key of the existing document.
func (s *Service) IngestImage(ctx context.Context, sensorID string, image []byte) error {
	if err := validateSensorID(sensorID); err != nil {
		return err
	}

	obj := models.NewArchiveObject(models.ImageCategory, sensorID, s.now(), len(image))
	err := s.archiveAndUpdate(ctx, obj, image, func(tx database.Transaction) error {
		return s.sensors.MergeLastReading(ctx, tx, sensorID, imageURLKey, obj.Path)
	})
	if err != nil {
		nuts.L.Errorf("[Ingestor] Error processing image data for %s: %v", sensorID, err)
		return err
	}

	nuts.L.Infof("[Ingestor] Successfully processed image for sensor %s (%s)", sensorID, obj.Path)
	s.emit(EventImageIngested, obj, nil)
	return nil
}

func (s *Service) archiveAndUpdate(ctx context.Context, obj models.ArchiveObject, data []byte, update func(tx database.Transaction) error) error {
	if err := s.archive.Put(ctx, obj, data); err != nil {
		return err
	}

	err := database.WithTx(ctx, s.sensors, update)
	if err == nil {
		return nil
	}
	return s.handleOrphan(ctx, obj, err)
}

// handleOrphan deals with a blob whose state update was rolled back
func (s *Service) handleOrphan(ctx context.Context, obj models.ArchiveObject, cause error) error {
	if !s.options.CompensateOrphans {
		nuts.L.Warnf("[Ingestor] Archived blob %s has no matching state update", obj.Path)
		s.emit(EventArchiveOrphaned, obj, cause)
		return cause
	}

	// the caller's context may already be cancelled, which is often why the update failed
	if delErr := s.archive.Delete(context.WithoutCancel(ctx), obj.Path); delErr != nil && !errors.IsNotFound(delErr) {
		nuts.L.Errorf("[Ingestor] Failed to remove orphaned blob %s: %v", obj.Path, delErr)
		s.emit(EventArchiveOrphaned, obj, cause)
		return stderrors.Join(cause, delErr)
	}

	s.emit(EventArchiveCompensated, obj, cause)
	return cause
}

func validateSensorID(sensorID string) error {
	if strings.TrimSpace(sensorID) == "" {
		return errors.NewValidationError("sensor id is required", nil)
	}
	if !models.ValidPathSegment(sensorID) {
		return errors.NewValidationError("sensor id must not contain path separators", nil).
			WithDetails(map[string]string{"sensor_id": sensorID})
	}
	return nil
}
