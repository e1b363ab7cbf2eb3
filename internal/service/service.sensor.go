package service

import (
	"context"

	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// GetSensor returns the current state of a sensor, including its last reading
func (s *Service) GetSensor(ctx context.Context, sensorID string) (*models.Sensor, error) {
	if err := validateSensorID(sensorID); err != nil {
		return nil, err
	}

	sensor, err := s.sensors.Get(ctx, sensorID)
	if err != nil {
		nuts.L.Debugf("[Ingestor] Error getting sensor %s: %v", sensorID, err)
		return nil, err
	}
	return sensor, nil
}

// Ping reports whether the sensors store can be reached
func (s *Service) Ping(ctx context.Context) error {
	return s.sensors.Ping(ctx)
}
