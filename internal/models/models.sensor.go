// FilePath: server/telemetry/internal/models/models.sensor.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON is a wrapper around map[string]interface{} for jsonb storage.
// A nil JSON is stored as SQL NULL.
type JSON map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("unsupported JSON source type %T", value)
	}
}

// Clone returns a shallow copy of j
func (j JSON) Clone() JSON {
	if j == nil {
		return nil
	}
	out := make(JSON, len(j))
	for k, v := range j {
		out[k] = v
	}
	return out
}

type SensorType string

const (
	Temperature  SensorType = "temperature"
	WaterQuality SensorType = "water_quality"
	AirQuality   SensorType = "air_quality"
	WasteLevel   SensorType = "waste_level"
	Image        SensorType = "image"
)

// KnownSensorTypes lists every type with a metric view in zone reports
func KnownSensorTypes() []SensorType {
	return []SensorType{Temperature, WaterQuality, AirQuality, WasteLevel, Image}
}

func (t SensorType) IsKnown() bool {
	for _, known := range KnownSensorTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Sensor is the current-state row kept per field device
type Sensor struct {
	ID          string     `json:"id" db:"id"`
	ZoneID      string     `json:"zone_id" db:"zone_id"`
	Name        *string    `json:"name,omitempty" db:"name"`
	Type        SensorType `json:"type" db:"type"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	LastReading JSON       `json:"last_reading" db:"last_reading"`
}

// ZoneSensorState is the projection read by zone aggregation
type ZoneSensorState struct {
	ID          string     `db:"id"`
	Type        SensorType `db:"type"`
	LastReading JSON       `db:"last_reading"`
}
