package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CollisionPolicy decides which sensor's metric is reported when several
// active sensors in a zone share a type. Rows are visited in sensor id order.
type CollisionPolicy string

const (
	// LastWins keeps the metric of the highest sensor id
	LastWins CollisionPolicy = "last_wins"
	// FirstWins keeps the metric of the lowest sensor id
	FirstWins CollisionPolicy = "first_wins"
)

// ParseCollisionPolicy maps a config or query value to a policy; empty means LastWins
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(s) {
	case "", LastWins:
		return LastWins, nil
	case FirstWins:
		return FirstWins, nil
	default:
		return "", fmt.Errorf("unknown collision policy %q", s)
	}
}

// ZoneReport is the on-demand aggregate view of a zone's active sensors
type ZoneReport struct {
	ZoneID      string                `json:"zone_id"`
	Timestamp   time.Time             `json:"timestamp"`
	Metrics     map[SensorType]Metric `json:"metrics"`
	Unsupported []UnsupportedSensor   `json:"unsupported,omitempty"`
	Collisions  []Collision           `json:"collisions,omitempty"`
}

// UnsupportedSensor is an active sensor whose type has no metric view
type UnsupportedSensor struct {
	SensorID string     `json:"sensor_id"`
	Type     SensorType `json:"type"`
}

// Collision records a sensor type reported by more than one active sensor
type Collision struct {
	Type      SensorType      `json:"type"`
	SensorIDs []string        `json:"sensor_ids"`
	Chosen    string          `json:"chosen"`
	Policy    CollisionPolicy `json:"policy"`
}

func NewZoneReport(zoneID string, ts time.Time) *ZoneReport {
	return &ZoneReport{
		ZoneID:    zoneID,
		Timestamp: ts.UTC(),
		Metrics:   make(map[SensorType]Metric),
	}
}

// UnmarshalJSON restores the concrete Metric types from their sensor type key
func (r *ZoneReport) UnmarshalJSON(data []byte) error {
	type alias ZoneReport
	var raw struct {
		alias
		Metrics map[SensorType]json.RawMessage `json:"metrics"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ZoneReport(raw.alias)
	r.Metrics = make(map[SensorType]Metric, len(raw.Metrics))
	for t, msg := range raw.Metrics {
		m, err := decodeMetric(t, msg)
		if err != nil {
			return err
		}
		r.Metrics[t] = m
	}
	return nil
}

func decodeMetric(t SensorType, msg json.RawMessage) (Metric, error) {
	var err error
	switch t {
	case Temperature:
		var m TemperatureMetric
		err = json.Unmarshal(msg, &m)
		return m, err
	case WaterQuality:
		var m WaterQualityMetric
		err = json.Unmarshal(msg, &m)
		return m, err
	case AirQuality:
		var m AirQualityMetric
		err = json.Unmarshal(msg, &m)
		return m, err
	case WasteLevel:
		var m WasteLevelMetric
		err = json.Unmarshal(msg, &m)
		return m, err
	case Image:
		var m ImageMetric
		err = json.Unmarshal(msg, &m)
		return m, err
	default:
		return nil, fmt.Errorf("metric for unsupported sensor type %q", t)
	}
}
