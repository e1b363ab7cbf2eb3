package models

import (
	stderrors "errors"
	"fmt"

	"github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
)

// ErrUnsupportedSensorType is returned by ParseMetric for types without a metric view
var ErrUnsupportedSensorType = stderrors.New("unsupported sensor type")

// Metric is the normalized view of one sensor's last reading.
// The set of implementations is closed; see ParseMetric.
type Metric interface {
	SensorType() SensorType
	metric()
}

type TemperatureMetric struct {
	Current float64 `json:"current"`
	Unit    string  `json:"unit"`
}

type WaterQualityMetric struct {
	PH        float64  `json:"ph"`
	Turbidity *float64 `json:"turbidity"`
}

type AirQualityMetric struct {
	Index float64 `json:"index"`
	Unit  string  `json:"unit,omitempty"`
}

type WasteLevelMetric struct {
	Level float64 `json:"level"`
	Unit  string  `json:"unit,omitempty"`
}

type ImageMetric struct {
	ImageURL string `json:"image_url"`
}

func (TemperatureMetric) SensorType() SensorType  { return Temperature }
func (WaterQualityMetric) SensorType() SensorType { return WaterQuality }
func (AirQualityMetric) SensorType() SensorType   { return AirQuality }
func (WasteLevelMetric) SensorType() SensorType   { return WasteLevel }
func (ImageMetric) SensorType() SensorType        { return Image }

func (TemperatureMetric) metric()  {}
func (WaterQualityMetric) metric() {}
func (AirQualityMetric) metric()   {}
func (WasteLevelMetric) metric()   {}
func (ImageMetric) metric()        {}

// ParseMetric interprets a last_reading document according to the sensor type.
// Unknown types return an error wrapping ErrUnsupportedSensorType; a known type
// whose reading lacks its required fields returns a validation error.
func ParseMetric(t SensorType, reading JSON) (Metric, error) {
	switch t {
	case Temperature:
		value, err := requireNumber(t, reading, "value")
		if err != nil {
			return nil, err
		}
		unit, err := requireString(t, reading, "unit")
		if err != nil {
			return nil, err
		}
		return TemperatureMetric{Current: value, Unit: unit}, nil
	case WaterQuality:
		value, err := requireNumber(t, reading, "value")
		if err != nil {
			return nil, err
		}
		turbidity, err := optionalNumber(t, reading, "turbidity")
		if err != nil {
			return nil, err
		}
		return WaterQualityMetric{PH: value, Turbidity: turbidity}, nil
	case AirQuality:
		value, err := requireNumber(t, reading, "value")
		if err != nil {
			return nil, err
		}
		unit, _ := reading["unit"].(string)
		return AirQualityMetric{Index: value, Unit: unit}, nil
	case WasteLevel:
		value, err := requireNumber(t, reading, "value")
		if err != nil {
			return nil, err
		}
		unit, _ := reading["unit"].(string)
		return WasteLevelMetric{Level: value, Unit: unit}, nil
	case Image:
		url, err := requireString(t, reading, "image_url")
		if err != nil {
			return nil, err
		}
		return ImageMetric{ImageURL: url}, nil
	default:
		return nil, errors.NewUnsupportedError(fmt.Sprintf("no metric view for sensor type %q", t), ErrUnsupportedSensorType)
	}
}

func requireNumber(t SensorType, reading JSON, key string) (float64, error) {
	v, ok := reading[key]
	if !ok || v == nil {
		return 0, errors.NewValidationError(fmt.Sprintf("%s reading is missing %q", t, key), nil)
	}
	n, ok := toFloat(v)
	if !ok {
		return 0, errors.NewValidationError(fmt.Sprintf("%s reading field %q is not a number", t, key), nil)
	}
	return n, nil
}

func optionalNumber(t SensorType, reading JSON, key string) (*float64, error) {
	v, ok := reading[key]
	if !ok || v == nil {
		return nil, nil
	}
	n, ok := toFloat(v)
	if !ok {
		return nil, errors.NewValidationError(fmt.Sprintf("%s reading field %q is not a number", t, key), nil)
	}
	return &n, nil
}

func requireString(t SensorType, reading JSON, key string) (string, error) {
	v, ok := reading[key]
	if !ok || v == nil {
		return "", errors.NewValidationError(fmt.Sprintf("%s reading is missing %q", t, key), nil)
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.NewValidationError(fmt.Sprintf("%s reading field %q is not a string", t, key), nil)
	}
	return s, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
