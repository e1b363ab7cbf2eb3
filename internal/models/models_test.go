package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	apierrors "github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetricTemperature(t *testing.T) {
	m, err := ParseMetric(Temperature, JSON{"value": 25.5, "unit": "celsius"})
	require.NoError(t, err)
	assert.Equal(t, TemperatureMetric{Current: 25.5, Unit: "celsius"}, m)
	assert.Equal(t, Temperature, m.SensorType())
}

func TestParseMetricWaterQuality(t *testing.T) {
	m, err := ParseMetric(WaterQuality, JSON{"value": 7.2, "turbidity": float64(3)})
	require.NoError(t, err)
	wq := m.(WaterQualityMetric)
	assert.Equal(t, 7.2, wq.PH)
	require.NotNil(t, wq.Turbidity)
	assert.Equal(t, 3.0, *wq.Turbidity)

	m, err = ParseMetric(WaterQuality, JSON{"value": 6.9})
	require.NoError(t, err)
	assert.Nil(t, m.(WaterQualityMetric).Turbidity)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ph":6.9,"turbidity":null}`, string(out))
}

func TestParseMetricOtherKnownTypes(t *testing.T) {
	m, err := ParseMetric(AirQuality, JSON{"value": 42, "unit": "aqi"})
	require.NoError(t, err)
	assert.Equal(t, AirQualityMetric{Index: 42, Unit: "aqi"}, m)

	m, err = ParseMetric(WasteLevel, JSON{"value": 0.8})
	require.NoError(t, err)
	assert.Equal(t, WasteLevelMetric{Level: 0.8}, m)

	m, err = ParseMetric(Image, JSON{"image_url": "images/cam1/2024-01-01T00:00:00.000000.jpg"})
	require.NoError(t, err)
	assert.Equal(t, ImageMetric{ImageURL: "images/cam1/2024-01-01T00:00:00.000000.jpg"}, m)
}

func TestParseMetricUnsupportedType(t *testing.T) {
	_, err := ParseMetric(SensorType("humidity"), JSON{"value": 40})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedSensorType))
	assert.True(t, apierrors.IsUnsupported(err))
}

func TestParseMetricMalformedReading(t *testing.T) {
	_, err := ParseMetric(Temperature, JSON{"unit": "celsius"})
	assert.True(t, apierrors.IsValidation(err))

	_, err = ParseMetric(Temperature, JSON{"value": "hot", "unit": "celsius"})
	assert.True(t, apierrors.IsValidation(err))

	_, err = ParseMetric(WaterQuality, JSON{"value": 7.0, "turbidity": "cloudy"})
	assert.True(t, apierrors.IsValidation(err))

	_, err = ParseMetric(Image, JSON{"value": 1})
	assert.True(t, apierrors.IsValidation(err))
}

func TestJSONScanAndValue(t *testing.T) {
	var j JSON
	require.NoError(t, j.Scan([]byte(`{"value":25.5,"unit":"celsius"}`)))
	assert.Equal(t, JSON{"value": 25.5, "unit": "celsius"}, j)

	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j)

	v, err := JSON(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = JSON{"a": 1}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(v.([]byte)))

	assert.Error(t, j.Scan(42))
}

func TestArchivePath(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 123456000, time.FixedZone("CET", 3600))

	assert.Equal(t, "sensor_data/s1/2024-03-05T13:07:09.123456.json", ArchivePath(SensorDataCategory, "s1", ts))
	assert.Equal(t, "images/cam-2/2024-03-05T13:07:09.123456.jpg", ArchivePath(ImageCategory, "cam-2", ts))

	obj := NewArchiveObject(ImageCategory, "cam-2", ts, 512)
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.Equal(t, int64(512), obj.Size)
	assert.Equal(t, time.UTC, obj.Timestamp.Location())
}

func TestZoneReportRoundTrip(t *testing.T) {
	turbidity := 3.0
	report := NewZoneReport("zone-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	report.Metrics[Temperature] = TemperatureMetric{Current: 25.5, Unit: "celsius"}
	report.Metrics[WaterQuality] = WaterQualityMetric{PH: 7.2, Turbidity: &turbidity}
	report.Unsupported = []UnsupportedSensor{{SensorID: "s9", Type: "humidity"}}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded ZoneReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.ZoneID, decoded.ZoneID)
	assert.True(t, report.Timestamp.Equal(decoded.Timestamp))
	assert.Equal(t, report.Metrics, decoded.Metrics)
	assert.Equal(t, report.Unsupported, decoded.Unsupported)
}

func TestParseCollisionPolicy(t *testing.T) {
	p, err := ParseCollisionPolicy("")
	require.NoError(t, err)
	assert.Equal(t, LastWins, p)

	p, err = ParseCollisionPolicy("first_wins")
	require.NoError(t, err)
	assert.Equal(t, FirstWins, p)

	_, err = ParseCollisionPolicy("average")
	assert.Error(t, err)
}

func TestValidPathSegment(t *testing.T) {
	tests := []struct {
		segment string
		valid   bool
	}{
		{"s1", true},
		{"cam-01.north", true},
		{"2024-06-01T12:00:00.000000.json", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a/b", false},
		{`a\b`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidPathSegment(tt.segment), tt.segment)
	}
}
