// FilePath: server/telemetry/api/resources/resources.go
package resources

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/service"
	nuts "github.com/vaudience/go-nuts"
)

// TelemetryService is the subset of service.Service the handlers depend on
type TelemetryService interface {
	IngestReading(ctx context.Context, sensorID string, reading models.JSON) error
	IngestImage(ctx context.Context, sensorID string, image []byte) error
	GetSensor(ctx context.Context, sensorID string) (*models.Sensor, error)
	AnalyzeZoneWith(ctx context.Context, zoneID string, opts service.ReportOptions) (*models.ZoneReport, error)
}

// Resources holds all HTTP resource handlers
type Resources struct {
	Sensors     *SensorHandlers
	Zones       *ZoneHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
	Metrics     func(w http.ResponseWriter, r *http.Request)
	Docs        func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc TelemetryService, maxImageSize int64) *Resources {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &Resources{
		Sensors: &SensorHandlers{service: svc, maxImageSize: maxImageSize},
		Zones:   &ZoneHandlers{service: svc, decoder: decoder},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// SetMetrics sets the metrics handler
func (r *Resources) SetMetrics(h func(w http.ResponseWriter, r *http.Request)) {
	r.Metrics = h
}

// SetDocs sets the swagger document handler
func (r *Resources) SetDocs(h func(w http.ResponseWriter, r *http.Request)) {
	r.Docs = h
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	if err.Code >= http.StatusInternalServerError {
		nuts.L.Errorf("[API] %s", err.Error())
	} else {
		nuts.L.Warnf("[API] %s", err.Error())
	}
}

// respondWithServiceError renders a service error keeping its type and status
func respondWithServiceError(w http.ResponseWriter, err error, requestID string) {
	respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
