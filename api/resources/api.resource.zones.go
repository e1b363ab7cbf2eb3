package resources

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/service"
	nuts "github.com/vaudience/go-nuts"
)

// ZoneHandlers encapsulates the zone reporting HTTP handlers
type ZoneHandlers struct {
	service TelemetryService
	decoder *schema.Decoder
}

// @Summary Get a zone report
// @Description Normalized last readings of every active sensor in the zone
// @Tags zones
// @Produce json
// @Param id path string true "Zone ID"
// @Param policy query string false "Collision policy (last_wins, first_wins)"
// @Param no_cache query bool false "Bypass the report cache"
// @Success 200 {object} models.ZoneReport
// @Failure 400 {object} errors.APIError
// @Failure 500 {object} errors.APIError
// @Router /zones/{id}/report [get]
func (h *ZoneHandlers) GetZoneReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	var filters models.ReportFilters
	if err := h.decoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	opts := service.ReportOptions{SkipCache: filters.NoCache}
	if filters.Policy != "" {
		policy, err := models.ParseCollisionPolicy(filters.Policy)
		if err != nil {
			respondWithError(w, errors.NewValidationError(err.Error(), err).WithRequestID(requestID))
			return
		}
		opts.Policy = policy
	}

	report, err := h.service.AnalyzeZoneWith(r.Context(), id, opts)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}
