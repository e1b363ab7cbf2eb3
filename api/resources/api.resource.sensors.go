package resources

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const imageFormField = "file"

// SensorHandlers encapsulates the sensor ingestion HTTP handlers
type SensorHandlers struct {
	service      TelemetryService
	maxImageSize int64
}

// @Summary Ingest a sensor reading
// @Description Archive a raw reading and make it the sensor's last reading
// @Tags sensors
// @Accept json
// @Produce json
// @Param id path string true "Sensor ID"
// @Param reading body object true "Reading payload, stored as-is"
// @Success 202 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Failure 502 {object} errors.APIError
// @Router /sensors/{id}/readings [post]
func (h *SensorHandlers) IngestReading(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	// numbers stay json.Number so large integers survive the round trip
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var reading models.JSON
	if err := dec.Decode(&reading); err != nil {
		respondWithError(w, errors.NewValidationError("reading must be a JSON object", err).WithRequestID(requestID))
		return
	}

	if err := h.service.IngestReading(r.Context(), id, reading); err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "request_id": requestID})
}

// @Summary Ingest a sensor image
// @Description Archive a JPEG image and set image_url on the sensor's last reading.
// @Description The image is the raw request body or the multipart field "file".
// @Tags sensors
// @Accept image/jpeg
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Sensor ID"
// @Param file formData file false "Image file"
// @Success 202 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Failure 413 {object} errors.APIError
// @Router /sensors/{id}/images [post]
func (h *SensorHandlers) IngestImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	image, err := h.readImage(w, r)
	if err != nil {
		respondWithError(w, err.WithRequestID(requestID))
		return
	}

	if err := h.service.IngestImage(r.Context(), id, image); err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "request_id": requestID})
}

// @Summary Get a sensor
// @Description Return the sensor's current state and last reading
// @Tags sensors
// @Produce json
// @Param id path string true "Sensor ID"
// @Success 200 {object} models.Sensor
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id} [get]
func (h *SensorHandlers) GetSensor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	sensor, err := h.service.GetSensor(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, nuts.NID("req", 12))
		return
	}

	respondWithJSON(w, http.StatusOK, sensor)
}

func (h *SensorHandlers) readImage(w http.ResponseWriter, r *http.Request) ([]byte, *errors.APIError) {
	// multipart framing needs a little headroom over the image itself
	limit := h.maxImageSize
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		limit += 64 << 10
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var src io.Reader = r.Body
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile(imageFormField)
		if err != nil {
			return nil, h.bodyError(err, fmt.Sprintf("multipart field %q is required", imageFormField))
		}
		defer file.Close()
		src = file
	}

	image, err := io.ReadAll(io.LimitReader(src, h.maxImageSize+1))
	if err != nil {
		return nil, h.bodyError(err, "failed to read image")
	}
	if int64(len(image)) > h.maxImageSize {
		return nil, h.tooLarge(nil)
	}
	if len(image) == 0 {
		return nil, errors.NewValidationError("image body is empty", nil)
	}
	return image, nil
}

func (h *SensorHandlers) bodyError(err error, msg string) *errors.APIError {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return h.tooLarge(err)
	}
	return errors.NewValidationError(msg, err)
}

func (h *SensorHandlers) tooLarge(err error) *errors.APIError {
	return errors.NewTooLargeError(fmt.Sprintf("image exceeds %d bytes", h.maxImageSize), err)
}
