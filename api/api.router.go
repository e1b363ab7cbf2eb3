package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/itsatony/w4b_v3/server/telemetry/api/middleware"
	"github.com/itsatony/w4b_v3/server/telemetry/api/resources"
)

type Router struct {
	router    *mux.Router
	handler   http.Handler
	resources *resources.Resources
}

func NewRouter(res *resources.Resources, httpConfig middleware.HTTPConfig) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		resources: res,
	}

	r.setupRoutes()
	r.handler = middleware.Wrap(r.router, httpConfig)
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/v1").Subrouter()

	// Operational routes
	if r.resources.HealthCheck != nil {
		api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)
	}
	if r.resources.Metrics != nil {
		api.HandleFunc("/metrics", r.resources.Metrics).Methods(http.MethodGet)
	}
	if r.resources.Docs != nil {
		api.HandleFunc("/swagger.json", r.resources.Docs).Methods(http.MethodGet)
	}

	// Sensors
	api.HandleFunc("/sensors/{id}", r.resources.Sensors.GetSensor).Methods(http.MethodGet)
	sensors := api.PathPrefix("/sensors/{id}").Subrouter()
	sensors.Handle("/readings", middleware.RequireJSON(http.HandlerFunc(r.resources.Sensors.IngestReading))).Methods(http.MethodPost)
	sensors.HandleFunc("/images", r.resources.Sensors.IngestImage).Methods(http.MethodPost)

	// Zones
	zones := api.PathPrefix("/zones/{id}").Subrouter()
	zones.HandleFunc("/report", r.resources.Zones.GetZoneReport).Methods(http.MethodGet)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}
