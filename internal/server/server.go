// FilePath: server/telemetry/internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itsatony/w4b_v3/server/telemetry/api"
	"github.com/itsatony/w4b_v3/server/telemetry/api/middleware"
	"github.com/itsatony/w4b_v3/server/telemetry/api/resources"
	_ "github.com/itsatony/w4b_v3/server/telemetry/docs"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/cache"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/config"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/database"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/monitoring"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/repository/archive"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/repository/postgres"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/service"
	"github.com/swaggo/swag"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	db         database.DB
	reports    cache.ReportCache
	service    *service.Service
	monitoring *monitoring.Service
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config: cfg,
		srv:    srv,
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	ctx := context.Background()

	// Initialize services
	s.initializeService(ctx)
	s.monitoring = monitoring.NewService(monitoring.Config{
		Retention: s.config.Monitoring.EventWindow,
	})

	// Set up ingestion event handlers
	if err := s.setupEventHandlers(); err != nil {
		return err
	}

	// Setup routes
	s.srv.Handler = s.setupRoutes()

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	s.closeResources()
	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) closeResources() {
	if s.reports != nil {
		if err := s.reports.Close(); err != nil {
			nuts.L.Warnf("[Server] Error closing report cache: %v", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			nuts.L.Warnf("[Server] Error closing database: %v", err)
		}
	}
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() http.Handler {
	res := resources.NewResources(s.service, s.config.Ingest.MaxImageSize)
	res.SetHealthCheck(s.handleHealth())
	res.SetMetrics(s.handleMetrics())
	res.SetDocs(handleDocs())

	return api.NewRouter(res, middleware.HTTPConfig{
		AllowedOrigins: s.config.Server.AllowedOrigins,
		AccessLog:      middleware.NutsAccessLog(),
	})
}

// handleHealth reports the service version and whether the sensors store is reachable
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if s.service != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := s.service.Ping(ctx); err != nil {
				nuts.L.Warnf("[Server] Health check failed: %v", err)
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status, "version": nuts.GetVersion()})
	}
}

// handleMetrics returns event counts within the configured monitoring window
func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window := s.config.Monitoring.EventWindow
		events, err := s.monitoring.GetEventMetrics("", window)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"window": window.String(),
			"events": events,
			"totals": s.monitoring.Totals(),
		})
	}
}

func handleDocs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}
}

func (s *Server) setupEventHandlers() error {
	handlers := map[string]func(service.IngestEvent){
		// Successful ingestion
		service.EventReadingIngested: func(ev service.IngestEvent) {
			s.monitoring.RecordEvent("reading_ingested", map[string]string{"sensor_id": ev.Object.SensorID})
		},
		service.EventImageIngested: func(ev service.IngestEvent) {
			s.monitoring.RecordEvent("image_ingested", map[string]string{"sensor_id": ev.Object.SensorID})
		},
		// Blobs left without a state update
		service.EventArchiveOrphaned: func(ev service.IngestEvent) {
			s.monitoring.RecordEvent("archive_orphaned", orphanLabels(ev))
		},
		service.EventArchiveCompensated: func(ev service.IngestEvent) {
			nuts.L.Infof("[Ingestor] Removed orphaned blob %s", ev.Object.Path)
			s.monitoring.RecordEvent("archive_compensated", orphanLabels(ev))
		},
	}

	for event, handler := range handlers {
		if err := s.service.OnEvent(event, handler); err != nil {
			return err
		}
	}
	return nil
}

func orphanLabels(ev service.IngestEvent) map[string]string {
	return map[string]string{
		"sensor_id": ev.Object.SensorID,
		"category":  string(ev.Object.Category),
	}
}

// initializeService creates and configures the telemetry service
func (s *Server) initializeService(ctx context.Context) {
	cfg := s.config

	// Initialize database connection
	s.db = initAppDB(ctx, cfg.Database)

	// Initialize repositories
	sensors := postgres.NewSensorRepository(s.db)

	store, err := archive.New(ctx, cfg.ObjectStore)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize %s archive: %v", cfg.ObjectStore.Backend, err)
	}

	reports, err := cache.NewRedisReportCache(ctx, cfg.Redis, cfg.Reporting.CacheTTL)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize report cache: %v", err)
	}
	s.reports = reports

	policy, err := models.ParseCollisionPolicy(cfg.Reporting.CollisionPolicy)
	if err != nil {
		nuts.L.Fatalf("[Server] Invalid reporting configuration: %v", err)
	}

	s.service = service.New(sensors, store, reports, service.Options{
		CollisionPolicy:   policy,
		CompensateOrphans: cfg.Ingest.CompensateOrphans,
	})
	if err := s.service.Validate(); err != nil {
		nuts.L.Fatalf("[Server] Service validation failed: %v", err)
	}
}

func initAppDB(ctx context.Context, cfg config.PostgresConfig) database.DB {
	db, err := database.NewPostgresDB(ctx, cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to database: %v", err)
	}
	return db
}
