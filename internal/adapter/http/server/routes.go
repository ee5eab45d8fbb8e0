package server

import (
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	// System Health
	a.mux.HandleFunc("/health", a.routes.health.HealthCheck)

	// Prometheus metrics endpoint
	a.mux.Handle("/metrics", promhttp.Handler())

	// Swagger UI endpoint
	a.mux.HandleFunc("/swagger/", httpSwagger.Handler(httpSwagger.InstanceName("tracking")))

	// Driver-facing ingestion and session control
	a.mux.Handle("POST /tracking/locations", a.m.RequireClass(a.routes.tracking.SubmitLocation, types.ConnDriver))      // Submit one GPS sample
	a.mux.Handle("POST /tracking/jobs/{job_id}/start", a.m.RequireClass(a.routes.tracking.StartTracking, types.ConnDriver)) // Start tracking session
	a.mux.Handle("POST /tracking/jobs/{job_id}/stop", a.m.RequireClass(a.routes.tracking.StopTracking, types.ConnDriver))   // Stop tracking session

	// Read model
	a.mux.Handle("GET /tracking/jobs/{job_id}", a.m.RequireClass(a.routes.tracking.JobTracking, types.ConnDriver, types.ConnOperator, types.ConnClient)) // Current tracking for a job
	a.mux.Handle("GET /tracking/companies/active", a.m.RequireClass(a.routes.tracking.CompanyTracking, types.ConnOperator))                              // Active drivers for the company
	a.mux.Handle("GET /tracking/history", a.m.RequireClass(a.routes.tracking.History, types.ConnDriver, types.ConnOperator))                             // Stored samples, newest first

	// Realtime websocket, auth optional (anonymous public tracking)
	a.mux.HandleFunc("GET /ws", a.routes.ws.Serve)
}
