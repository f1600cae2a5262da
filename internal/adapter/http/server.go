// Package http exposes the agricultural API, health probes, and metrics over HTTP.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/agri-assist-api/internal/domain"
	"github.com/couchcryptid/agri-assist-api/internal/observability"
	"github.com/couchcryptid/agri-assist-api/internal/store"
)

// WeatherSource produces a weather sample for raw path coordinates. On bad
// input it returns usable fallback data together with the error.
type WeatherSource interface {
	Synthesize(ctx context.Context, rawLat, rawLng string) (domain.WeatherSample, error)
}

// Dependencies are the collaborators the API handlers compute over.
type Dependencies struct {
	Reference      domain.ReferenceData
	Submissions    store.SubmissionStore
	Weather        WeatherSource
	WeatherAPIKey  string
	Metrics        *observability.Metrics
	AllowedOrigins []string
}

// Server exposes the API routes plus /healthz, /readyz, and /metrics.
type Server struct {
	httpServer *http.Server
	deps       Dependencies
	logger     *slog.Logger
}

// NewServer creates an HTTP server wired to deps. The submission store doubles
// as the readiness check.
func NewServer(addr string, deps Dependencies, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/location-search", s.handleLocationSearch)
	mux.HandleFunc("POST /api/save-farmer-data", s.handleSaveFarmerData)
	mux.HandleFunc("POST /api/predict-yield", s.handlePredictYield)
	mux.HandleFunc("POST /api/analyze-plant", s.handleAnalyzePlant)
	mux.HandleFunc("GET /api/weather-config", s.handleWeatherConfig)
	mux.HandleFunc("GET /api/weather/{lat}/{lng}", s.handleWeather)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Submissions))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.middleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler so the API can be mounted by
// another host or driven from tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
