package http

import (
	"fmt"
	"io"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/agri-assist-api/internal/domain"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// failure is the body every API route answers with when it cannot succeed.
// The status stays 200; clients check success.
type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Agri Assist API\n")
}

func (s *Server) handleLocationSearch(w http.ResponseWriter, r *http.Request) {
	matches := domain.SearchLocations(s.deps.Reference.Locations, r.URL.Query().Get("q"))
	sharedobs.WriteJSON(w, http.StatusOK, matches)
}

func (s *Server) handleSaveFarmerData(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	fields, err := domain.ParseSubmission(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sub, err := s.deps.Submissions.Append(r.Context(), fields)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.deps.Metrics.SubmissionsStored.Inc()

	sharedobs.WriteJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		ID      int    `json:"id"`
	}{true, "Data saved successfully", sub.ID})
}

func (s *Server) handlePredictYield(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	in, err := domain.ParseYieldRequest(body, s.deps.Reference.DefaultCrop)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	est, err := domain.PredictYield(s.deps.Reference, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		domain.YieldEstimate
	}{true, est})
}

func (s *Server) handleAnalyzePlant(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Analysis endpoint ready",
	})
}

func (s *Server) handleWeatherConfig(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]string{
		"apiKey":  s.deps.WeatherAPIKey,
		"message": "Using mock weather data for demonstration",
	})
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	lat, lng := r.PathValue("lat"), r.PathValue("lng")
	logger := s.logger.With("request_id", requestIDFrom(r.Context()))
	logger.Debug("weather requested", "lat", lat, "lng", lng)

	sample, err := s.deps.Weather.Synthesize(r.Context(), lat, lng)
	if err != nil {
		logger.Debug("weather fallback", "error", err)
		s.deps.Metrics.HandlerFailures.WithLabelValues(routeOf(r)).Inc()
		sharedobs.WriteJSON(w, http.StatusOK, struct {
			failure
			Data domain.WeatherSample `json:"data"`
		}{failure{Error: err.Error()}, sample})
		return
	}

	logger.Debug("weather generated", "location", sample.Location, "temperature", sample.Temperature)
	sharedobs.WriteJSON(w, http.StatusOK, struct {
		Success bool                 `json:"success"`
		Data    domain.WeatherSample `json:"data"`
	}{true, sample})
}

// fail writes the failure envelope and counts it against the matched route.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.deps.Metrics.HandlerFailures.WithLabelValues(routeOf(r)).Inc()
	s.logger.Warn("request failed",
		"route", routeOf(r),
		"error", err,
		"request_id", requestIDFrom(r.Context()),
	)
	sharedobs.WriteJSON(w, http.StatusOK, failure{Error: err.Error()})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return body, nil
}
