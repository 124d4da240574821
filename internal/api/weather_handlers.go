package api

import (
	"log"
	"net/http"
)

// HandleWeather returns current conditions for the dashboard widget.
func (s *Service) HandleWeather(w http.ResponseWriter, r *http.Request) {
	if s.weather == nil || !s.weather.Configured() {
		writeError(w, http.StatusServiceUnavailable, "weather not configured")
		return
	}
	conditions, err := s.weather.Current()
	if err != nil {
		log.Printf("[api] weather fetch failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch weather data", "details": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, conditions)
}
