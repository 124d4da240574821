package api

import (
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Health results are cached briefly so dashboard polling doesn't hammer
// the database.
const healthCacheTTL = 60 * time.Second

func checkOK(msg string) map[string]string {
	return map[string]string{"status": "ok", "message": msg}
}

func checkErr(msg string) map[string]string {
	return map[string]string{"status": "error", "message": msg}
}

func checkSkip(msg string) map[string]string {
	return map[string]string{"status": "skip", "message": msg}
}

// HandleHealth returns the cached rich health payload.
func (s *Service) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.healthMu.Lock()
	if s.healthPayload == nil || time.Since(s.healthAt) > healthCacheTTL {
		s.healthPayload = s.computeHealth()
		s.healthAt = time.Now()
	}
	payload := s.healthPayload
	s.healthMu.Unlock()

	writeJSON(w, http.StatusOK, payload)
}

// HandleHealthRefresh busts the cache and recomputes immediately.
func (s *Service) HandleHealthRefresh(w http.ResponseWriter, r *http.Request) {
	s.healthMu.Lock()
	s.healthPayload = s.computeHealth()
	s.healthAt = time.Now()
	payload := s.healthPayload
	s.healthMu.Unlock()

	writeJSON(w, http.StatusOK, payload)
}

func (s *Service) computeHealth() map[string]interface{} {
	checks := map[string]interface{}{
		"database": s.checkDatabase(),
		"storage":  s.checkReportsDir(),
		"weather":  s.checkWeather(),
	}

	overall := "ok"
	for _, c := range checks {
		if m, ok := c.(map[string]string); ok && m["status"] == "error" {
			overall = "degraded"
			break
		}
	}

	return map[string]interface{}{
		"status":     overall,
		"checks":     checks,
		"checked_at": time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *Service) checkDatabase() map[string]string {
	if err := s.db.Ping(); err != nil {
		return checkErr("database unreachable: " + err.Error())
	}
	return checkOK("database reachable (" + s.db.Driver + ")")
}

func (s *Service) checkReportsDir() map[string]string {
	dir := s.cfg.TPT.ReportsDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return checkErr("reports dir: " + err.Error())
	}
	probe := filepath.Join(dir, ".health_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return checkErr("reports dir not writable: " + err.Error())
	}
	os.Remove(probe)
	return checkOK("reports dir writable")
}

func (s *Service) checkWeather() map[string]string {
	if s.weather == nil || !s.weather.Configured() {
		return checkSkip("weather not configured")
	}
	return checkOK("weather configured")
}
