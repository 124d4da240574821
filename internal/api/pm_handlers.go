package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// PMLog is one preventive-maintenance entry.
type PMLog struct {
	ID          int64   `json:"id"`
	GameName    string  `json:"game_name"`
	PerformedAt string  `json:"performed_at"`
	PerformedBy *string `json:"performed_by"`
	Notes       *string `json:"notes"`
}

// HandleListPMs returns preventive-maintenance logs, newest first.
func (s *Service) HandleListPMs(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(
		`SELECT id, game_name, performed_at, performed_by, notes FROM pm_logs ORDER BY performed_at DESC`)
	if err != nil {
		log.Printf("[api] GET /api/pms failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve PM logs")
		return
	}
	defer rows.Close()

	out := []PMLog{}
	for rows.Next() {
		var p PMLog
		if err := rows.Scan(&p.ID, &p.GameName, &p.PerformedAt, &p.PerformedBy, &p.Notes); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to retrieve PM logs")
			return
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleAddPM records a completed preventive-maintenance task.
func (s *Service) HandleAddPM(w http.ResponseWriter, r *http.Request) {
	var body struct {
		GameName    string  `json:"game_name"`
		PerformedAt string  `json:"performed_at"`
		PerformedBy *string `json:"performed_by"`
		Notes       *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.GameName == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: game_name")
		return
	}

	var err error
	if body.PerformedAt != "" {
		_, err = s.db.Exec(s.db.Rebind(
			`INSERT INTO pm_logs (game_name, performed_at, performed_by, notes) VALUES (?, ?, ?, ?)`),
			body.GameName, body.PerformedAt, body.PerformedBy, body.Notes)
	} else {
		_, err = s.db.Exec(s.db.Rebind(
			`INSERT INTO pm_logs (game_name, performed_by, notes) VALUES (?, ?, ?)`),
			body.GameName, body.PerformedBy, body.Notes)
	}
	if err != nil {
		log.Printf("[api] POST /api/pms/add failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to log PM")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "PM logged successfully!"})
}
