package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Game mirrors a row of the game inventory table.
type Game struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	DownReason *string `json:"down_reason"`
	UpdatedAt  *string `json:"updated_at"`
}

// HandleListGames returns the game inventory in id order.
func (s *Service) HandleListGames(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`SELECT id, name, status, down_reason, updated_at FROM games ORDER BY id`)
	if err != nil {
		log.Printf("[api] GET /api/games failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve games")
		return
	}
	defer rows.Close()

	out := []Game{}
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Name, &g.Status, &g.DownReason, &g.UpdatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to retrieve games")
			return
		}
		out = append(out, g)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleCreateGame adds a machine to the inventory. Status must be
// "Up" or "Down" (enforced by the table's CHECK constraint).
func (s *Service) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string  `json:"name"`
		Status     string  `json:"status"`
		DownReason *string `json:"down_reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Name == "" || body.Status == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: name, status")
		return
	}

	_, err := s.db.Exec(s.db.Rebind(
		`INSERT INTO games (name, status, down_reason, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`),
		body.Name, body.Status, body.DownReason)
	if err != nil {
		log.Printf("[api] POST /api/games failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to add game")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Game added successfully!"})
}

// HandleUpdateGame applies a partial update and bumps updated_at.
func (s *Service) HandleUpdateGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var setParts []string
	var values []interface{}
	for _, col := range []string{"name", "status", "down_reason"} {
		if v, ok := body[col]; ok {
			setParts = append(setParts, col+" = ?")
			values = append(values, v)
		}
	}
	if len(setParts) == 0 {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}
	setParts = append(setParts, "updated_at = CURRENT_TIMESTAMP")
	values = append(values, gameID)

	res, err := s.db.Exec(s.db.Rebind(
		"UPDATE games SET "+strings.Join(setParts, ", ")+" WHERE id = ?"), values...)
	if err != nil {
		log.Printf("[api] PUT /api/games/%s failed: %v", gameID, err)
		writeError(w, http.StatusInternalServerError, "Failed to update game")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "Game not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Game updated successfully!"})
}

// HandleDeleteGame removes a machine from the inventory.
func (s *Service) HandleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	res, err := s.db.Exec(s.db.Rebind(`DELETE FROM games WHERE id = ?`), gameID)
	if err != nil {
		log.Printf("[api] DELETE /api/games/%s failed: %v", gameID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "Game not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Game deleted successfully!"})
}
