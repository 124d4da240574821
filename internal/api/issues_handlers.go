package api

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Issue mirrors a row of the issues table.
type Issue struct {
	ID                string  `json:"id"`
	Priority          string  `json:"priority"`
	DateLogged        string  `json:"date_logged"`
	LastUpdated       string  `json:"last_updated"`
	Area              *string `json:"area"`
	EquipmentLocation *string `json:"equipment_location"`
	Description       string  `json:"description"`
	Notes             *string `json:"notes"`
	Status            string  `json:"status"`
	TargetDate        *string `json:"target_date"`
	AssignedTo        *string `json:"assigned_to"`
}

// statusAliases maps friendly status tokens from the UI to stored
// values. "resolved" is treated as closed.
var statusAliases = map[string]string{
	"open":           "Open",
	"in progress":    "In Progress",
	"inprogress":     "In Progress",
	"resolved":       "Closed",
	"closed":         "Closed",
	"archived":       "Archived",
	"awaiting parts": "Awaiting Parts",
	"awaitingparts":  "Awaiting Parts",
	"blocked":        "Blocked",
}

func normalizeStatusToken(s string) string {
	key := strings.TrimSpace(strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(s)))
	if mapped, ok := statusAliases[key]; ok {
		return mapped
	}
	return s
}

// HandleListIssues returns issues, optionally filtered by status,
// category (the area column), or a free-text search over description,
// notes, and equipment location.
func (s *Service) HandleListIssues(w http.ResponseWriter, r *http.Request) {
	var filters []string
	var params []interface{}

	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		filters = append(filters, "LOWER(status) = LOWER(?)")
		params = append(params, normalizeStatusToken(status))
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		filters = append(filters, "LOWER(area) = LOWER(?)")
		params = append(params, category)
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + q + "%"
		filters = append(filters, "(LOWER(description) LIKE LOWER(?) OR LOWER(notes) LIKE LOWER(?) OR LOWER(equipment_location) LIKE LOWER(?))")
		params = append(params, like, like, like)
	}

	query := `SELECT id, priority, date_logged, last_updated, area, equipment_location,
		description, notes, status, target_date, assigned_to FROM issues`
	if len(filters) > 0 {
		query += " WHERE " + strings.Join(filters, " AND ")
	}
	query += " ORDER BY date_logged DESC"

	rows, err := s.db.Query(s.db.Rebind(query), params...)
	if err != nil {
		log.Printf("[api] GET /api/issues failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve issues")
		return
	}
	defer rows.Close()

	out := []Issue{}
	for rows.Next() {
		var i Issue
		if err := rows.Scan(&i.ID, &i.Priority, &i.DateLogged, &i.LastUpdated, &i.Area,
			&i.EquipmentLocation, &i.Description, &i.Notes, &i.Status, &i.TargetDate, &i.AssignedTo); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to retrieve issues")
			return
		}
		out = append(out, i)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleCreateIssue creates an issue with a padded sequence id
// ("IS-001"). Description, priority, status, and target date are
// required.
func (s *Service) HandleCreateIssue(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pick := func(names ...string) string {
		for _, n := range names {
			if v := strings.TrimSpace(body[n]); v != "" {
				return v
			}
		}
		return ""
	}

	description := pick("description", "title", "problem", "desc")
	priority := pick("priority", "priority_level")
	status := pick("status", "status_text", "state")
	if status == "" {
		status = "Open"
	}
	area := pick("area", "category", "tab")
	equipmentLocation := pick("equipment_location", "equipment_name", "location", "equipment", "game")
	notes := pick("notes", "note", "details")
	targetDate := pick("target_date", "target", "due_date")
	assignedTo := pick("assigned_to", "assignee", "assigned", "employee")

	var missing []string
	for _, f := range []struct{ name, val string }{
		{"description", description}, {"priority", priority}, {"target_date", targetDate},
	} {
		if f.val == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "Missing required fields", "missing_fields": missing,
		})
		return
	}

	issueID, err := s.db.NextPaddedID("issue", "IS-", 3)
	if err != nil {
		log.Printf("[api] POST /api/issues id generation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	_, err = s.db.Exec(s.db.Rebind(
		`INSERT INTO issues (id, description, priority, status, area, equipment_location, notes, target_date, assigned_to)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		issueID, description, priority, status, nullable(area), nullable(equipmentLocation),
		nullable(notes), targetDate, nullable(assignedTo))
	if err != nil {
		log.Printf("[api] POST /api/issues failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Issue added successfully!", "issue_id": issueID,
	})
}

var issueUpdateColumns = []string{
	"description", "area", "equipment_location", "priority",
	"status", "notes", "assigned_to", "target_date",
}

// HandleUpdateIssue applies a partial update and bumps last_updated.
func (s *Service) HandleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	issueID := chi.URLParam(r, "issueID")

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var setParts []string
	var values []interface{}
	for _, col := range issueUpdateColumns {
		if v, ok := body[col]; ok {
			setParts = append(setParts, col+" = ?")
			values = append(values, v)
		}
	}
	if len(setParts) == 0 {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}
	setParts = append(setParts, "last_updated = CURRENT_TIMESTAMP")

	query := "UPDATE issues SET " + strings.Join(setParts, ", ") + " WHERE id = ?"
	values = append(values, issueID)

	res, err := s.db.Exec(s.db.Rebind(query), values...)
	if err != nil {
		log.Printf("[api] PUT /api/issues/%s failed: %v", issueID, err)
		writeError(w, http.StatusInternalServerError, "Failed to update issue")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Issue updated", "issue_id": issueID})
}

// HandleDeleteIssue removes an issue.
func (s *Service) HandleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	issueID := chi.URLParam(r, "issueID")

	res, err := s.db.Exec(s.db.Rebind(`DELETE FROM issues WHERE id = ?`), issueID)
	if err != nil {
		log.Printf("[api] DELETE /api/issues/%s failed: %v", issueID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete issue")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Issue deleted", "issue_id": issueID})
}

// HandleOpenIssueCount returns the number of open issues.
func (s *Service) HandleOpenIssueCount(w http.ResponseWriter, r *http.Request) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM issues WHERE status = 'Open'`).Scan(&count)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"count": 0, "error": "Database error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// HandleUrgentIssueCount returns the number of open high-priority
// issues.
func (s *Service) HandleUrgentIssueCount(w http.ResponseWriter, r *http.Request) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM issues WHERE status = 'Open' AND (priority = 'IMMEDIATE' OR priority = 'High')`).Scan(&count)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"count": 0, "error": "Database error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// HandleEquipmentLocations lists recently used equipment locations for
// the issue form's autocomplete.
func (s *Service) HandleEquipmentLocations(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(
		`SELECT equipment_location, MAX(date_logged) AS last_used
		 FROM issues
		 WHERE equipment_location IS NOT NULL AND TRIM(equipment_location) <> ''
		 GROUP BY equipment_location
		 ORDER BY last_used DESC
		 LIMIT 50`)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"items": []string{}, "error": "failed"})
		return
	}
	defer rows.Close()

	items := []string{}
	for rows.Next() {
		var loc string
		var lastUsed sql.NullString
		if err := rows.Scan(&loc, &lastUsed); err != nil {
			continue
		}
		if loc != "" {
			items = append(items, loc)
		}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"items": items})
}

// nullable turns "" into NULL for optional text columns.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
