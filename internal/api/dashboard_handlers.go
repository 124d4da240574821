package api

import (
	"log"
	"net/http"
	"time"
)

// HandleDashboardMetrics returns the headline counts the dashboard
// tiles poll: open and in-progress issues, in-progress issues not
// touched today, issues past their target date, and machines marked
// down.
func (s *Service) HandleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	today := time.Now().Format("2006-01-02")

	count := func(query string, args ...interface{}) (int, error) {
		var n int
		err := s.db.QueryRow(s.db.Rebind(query), args...).Scan(&n)
		return n, err
	}

	openIssues, err := count(`SELECT COUNT(*) FROM issues WHERE status = 'Open'`)
	if err != nil {
		log.Printf("[api] GET /api/dashboard/metrics failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute dashboard metrics")
		return
	}
	inProgress, err := count(`SELECT COUNT(*) FROM issues WHERE status = 'In Progress'`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute dashboard metrics")
		return
	}
	staleInProgress, err := count(
		`SELECT COUNT(*) FROM issues WHERE status = 'In Progress' AND DATE(last_updated) < ?`, today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute dashboard metrics")
		return
	}
	overdueTargets, err := count(
		`SELECT COUNT(*) FROM issues
		 WHERE target_date IS NOT NULL
		   AND DATE(target_date) < ?
		   AND status NOT IN ('Closed', 'Archived')`, today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute dashboard metrics")
		return
	}
	downGames, err := count(`SELECT COUNT(*) FROM games WHERE LOWER(status) = 'down'`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute dashboard metrics")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"open_issues":       openIssues,
		"in_progress":       inProgress,
		"stale_in_progress": staleInProgress,
		"overdue_targets":   overdueTargets,
		"down_games":        downGames,
	})
}
