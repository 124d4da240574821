package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createIssue(t *testing.T, router http.Handler, fields map[string]string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/issues", fields)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp map[string]string
	decodeBody(t, rec, &resp)
	return resp["issue_id"]
}

func TestCreateIssue(t *testing.T) {
	_, router := newTestService(t)

	id := createIssue(t, router, map[string]string{
		"description":        "Ticket jam in left dispenser",
		"priority":           "High",
		"target_date":        "2026-09-01",
		"equipment_location": "Skee Ball 3",
		"area":               "Redemption",
	})
	assert.Equal(t, "IS-001", id)

	// IDs come from a padded sequence.
	id = createIssue(t, router, map[string]string{
		"description": "Screen flicker",
		"priority":    "Low",
		"target_date": "2026-09-15",
	})
	assert.Equal(t, "IS-002", id)
}

func TestCreateIssueAltFieldNames(t *testing.T) {
	_, router := newTestService(t)

	// The form has gone through several frontend revisions; older key
	// names still work.
	rec := doJSON(t, router, http.MethodPost, "/api/issues", map[string]string{
		"title":          "Coin mech stuck",
		"priority_level": "IMMEDIATE",
		"due_date":       "2026-09-01",
		"game":           "Big Wheel",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateIssueMissingFields(t *testing.T) {
	_, router := newTestService(t)

	rec := doJSON(t, router, http.MethodPost, "/api/issues", map[string]string{
		"description": "No priority or date",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error         string   `json:"error"`
		MissingFields []string `json:"missing_fields"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Missing required fields", resp.Error)
	assert.ElementsMatch(t, []string{"priority", "target_date"}, resp.MissingFields)
}

func TestListIssues(t *testing.T) {
	_, router := newTestService(t)

	createIssue(t, router, map[string]string{
		"description": "Ticket jam", "priority": "High", "target_date": "2026-09-01",
		"equipment_location": "Skee Ball 3",
	})
	createIssue(t, router, map[string]string{
		"description": "Broken button", "priority": "Low", "target_date": "2026-09-02",
	})

	rec := doJSON(t, router, http.MethodGet, "/api/issues", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var issues []Issue
	decodeBody(t, rec, &issues)
	assert.Len(t, issues, 2)
}

func TestListIssuesFilters(t *testing.T) {
	_, router := newTestService(t)

	id := createIssue(t, router, map[string]string{
		"description": "Ticket jam", "priority": "High", "target_date": "2026-09-01",
		"area": "Redemption",
	})
	createIssue(t, router, map[string]string{
		"description": "Broken button", "priority": "Low", "target_date": "2026-09-02",
		"area": "Arcade",
	})

	// Close the first one.
	rec := doJSON(t, router, http.MethodPut, "/api/issues/"+id, map[string]interface{}{"status": "Closed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/issues?status=open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var issues []Issue
	decodeBody(t, rec, &issues)
	require.Len(t, issues, 1)
	assert.Equal(t, "Broken button", issues[0].Description)

	// "resolved" is an alias for the stored Closed status.
	rec = doJSON(t, router, http.MethodGet, "/api/issues?status=resolved", nil)
	decodeBody(t, rec, &issues)
	require.Len(t, issues, 1)
	assert.Equal(t, "Ticket jam", issues[0].Description)

	rec = doJSON(t, router, http.MethodGet, "/api/issues?category=Arcade", nil)
	decodeBody(t, rec, &issues)
	require.Len(t, issues, 1)
	assert.Equal(t, "Broken button", issues[0].Description)

	rec = doJSON(t, router, http.MethodGet, "/api/issues?q=jam", nil)
	decodeBody(t, rec, &issues)
	require.Len(t, issues, 1)
	assert.Equal(t, "Ticket jam", issues[0].Description)
}

func TestUpdateIssue(t *testing.T) {
	_, router := newTestService(t)

	id := createIssue(t, router, map[string]string{
		"description": "Ticket jam", "priority": "High", "target_date": "2026-09-01",
	})

	rec := doJSON(t, router, http.MethodPut, "/api/issues/"+id, map[string]interface{}{
		"status": "In Progress",
		"notes":  "Ordered replacement belt",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/issues", nil)
	var issues []Issue
	decodeBody(t, rec, &issues)
	require.Len(t, issues, 1)
	assert.Equal(t, "In Progress", issues[0].Status)
	require.NotNil(t, issues[0].Notes)
	assert.Equal(t, "Ordered replacement belt", *issues[0].Notes)
}

func TestUpdateIssueNotFound(t *testing.T) {
	_, router := newTestService(t)

	rec := doJSON(t, router, http.MethodPut, "/api/issues/IS-999", map[string]interface{}{"status": "Closed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateIssueNoFields(t *testing.T) {
	_, router := newTestService(t)

	rec := doJSON(t, router, http.MethodPut, "/api/issues/IS-001", map[string]interface{}{"bogus": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteIssue(t *testing.T) {
	_, router := newTestService(t)

	id := createIssue(t, router, map[string]string{
		"description": "Ticket jam", "priority": "High", "target_date": "2026-09-01",
	})

	rec := doJSON(t, router, http.MethodDelete, "/api/issues/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/issues/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIssueCounts(t *testing.T) {
	_, router := newTestService(t)

	createIssue(t, router, map[string]string{
		"description": "Urgent jam", "priority": "IMMEDIATE", "target_date": "2026-09-01",
	})
	createIssue(t, router, map[string]string{
		"description": "Minor scuff", "priority": "Low", "target_date": "2026-09-01",
	})

	rec := doJSON(t, router, http.MethodGet, "/api/issues/count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count": 2}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/urgent_issues_count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count": 1}`, rec.Body.String())
}

func TestEquipmentLocations(t *testing.T) {
	_, router := newTestService(t)

	createIssue(t, router, map[string]string{
		"description": "Jam", "priority": "High", "target_date": "2026-09-01",
		"equipment_location": "Skee Ball 3",
	})
	createIssue(t, router, map[string]string{
		"description": "Flicker", "priority": "Low", "target_date": "2026-09-01",
		"equipment_location": "Big Wheel",
	})
	createIssue(t, router, map[string]string{
		"description": "No location", "priority": "Low", "target_date": "2026-09-01",
	})

	rec := doJSON(t, router, http.MethodGet, "/api/equipment_locations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []string `json:"items"`
	}
	decodeBody(t, rec, &resp)
	assert.ElementsMatch(t, []string{"Skee Ball 3", "Big Wheel"}, resp.Items)
}

func TestNormalizeStatusToken(t *testing.T) {
	assert.Equal(t, "Open", normalizeStatusToken("open"))
	assert.Equal(t, "In Progress", normalizeStatusToken("in_progress"))
	assert.Equal(t, "Closed", normalizeStatusToken("Resolved"))
	assert.Equal(t, "Awaiting Parts", normalizeStatusToken("awaiting-parts"))
	assert.Equal(t, "Custom", normalizeStatusToken("Custom"))
}
