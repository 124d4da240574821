package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Threshold defaults used when the settings table has no saved values.
const (
	defaultLowestTPT  = "2.00"
	defaultHighestTPT = "4.00"
	defaultTargetTPT  = "3.00"
)

// HandleGetTPTSettings returns the saved calculator settings, with
// defaults for anything never saved.
func (s *Service) HandleGetTPTSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.db.Settings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	get := func(key, fallback string) string {
		if v, ok := settings[key]; ok && v != "" {
			return v
		}
		return fallback
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lowestDesiredTpt":       get("lowestDesiredTpt", defaultLowestTPT),
		"highestDesiredTpt":      get("highestDesiredTpt", defaultHighestTPT),
		"targetTpt":              get("targetTpt", defaultTargetTPT),
		"includeBirthdayBlaster": get("includeBirthdayBlaster", "true") == "true",
	})
}

// HandleSaveTPTSettings upserts the calculator settings.
func (s *Service) HandleSaveTPTSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LowestDesiredTpt       string      `json:"lowestDesiredTpt"`
		HighestDesiredTpt      string      `json:"highestDesiredTpt"`
		TargetTpt              string      `json:"targetTpt"`
		IncludeBirthdayBlaster interface{} `json:"includeBirthdayBlaster"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	includeBB := strings.ToLower(fmt.Sprintf("%v", body.IncludeBirthdayBlaster))

	pairs := map[string]string{
		"lowestDesiredTpt":       body.LowestDesiredTpt,
		"highestDesiredTpt":      body.HighestDesiredTpt,
		"targetTpt":              body.TargetTpt,
		"includeBirthdayBlaster": includeBB,
	}
	for k, v := range pairs {
		if err := s.db.UpsertSetting(k, v); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save settings: %v", err))
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "TPT settings saved successfully!"})
}
