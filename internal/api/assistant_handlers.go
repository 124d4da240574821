package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// HandleAssistantAsk proxies a single operator question to the chat
// model and returns the reply.
func (s *Service) HandleAssistantAsk(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil || !s.assistant.Configured() {
		writeError(w, http.StatusServiceUnavailable, "assistant not configured")
		return
	}

	var body struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	question := strings.TrimSpace(body.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "question required")
		return
	}

	reply, err := s.assistant.Ask(question)
	if err != nil {
		log.Printf("[api] assistant request failed: %v", err)
		writeError(w, http.StatusBadGateway, "assistant request failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
