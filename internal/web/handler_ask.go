package web

import (
	"encoding/json"
	"net/http"
	"strings"
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// answerUnavailable is what the chat box shows when the relay fails. The chat
// feature degrades to a canned answer; it never turns a model outage into a
// failed request.
const answerUnavailable = "Sorry, I could not get an answer right now."

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		s.writeAnswer(w, "Please enter a question.")
		return
	}

	answer, err := s.responder.Respond(r.Context(), question)
	if err != nil {
		s.logger.Error("assist request failed", "account_id", accountID(r), "error", err)
		s.writeAnswer(w, answerUnavailable)
		return
	}

	s.writeAnswer(w, answer)
}

func (s *Server) writeAnswer(w http.ResponseWriter, answer string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(askResponse{Answer: answer}); err != nil {
		s.logger.Error("write answer failed", "error", err)
	}
}
