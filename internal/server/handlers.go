package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

type chatRequest struct {
	SessionID string `json:"session_id"` // empty for new sessions
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

type setEmailRequest struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	sess := s.sessions.GetOrCreate(req.SessionID)
	reply := s.engine.Respond(r.Context(), sess, req.Message)

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: req.SessionID,
		Response:  reply,
	})
}

func (s *Server) handleSetEmail(w http.ResponseWriter, r *http.Request) {
	var req setEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "session_id and email are required")
		return
	}

	sess := s.sessions.GetOrCreate(req.SessionID)
	sess.Lock()
	sess.SetEmail(req.Email)
	sess.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
