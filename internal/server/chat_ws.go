package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string `json:"type"`       // "message" or "email"
	SessionID string `json:"session_id"` // empty for new sessions
	Content   string `json:"content"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string `json:"type"` // "response" or "error"
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWSError(conn, "", "invalid message format")
			continue
		}

		if req.Content == "" {
			s.sendWSError(conn, req.SessionID, "content is required")
			continue
		}

		switch req.Type {
		case "message":
			s.handleWSMessage(conn, r, req)
		case "email":
			s.handleWSEmail(conn, req)
		default:
			s.sendWSError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) handleWSMessage(conn *websocket.Conn, r *http.Request, req wsRequest) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sess := s.sessions.GetOrCreate(sessionID)
	reply := s.engine.Respond(r.Context(), sess, req.Content)

	s.sendWS(conn, wsResponse{
		Type:      "response",
		SessionID: sessionID,
		Content:   reply,
	})
}

func (s *Server) handleWSEmail(conn *websocket.Conn, req wsRequest) {
	if req.SessionID == "" {
		s.sendWSError(conn, "", "session_id is required")
		return
	}
	sess := s.sessions.GetOrCreate(req.SessionID)
	sess.Lock()
	sess.SetEmail(req.Content)
	sess.Unlock()

	s.sendWS(conn, wsResponse{
		Type:      "response",
		SessionID: req.SessionID,
		Content:   "email updated",
	})
}

func (s *Server) sendWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, sessionID, message string) {
	resp := wsResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
	}
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write error: %v", err)
	}
}
