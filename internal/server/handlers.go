// Package server exposes HTTP handlers, including WebSocket upgrades and
// health checks.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketHandler upgrades the request and walks the connection through its
// lifecycle. Requests without a room or username are upgraded and then closed
// with a policy violation frame so browsers see the reason.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	params, paramErr := parseJoinParams(r)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "addr", r.RemoteAddr, "error", err)
		return
	}

	if paramErr != nil {
		s.log.Info("Rejecting connection", "addr", r.RemoteAddr, "error", paramErr)
		s.rejectConnection(conn, websocket.ClosePolicyViolation, connectRejectReason(paramErr))
		return
	}

	client := NewClient(conn, params, r.RemoteAddr, s.cfg, s.log)
	if !s.hub.track(client) {
		s.rejectConnection(conn, websocket.CloseGoingAway, "Server shutting down")
		return
	}

	go func() {
		defer s.hub.wg.Done()
		client.writePump()
	}()
	go func() {
		defer s.hub.wg.Done()
		newSession(s, client).run()
	}()
}

// rejectConnection sends a close frame and drops a connection that never
// became a room member.
func (s *Server) rejectConnection(conn *websocket.Conn, code int, reason string) {
	frame := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		s.log.Debug("Error writing close frame", "error", err)
	}
	if err := conn.Close(); err != nil && !isExpectedCloseError(err) {
		s.log.Warn("Error closing rejected connection", "error", err)
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
// It responds with a plain text message indicating the server is running.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Room chat server is running!")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
