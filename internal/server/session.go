// Package server runs the per-connection worker that walks each connection
// through joining, the active read loop, and cleanup.
package server

import (
	"errors"
	"log/slog"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// sessionState is the position of a connection in its lifecycle.
type sessionState int

const (
	stateConnecting sessionState = iota
	stateJoining
	stateActive
	stateClosing
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateJoining:
		return "joining"
	case stateActive:
		return "active"
	case stateClosing:
		return "closing"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// session is the worker bound to one connection. It owns the read side of the
// client and is the only caller of Join and Leave for it.
type session struct {
	server *Server
	client *Client
	room   *chat.Room
	state  sessionState
	log    *slog.Logger
}

func newSession(server *Server, client *Client) *session {
	return &session{
		server: server,
		client: client,
		state:  stateConnecting,
		log:    client.log,
	}
}

func (s *session) transition(next sessionState) {
	s.log.Debug("Session state change", "from", s.state, "to", next)
	s.state = next
}

// run blocks until the connection is finished. Leave always runs on the way
// out, whatever ended the read loop.
func (s *session) run() {
	defer s.close()

	s.transition(stateJoining)
	room, _, err := s.server.registry.Join(s.client.room, s.client)
	if err != nil {
		if errors.Is(err, chat.ErrPeerUnresponsive) {
			s.log.Warn("Client dropped while joining", "error", err)
			return
		}
		s.log.Error("Failed to join room", "error", err)
		return
	}
	s.room = room

	s.transition(stateActive)
	s.client.setupReadConnection()
	for {
		raw, ok := s.client.readFrame()
		if !ok {
			return
		}
		s.dispatch(raw)
	}
}

// dispatch handles one inbound frame. Every rejection is reported to this
// connection only and the connection stays open.
func (s *session) dispatch(raw []byte) {
	if !s.client.checkRateLimit() {
		s.client.sendError(chat.ErrorRateLimited)
		return
	}

	in, err := chat.DecodeInbound(raw)
	if err != nil {
		s.log.Info("Invalid message", "error", err)
		s.client.sendError(chat.ErrorInvalidFormat)
		return
	}

	if _, err := s.room.Publish(s.client, in.Content); err != nil {
		switch {
		case errors.Is(err, chat.ErrInvalidPayload):
			s.client.sendError(chat.ErrorEmptyContent)
		case errors.Is(err, chat.ErrNotMember), errors.Is(err, chat.ErrInvalidState):
			s.log.Debug("Publish after removal from room", "error", err)
		default:
			s.log.Error("Publish failed", "error", err)
		}
	}
}

func (s *session) close() {
	s.transition(stateClosing)
	if s.room != nil {
		s.room.Leave(s.client)
	}
	s.client.Close()
	s.server.untrack(s.client)
	s.transition(stateClosed)
}
