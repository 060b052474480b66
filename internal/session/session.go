// Package session is the client side of a room: it keeps one connection to the
// chat server alive, reconnecting with backoff, and hands every event to a
// Renderer.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/roomchat/internal/chat"
)

var (
	// ErrNotConnected is returned by Send between connections.
	ErrNotConnected = errors.New("not connected")
	// ErrRejected means the server refused the join parameters. Reconnecting
	// with the same parameters cannot succeed.
	ErrRejected = errors.New("connection rejected by server")
)

const writeTimeout = 10 * time.Second

// Session owns the connection for one room and participant.
type Session struct {
	cfg    Config
	dialer *websocket.Dialer
	render Renderer
	log    *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

func New(cfg Config, render Renderer, log *slog.Logger) *Session {
	return &Session{
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		render: render,
		log:    log.With("room", cfg.Room, "participant", cfg.Username),
	}
}

// Run connects and keeps reconnecting until ctx is cancelled. The wait
// between attempts starts at ReconnectDelay, doubles up to MaxReconnectDelay
// and goes back to ReconnectDelay after every successful connect.
func (s *Session) Run(ctx context.Context) error {
	endpoint, err := s.cfg.URL()
	if err != nil {
		return err
	}

	delay := s.cfg.ReconnectDelay
	for {
		conn, err := s.dial(ctx, endpoint)
		if err == nil {
			delay = s.cfg.ReconnectDelay
			s.render.Status(fmt.Sprintf("Connected to room %s as %s", s.cfg.Room, s.cfg.Username))
			err = s.readLoop(ctx, conn)
		}
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrRejected) {
			return err
		}

		s.log.Info("Connection lost", "error", err, "retry", delay)
		s.render.Status(fmt.Sprintf("Disconnected, reconnecting in %s", delay))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, s.cfg.MaxReconnectDelay)
	}
}

// Send publishes content to the room. Blank input is ignored.
func (s *Session) Send(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrNotConnected
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(chat.Inbound{Type: chat.TypeMessage, Content: content})
}

func (s *Session) dial(ctx context.Context, endpoint string) (*websocket.Conn, error) {
	conn, resp, err := s.dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	s.setConn(conn)
	return conn, nil
}

func (s *Session) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

// readLoop renders frames until the connection ends. Cancelling ctx sends a
// normal close and unblocks the read.
func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) error {
	stop := context.AfterFunc(ctx, func() {
		frame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer func() {
		stop()
		s.setConn(nil)
		_ = conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
				return fmt.Errorf("%w: %v", ErrRejected, err)
			}
			return err
		}
		s.dispatch(raw)
	}
}

func (s *Session) dispatch(raw []byte) {
	var env chat.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.log.Warn("Dropping unreadable frame", "error", err)
		return
	}

	switch env.Type {
	case chat.TypeHistory:
		s.render.History(env.Messages)
	case chat.TypeMessage:
		msg := chat.Message{ID: env.ID, Content: env.Content, Sender: env.Sender, RoomID: env.RoomID}
		if ts, err := time.Parse(time.RFC3339Nano, env.Timestamp); err == nil {
			msg.Timestamp = ts
		}
		s.render.Message(msg)
	case chat.TypeUserCount:
		s.render.UserCount(env.Count)
	case chat.TypeError:
		s.render.Error(env.Message)
	default:
		s.log.Debug("Ignoring unknown event", "type", env.Type)
	}
}
