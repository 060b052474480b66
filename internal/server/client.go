// Package server manages individual WebSocket connection handles, handling
// the write pump, keepalive, liveness, and rate limiting for each member.
package server

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// Liveness is the lifecycle state of a connection handle.
type Liveness int32

const (
	LivenessOpen Liveness = iota
	LivenessClosing
	LivenessClosed
)

func (l Liveness) String() string {
	switch l {
	case LivenessOpen:
		return "open"
	case LivenessClosing:
		return "closing"
	case LivenessClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client represents one participant's WebSocket connection. It is the room's
// member for that participant: broadcasts are queued with Send and written
// out by writePump, while the session worker owns the read side.
type Client struct {
	id          string
	room        string
	participant string
	addr        string

	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	limiter *tokenBucket
	cfg     Config
	log     *slog.Logger

	liveness   atomic.Int32
	closeCode  atomic.Int32
	signalOnce sync.Once
}

// NewClient creates a connection handle bound to params.Room for its whole
// lifetime. conn may be nil in tests that only exercise the queue.
func NewClient(conn *websocket.Conn, params JoinParams, addr string, cfg Config, log *slog.Logger) *Client {
	if conn != nil {
		conn.SetReadLimit(int64(cfg.MaxMessageSize))
	}
	id := uuid.NewString()
	c := &Client{
		id:          id,
		room:        params.Room,
		participant: params.Username,
		addr:        addr,
		conn:        conn,
		send:        make(chan []byte, cfg.SendBufferSize),
		done:        make(chan struct{}),
		limiter:     newTokenBucket(cfg.RateLimit(), nil),
		cfg:         cfg,
		log:         log.With("handle", id, "room", params.Room, "participant", params.Username, "addr", addr),
	}
	c.closeCode.Store(websocket.CloseNormalClosure)
	return c
}

// ID returns the handle identifier.
func (c *Client) ID() string {
	return c.id
}

// Participant returns the display name supplied at connect time.
func (c *Client) Participant() string {
	return c.participant
}

// Room returns the room the handle is bound to.
func (c *Client) Room() string {
	return c.room
}

// Liveness returns the current lifecycle state.
func (c *Client) Liveness() Liveness {
	return Liveness(c.liveness.Load())
}

// Send queues payload without blocking. A full queue means the peer stopped
// reading: the handle moves to closing, its connection is torn down and the
// room drops it.
func (c *Client) Send(payload []byte) error {
	if c.Liveness() != LivenessOpen {
		return chat.ErrMemberClosed
	}

	select {
	case c.send <- payload:
		return nil
	default:
		c.log.Warn("Send buffer full, closing unresponsive client", "buffer", cap(c.send))
		c.beginClose(websocket.CloseTryAgainLater)
		return chat.ErrPeerUnresponsive
	}
}

// sendError queues an error event for this connection only.
func (c *Client) sendError(text string) {
	if err := c.Send(chat.EncodeError(text)); err != nil {
		c.log.Debug("Error event not delivered", "error", err)
	}
}

// beginClose moves an open handle to closing and wakes the write pump, which
// sends a close frame with code and tears the connection down.
func (c *Client) beginClose(code int) {
	if c.liveness.CompareAndSwap(int32(LivenessOpen), int32(LivenessClosing)) {
		c.closeCode.Store(int32(code))
	}
	c.signalOnce.Do(func() { close(c.done) })
}

// Close is idempotent. It marks the handle closed, stops the write pump and
// discards whatever is still queued.
func (c *Client) Close() {
	c.beginClose(websocket.CloseNormalClosure)
	c.liveness.Store(int32(LivenessClosed))
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

// setupReadConnection configures read deadlines and pong handler for the WebSocket connection
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout)); err != nil {
		c.log.Warn("Error setting initial read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout)); err != nil {
			c.log.Warn("Error setting read deadline in pong handler", "error", err)
		}
		return nil
	})
}

// readFrame blocks for the next inbound frame and reports false once the
// connection is finished.
func (c *Client) readFrame() ([]byte, bool) {
	_, raw, err := c.conn.ReadMessage()
	if err != nil {
		c.logReadError(err)
		return nil, false
	}
	return raw, true
}

// logReadError logs a terminal read error at a level matching its cause.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("Message exceeded maximum size", "limit", c.cfg.MaxMessageSize)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived):
		c.log.Info("Client disconnected", "reason", err)
	case errors.Is(err, io.EOF) || isExpectedCloseError(err) || c.Liveness() != LivenessOpen:
		c.log.Info("Client connection closed", "reason", err)
	case websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseMessageTooBig):
		c.log.Warn("Unexpected WebSocket close", "error", err)
	default:
		c.log.Warn("WebSocket read error", "error", err)
	}
}

// checkRateLimit reports whether the next inbound frame may be processed.
func (c *Client) checkRateLimit() bool {
	if c.limiter.allow() {
		return true
	}
	c.log.Warn("Rate limit exceeded; discarding message",
		"burst", c.cfg.RateLimitBurst, "interval", c.cfg.RateLimitRefill)
	return false
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval())
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for c.processWriteEvent(ticker) {
	}
}

// processWriteEvent waits for the next write event and returns false when the
// pump should stop processing.
func (c *Client) processWriteEvent(ticker *time.Ticker) bool {
	select {
	case message := <-c.send:
		return c.writeTextMessage(message) && c.writeQueuedMessages()
	case <-ticker.C:
		return c.handlePing()
	case <-c.done:
		return c.writeCloseMessage()
	}
}

// closeConnection safely closes the WebSocket connection with proper error handling
func (c *Client) closeConnection() {
	if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
		c.log.Warn("Error closing connection", "error", err)
	}
}

// writeCloseMessage sends the close frame chosen by whoever closed the handle.
func (c *Client) writeCloseMessage() bool {
	frame := websocket.FormatCloseMessage(int(c.closeCode.Load()), "")
	deadline := time.Now().Add(c.cfg.WriteTimeout)
	if err := c.conn.WriteControl(websocket.CloseMessage, frame, deadline); err != nil && !isExpectedCloseError(err) {
		c.log.Debug("Error writing close message", "error", err)
	}
	return false
}

// writeTextMessage writes one event as its own frame. A write that cannot
// finish before the write timeout fails and ends the pump.
func (c *Client) writeTextMessage(message []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		c.log.Warn("Error setting write deadline", "error", err)
		return false
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Warn("Error writing message", "error", err)
		}
		return false
	}
	return true
}

// writeQueuedMessages flushes whatever was queued while the last frame was
// being written, each event in its own frame.
func (c *Client) writeQueuedMessages() bool {
	n := len(c.send)
	for i := 0; i < n; i++ {
		select {
		case message := <-c.send:
			if !c.writeTextMessage(message) {
				return false
			}
		default:
			return true
		}
	}
	return true
}

// handlePing sends a ping message to keep the connection alive
func (c *Client) handlePing() bool {
	deadline := time.Now().Add(c.cfg.WriteTimeout)
	if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Warn("Error writing ping message", "error", err)
		}
		return false
	}
	return true
}
