// Package server tracks every live connection handle so the whole process can
// be shut down without leaving connections or rooms behind.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// hub is the set of live clients and the goroutines serving them. Rooms own
// membership; the hub only exists for shutdown and diagnostics.
type hub struct {
	mu           sync.Mutex
	clients      map[string]*Client
	shuttingDown bool
	wg           sync.WaitGroup
	log          *slog.Logger
}

func newHub(log *slog.Logger) *hub {
	return &hub{clients: make(map[string]*Client), log: log}
}

// track registers c and reserves its two pump goroutines. It refuses new
// clients once shutdown has started.
func (h *hub) track(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.shuttingDown {
		return false
	}
	h.clients[c.id] = c
	h.wg.Add(2)
	h.log.Debug("Client registered", "handle", c.id, "clients", len(h.clients))
	return true
}

func (h *hub) untrack(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	h.log.Debug("Client unregistered", "handle", c.id, "clients", len(h.clients))
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// shutdown closes every client with a going-away frame and waits for all
// client goroutines to finish, or for timeout.
func (h *hub) shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown")

	h.mu.Lock()
	h.shuttingDown = true
	clients := lo.Values(h.clients)
	h.mu.Unlock()

	for _, c := range clients {
		c.beginClose(websocket.CloseGoingAway)
	}
	h.log.Info("Closing client connections", "count", len(clients))

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
