// Package server wires the room registry, the connection hub and the optional
// collaborators into one Server owned by the process lifetime.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/roomchat/internal/chain"
	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/Tyrowin/roomchat/internal/klipy"
)

// TrendingFetcher is the content-fetch collaborator behind /api/gifs/trending.
type TrendingFetcher interface {
	FetchTrending(ctx context.Context, page, perPage int, locale string) ([]klipy.Item, error)
}

// ConnectivityChecker is the chain collaborator behind /api/chain/status.
type ConnectivityChecker interface {
	CheckConnectivity(ctx context.Context) (chain.Status, error)
}

// Server accepts WebSocket connections and routes them into rooms.
type Server struct {
	cfg      Config
	log      *slog.Logger
	registry *chat.Registry
	hub      *hub
	origins  *originPolicy
	upgrader websocket.Upgrader
	gifs     TrendingFetcher
	chain    ConnectivityChecker
	started  time.Time
}

// Option customises a Server.
type Option func(*Server)

// WithRegistry replaces the default room registry.
func WithRegistry(registry *chat.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

func WithTrendingFetcher(f TrendingFetcher) Option {
	return func(s *Server) {
		s.gifs = f
	}
}

func WithConnectivityChecker(c ConnectivityChecker) Option {
	return func(s *Server) {
		s.chain = c
	}
}

// New creates a Server. The registry is owned by the returned server unless
// one is injected with WithRegistry.
func New(cfg Config, log *slog.Logger, opts ...Option) *Server {
	cfg = sanitizeConfig(cfg)
	s := &Server{
		cfg:     cfg,
		log:     log,
		hub:     newHub(log),
		origins: newOriginPolicy(cfg.AllowedOrigins(), log),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = chat.NewRegistry(chat.WithLogger(log))
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.checkOrigin,
	}
	return s
}

// Registry returns the room registry.
func (s *Server) Registry() *chat.Registry {
	return s.registry
}

// ConnectionCount returns the number of live connections.
func (s *Server) ConnectionCount() int {
	return s.hub.count()
}

// Shutdown closes every connection, which in turn empties and releases every
// room. It does not stop the HTTP listener; see ShutdownServer.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.hub.shutdown(timeout)
}

func (s *Server) untrack(c *Client) {
	s.hub.untrack(c)
}
