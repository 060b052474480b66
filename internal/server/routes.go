// Package server wires HTTP handlers into a chi router via routing helpers.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the router with every application route. Only GET is
// accepted; other methods get 405 from the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", HealthHandler)
	r.Get("/ws", s.WebSocketHandler)
	r.Get("/test", TestPageHandler)
	r.Route("/api", func(r chi.Router) {
		r.Get("/rooms", s.RoomsHandler)
		r.Get("/gifs/trending", s.TrendingHandler)
		r.Get("/chain/status", s.ChainStatusHandler)
	})
	return r
}
