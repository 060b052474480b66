package server

import (
	"net/http"
	"strconv"
)

// TrendingHandler proxies the content-fetch collaborator. Upstream failures
// are reported once as 502; nothing is retried.
func (s *Server) TrendingHandler(w http.ResponseWriter, r *http.Request) {
	if s.gifs == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "content fetch is not configured")
		return
	}

	query := r.URL.Query()
	page := queryInt(query.Get("page"), 1)
	perPage := queryInt(query.Get("per_page"), 10)
	locale := query.Get("locale")
	if locale == "" {
		locale = "en"
	}

	items, err := s.gifs.FetchTrending(r.Context(), page, perPage, locale)
	if err != nil {
		s.log.Warn("Trending fetch failed", "error", err)
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

// ChainStatusHandler reports the chain collaborator's connectivity check.
func (s *Server) ChainStatusHandler(w http.ResponseWriter, r *http.Request) {
	if s.chain == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "chain connectivity is not configured")
		return
	}

	status, err := s.chain.CheckConnectivity(r.Context())
	if err != nil {
		s.log.Warn("Chain connectivity check failed", "error", err)
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func queryInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}
