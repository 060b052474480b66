package server

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// ProcessStats describes the server process itself.
type ProcessStats struct {
	PID        int32   `json:"pid"`
	RSSBytes   uint64  `json:"rssBytes"`
	CPUPercent float64 `json:"cpuPercent"`
	Goroutines int     `json:"goroutines"`
}

// Diagnostics is the payload of GET /api/rooms.
type Diagnostics struct {
	Rooms       []chat.RoomStats `json:"rooms"`
	RoomCount   int              `json:"roomCount"`
	Connections int              `json:"connections"`
	Uptime      string           `json:"uptime"`
	Process     ProcessStats     `json:"process"`
}

// Diagnostics reports live rooms, connections and process usage.
func (s *Server) Diagnostics() Diagnostics {
	rooms := s.registry.Snapshot()
	return Diagnostics{
		Rooms:       rooms,
		RoomCount:   len(rooms),
		Connections: s.hub.count(),
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		Process:     s.processStats(),
	}
}

// processStats is best effort: fields the platform cannot report stay zero.
func (s *Server) processStats() ProcessStats {
	pid := int32(os.Getpid())
	stats := ProcessStats{PID: pid, Goroutines: runtime.NumGoroutine()}

	p, err := process.NewProcess(pid)
	if err != nil {
		s.log.Debug("Process stats unavailable", "error", err)
		return stats
	}
	if mem, err := p.MemoryInfo(); err == nil {
		stats.RSSBytes = mem.RSS
	}
	if cpu, err := p.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	return stats
}

// RoomsHandler serves the diagnostics snapshot as JSON.
func (s *Server) RoomsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Diagnostics())
}
