package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Registry maps room identifiers to live rooms. Rooms are created on first
// join and removed the moment their last member leaves.
type Registry struct {
	opts options
	log  *slog.Logger

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry creates an empty registry. Options apply to every room it creates.
func NewRegistry(opts ...Option) *Registry {
	o := buildOptions(opts)
	return &Registry{
		opts:  o,
		log:   o.log,
		rooms: make(map[string]*Room),
	}
}

// GetOrCreate returns the live room for id, creating it when absent. A room
// that was destroyed but not yet removed is replaced by a fresh one.
func (g *Registry) GetOrCreate(id string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	if room, ok := g.rooms[id]; ok && !room.isDestroyed() {
		return room
	}

	room := newRoom(id, g.opts, g.release)
	g.rooms[id] = room
	g.log.Info("Room created", "room", id, "rooms", len(g.rooms))
	return room
}

// Join resolves the room for id and registers m in it. A join that races with
// the room being destroyed is retried once against a freshly resolved room.
func (g *Registry) Join(id string, m Member) (*Room, []Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		room := g.GetOrCreate(id)
		snapshot, err := room.Join(m)
		if err == nil {
			return room, snapshot, nil
		}
		if !errors.Is(err, ErrInvalidState) {
			return nil, nil, fmt.Errorf("join room %q: %w", id, err)
		}
		g.log.Debug("Room destroyed during join, retrying", "room", id, "attempt", attempt+1)
		lastErr = err
	}
	return nil, nil, fmt.Errorf("join room %q: %w", id, lastErr)
}

// Remove drops the mapping for id when its room has no members, destroying
// the room first so a join racing with the removal retries on a fresh one. It
// is a no-op when id is absent or the room still has members, so one id never
// maps to two live rooms.
func (g *Registry) Remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[id]
	if !ok {
		return
	}
	if !room.destroyIfEmpty() {
		g.log.Debug("Room still has members, keeping it", "room", id)
		return
	}
	delete(g.rooms, id)
	g.log.Info("Room cleaned up", "room", id, "rooms", len(g.rooms))
}

// release removes room only if it is still the mapping for its id, so a room
// recreated in the meantime survives a late release of its predecessor.
func (g *Registry) release(room *Room) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if current, ok := g.rooms[room.id]; !ok || current != room {
		return
	}
	delete(g.rooms, room.id)
	g.log.Info("Room cleaned up", "room", room.id, "rooms", len(g.rooms))
}

// Lookup returns the live room for id without creating it.
func (g *Registry) Lookup(id string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[id]
	return room, ok
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// Snapshot returns diagnostics for every live room, sorted by id.
func (g *Registry) Snapshot() []RoomStats {
	g.mu.Lock()
	rooms := lo.Values(g.rooms)
	g.mu.Unlock()

	stats := lo.Map(rooms, func(room *Room, _ int) RoomStats {
		return room.Stats()
	})
	slices.SortFunc(stats, func(a, b RoomStats) int {
		return strings.Compare(a.ID, b.ID)
	})
	return stats
}
