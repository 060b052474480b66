package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// Room is one broadcast domain: a set of members and the recent history they
// share. All state changes are serialised by mu, and every broadcast is
// enqueued while mu is held so that members observe one total order per room.
type Room struct {
	id   string
	opts options
	log  *slog.Logger

	// release is called once, outside mu, when the member set becomes empty.
	release func(*Room)

	mu      sync.Mutex
	members map[string]Member
	history *history
	// destroyed is written under mu and read without it by the registry.
	destroyed atomic.Bool
}

// RoomStats is a point-in-time view of a room used for diagnostics.
type RoomStats struct {
	ID      string `json:"id"`
	Members int    `json:"members"`
	History int    `json:"history"`
}

func newRoom(id string, opts options, release func(*Room)) *Room {
	return &Room{
		id:      id,
		opts:    opts,
		log:     opts.log.With("room", id),
		release: release,
		members: make(map[string]Member),
		history: newHistory(opts.historyLimit),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string {
	return r.id
}

// Join registers m, broadcasts the new participant count to every member
// (m included) and enqueues the history replay for m alone. It returns the
// full history buffer, oldest first. When m cannot even take the join
// broadcast it is dropped again and ErrPeerUnresponsive is returned.
func (r *Room) Join(m Member) ([]Message, error) {
	r.mu.Lock()
	if r.destroyed.Load() {
		r.mu.Unlock()
		return nil, ErrInvalidState
	}
	if _, ok := r.members[m.ID()]; ok {
		r.mu.Unlock()
		return nil, ErrAlreadyMember
	}

	r.members[m.ID()] = m
	snapshot := r.history.snapshot()
	emptied := r.broadcastLocked(EncodeUserCount(len(r.members)))
	_, joined := r.members[m.ID()]
	if joined {
		replay := lo.Subset(snapshot, -r.opts.replayLimit, uint(r.opts.replayLimit))
		r.sendLocked(m, EncodeHistory(replay))
	}
	count := len(r.members)
	r.mu.Unlock()

	if emptied {
		r.release(r)
	}
	if !joined {
		return nil, ErrPeerUnresponsive
	}
	r.log.Info("Member joined", "handle", m.ID(), "participant", m.Participant(), "members", count)
	return snapshot, nil
}

// Leave removes m and broadcasts the remaining participant count. The room is
// destroyed when its last member leaves. Leaving twice is a no-op.
func (r *Room) Leave(m Member) {
	r.mu.Lock()
	if _, ok := r.members[m.ID()]; !ok || r.destroyed.Load() {
		r.mu.Unlock()
		return
	}

	delete(r.members, m.ID())
	emptied := r.destroyIfEmptyLocked()
	if !emptied {
		emptied = r.broadcastLocked(EncodeUserCount(len(r.members)))
	}
	count := len(r.members)
	r.mu.Unlock()

	r.log.Info("Member left", "handle", m.ID(), "participant", m.Participant(), "members", count)
	if emptied {
		r.release(r)
	}
}

// Publish appends a new message from sender to the history and broadcasts it
// to every member, the sender included. Content that is empty after trimming
// is rejected with ErrInvalidPayload and leaves the room untouched.
func (r *Room) Publish(sender Member, content string) (Message, error) {
	if strings.TrimSpace(content) == "" {
		return Message{}, fmt.Errorf("%w: empty content", ErrInvalidPayload)
	}

	r.mu.Lock()
	if r.destroyed.Load() {
		r.mu.Unlock()
		return Message{}, ErrInvalidState
	}
	if _, ok := r.members[sender.ID()]; !ok {
		r.mu.Unlock()
		return Message{}, ErrNotMember
	}

	msg := Message{
		ID:        r.opts.newID(),
		Content:   content,
		Sender:    sender.Participant(),
		RoomID:    r.id,
		Timestamp: r.opts.now(),
	}
	if r.history.append(msg) {
		r.log.Debug("History window full, evicted oldest message")
	}
	emptied := r.broadcastLocked(EncodeMessage(msg))
	r.mu.Unlock()

	r.log.Debug("Message published", "id", msg.ID, "participant", msg.Sender)
	if emptied {
		r.release(r)
	}
	return msg, nil
}

// History returns the buffered messages, oldest first.
func (r *Room) History() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.snapshot()
}

// Len returns the current member count.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Stats returns a diagnostics view of the room.
func (r *Room) Stats() RoomStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomStats{ID: r.id, Members: len(r.members), History: r.history.len()}
}

// isDestroyed does not take mu, so the registry never waits on a busy room.
func (r *Room) isDestroyed() bool {
	return r.destroyed.Load()
}

// broadcastLocked enqueues payload on every member. Members whose queue is
// full are dropped and the remaining ones are told the new count. It reports
// whether the drops emptied the room.
func (r *Room) broadcastLocked(payload []byte) bool {
	var dropped []Member
	for _, m := range r.members {
		if !r.sendLocked(m, payload) {
			dropped = append(dropped, m)
		}
	}
	if len(dropped) == 0 {
		return false
	}

	for _, m := range dropped {
		delete(r.members, m.ID())
		r.log.Warn("Member removed due to full send buffer", "handle", m.ID(), "participant", m.Participant())
	}
	if r.destroyIfEmptyLocked() {
		return true
	}
	return r.broadcastLocked(EncodeUserCount(len(r.members)))
}

// sendLocked delivers payload to m and reports false only when m must be
// dropped. Members that are already closing are skipped silently.
func (r *Room) sendLocked(m Member, payload []byte) bool {
	err := m.Send(payload)
	switch {
	case err == nil, errors.Is(err, ErrMemberClosed):
		return true
	case errors.Is(err, ErrPeerUnresponsive):
		return false
	default:
		r.log.Warn("Unexpected send failure", "handle", m.ID(), "error", err)
		return true
	}
}

// destroyIfEmpty reports whether the room is destroyed, destroying it first
// when it has no members.
func (r *Room) destroyIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed.Load() {
		return true
	}
	return r.destroyIfEmptyLocked()
}

func (r *Room) destroyIfEmptyLocked() bool {
	if len(r.members) > 0 {
		return false
	}
	r.destroyed.Store(true)
	return true
}
