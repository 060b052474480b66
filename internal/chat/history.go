package chat

import "slices"

// history is an append-only window over the most recent messages of a room.
// The oldest entry is evicted first once the limit is exceeded.
type history struct {
	limit   int
	entries []Message
}

func newHistory(limit int) *history {
	return &history{limit: limit, entries: make([]Message, 0, limit)}
}

// append stores msg and reports whether an older entry was evicted.
func (h *history) append(msg Message) bool {
	if len(h.entries) < h.limit {
		h.entries = append(h.entries, msg)
		return false
	}
	copy(h.entries, h.entries[1:])
	h.entries[len(h.entries)-1] = msg
	return true
}

func (h *history) len() int {
	return len(h.entries)
}

// snapshot returns the buffered messages oldest first.
func (h *history) snapshot() []Message {
	return slices.Clone(h.entries)
}
