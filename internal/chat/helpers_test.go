package chat

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// fakeMember records every frame it is sent.
type fakeMember struct {
	id   string
	name string

	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func newFakeMember(id, name string) *fakeMember {
	return &fakeMember{id: id, name: name}
}

func (f *fakeMember) ID() string          { return f.id }
func (f *fakeMember) Participant() string { return f.name }

func (f *fakeMember) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrMemberClosed
	}
	f.frames = append(f.frames, payload)
	return nil
}

func (f *fakeMember) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeMember) events(t *testing.T) []Envelope {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo.Map(f.frames, func(frame []byte, _ int) Envelope {
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	})
}

func (f *fakeMember) eventsOfType(t *testing.T, kind string) []Envelope {
	t.Helper()
	return lo.Filter(f.events(t), func(env Envelope, _ int) bool {
		return env.Type == kind
	})
}

func (f *fakeMember) lastUserCount(t *testing.T) int {
	t.Helper()
	counts := f.eventsOfType(t, TypeUserCount)
	require.NotEmpty(t, counts, "no userCount received by %s", f.id)
	return counts[len(counts)-1].Count
}

func (f *fakeMember) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(opts ...Option) *Registry {
	return NewRegistry(append([]Option{WithLogger(discardLogger())}, opts...)...)
}
