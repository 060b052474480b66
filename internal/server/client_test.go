package server

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/internal/chat"
)

func newQueueOnlyClient(t *testing.T, buffer int) *Client {
	t.Helper()
	cfg := NewConfig()
	cfg.SendBufferSize = buffer
	return NewClient(nil, JoinParams{Room: "r1", Username: "A"}, "127.0.0.1:0", cfg, discardLogger())
}

func TestClientIdentity(t *testing.T) {
	a := newQueueOnlyClient(t, 1)
	b := newQueueOnlyClient(t, 1)

	require.NotEmpty(t, a.ID())
	require.NotEqual(t, a.ID(), b.ID())
	require.Equal(t, "A", a.Participant())
	require.Equal(t, "r1", a.Room())
	require.Equal(t, LivenessOpen, a.Liveness())
}

func TestClientSendNeverBlocks(t *testing.T) {
	req := require.New(t)
	c := newQueueOnlyClient(t, 2)

	req.NoError(c.Send([]byte("1")))
	req.NoError(c.Send([]byte("2")))

	// A full queue marks the peer unresponsive instead of waiting
	req.ErrorIs(c.Send([]byte("3")), chat.ErrPeerUnresponsive)
	req.Equal(LivenessClosing, c.Liveness())
	req.Equal(int32(websocket.CloseTryAgainLater), c.closeCode.Load())

	// Closing handles are skipped from then on
	req.ErrorIs(c.Send([]byte("4")), chat.ErrMemberClosed)
	req.Len(c.send, 2)
}

func TestClientCloseIsIdempotent(t *testing.T) {
	req := require.New(t)
	c := newQueueOnlyClient(t, 4)
	req.NoError(c.Send([]byte("queued")))

	c.Close()
	c.Close()

	req.Equal(LivenessClosed, c.Liveness())
	req.Empty(c.send)
	req.ErrorIs(c.Send([]byte("late")), chat.ErrMemberClosed)
	select {
	case <-c.done:
	default:
		t.Fatal("write pump was not signalled")
	}
}

func TestClientBeginCloseKeepsFirstCode(t *testing.T) {
	c := newQueueOnlyClient(t, 1)

	c.beginClose(websocket.CloseGoingAway)
	c.beginClose(websocket.CloseTryAgainLater)

	require.Equal(t, LivenessClosing, c.Liveness())
	require.Equal(t, int32(websocket.CloseGoingAway), c.closeCode.Load())
}

func TestLivenessString(t *testing.T) {
	require.Equal(t, "open", LivenessOpen.String())
	require.Equal(t, "closing", LivenessClosing.String())
	require.Equal(t, "closed", LivenessClosed.String())
	require.Equal(t, "unknown", Liveness(9).String())
}

func TestUnresponsiveMemberIsDroppedFromRoom(t *testing.T) {
	req := require.New(t)
	registry := chat.NewRegistry(chat.WithLogger(discardLogger()))
	slow := newQueueOnlyClient(t, 2)
	fast := newQueueOnlyClient(t, 64)

	// Given a slow member whose queue is already full after its own join
	room, _, err := registry.Join("r1", slow)
	req.NoError(err)

	// When the next membership change is broadcast
	_, _, err = registry.Join("r1", fast)
	req.NoError(err)
	_, err = room.Publish(fast, "after")
	req.NoError(err)

	// Then it is closed with try-again-later and no longer counted
	req.Equal(LivenessClosing, slow.Liveness())
	req.Equal(int32(websocket.CloseTryAgainLater), slow.closeCode.Load())
	req.Equal(1, room.Len())
}
