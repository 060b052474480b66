package server

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// TestTwoParticipantsInOneRoom walks the basic room conversation: join,
// publish, and leave as seen from both ends.
func TestTwoParticipantsInOneRoom(t *testing.T) {
	req := require.New(t)
	s, ts := startTestServer(t, nil)

	// Given A alone in the room
	a, history := join(t, ts, "r1", "A")
	req.Empty(history)

	// When B joins, A sees the new count and B gets count then history
	b, history := join(t, ts, "r1", "B")
	req.Empty(history)
	req.Equal(2, expectEvent(t, a, chat.TypeUserCount).Count)

	// When A publishes, both receive the message including the sender
	sendContent(t, a, "hi")
	for _, conn := range []*websocket.Conn{a, b} {
		msg := expectEvent(t, conn, chat.TypeMessage)
		req.Equal("hi", msg.Content)
		req.Equal("A", msg.Sender)
		req.Equal("r1", msg.RoomID)
		req.NotEmpty(msg.ID)
		_, err := time.Parse(time.RFC3339Nano, msg.Timestamp)
		req.NoError(err)
	}

	// When B leaves, A sees the count drop
	req.NoError(b.Close())
	req.Equal(1, expectEvent(t, a, chat.TypeUserCount).Count)

	room, ok := s.Registry().Lookup("r1")
	req.True(ok)
	req.Len(room.History(), 1)
}

func TestJoinReceivesHistoryTail(t *testing.T) {
	req := require.New(t)
	_, ts := startTestServer(t, func(cfg *Config) {
		cfg.RateLimitBurst = 100
	})

	a, _ := join(t, ts, "replay", "A")
	for i := range 60 {
		sendContent(t, a, fmt.Sprintf("m%d", i))
	}
	for range 60 {
		expectEvent(t, a, chat.TypeMessage)
	}

	_, history := join(t, ts, "replay", "B")
	req.Len(history, chat.DefaultReplayLimit)
	req.Equal("m10", history[0].Content)
	req.Equal("m59", history[len(history)-1].Content)
}

func TestRoomsAreIsolated(t *testing.T) {
	req := require.New(t)
	_, ts := startTestServer(t, nil)

	a, _ := join(t, ts, "red", "A")
	b, _ := join(t, ts, "blue", "B")

	sendContent(t, a, "only red")
	req.Equal("only red", expectEvent(t, a, chat.TypeMessage).Content)

	sendContent(t, b, "only blue")
	msg := expectEvent(t, b, chat.TypeMessage)
	req.Equal("only blue", msg.Content)
	req.Equal("blue", msg.RoomID)
}

func TestMissingJoinParametersArePolicyViolations(t *testing.T) {
	_, ts := startTestServer(t, nil)

	cases := map[string]url.Values{
		"no parameters":  {},
		"no username":    {"room": {"r1"}},
		"no room":        {"username": {"A"}},
		"empty username": {"room": {"r1"}, "username": {""}},
	}
	for name, query := range cases {
		t.Run(name, func(t *testing.T) {
			conn, _, err := dialRaw(t, ts, query, testOrigin)
			require.NoError(t, err)

			closeErr := expectClose(t, conn)
			require.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
			require.Equal(t, "Missing room or username parameters", closeErr.Text)
		})
	}

	t.Run("oversized room id", func(t *testing.T) {
		conn, _, err := dialRaw(t, ts, url.Values{"room": {strings.Repeat("r", 200)}, "username": {"A"}}, testOrigin)
		require.NoError(t, err)
		closeErr := expectClose(t, conn)
		require.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
		require.Equal(t, "Room or username too long", closeErr.Text)
	})
}

func TestMalformedFrameKeepsConnectionOpen(t *testing.T) {
	req := require.New(t)
	_, ts := startTestServer(t, nil)
	a, _ := join(t, ts, "r1", "A")

	for _, raw := range []string{"not json", `{"type":"typing"}`, `[1,2,3]`} {
		sendRaw(t, a, raw)
		req.Equal(chat.ErrorInvalidFormat, expectEvent(t, a, chat.TypeError).Message)
	}

	sendContent(t, a, "still here")
	req.Equal("still here", expectEvent(t, a, chat.TypeMessage).Content)
}

func TestEmptyContentOnlyTellsTheSender(t *testing.T) {
	req := require.New(t)
	s, ts := startTestServer(t, nil)
	a, _ := join(t, ts, "r1", "A")
	b, _ := join(t, ts, "r1", "B")
	expectEvent(t, a, chat.TypeUserCount)

	// When A sends blank content
	sendContent(t, a, "   \t ")

	// Then only A hears about it and nothing reaches history
	req.Equal(chat.ErrorEmptyContent, expectEvent(t, a, chat.TypeError).Message)
	sendContent(t, a, "real")
	req.Equal("real", expectEvent(t, b, chat.TypeMessage).Content)

	room, ok := s.Registry().Lookup("r1")
	req.True(ok)
	req.Len(room.History(), 1)
}

func TestRateLimitedFramesAreRejected(t *testing.T) {
	req := require.New(t)
	_, ts := startTestServer(t, func(cfg *Config) {
		cfg.RateLimitBurst = 2
		cfg.RateLimitRefill = time.Hour
	})
	a, _ := join(t, ts, "r1", "A")

	sendContent(t, a, "one")
	sendContent(t, a, "two")
	sendContent(t, a, "three")

	req.Equal("one", expectEvent(t, a, chat.TypeMessage).Content)
	req.Equal("two", expectEvent(t, a, chat.TypeMessage).Content)
	req.Equal(chat.ErrorRateLimited, expectEvent(t, a, chat.TypeError).Message)
}

func TestOversizedFrameClosesConnection(t *testing.T) {
	s, ts := startTestServer(t, func(cfg *Config) {
		cfg.MaxMessageSize = 64
	})
	a, _ := join(t, ts, "r1", "A")

	sendContent(t, a, strings.Repeat("x", 256))

	closeErr := expectClose(t, a)
	require.Equal(t, websocket.CloseMessageTooBig, closeErr.Code)
	require.Eventually(t, func() bool { return s.Registry().Len() == 0 }, readTimeout, 10*time.Millisecond)
}

func TestLastLeaveReleasesRoom(t *testing.T) {
	req := require.New(t)
	s, ts := startTestServer(t, nil)

	a, _ := join(t, ts, "ephemeral", "A")
	sendContent(t, a, "before")
	expectEvent(t, a, chat.TypeMessage)
	req.NoError(a.Close())

	req.Eventually(func() bool {
		_, ok := s.Registry().Lookup("ephemeral")
		return !ok
	}, readTimeout, 10*time.Millisecond)

	// Rejoining starts a fresh room with empty history
	_, history := join(t, ts, "ephemeral", "A")
	req.Empty(history)
}

func TestServersSharingARegistryShareRooms(t *testing.T) {
	req := require.New(t)
	registry := chat.NewRegistry(chat.WithLogger(discardLogger()))
	first, tsFirst := startTestServer(t, nil, WithRegistry(registry))
	second, tsSecond := startTestServer(t, nil, WithRegistry(registry))
	req.Same(first.Registry(), second.Registry())

	// Given A on one listener and B on the other, both in r1
	a, _ := join(t, tsFirst, "r1", "A")
	b, _ := join(t, tsSecond, "r1", "B")
	req.Equal(2, expectEvent(t, a, chat.TypeUserCount).Count)

	// When B publishes, A receives it through the shared room
	sendContent(t, b, "across")
	req.Equal("across", expectEvent(t, a, chat.TypeMessage).Content)
	req.Equal(1, registry.Len())
}
