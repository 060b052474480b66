package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeInbound_IgnoresClientSuppliedFields(t *testing.T) {
	req := require.New(t)
	raw := []byte(`{"type":"message","content":"hi","sender":"mallory","roomId":"other","timestamp":"not a date"}`)

	in, err := DecodeInbound(raw)

	req.NoError(err)
	req.Equal("hi", in.Content)
}

func TestDecodeInbound_RejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":      `hello`,
		"json string":   `"hello"`,
		"unknown type":  `{"type":"typing","content":"hi"}`,
		"missing type":  `{"content":"hi"}`,
		"truncated":     `{"type":"message"`,
		"wrong content": `{"type":"message","content":42}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeInbound([]byte(raw))
			require.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestEncodeHistory_EmptyIsAnArray(t *testing.T) {
	require.JSONEq(t, `{"type":"history","messages":[]}`, string(EncodeHistory(nil)))
}

func TestEncodeMessage_FlattensFields(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := Message{ID: "id-1", Content: "hi", Sender: "A", RoomID: "r1", Timestamp: at}

	require.JSONEq(t,
		`{"type":"message","id":"id-1","content":"hi","sender":"A","roomId":"r1","timestamp":"2026-01-02T03:04:05Z"}`,
		string(EncodeMessage(msg)))
}

func TestEncodeUserCountAndError(t *testing.T) {
	require.JSONEq(t, `{"type":"userCount","count":2}`, string(EncodeUserCount(2)))
	require.JSONEq(t, `{"type":"error","message":"Invalid message format"}`, string(EncodeError(ErrorInvalidFormat)))
}
