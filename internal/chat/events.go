package chat

import (
	"encoding/json"
	"fmt"
)

// Event types carried in the "type" field of every frame.
const (
	TypeMessage   = "message"
	TypeHistory   = "history"
	TypeUserCount = "userCount"
	TypeError     = "error"
)

// Error texts returned to a single connection.
const (
	ErrorInvalidFormat = "Invalid message format"
	ErrorEmptyContent  = "Message content cannot be empty"
	ErrorRateLimited   = "Rate limit exceeded"
)

type messageEvent struct {
	Type string `json:"type"`
	Message
}

type historyEvent struct {
	Type     string    `json:"type"`
	Messages []Message `json:"messages"`
}

type userCountEvent struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Envelope is the union of every server→client event. Clients decode frames
// into it and switch on Type.
type Envelope struct {
	Type      string    `json:"type"`
	ID        string    `json:"id,omitempty"`
	Content   string    `json:"content,omitempty"`
	Sender    string    `json:"sender,omitempty"`
	RoomID    string    `json:"roomId,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
	Messages  []Message `json:"messages,omitempty"`
	Count     int       `json:"count,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Inbound is a parsed client→server event. Only the content is honoured;
// sender, room and timestamp always come from the connection and the server.
type Inbound struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// EncodeMessage renders a published message broadcast.
func EncodeMessage(msg Message) []byte {
	return mustMarshal(messageEvent{Type: TypeMessage, Message: msg})
}

// EncodeHistory renders the replay sent once after a join.
func EncodeHistory(messages []Message) []byte {
	if messages == nil {
		messages = []Message{}
	}
	return mustMarshal(historyEvent{Type: TypeHistory, Messages: messages})
}

// EncodeUserCount renders a membership change broadcast.
func EncodeUserCount(count int) []byte {
	return mustMarshal(userCountEvent{Type: TypeUserCount, Count: count})
}

// EncodeError renders an error event addressed to one connection.
func EncodeError(text string) []byte {
	return mustMarshal(errorEvent{Type: TypeError, Message: text})
}

// DecodeInbound parses a client frame. Anything that is not a JSON object of
// type "message" is rejected with ErrInvalidPayload.
func DecodeInbound(raw []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if in.Type != TypeMessage {
		return Inbound{}, fmt.Errorf("%w: unsupported event type %q", ErrInvalidPayload, in.Type)
	}
	return in, nil
}

// The event structs only hold strings, ints, times and slices of those, so
// marshalling cannot fail.
func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("chat: marshal %T: %v", v, err))
	}
	return b
}
