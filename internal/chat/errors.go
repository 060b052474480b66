package chat

import "errors"

var (
	// ErrConnectParams reports a connection request without a room or username.
	ErrConnectParams = errors.New("missing room or username parameters")
	// ErrInvalidPayload reports an inbound event that cannot be published.
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrInvalidState reports an operation against a room that was already destroyed.
	ErrInvalidState = errors.New("room already destroyed")
	// ErrPeerUnresponsive reports a member whose outbound queue is full.
	ErrPeerUnresponsive = errors.New("peer unresponsive")
	// ErrMemberClosed reports a send to a member that is no longer open.
	ErrMemberClosed = errors.New("member closed")
	ErrNotMember     = errors.New("not a member of the room")
	ErrAlreadyMember = errors.New("already a member of the room")
)
