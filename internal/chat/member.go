//go:generate go run go.uber.org/mock/mockgen -source=member.go -destination=mocks/mock_member.go -package=mocks
package chat

// Member is the room's view of one connection handle.
//
// Send must never block. It returns ErrMemberClosed when the handle is no
// longer open, in which case the room skips it silently, and
// ErrPeerUnresponsive when the outbound queue is full, in which case the room
// drops the member immediately.
type Member interface {
	ID() string
	Participant() string
	Send(payload []byte) error
}
