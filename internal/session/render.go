package session

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gookit/color"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/Tyrowin/roomchat/internal/palette"
)

// Renderer displays what the server sends. Calls come from the session's read
// loop, one at a time.
type Renderer interface {
	History(messages []chat.Message)
	Message(msg chat.Message)
	UserCount(count int)
	Error(text string)
	Status(text string)
}

// Terminal writes events as plain lines, colouring sender names with the
// participant palette.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	colours bool
}

func NewTerminal(out io.Writer, colours bool) *Terminal {
	return &Terminal{out: out, colours: colours}
}

func (t *Terminal) History(messages []chat.Message) {
	if len(messages) == 0 {
		t.line(t.paint(color.Cyan, "No earlier messages in this room"))
		return
	}
	t.line(t.paint(color.Cyan, fmt.Sprintf("Last %d messages:", len(messages))))
	for _, msg := range messages {
		t.Message(msg)
	}
}

func (t *Terminal) Message(msg chat.Message) {
	name := msg.Sender
	if t.colours {
		name = color.HEX(palette.ForParticipant(msg.Sender)).Sprint(msg.Sender)
	}
	t.line(fmt.Sprintf("[%s] %s: %s", msg.Timestamp.Local().Format(time.TimeOnly), name, msg.Content))
}

func (t *Terminal) UserCount(count int) {
	t.line(t.paint(color.Cyan, fmt.Sprintf("%d online", count)))
}

func (t *Terminal) Error(text string) {
	t.line(t.paint(color.Red, "error: "+text))
}

func (t *Terminal) Status(text string) {
	t.line(t.paint(color.Yellow, text))
}

func (t *Terminal) paint(c color.Color, text string) string {
	if !t.colours {
		return text
	}
	return c.Sprint(text)
}

func (t *Terminal) line(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.out, text)
}
