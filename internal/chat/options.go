package chat

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Default bounds of a room's history buffer and of the replay sent on join.
const (
	DefaultHistoryLimit = 100
	DefaultReplayLimit  = 50
)

type options struct {
	historyLimit int
	replayLimit  int
	now          func() time.Time
	newID        func() string
	log          *slog.Logger
}

// Option customises rooms created by a Registry.
type Option func(*options)

// WithHistoryLimit bounds the number of messages a room retains.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.historyLimit = n
		}
	}
}

// WithReplayLimit bounds the number of messages replayed to a new member.
func WithReplayLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.replayLimit = n
		}
	}
}

// WithClock overrides the source of message timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides the source of message identifiers.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		historyLimit: DefaultHistoryLimit,
		replayLimit:  DefaultReplayLimit,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
