package session

import (
	"fmt"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config drives one terminal chat session.
type Config struct {
	ServerURL string `envconfig:"CHAT_SERVER_URL" default:"ws://localhost:8080/ws"`
	Room      string `envconfig:"CHAT_ROOM" required:"true"`
	// CHAT_USERNAME may be left empty; a random User<n> name is picked.
	Username          string        `envconfig:"CHAT_USERNAME"`
	ReconnectDelay    time.Duration `envconfig:"CHAT_RECONNECT_DELAY" default:"3s"`
	MaxReconnectDelay time.Duration `envconfig:"CHAT_MAX_RECONNECT_DELAY" default:"30s"`
	// CHAT_COLOURS enables per-sender colours in the terminal
	Colours bool `envconfig:"CHAT_COLOURS" default:"true"`
}

// LoadConfig reads the CHAT_* environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Username == "" {
		cfg.Username = RandomUsername()
	}
	if cfg.MaxReconnectDelay < cfg.ReconnectDelay {
		cfg.MaxReconnectDelay = cfg.ReconnectDelay
	}
	return cfg, nil
}

// RandomUsername returns a throwaway display name such as "User417".
func RandomUsername() string {
	return fmt.Sprintf("User%d", rand.IntN(1000))
}

// URL returns the WebSocket endpoint with the room and username query
// parameters filled in.
func (c Config) URL() (string, error) {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("server url %q: scheme must be ws or wss", c.ServerURL)
	}
	q := u.Query()
	q.Set("room", c.Room)
	q.Set("username", c.Username)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
