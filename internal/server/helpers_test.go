package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/internal/chat"
)

const (
	testOrigin  = "http://localhost:8080"
	readTimeout = 2 * time.Second
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startTestServer runs a Server behind httptest. mutate may adjust the
// default configuration before the server is built.
func startTestServer(t *testing.T, mutate func(*Config), opts ...Option) (*Server, *httptest.Server) {
	t.Helper()

	cfg := NewConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s := New(cfg, discardLogger(), opts...)
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(func() {
		_ = s.Shutdown(time.Second)
		ts.Close()
	})
	return s, ts
}

func wsURL(t *testing.T, httpURL string, query url.Values) string {
	t.Helper()
	u, err := url.Parse(httpURL)
	require.NoError(t, err)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query.Encode()
	return u.String()
}

// dialRaw connects with the given query and Origin header, returning the
// handshake response for rejected upgrades.
func dialRaw(t *testing.T, ts *httptest.Server, query url.Values, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	dialer := websocket.Dialer{HandshakeTimeout: readTimeout}
	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}
	conn, resp, err := dialer.Dial(wsURL(t, ts.URL, query), headers)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}
	return conn, resp, err
}

// join connects participant to room and consumes the userCount and history
// events every joiner receives first.
func join(t *testing.T, ts *httptest.Server, room, participant string) (*websocket.Conn, []chat.Message) {
	t.Helper()
	conn, _, err := dialRaw(t, ts, url.Values{"room": {room}, "username": {participant}}, testOrigin)
	require.NoError(t, err)

	first := readEvent(t, conn)
	require.Equal(t, chat.TypeUserCount, first.Type)
	second := readEvent(t, conn)
	require.Equal(t, chat.TypeHistory, second.Type)
	return conn, second.Messages
}

func readEvent(t *testing.T, conn *websocket.Conn) chat.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var env chat.Envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return env
}

func expectEvent(t *testing.T, conn *websocket.Conn, eventType string) chat.Envelope {
	t.Helper()
	env := readEvent(t, conn)
	require.Equal(t, eventType, env.Type, "unexpected event %+v", env)
	return env
}

// expectClose reads until the connection ends and returns the close error.
func expectClose(t *testing.T, conn *websocket.Conn) *websocket.CloseError {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		closeErr, ok := err.(*websocket.CloseError)
		require.True(t, ok, "expected close frame, got %v", err)
		return closeErr
	}
}

func sendContent(t *testing.T, conn *websocket.Conn, content string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(chat.Inbound{Type: chat.TypeMessage, Content: content}))
}

func sendRaw(t *testing.T, conn *websocket.Conn, raw string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
}

func httpGet(t *testing.T, ts *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, strings.TrimSpace(string(body))
}
