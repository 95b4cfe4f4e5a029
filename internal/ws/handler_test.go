package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"dangeond/internal/session"
)

func newWSTestServer(t *testing.T) (*Registry, session.Store, *httptest.Server) {
	t.Helper()

	codec, err := session.NewCodec("handler-test-secret")
	require.NoError(t, err)
	sessions := session.NewMemoryStore(codec, time.Hour)

	registry := NewRegistry()
	srv := httptest.NewServer(NewHandler(registry, sessions))
	t.Cleanup(srv.Close)

	return registry, sessions, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, registry *Registry, userID int64, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if registry.Connections(userID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("user %d owns %d connections, want %d", userID, registry.Connections(userID), want)
}

func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env map[string]any
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestHandlerEchoesJSONFrames(t *testing.T) {
	registry, _, srv := newWSTestServer(t)

	conn := dial(t, srv, nil)
	waitForConnections(t, registry, Anonymous, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"hello":1}`)))

	env := readEnvelope(t, conn)
	require.Equal(t, "echo", env["type"])
	require.Equal(t, map[string]any{"hello": float64(1)}, env["payload"])
}

func TestHandlerWrapsMalformedFramesWithoutClosing(t *testing.T) {
	registry, _, srv := newWSTestServer(t)

	conn := dial(t, srv, nil)
	waitForConnections(t, registry, Anonymous, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	env := readEnvelope(t, conn)
	require.Equal(t, "echo", env["type"])
	require.Equal(t, map[string]any{"type": "raw", "data": "not json"}, env["payload"])

	// Protocol violations never close the channel.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`"still here"`)))
	env = readEnvelope(t, conn)
	require.Equal(t, "still here", env["payload"])
}

func TestHandlerRegistersAuthenticatedOwner(t *testing.T) {
	registry, sessions, srv := newWSTestServer(t)

	token, err := sessions.Create(context.Background(), 42)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Cookie", session.CookieName+"="+token)
	dial(t, srv, header)

	waitForConnections(t, registry, 42, 1)
}

func TestHandlerAcceptsInvalidTokenAsAnonymous(t *testing.T) {
	registry, _, srv := newWSTestServer(t)

	header := http.Header{}
	header.Set("Cookie", session.CookieName+"=bogus")
	dial(t, srv, header)

	waitForConnections(t, registry, Anonymous, 1)
}

func TestEndToEndCommittedMessageReachesMember(t *testing.T) {
	registry, sessions, srv := newWSTestServer(t)

	token, err := sessions.Create(context.Background(), 1)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Cookie", session.CookieName+"="+token)
	conn := dial(t, srv, header)
	waitForConnections(t, registry, 1, 1)

	notifier := NewNotifier(registry, staticMembers{1, 2}, staticNames{2: "U2"})
	notifier.MessageCommitted(context.Background(), Message{
		ID:        10,
		ChatID:    5,
		SenderID:  2,
		Content:   "hi",
		CreatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	})

	env := readEnvelope(t, conn)
	require.Equal(t, "message", env["type"])

	raw, err := json.Marshal(env["payload"])
	require.NoError(t, err)
	var push ChatPush
	require.NoError(t, json.Unmarshal(raw, &push))

	require.Equal(t, int64(5), push.ChatID)
	require.Equal(t, DirectionReceived, push.Message.Direction)
	require.Equal(t, "U2", push.Message.Name)
	require.Equal(t, "hi", push.Message.Message)
	require.Equal(t, "2026-08-30T12:00:00Z", push.Message.Time)
	require.Nil(t, push.Message.ImageURL)
}

func TestDisconnectRemovesRegistration(t *testing.T) {
	registry, _, srv := newWSTestServer(t)

	conn := dial(t, srv, nil)
	waitForConnections(t, registry, Anonymous, 1)

	conn.Close()
	waitForConnections(t, registry, Anonymous, 0)
}
