package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"dangeond/internal/session"
)

// Handler accepts websocket upgrades on the push endpoint, resolves the
// caller's identity through the session store, and runs the receive loop until
// disconnect. Channels without a valid session token are accepted and
// registered under the anonymous bucket.
type Handler struct {
	registry *Registry
	sessions session.Store
	upgrader websocket.Upgrader
}

// NewHandler wires the push endpoint against a registry and session store.
func NewHandler(registry *Registry, sessions session.Store) *Handler {
	return &Handler{
		registry: registry,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Cross-origin browsers are expected; identity comes from the
				// session cookie, not the Origin header.
				return true
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := Anonymous
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if id, ok := h.sessions.Resolve(r.Context(), cookie.Value); ok {
			userID = id
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := newClient(conn)
	h.registry.Connect(c, userID)
	log.Debug().Int64("user_id", userID).Msg("websocket connected")

	go c.writePump()
	h.readLoop(c)
}

// readLoop receives inbound frames until the transport dies. Frames that are
// not valid JSON are wrapped and echoed back rather than closing the channel;
// only transport errors end the loop. Teardown unregisters exactly once.
func (h *Handler) readLoop(c *client) {
	defer func() {
		h.registry.Disconnect(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}

		var payload any
		if err := json.Unmarshal(data, &payload); err != nil {
			payload = map[string]any{"type": "raw", "data": string(data)}
		}
		h.registry.SendPersonal(c, echoEnvelope(payload))
	}
}
