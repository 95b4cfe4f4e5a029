package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	sendBufferSize = 64
)

var (
	errClientClosed = errors.New("ws: connection closed")
	errSendBlocked  = errors.New("ws: send buffer full")
)

// client adapts a gorilla websocket connection to the registry's Conn
// interface. Outbound envelopes go through a buffered channel drained by a
// dedicated write pump, so registry sends never block on a slow peer.
type client struct {
	conn *websocket.Conn
	send chan Envelope

	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan Envelope, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send enqueues env for the write pump. A closed connection or a full buffer
// counts as a delivery failure — the registry reacts by dropping this
// connection, not by waiting.
func (c *client) Send(env Envelope) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case c.send <- env:
		return nil
	case <-c.done:
		return errClientClosed
	default:
		return errSendBlocked
	}
}

// Close tears down the transport. Safe to call repeatedly and to race with
// in-flight sends.
func (c *client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// writePump pumps envelopes from the send channel to the websocket connection,
// interleaving keepalive pings. One per connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case env := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
