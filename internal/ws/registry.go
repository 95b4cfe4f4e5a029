// Package ws owns the real-time delivery layer: the live-connection registry,
// the per-connection pump goroutines, and the fan-out of committed chat
// messages to every member's sockets.
package ws

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Anonymous is the owner bucket for connections that presented no valid
// session token. They are still tracked so they can receive non-personalized
// pushes such as echoes.
const Anonymous int64 = 0

// Conn is a live push channel as the registry sees it. Send must fail rather
// than block forever, and must fail on a closed or closing channel; Close must
// be safe to call more than once and to race with an in-flight Send.
type Conn interface {
	Send(env Envelope) error
	Close()
}

// Registry maintains the set of live connections per user identity, zero, one,
// or many per user. All mutation of the owner buckets goes through a single
// mutex; network writes never happen under it.
type Registry struct {
	mu      sync.Mutex // held only for map work, never across a write
	buckets map[int64]map[Conn]struct{}
	owners  map[Conn]int64
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		buckets: make(map[int64]map[Conn]struct{}),
		owners:  make(map[Conn]int64),
	}
}

// Connect registers conn under the owner bucket for userID. Pass Anonymous for
// unauthenticated channels.
func (r *Registry) Connect(conn Conn, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.buckets[userID]
	if !ok {
		bucket = make(map[Conn]struct{})
		r.buckets[userID] = bucket
	}
	if _, dup := bucket[conn]; dup {
		return
	}
	bucket[conn] = struct{}{}
	r.owners[conn] = userID
	connectionsGauge.Inc()
}

// Disconnect removes conn from whichever bucket holds it, dropping the bucket
// when it empties. Disconnecting an unknown connection is a no-op.
func (r *Registry) Disconnect(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(conn)
}

func (r *Registry) removeLocked(conn Conn) {
	userID, ok := r.owners[conn]
	if !ok {
		return
	}
	delete(r.owners, conn)

	bucket := r.buckets[userID]
	delete(bucket, conn)
	if len(bucket) == 0 {
		delete(r.buckets, userID)
	}
	connectionsGauge.Dec()
}

// SendToUser delivers env to every current connection owned by userID,
// best-effort. Connections are snapshotted under the lock, written outside it,
// and any connection whose write fails is removed and closed without affecting
// its siblings.
func (r *Registry) SendToUser(userID int64, env Envelope) {
	r.mu.Lock()
	bucket := r.buckets[userID]
	conns := make([]Conn, 0, len(bucket))
	for conn := range bucket {
		conns = append(conns, conn)
	}
	r.mu.Unlock()

	for _, conn := range conns {
		r.deliver(conn, env)
	}
}

// SendPersonal delivers env to exactly one connection, used for direct replies
// such as echoes.
func (r *Registry) SendPersonal(conn Conn, env Envelope) {
	r.deliver(conn, env)
}

func (r *Registry) deliver(conn Conn, env Envelope) {
	if err := conn.Send(env); err != nil {
		deliveriesTotal.WithLabelValues("error").Inc()
		log.Debug().Err(err).Msg("ws send failed, dropping connection")

		r.mu.Lock()
		r.removeLocked(conn)
		r.mu.Unlock()
		conn.Close()
		return
	}
	deliveriesTotal.WithLabelValues("ok").Inc()
}

// Connections reports how many live connections userID currently owns.
func (r *Registry) Connections(userID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets[userID])
}

// Len reports the total number of live connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners)
}
