package api

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"dangeond/internal/session"
	"dangeond/internal/ws"
)

const (
	presignURLExpiry = 15 * time.Minute
	messageTopic     = "dangeond.chat.message.committed"
)

// Config controls runtime behaviour for the API handlers.
type Config struct {
	ImageBucket    string
	AllowedOrigins []string
	CookieDomain   string
	CookieSecure   bool
}

// API wires dependencies, the session store, and the push layer for HTTP
// handlers.
type API struct {
	store      *Store
	config     Config
	sessions   session.Store
	registry   *ws.Registry
	notifier   *ws.Notifier
	instanceID uuid.UUID
}

// New initialises the API layer. The instance id distinguishes this process in
// relayed bus events so it can skip notifications it already delivered locally.
func New(store *Store, sessions session.Store, registry *ws.Registry, notifier *ws.Notifier, cfg Config) (*API, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if store.ORM == nil {
		return nil, errors.New("store ORM is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if registry == nil {
		return nil, errors.New("connection registry is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}

	return &API{
		store:      store,
		config:     cfg,
		sessions:   sessions,
		registry:   registry,
		notifier:   notifier,
		instanceID: uuid.New(),
	}, nil
}
