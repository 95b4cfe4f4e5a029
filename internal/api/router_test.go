package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dangeond/internal/session"
	"dangeond/internal/ws"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()

	codec, err := session.NewCodec("router-test-secret")
	require.NoError(t, err)

	store := &Store{ORM: &gorm.DB{}}
	registry := ws.NewRegistry()
	notifier := ws.NewNotifier(registry, store, store)

	a, err := New(store, session.NewMemoryStore(codec, time.Hour), registry, notifier, Config{})
	require.NoError(t, err)
	return a
}

func TestHealthAndReadiness(t *testing.T) {
	srv := httptest.NewServer(newTestAPI(t).Routes())
	defer srv.Close()

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	srv := httptest.NewServer(newTestAPI(t).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthenticatedRoutesRejectAnonymousCallers(t *testing.T) {
	srv := httptest.NewServer(newTestAPI(t).Routes())
	defer srv.Close()

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/chats", ""},
		{http.MethodPost, "/chats", `{"memberIds":[2]}`},
		{http.MethodPost, "/posts", `{"content":"hi"}`},
		{http.MethodPost, "/likes", `{"postId":1}`},
		{http.MethodPost, "/friend", `{"friend_id":2}`},
		{http.MethodGet, "/settings", ""},
	}

	for _, tc := range cases {
		req, err := http.NewRequest(tc.method, srv.URL+tc.path, strings.NewReader(tc.body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestNewValidatesDependencies(t *testing.T) {
	codec, err := session.NewCodec("router-test-secret")
	require.NoError(t, err)
	sessions := session.NewMemoryStore(codec, time.Hour)
	registry := ws.NewRegistry()
	store := &Store{ORM: &gorm.DB{}}
	notifier := ws.NewNotifier(registry, store, store)

	_, err = New(nil, sessions, registry, notifier, Config{})
	require.Error(t, err)

	_, err = New(&Store{}, sessions, registry, notifier, Config{})
	require.Error(t, err)

	_, err = New(store, nil, registry, notifier, Config{})
	require.Error(t, err)
}
