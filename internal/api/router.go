package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dangeond/internal/ws"
	"dangeond/pkg/db"
)

// Routes constructs the chi router containing all API endpoints. The websocket
// endpoint is mounted outside the request timeout middleware because its
// connections are long-lived.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	allowed := a.config.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if a.store.DB != nil {
			if err := db.Ping(r.Context(), a.store.DB); err != nil {
				respondError(w, http.StatusServiceUnavailable, err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Method("GET", "/metrics", promhttp.Handler())

	r.Handle("/ws", ws.NewHandler(a.registry, a.sessions))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(httprate.Limit(100, time.Minute))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", a.handleRegister)
			r.Post("/login", a.handleLogin)
			r.Post("/logout", a.handleLogout)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", a.handleCreatePost)
			r.Get("/", a.handleListPosts)
			r.Get("/{post_id}", a.handleGetPost)
			r.Delete("/{post_id}", a.handleDeletePost)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Post("/", a.handleCreateComment)
			// GET takes a post id, DELETE a comment id.
			r.Get("/{id}", a.handleListComments)
			r.Delete("/{id}", a.handleDeleteComment)
		})

		r.Route("/likes", func(r chi.Router) {
			r.Post("/", a.handleCreateLike)
			r.Get("/{post_id}", a.handleListLikes)
			r.Delete("/{post_id}", a.handleDeleteLike)
		})

		r.Route("/friend", func(r chi.Router) {
			r.Post("/", a.handleCreateFriend)
			r.Get("/{user_id}", a.handleListFriends)
			r.Delete("/{user_id}", a.handleDeleteFriend)
			r.Get("/following/{user_id}", a.handleListFollowing)
			r.Get("/requests/{user_id}", a.handleListFriendRequests)
			r.Get("/status/{user_id}/{other_id}", a.handleFriendStatus)
		})

		r.Route("/chats", func(r chi.Router) {
			r.Post("/", a.handleCreateChat)
			r.Get("/", a.handleListChats)
			r.Post("/{chat_id}/messages", a.handleSendMessage)
			r.Get("/{chat_id}/messages", a.handleListMessages)
		})

		r.Get("/profile/{user_id}", a.handleProfile)

		r.Post("/image/load/public", a.handleUploadPublicImage)
		r.Post("/image/load/private", a.handleUploadPrivateImage)
		r.Get("/gallery/{user_id}", a.handleGallery)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", a.handleGetSettings)
			r.Post("/", a.handleUpdateSettings)
			r.Put("/", a.handleUpdateSettings)
		})
	})

	return r
}
