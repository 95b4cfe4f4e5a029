package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"

	"dangeond/pkg/db"
)

type profileCounts struct {
	FriendCount     int64 `db:"friend_count"`
	SubscriberCount int64 `db:"subscriber_count"`
	PhotoCount      int64 `db:"photo_count"`
}

type profilePostRow struct {
	ID           int64     `db:"id"`
	Content      string    `db:"content"`
	ImageURL     string    `db:"image_url"`
	CreatedAt    time.Time `db:"created_at"`
	LikeCount    int64     `db:"like_count"`
	CommentCount int64     `db:"comment_count"`
}

func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "user_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var user struct {
		ID        int64  `db:"id"`
		Username  string `db:"username"`
		AvatarURL string `db:"avatar_url"`
		FonURL    string `db:"fon_url"`
	}
	err = db.Get(ctx, a.store.DB, &user, `
		SELECT id, username, avatar_url, fon_url FROM users WHERE id = $1`, userID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		respondError(w, http.StatusNotFound, errors.New("user not found"))
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	var counts profileCounts
	err = db.Get(ctx, a.store.DB, &counts, `
		SELECT
			(SELECT count(*) FROM friends WHERE user_id = $1 AND status = 'accepted') AS friend_count,
			(SELECT count(*) FROM friends WHERE friend_id = $1 AND status = 'pending') AS subscriber_count,
			(SELECT count(*) FROM user_images WHERE user_id = $1 AND NOT private) AS photo_count`, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	var postRows []profilePostRow
	err = db.Select(ctx, a.store.DB, &postRows, `
		SELECT p.id, p.content, p.image_url, p.created_at,
			(SELECT count(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
			(SELECT count(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
		FROM posts p
		WHERE p.author_id = $1 AND p.is_published
		ORDER BY p.created_at DESC
		LIMIT 20`, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	posts := make([]map[string]any, 0, len(postRows))
	for _, row := range postRows {
		var imageURL *string
		if row.ImageURL != "" {
			u := row.ImageURL
			imageURL = &u
		}
		posts = append(posts, map[string]any{
			"id":            row.ID,
			"content":       row.Content,
			"image_url":     imageURL,
			"created_at":    row.CreatedAt,
			"like_count":    row.LikeCount,
			"comment_count": row.CommentCount,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":         user.ID,
			"username":   user.Username,
			"avatar_url": user.AvatarURL,
			"fon_url":    user.FonURL,
		},
		"friend_count":     counts.FriendCount,
		"subscriber_count": counts.SubscriberCount,
		"photo_count":      counts.PhotoCount,
		"posts":            posts,
	})
}
