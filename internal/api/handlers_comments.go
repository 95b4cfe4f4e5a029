package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"dangeond/pkg/db"
)

func (a *API) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		PostID  int64  `json:"postId"`
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.PostID <= 0 || strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, errors.New("postId and content are required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var post postModel
	err = orm.First(&post, "id = ?", req.PostID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(w, http.StatusNotFound, errors.New("post not found"))
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	model := commentModel{
		PostID:   req.PostID,
		AuthorID: userID,
		Content:  req.Content,
	}
	if err := orm.Create(&model).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	var username string
	if err := db.Get(ctx, a.store.DB, &username, `SELECT username FROM users WHERE id = $1`, userID); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"comment": Comment{
		ID:        model.ID,
		PostID:    model.PostID,
		UserID:    model.AuthorID,
		Username:  username,
		Content:   model.Content,
		CreatedAt: model.CreatedAt,
	}})
}

func (a *API) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}
	commentID, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	result := a.store.ORM.WithContext(ctx).
		Where("id = ? AND author_id = ?", commentID, userID).
		Delete(&commentModel{})
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, errors.New("comment not found"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func (a *API) handleListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := urlID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var rows []struct {
		ID        int64     `db:"id"`
		PostID    int64     `db:"post_id"`
		AuthorID  int64     `db:"author_id"`
		Username  string    `db:"username"`
		Content   string    `db:"content"`
		CreatedAt time.Time `db:"created_at"`
	}
	err = db.Select(ctx, a.store.DB, &rows, `
		SELECT c.id, c.post_id, c.author_id, u.username, c.content, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC`, postID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	comments := make([]Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, Comment{
			ID:        row.ID,
			PostID:    row.PostID,
			UserID:    row.AuthorID,
			Username:  row.Username,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"comments": comments})
}
