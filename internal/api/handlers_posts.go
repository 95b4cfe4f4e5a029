package api

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

func (a *API) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		ImageURL string `json:"image_url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, errors.New("content is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	model := postModel{
		AuthorID:    userID,
		Title:       req.Title,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		IsPublished: true,
	}
	if err := a.store.ORM.WithContext(ctx).Create(&model).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"post": model.toAPI()})
}

func (a *API) handleListPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var models []postModel
	err := a.store.ORM.WithContext(ctx).
		Where("is_published = ?", true).
		Order("created_at DESC").
		Limit(100).
		Find(&models).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	posts := make([]Post, 0, len(models))
	for _, m := range models {
		posts = append(posts, m.toAPI())
	}
	respondJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (a *API) handleGetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := urlID(r, "post_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var model postModel
	err = a.store.ORM.WithContext(ctx).First(&model, "id = ?", postID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(w, http.StatusNotFound, errors.New("post not found"))
	case err != nil:
		respondError(w, http.StatusInternalServerError, err)
	default:
		respondJSON(w, http.StatusOK, map[string]any{"post": model.toAPI()})
	}
}

func (a *API) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}
	postID, err := urlID(r, "post_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	result := a.store.ORM.WithContext(ctx).
		Where("id = ? AND author_id = ?", postID, userID).
		Delete(&postModel{})
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, errors.New("post not found"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}
