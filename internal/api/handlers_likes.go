package api

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

func (a *API) handleCreateLike(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		PostID int64 `json:"postId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.PostID <= 0 {
		respondError(w, http.StatusBadRequest, errors.New("postId is required"))
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

	var existing likeModel
	err = orm.Where("post_id = ? AND author_id = ?", req.PostID, userID).First(&existing).Error
	switch {
	case err == nil:
		respondError(w, http.StatusBadRequest, errors.New("post already liked"))
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	model := likeModel{PostID: req.PostID, AuthorID: userID}
	if err := orm.Create(&model).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"like": model.toAPI()})
}

func (a *API) handleListLikes(w http.ResponseWriter, r *http.Request) {
	postID, err := urlID(r, "post_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var models []likeModel
	err = a.store.ORM.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	likes := make([]Like, 0, len(models))
	for _, m := range models {
		likes = append(likes, m.toAPI())
	}
	respondJSON(w, http.StatusOK, map[string]any{"likes": likes, "count": len(likes)})
}

func (a *API) handleDeleteLike(w http.ResponseWriter, r *http.Request) {
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
		Where("post_id = ? AND author_id = ?", postID, userID).
		Delete(&likeModel{})
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, errors.New("like not found"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"status": "unliked"})
}
