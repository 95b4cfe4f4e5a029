package api

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"dangeond/pkg/db"
)

func (a *API) handleCreateFriend(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		FriendID int64 `json:"friend_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.FriendID <= 0 || req.FriendID == userID {
		respondError(w, http.StatusBadRequest, errors.New("invalid friend_id"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var result Friend
	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target userModel
		if err := tx.First(&target, "id = ?", req.FriendID).Error; err != nil {
			return err
		}

		var existing friendModel
		err := tx.Where("user_id = ? AND friend_id = ?", userID, req.FriendID).First(&existing).Error
		if err == nil {
			result = existing.toAPI()
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// A pending request in the other direction means both sides accept.
		var reverse friendModel
		reverseErr := tx.Where("user_id = ? AND friend_id = ?", req.FriendID, userID).First(&reverse).Error
		status := friendStatusPending
		switch {
		case reverseErr == nil:
			status = friendStatusAccepted
			if err := tx.Model(&reverse).Update("status", friendStatusAccepted).Error; err != nil {
				return err
			}
		case !errors.Is(reverseErr, gorm.ErrRecordNotFound):
			return reverseErr
		}

		model := friendModel{UserID: userID, FriendID: req.FriendID, Status: status}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		result = model.toAPI()
		return nil
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(w, http.StatusNotFound, errors.New("user not found"))
	case err != nil:
		respondError(w, http.StatusInternalServerError, err)
	default:
		respondJSON(w, http.StatusCreated, map[string]any{"friend": result})
	}
}

func (a *API) handleListFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "user_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	users, err := a.friendUsers(r, `
		SELECT u.id, u.username, u.avatar_url
		FROM friends f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1 AND f.status = 'accepted'
		ORDER BY u.username`, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"friends": users})
}

func (a *API) handleDeleteFriend(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}
	friendID, err := urlID(r, "user_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	// Removing a friendship tears down both directions; a remaining accepted
	// row on the other side would claim a friendship that no longer exists.
	result := a.store.ORM.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, friendID, friendID, userID).
		Delete(&friendModel{})
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, errors.New("friend relation not found"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"status": "removed"})
}

func (a *API) handleListFollowing(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "user_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	users, err := a.friendUsers(r, `
		SELECT u.id, u.username, u.avatar_url
		FROM friends f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY u.username`, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"following": users})
}

func (a *API) handleListFriendRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "user_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	users, err := a.friendUsers(r, `
		SELECT u.id, u.username, u.avatar_url
		FROM friends f
		JOIN users u ON u.id = f.user_id
		WHERE f.friend_id = $1 AND f.status = 'pending'
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"requests": users})
}

func (a *API) friendUsers(r *http.Request, query string, args ...any) ([]User, error) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var rows []struct {
		ID        int64  `db:"id"`
		Username  string `db:"username"`
		AvatarURL string `db:"avatar_url"`
	}
	if err := db.Select(ctx, a.store.DB, &rows, query, args...); err != nil {
		return nil, err
	}

	users := make([]User, 0, len(rows))
	for _, row := range rows {
		users = append(users, User{ID: row.ID, Username: row.Username, AvatarURL: row.AvatarURL})
	}
	return users, nil
}

func (a *API) handleFriendStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "user_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	otherID, err := urlID(r, "other_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var outgoing friendModel
	outErr := orm.Where("user_id = ? AND friend_id = ?", userID, otherID).First(&outgoing).Error
	if outErr != nil && !errors.Is(outErr, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusInternalServerError, outErr)
		return
	}

	var incoming friendModel
	inErr := orm.Where("user_id = ? AND friend_id = ?", otherID, userID).First(&incoming).Error
	if inErr != nil && !errors.Is(inErr, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusInternalServerError, inErr)
		return
	}

	status := "none"
	switch {
	case outErr == nil && outgoing.Status == friendStatusAccepted:
		status = "friends"
	case outErr == nil:
		status = "following"
	case inErr == nil:
		status = "requested"
	}

	respondJSON(w, http.StatusOK, map[string]any{"status": status})
}
