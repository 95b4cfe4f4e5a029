package api

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

func (a *API) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	model, err := a.settingsFor(a.store.ORM.WithContext(ctx), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"settings": model.toAPI()})
}

func (a *API) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		NotificationsEnabled bool   `json:"notifications_enabled"`
		Theme                string `json:"theme"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Theme != "light" && req.Theme != "dark" {
		respondError(w, http.StatusBadRequest, errors.New("theme must be light or dark"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	model, err := a.settingsFor(orm, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	updates := map[string]any{
		"notifications_enabled": req.NotificationsEnabled,
		"theme":                 req.Theme,
	}
	if err := orm.Model(&model).Updates(updates).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if err := orm.First(&model, "id = ?", model.ID).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"settings": model.toAPI()})
}

// settingsFor fetches the user's settings row, creating defaults on first use.
func (a *API) settingsFor(orm *gorm.DB, userID int64) (settingModel, error) {
	var model settingModel
	err := orm.Where("user_id = ?", userID).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		model = settingModel{
			UserID:               userID,
			NotificationsEnabled: true,
			Theme:                "light",
		}
		if err := orm.Create(&model).Error; err != nil {
			return settingModel{}, err
		}
		return model, nil
	case err != nil:
		return settingModel{}, err
	default:
		return model, nil
	}
}
