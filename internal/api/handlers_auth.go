package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dangeond/internal/session"
)

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		PasswordRep string `json:"passwordRep"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, errors.New("username and password are required"))
		return
	}
	if req.Password != req.PasswordRep {
		respondError(w, http.StatusBadRequest, errors.New("passwords do not match"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var existing userModel
	err := orm.Where("username = ?", req.Username).First(&existing).Error
	switch {
	case err == nil:
		respondError(w, http.StatusBadRequest, errors.New("username already taken"))
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	model := userModel{
		Username:     req.Username,
		PasswordHash: string(hash),
	}
	if err := orm.Create(&model).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	token, err := a.sessions.Create(ctx, model.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	a.setSessionCookie(w, token)

	log.Info().Int64("user_id", model.ID).Str("username", model.Username).Msg("user registered")
	respondJSON(w, http.StatusCreated, map[string]any{"user": model.toAPI()})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var model userModel
	err := a.store.ORM.WithContext(ctx).Where("username = ?", strings.TrimSpace(req.Username)).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(w, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(model.PasswordHash), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := a.sessions.Create(ctx, model.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	a.setSessionCookie(w, token)

	respondJSON(w, http.StatusOK, map[string]any{"user": model.toAPI()})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		ctx, cancel := withTimeout(r.Context())
		defer cancel()
		if err := a.sessions.Revoke(ctx, cookie.Value); err != nil {
			log.Warn().Err(err).Msg("session revoke failed")
		}
	}
	a.clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]any{"status": "logged out"})
}

func (a *API) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   a.config.CookieDomain,
		MaxAge:   int(session.DefaultTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *API) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   a.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
