package api

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dangeond/pkg/db"
)

const maxImageUpload = 32 << 20

func (a *API) handleUploadPublicImage(w http.ResponseWriter, r *http.Request) {
	a.handleUploadImage(w, r, false)
}

func (a *API) handleUploadPrivateImage(w http.ResponseWriter, r *http.Request) {
	a.handleUploadImage(w, r, true)
}

func (a *API) handleUploadImage(w http.ResponseWriter, r *http.Request, private bool) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}
	if a.store.S3 == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("image storage not configured"))
		return
	}

	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(w, http.StatusBadRequest, errors.New("only image uploads are accepted"))
		return
	}

	key := "images/" + uuid.NewString() + strings.ToLower(path.Ext(header.Filename))

	if err := a.store.S3.PutObject(r.Context(), a.config.ImageBucket, key, file, header.Size, contentType); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var record ImageRecord
	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		image := imageModel{
			Filename:    header.Filename,
			Filepath:    key,
			ContentType: contentType,
		}
		if err := tx.Create(&image).Error; err != nil {
			return err
		}
		if err := tx.Create(&userImageModel{
			UserID:  userID,
			ImageID: image.ID,
			Private: private,
		}).Error; err != nil {
			return err
		}
		record = image.toAPI()
		return nil
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	url, err := a.store.S3.PresignGet(r.Context(), a.config.ImageBucket, key, presignURLExpiry)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"image": record, "url": url})
}

func (a *API) handleGallery(w http.ResponseWriter, r *http.Request) {
	ownerID, err := urlID(r, "user_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if a.store.S3 == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("image storage not configured"))
		return
	}

	// Private images are only visible to their owner.
	includePrivate := false
	if callerID, err := a.currentUser(r); err == nil && callerID == ownerID {
		includePrivate = true
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var rows []struct {
		ID       int64  `db:"id"`
		Filepath string `db:"filepath"`
	}
	query := `
		SELECT i.id, i.filepath
		FROM user_images ui
		JOIN images i ON i.id = ui.image_id
		WHERE ui.user_id = $1`
	if !includePrivate {
		query += ` AND NOT ui.private`
	}
	query += ` ORDER BY i.id DESC`
	if err := db.Select(ctx, a.store.DB, &rows, query, ownerID); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	items := make([]GalleryItem, 0, len(rows))
	for _, row := range rows {
		url, err := a.store.S3.PresignGet(r.Context(), a.config.ImageBucket, row.Filepath, presignURLExpiry)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		items = append(items, GalleryItem{ID: row.ID, URL: url})
	}
	respondJSON(w, http.StatusOK, map[string]any{"gallery": items})
}
