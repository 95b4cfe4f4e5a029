package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"dangeond/internal/ws"
	"dangeond/pkg/db"
)

func (a *API) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		Name      string  `json:"name"`
		MemberIDs []int64 `json:"memberIds"`
		IsGroup   bool    `json:"isGroup"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.MemberIDs) == 0 {
		respondError(w, http.StatusBadRequest, errors.New("memberIds is required"))
		return
	}

	// The creator is always a member.
	members := map[int64]struct{}{userID: {}}
	for _, id := range req.MemberIDs {
		if id <= 0 {
			respondError(w, http.StatusBadRequest, errors.New("invalid member id"))
			return
		}
		members[id] = struct{}{}
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var chat Chat
	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := chatModel{Name: req.Name, IsGroup: req.IsGroup}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		for id := range members {
			if err := tx.Create(&chatMemberModel{ChatID: model.ID, UserID: id}).Error; err != nil {
				return err
			}
		}
		chat = model.toAPI()
		return nil
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"chat": chat})
}

func (a *API) handleListChats(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var models []chatModel
	err = a.store.ORM.WithContext(ctx).
		Joins("JOIN chat_members cm ON cm.chat_id = chats.id").
		Where("cm.user_id = ?", userID).
		Order("chats.id").
		Find(&models).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	chats := make([]Chat, 0, len(models))
	for _, m := range models {
		chats = append(chats, m.toAPI())
	}
	respondJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

func (a *API) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}
	chatID, err := urlID(r, "chat_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Message  string `json:"message"`
		ImageURL string `json:"imageUrl"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" && req.ImageURL == "" {
		respondError(w, http.StatusBadRequest, errors.New("message is required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	member, err := a.isChatMember(r, chatID, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if !member {
		respondError(w, http.StatusForbidden, errors.New("not a chat member"))
		return
	}

	model := messageModel{
		ChatID:        chatID,
		SenderID:      userID,
		Content:       req.Message,
		AttachmentURL: req.ImageURL,
	}
	if err := a.store.ORM.WithContext(ctx).Create(&model).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	// The message is durable from here on; push delivery is best effort and
	// never affects the response.
	msg := ws.Message{
		ID:            model.ID,
		ChatID:        model.ChatID,
		SenderID:      model.SenderID,
		Content:       model.Content,
		AttachmentURL: model.AttachmentURL,
		CreatedAt:     model.CreatedAt,
	}
	a.notifier.MessageCommitted(ctx, msg)
	a.publishMessage(ctx, msg)

	respondJSON(w, http.StatusCreated, map[string]any{"message": model.toAPI()})
}

func (a *API) handleListMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := a.currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}
	chatID, err := urlID(r, "chat_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	member, err := a.isChatMember(r, chatID, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if !member {
		respondError(w, http.StatusForbidden, errors.New("not a chat member"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var rows []struct {
		SenderID      int64     `db:"sender_id"`
		Username      string    `db:"username"`
		Content       string    `db:"content"`
		AttachmentURL string    `db:"attachment_url"`
		CreatedAt     time.Time `db:"created_at"`
	}
	err = db.Select(ctx, a.store.DB, &rows, `
		SELECT m.sender_id, u.username, m.content, m.attachment_url, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.chat_id = $1
		ORDER BY m.created_at ASC`, chatID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	views := make([]ws.MessageView, 0, len(rows))
	for _, row := range rows {
		direction := ws.DirectionReceived
		if row.SenderID == userID {
			direction = ws.DirectionSent
		}
		var imageURL *string
		if row.AttachmentURL != "" {
			u := row.AttachmentURL
			imageURL = &u
		}
		views = append(views, ws.MessageView{
			Direction: direction,
			Name:      row.Username,
			Message:   row.Content,
			Time:      row.CreatedAt.UTC().Format(time.RFC3339),
			ImageURL:  imageURL,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"chatId": chatID, "messages": views})
}

func (a *API) isChatMember(r *http.Request, chatID, userID int64) (bool, error) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var count int64
	err := a.store.ORM.WithContext(ctx).
		Model(&chatMemberModel{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	return count > 0, err
}
