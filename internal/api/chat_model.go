package api

import "time"

type chatModel struct {
	ID      int64  `gorm:"type:bigserial;primaryKey"`
	Name    string `gorm:"type:text"`
	IsGroup bool   `gorm:"not null;default:false"`
}

func (chatModel) TableName() string { return "chats" }

func (m chatModel) toAPI() Chat {
	return Chat{
		ID:      m.ID,
		Name:    m.Name,
		IsGroup: m.IsGroup,
	}
}

type chatMemberModel struct {
	ChatID   int64     `gorm:"primaryKey;autoIncrement:false"`
	UserID   int64     `gorm:"primaryKey;autoIncrement:false"`
	JoinedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (chatMemberModel) TableName() string { return "chat_members" }

type messageModel struct {
	ID            int64     `gorm:"type:bigserial;primaryKey"`
	ChatID        int64     `gorm:"not null;index"`
	SenderID      int64     `gorm:"not null"`
	Content       string    `gorm:"type:text"`
	AttachmentURL string    `gorm:"type:text"`
	IsRead        bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (messageModel) TableName() string { return "messages" }

func (m messageModel) toAPI() ChatMessage {
	var attachment *string
	if m.AttachmentURL != "" {
		u := m.AttachmentURL
		attachment = &u
	}
	return ChatMessage{
		ID:            m.ID,
		ChatID:        m.ChatID,
		SenderID:      m.SenderID,
		Content:       m.Content,
		AttachmentURL: attachment,
		CreatedAt:     m.CreatedAt,
	}
}
