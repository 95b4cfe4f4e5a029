package api

import "time"

type friendModel struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	UserID    int64     `gorm:"not null;index"`
	FriendID  int64     `gorm:"not null;index"`
	Status    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (friendModel) TableName() string { return "friends" }

func (m friendModel) toAPI() Friend {
	return Friend{
		ID:       m.ID,
		UserID:   m.UserID,
		FriendID: m.FriendID,
		Status:   m.Status,
	}
}
