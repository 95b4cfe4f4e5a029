package api

import (
	"time"

	"gorm.io/datatypes"
)

type userModel struct {
	ID           int64             `gorm:"type:bigserial;primaryKey"`
	Username     string            `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash string            `gorm:"type:text;not null"`
	AvatarURL    string            `gorm:"type:text"`
	FonURL       string            `gorm:"type:text"`
	Profile      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt    time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (userModel) TableName() string { return "users" }

func (m userModel) toAPI() User {
	return User{
		ID:        m.ID,
		Username:  m.Username,
		AvatarURL: m.AvatarURL,
	}
}
