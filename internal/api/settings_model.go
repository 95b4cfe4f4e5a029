package api

type settingModel struct {
	ID                   int64  `gorm:"type:bigserial;primaryKey"`
	UserID               int64  `gorm:"not null;uniqueIndex"`
	NotificationsEnabled bool   `gorm:"not null;default:true"`
	Theme                string `gorm:"type:text;not null;default:'light'"`
}

func (settingModel) TableName() string { return "settings" }

func (m settingModel) toAPI() Settings {
	return Settings{
		ID:                   m.ID,
		UserID:               m.UserID,
		NotificationsEnabled: m.NotificationsEnabled,
		Theme:                m.Theme,
	}
}
