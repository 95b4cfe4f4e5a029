package api

type imageModel struct {
	ID          int64  `gorm:"type:bigserial;primaryKey"`
	Filename    string `gorm:"type:text;uniqueIndex;not null"`
	Filepath    string `gorm:"type:text;not null"`
	ContentType string `gorm:"type:text"`
}

func (imageModel) TableName() string { return "images" }

func (m imageModel) toAPI() ImageRecord {
	return ImageRecord{
		ID:       m.ID,
		Filename: m.Filename,
		Filepath: m.Filepath,
	}
}

type userImageModel struct {
	ID      int64 `gorm:"type:bigserial;primaryKey"`
	UserID  int64 `gorm:"not null;index"`
	ImageID int64 `gorm:"not null"`
	Private bool  `gorm:"not null;default:false"`
}

func (userImageModel) TableName() string { return "user_images" }
