package api

import "time"

type postModel struct {
	ID          int64      `gorm:"type:bigserial;primaryKey"`
	AuthorID    int64      `gorm:"not null;index"`
	Title       string     `gorm:"type:text"`
	Content     string     `gorm:"type:text;not null"`
	ImageURL    string     `gorm:"type:text"`
	IsPublished bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt   *time.Time `gorm:"type:timestamptz"`
}

func (postModel) TableName() string { return "posts" }

func (m postModel) toAPI() Post {
	var imageURL *string
	if m.ImageURL != "" {
		u := m.ImageURL
		imageURL = &u
	}
	return Post{
		ID:        m.ID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		ImageURL:  imageURL,
		CreatedAt: m.CreatedAt,
	}
}

type commentModel struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	PostID    int64     `gorm:"not null;index"`
	AuthorID  int64     `gorm:"not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (commentModel) TableName() string { return "comments" }

type likeModel struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	PostID    int64     `gorm:"not null"`
	AuthorID  int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (likeModel) TableName() string { return "likes" }

func (m likeModel) toAPI() Like {
	return Like{
		ID:        m.ID,
		PostID:    m.PostID,
		AuthorID:  m.AuthorID,
		CreatedAt: m.CreatedAt,
	}
}
