package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

type User struct {
	ID           int64             `gorm:"type:bigserial;primaryKey"`
	Username     string            `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash string            `gorm:"type:text;not null"`
	AvatarURL    string            `gorm:"type:text"`
	FonURL       string            `gorm:"type:text"`
	Profile      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt    time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type Chat struct {
	ID      int64  `gorm:"type:bigserial;primaryKey"`
	Name    string `gorm:"type:text"`
	IsGroup bool   `gorm:"not null;default:false"`
}

type ChatMember struct {
	ChatID   int64     `gorm:"primaryKey;autoIncrement:false"`
	UserID   int64     `gorm:"primaryKey;autoIncrement:false;index"`
	JoinedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Chat     Chat      `gorm:"foreignKey:ChatID;references:ID;constraint:OnDelete:CASCADE"`
	User     User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

type Message struct {
	ID            int64     `gorm:"type:bigserial;primaryKey"`
	ChatID        int64     `gorm:"not null;index"`
	SenderID      int64     `gorm:"not null"`
	Content       string    `gorm:"type:text"`
	AttachmentURL string    `gorm:"type:text"`
	IsRead        bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Chat          Chat      `gorm:"foreignKey:ChatID;references:ID;constraint:OnDelete:CASCADE"`
	Sender        User      `gorm:"foreignKey:SenderID;references:ID"`
}

type Post struct {
	ID          int64      `gorm:"type:bigserial;primaryKey"`
	AuthorID    int64      `gorm:"not null;index"`
	Title       string     `gorm:"type:text"`
	Content     string     `gorm:"type:text;not null"`
	ImageURL    string     `gorm:"type:text"`
	IsPublished bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt   *time.Time `gorm:"type:timestamptz"`
	Author      User       `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

type Comment struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	PostID    int64     `gorm:"not null;index"`
	AuthorID  int64     `gorm:"not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Post      Post      `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	Author    User      `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

type Like struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	PostID    int64     `gorm:"not null;uniqueIndex:idx_likes_post_author"`
	AuthorID  int64     `gorm:"not null;uniqueIndex:idx_likes_post_author"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Post      Post      `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	Author    User      `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

type Friend struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	UserID    int64     `gorm:"not null;index"`
	FriendID  int64     `gorm:"not null;index"`
	Status    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Friend    User      `gorm:"foreignKey:FriendID;references:ID;constraint:OnDelete:CASCADE"`
}

type Image struct {
	ID          int64  `gorm:"type:bigserial;primaryKey"`
	Filename    string `gorm:"type:text;uniqueIndex;not null"`
	Filepath    string `gorm:"type:text;not null"`
	ContentType string `gorm:"type:text"`
}

type UserImage struct {
	ID      int64 `gorm:"type:bigserial;primaryKey"`
	UserID  int64 `gorm:"not null;index"`
	ImageID int64 `gorm:"not null"`
	Private bool  `gorm:"not null;default:false"`
	User    User  `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Image   Image `gorm:"foreignKey:ImageID;references:ID;constraint:OnDelete:CASCADE"`
}

type Setting struct {
	ID                   int64  `gorm:"type:bigserial;primaryKey"`
	UserID               int64  `gorm:"not null;uniqueIndex"`
	NotificationsEnabled bool   `gorm:"not null;default:true"`
	Theme                string `gorm:"type:text;not null;default:'light'"`
	User                 User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&User{},
		&Chat{},
		&ChatMember{},
		&Message{},
		&Post{},
		&Comment{},
		&Like{},
		&Friend{},
		&Image{},
		&UserImage{},
		&Setting{},
	); err != nil {
		return err
	}

	m := gormDB.WithContext(ctx).Migrator()
	for model, rel := range map[any]string{
		&ChatMember{}: "Chat",
		&Message{}:    "Chat",
		&Comment{}:    "Post",
		&Like{}:       "Post",
		&UserImage{}:  "Image",
	} {
		if err := m.CreateConstraint(model, rel); err != nil {
			return err
		}
	}

	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Migrator().DropTable(
		&Setting{},
		&UserImage{},
		&Image{},
		&Friend{},
		&Like{},
		&Comment{},
		&Post{},
		&Message{},
		&ChatMember{},
		&Chat{},
		&User{},
	)
}
