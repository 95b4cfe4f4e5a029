package api

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"dangeond/pkg/bus"
	"dangeond/pkg/db"
	gos3 "dangeond/pkg/s3"
)

// Store holds external dependencies required by the API layer.
type Store struct {
	DB  *pgxpool.Pool
	ORM *gorm.DB
	S3  *gos3.Client
	Bus *bus.Bus
}

// Members returns the user ids currently belonging to a chat. The broadcast
// path queries this fresh on every delivery.
func (s *Store) Members(ctx context.Context, chatID int64) ([]int64, error) {
	var ids []int64
	err := s.ORM.WithContext(ctx).
		Model(&chatMemberModel{}).
		Where("chat_id = ?", chatID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// DisplayName resolves a sender's display name for push payloads.
func (s *Store) DisplayName(ctx context.Context, userID int64) (string, error) {
	var username string
	err := db.Get(ctx, s.DB, &username, `SELECT username FROM users WHERE id = $1`, userID)
	return username, err
}
