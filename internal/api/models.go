package api

import "time"

// User is the public view of an account.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Post is an authored feed entry.
type Post struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Like marks a user's approval of a post, at most one per user per post.
type Like struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Friend is one direction of the friendship graph. A pending row is a
// follow/request; a reciprocated pair of accepted rows is a friendship.
type Friend struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	FriendID int64  `json:"friend_id"`
	Status   string `json:"status"`
}

// Friendship states as seen from one user towards another.
const (
	friendStatusPending  = "pending"
	friendStatusAccepted = "accepted"
)

// Chat is a conversation, direct or group.
type Chat struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	IsGroup bool   `json:"is_group"`
}

// ChatMessage is the commit-side view of a message.
type ChatMessage struct {
	ID            int64     `json:"id"`
	ChatID        int64     `json:"chat_id"`
	SenderID      int64     `json:"sender_id"`
	Content       string    `json:"content"`
	AttachmentURL *string   `json:"attachment_url"`
	CreatedAt     time.Time `json:"created_at"`
}

// GalleryItem is a stored image with a presigned access URL.
type GalleryItem struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// ImageRecord describes an uploaded image object.
type ImageRecord struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	Filepath string `json:"filepath"`
}

// Settings are per-user preferences.
type Settings struct {
	ID                   int64  `json:"id"`
	UserID               int64  `json:"user_id"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	Theme                string `json:"theme"`
}
