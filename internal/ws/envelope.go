package ws

import "time"

// Envelope is the tagged JSON wrapper for every outbound frame.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Envelope type tags.
const (
	TypeEcho    = "echo"
	TypeMessage = "message"
)

// Per-recipient message directions. The sender's own connections always see
// "sent", everyone else sees "received".
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// ChatPush is the payload of a "message" envelope.
type ChatPush struct {
	ChatID  int64       `json:"chatId"`
	Message MessageView `json:"message"`
}

// MessageView is one recipient's view of a committed chat message. It mirrors
// the shape the chat history endpoint returns.
type MessageView struct {
	Direction string  `json:"direction"`
	Name      string  `json:"name"`
	Message   string  `json:"message"`
	Time      string  `json:"time"`
	ImageURL  *string `json:"imageUrl"`
}

// Message is a committed chat message as handed to the broadcast path.
type Message struct {
	ID            int64     `json:"id"`
	ChatID        int64     `json:"chat_id"`
	SenderID      int64     `json:"sender_id"`
	Content       string    `json:"content"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func echoEnvelope(payload any) Envelope {
	return Envelope{Type: TypeEcho, Payload: payload}
}

func messageEnvelope(msg Message, senderName, direction string) Envelope {
	var imageURL *string
	if msg.AttachmentURL != "" {
		u := msg.AttachmentURL
		imageURL = &u
	}

	return Envelope{
		Type: TypeMessage,
		Payload: ChatPush{
			ChatID: msg.ChatID,
			Message: MessageView{
				Direction: direction,
				Name:      senderName,
				Message:   msg.Content,
				Time:      msg.CreatedAt.UTC().Format(time.RFC3339),
				ImageURL:  imageURL,
			},
		},
	}
}
