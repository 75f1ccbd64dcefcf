package domain

import "time"

// Message is a persisted conversation message joined with its sender profile.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Sender         Profile   `json:"sender"`
	Content        string    `json:"content"`
	Kind           string    `json:"type"`
	Attachments    []string  `json:"attachments,omitempty"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Conversation struct {
	ID        string    `json:"id"`
	Kind      string    `json:"type"` // private or group
	CreatedAt time.Time `json:"createdAt"`
}

type Notification struct {
	ID          string    `json:"id"`
	RecipientID UserID    `json:"recipientId"`
	ActorID     UserID    `json:"actorId"`
	Kind        string    `json:"type"`
	Reference   string    `json:"reference,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}
