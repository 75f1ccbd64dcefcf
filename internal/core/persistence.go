package core

import (
	"context"
	"time"

	"github.com/ledyaev/amity/internal/domain"
)

// Persistence is the durable store the router consults before any
// fan-out that must be recorded. Absent rows surface as
// domain.ErrNotFound; everything else wraps into domain.PersistenceError.
type Persistence interface {
	FindUser(ctx context.Context, id domain.UserID) (*domain.User, error)
	UpdateUserPresence(ctx context.Context, id domain.UserID, online bool, lastSeen time.Time) error

	CreateMessage(ctx context.Context, conversationID string, sender domain.UserID, content, kind string, attachments []string) (string, error)
	FindMessageWithSender(ctx context.Context, id string) (*domain.Message, error)
	UpdateMessagesRead(ctx context.Context, conversationID string, exclude domain.UserID) error
	FindConversationIfParticipant(ctx context.Context, id string, user domain.UserID) (*domain.Conversation, error)

	CreateNotification(ctx context.Context, recipient, actor domain.UserID, kind, reference string) (*domain.Notification, error)
	UpdateNotificationRead(ctx context.Context, id string, user domain.UserID) error
}

// SocialGraph resolves follower and friend sets for notification
// fan-out. An empty result degrades fan-out silently, it never fails
// an event.
type SocialGraph interface {
	FollowersOf(ctx context.Context, id domain.UserID) ([]domain.UserID, error)
	FriendsOf(ctx context.Context, id domain.UserID) ([]domain.UserID, error)
}
