package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledyaev/amity/internal/domain"
)

// Store implements core.Persistence. Absent rows come back as
// domain.ErrNotFound; everything else wraps into PersistenceError so
// the router can report it without leaking driver details.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func perr(op string, err error) error {
	return &domain.PersistenceError{Op: op, Err: err}
}

func (s *Store) FindUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var u domain.User
	query := `SELECT id, username, avatar_url, online, last_seen FROM users WHERE id=$1`
	err := s.db.QueryRow(ctx, query, string(id)).
		Scan(&u.ID, &u.Username, &u.AvatarURL, &u.Online, &u.LastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, perr("findUser", err)
	}
	return &u, nil
}

func (s *Store) UpdateUserPresence(ctx context.Context, id domain.UserID, online bool, lastSeen time.Time) error {
	query := `UPDATE users SET online=$2, last_seen=$3 WHERE id=$1`
	if _, err := s.db.Exec(ctx, query, string(id), online, lastSeen); err != nil {
		return perr("updateUserPresence", err)
	}
	return nil
}

func (s *Store) CreateMessage(ctx context.Context, conversationID string, sender domain.UserID, content, kind string, attachments []string) (string, error) {
	if kind == "" {
		kind = "text"
	}
	id := uuid.NewString()
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, content, kind, attachments)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.db.Exec(ctx, query, id, conversationID, string(sender), content, kind, attachments); err != nil {
		return "", perr("createMessage", err)
	}
	return id, nil
}

func (s *Store) FindMessageWithSender(ctx context.Context, id string) (*domain.Message, error) {
	var m domain.Message
	query := `
		SELECT m.id, m.conversation_id, m.content, m.kind, m.attachments, m.read, m.created_at,
		       u.id, u.username, u.avatar_url, u.online
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.id=$1`
	err := s.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.ConversationID, &m.Content, &m.Kind, &m.Attachments, &m.Read, &m.CreatedAt,
		&m.Sender.ID, &m.Sender.Username, &m.Sender.AvatarURL, &m.Sender.Online,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, perr("findMessageWithSender", err)
	}
	return &m, nil
}

func (s *Store) UpdateMessagesRead(ctx context.Context, conversationID string, exclude domain.UserID) error {
	query := `UPDATE messages SET read=TRUE WHERE conversation_id=$1 AND sender_id<>$2 AND NOT read`
	if _, err := s.db.Exec(ctx, query, conversationID, string(exclude)); err != nil {
		return perr("updateMessagesRead", err)
	}
	return nil
}

func (s *Store) FindConversationIfParticipant(ctx context.Context, id string, user domain.UserID) (*domain.Conversation, error) {
	var c domain.Conversation
	query := `
		SELECT c.id, c.kind, c.created_at
		FROM conversations c
		JOIN participants p ON p.conversation_id = c.id
		WHERE c.id=$1 AND p.user_id=$2`
	err := s.db.QueryRow(ctx, query, id, string(user)).Scan(&c.ID, &c.Kind, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, perr("findConversationIfParticipant", err)
	}
	return &c, nil
}

func (s *Store) CreateNotification(ctx context.Context, recipient, actor domain.UserID, kind, reference string) (*domain.Notification, error) {
	n := domain.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipient,
		ActorID:     actor,
		Kind:        kind,
		Reference:   reference,
	}
	query := `
		INSERT INTO notifications (id, recipient_id, actor_id, kind, reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	err := s.db.QueryRow(ctx, query, n.ID, string(recipient), string(actor), kind, reference).
		Scan(&n.CreatedAt)
	if err != nil {
		return nil, perr("createNotification", err)
	}
	return &n, nil
}

func (s *Store) UpdateNotificationRead(ctx context.Context, id string, user domain.UserID) error {
	query := `UPDATE notifications SET read=TRUE WHERE id=$1 AND recipient_id=$2`
	if _, err := s.db.Exec(ctx, query, id, string(user)); err != nil {
		return perr("updateNotificationRead", err)
	}
	return nil
}
