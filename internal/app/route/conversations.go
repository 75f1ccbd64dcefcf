package route

import (
	"context"
	"errors"

	"github.com/ledyaev/amity/internal/core"
	"github.com/ledyaev/amity/internal/domain"
)

type typingPayload struct {
	ConversationID string        `json:"conversationId"`
	UserID         domain.UserID `json:"userId"`
	Username       string        `json:"username"`
}

// joinConversation admits the connection to a conversation room after
// confirming the user is a participant. The check awaits the store, so
// the session is re-validated before the room mutation.
func (r *Router) joinConversation(ctx context.Context, s *core.Session, ev *core.JoinConversation) error {
	if _, err := r.store.FindConversationIfParticipant(ctx, ev.ConversationID, s.User.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAuthorization
		}
		return err
	}
	if !r.alive(s) {
		return nil
	}
	r.rooms.Join(domain.ConversationRoom(ev.ConversationID), s.ID)
	r.emitConn(s, "joined-conversation", struct {
		ConversationID string `json:"conversationId"`
	}{ev.ConversationID})
	return nil
}

func (r *Router) leaveConversation(s *core.Session, ev *core.LeaveConversation) error {
	r.rooms.Leave(domain.ConversationRoom(ev.ConversationID), s.ID)
	if r.typing.Stop(ev.ConversationID, s.User.ID) {
		r.emitRoom(domain.ConversationRoom(ev.ConversationID), s.ID, "typing-stop", typingPayload{
			ConversationID: ev.ConversationID,
			UserID:         s.User.ID,
			Username:       s.User.Username,
		})
	}
	r.emitConn(s, "left-conversation", struct {
		ConversationID string `json:"conversationId"`
	}{ev.ConversationID})
	return nil
}

// sendMessage persists first and fans out only after the row exists,
// so no client ever observes a message that failed to record.
func (r *Router) sendMessage(ctx context.Context, s *core.Session, ev *core.SendMessage) error {
	if _, err := r.store.FindConversationIfParticipant(ctx, ev.ConversationID, s.User.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAuthorization
		}
		return err
	}

	id, err := r.store.CreateMessage(ctx, ev.ConversationID, s.User.ID, ev.Content, ev.Kind, ev.Attachments)
	if err != nil {
		return err
	}
	msg, err := r.store.FindMessageWithSender(ctx, id)
	if err != nil {
		return err
	}

	r.emitRoom(domain.ConversationRoom(ev.ConversationID), "", "new-message", struct {
		Message        *domain.Message `json:"message"`
		ConversationID string          `json:"conversationId"`
	}{msg, ev.ConversationID})
	return nil
}

func (r *Router) markRead(ctx context.Context, s *core.Session, ev *core.MarkRead) error {
	if _, err := r.store.FindConversationIfParticipant(ctx, ev.ConversationID, s.User.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAuthorization
		}
		return err
	}
	if err := r.store.UpdateMessagesRead(ctx, ev.ConversationID, s.User.ID); err != nil {
		return err
	}
	r.emitRoom(domain.ConversationRoom(ev.ConversationID), s.ID, "messages-read", struct {
		ConversationID string        `json:"conversationId"`
		ReaderID       domain.UserID `json:"readerId"`
	}{ev.ConversationID, s.User.ID})
	return nil
}

func (r *Router) typingStart(s *core.Session, ev *core.TypingStart) error {
	room := domain.ConversationRoom(ev.ConversationID)
	if !r.rooms.Contains(room, s.ID) {
		return domain.ErrAuthorization
	}
	r.typing.Start(ev.ConversationID, s.User.ID)
	r.emitRoom(room, s.ID, "typing-start", typingPayload{
		ConversationID: ev.ConversationID,
		UserID:         s.User.ID,
		Username:       s.User.Username,
	})
	return nil
}

func (r *Router) typingStop(s *core.Session, ev *core.TypingStop) error {
	room := domain.ConversationRoom(ev.ConversationID)
	if !r.rooms.Contains(room, s.ID) {
		return domain.ErrAuthorization
	}
	r.typing.Stop(ev.ConversationID, s.User.ID)
	r.emitRoom(room, s.ID, "typing-stop", typingPayload{
		ConversationID: ev.ConversationID,
		UserID:         s.User.ID,
		Username:       s.User.Username,
	})
	return nil
}
