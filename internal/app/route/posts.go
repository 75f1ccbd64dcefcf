package route

import (
	"context"

	"github.com/ledyaev/amity/internal/core"
	"github.com/ledyaev/amity/internal/domain"
)

type postActorPayload struct {
	PostID   string        `json:"postId"`
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username"`
}

// newPost announces a freshly created post to every follower's
// personal room. The post itself was persisted by the REST API; this
// path only fans out.
func (r *Router) newPost(ctx context.Context, s *core.Session, ev *core.NewPost) error {
	followers, err := r.graph.FollowersOf(ctx, s.User.ID)
	if err != nil {
		// Follower lookup degrades fan-out silently, never fails the event.
		return nil
	}
	payload := postActorPayload{PostID: ev.PostID, UserID: s.User.ID, Username: s.User.Username}
	for _, f := range followers {
		r.emitRoom(domain.PersonalRoom(f), "", "post-created", payload)
	}
	return nil
}

func (r *Router) joinPost(s *core.Session, ev *core.JoinPost) error {
	r.rooms.Join(domain.ContentRoom(ev.PostID), s.ID)
	return nil
}

func (r *Router) leavePost(s *core.Session, ev *core.LeavePost) error {
	r.rooms.Leave(domain.ContentRoom(ev.PostID), s.ID)
	return nil
}

func (r *Router) likePost(s *core.Session, ev *core.LikePost) error {
	payload := postActorPayload{PostID: ev.PostID, UserID: s.User.ID, Username: s.User.Username}
	if ev.AuthorID != s.User.ID {
		r.emitRoom(domain.PersonalRoom(ev.AuthorID), "", "post-liked", payload)
	}
	r.emitRoom(domain.ContentRoom(ev.PostID), s.ID, "post-liked", payload)
	return nil
}

// commentPost records a notification for the post author before any
// fan-out; a self-comment has nobody to notify and skips persistence.
func (r *Router) commentPost(ctx context.Context, s *core.Session, ev *core.CommentPost) error {
	if ev.AuthorID != s.User.ID {
		if _, err := r.store.CreateNotification(ctx, ev.AuthorID, s.User.ID, "comment", ev.PostID); err != nil {
			return err
		}
	}
	payload := struct {
		postActorPayload
		Content string `json:"content"`
	}{postActorPayload{PostID: ev.PostID, UserID: s.User.ID, Username: s.User.Username}, ev.Content}
	if ev.AuthorID != s.User.ID {
		r.emitRoom(domain.PersonalRoom(ev.AuthorID), "", "post-commented", payload)
	}
	r.emitRoom(domain.ContentRoom(ev.PostID), s.ID, "post-commented", payload)
	return nil
}

func (r *Router) sendNotification(ctx context.Context, s *core.Session, ev *core.SendNotification) error {
	n, err := r.store.CreateNotification(ctx, ev.RecipientID, s.User.ID, ev.Kind, ev.Reference)
	if err != nil {
		return err
	}
	r.emitRoom(domain.PersonalRoom(ev.RecipientID), "", "notification", struct {
		Notification *domain.Notification `json:"notification"`
	}{n})
	return nil
}

func (r *Router) markNotificationRead(ctx context.Context, s *core.Session, ev *core.MarkNotificationRead) error {
	if err := r.store.UpdateNotificationRead(ctx, ev.NotificationID, s.User.ID); err != nil {
		return err
	}
	r.emitConn(s, "notification-read", struct {
		NotificationID string `json:"notificationId"`
	}{ev.NotificationID})
	return nil
}
