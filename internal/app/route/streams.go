package route

import (
	"context"

	"github.com/ledyaev/amity/internal/core"
	"github.com/ledyaev/amity/internal/domain"
)

type viewerPayload struct {
	StreamID string        `json:"streamId"`
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username"`
}

func (r *Router) startStream(ctx context.Context, s *core.Session, ev *core.StartStream) error {
	s.SetActiveStream(ev.StreamID)
	r.rooms.Join(domain.StreamRoom(ev.StreamID), s.ID)

	if ev.Private {
		return nil
	}
	followers, err := r.graph.FollowersOf(ctx, s.User.ID)
	if err != nil {
		return nil
	}
	payload := struct {
		StreamID string        `json:"streamId"`
		Title    string        `json:"title,omitempty"`
		HostID   domain.UserID `json:"hostId"`
		HostName string        `json:"hostName"`
	}{ev.StreamID, ev.Title, s.User.ID, s.User.Username}
	for _, f := range followers {
		r.emitRoom(domain.PersonalRoom(f), "", "stream-started", payload)
	}
	return nil
}

func (r *Router) joinStream(s *core.Session, ev *core.JoinStream) error {
	r.rooms.Join(domain.StreamRoom(ev.StreamID), s.ID)
	r.emitRoom(domain.StreamRoom(ev.StreamID), s.ID, "viewer-joined", viewerPayload{
		StreamID: ev.StreamID,
		UserID:   s.User.ID,
		Username: s.User.Username,
	})
	return nil
}

func (r *Router) leaveStream(s *core.Session, ev *core.LeaveStream) error {
	r.rooms.Leave(domain.StreamRoom(ev.StreamID), s.ID)
	r.emitRoom(domain.StreamRoom(ev.StreamID), s.ID, "viewer-left", viewerPayload{
		StreamID: ev.StreamID,
		UserID:   s.User.ID,
		Username: s.User.Username,
	})
	return nil
}

func (r *Router) streamMessage(s *core.Session, ev *core.StreamMessage) error {
	room := domain.StreamRoom(ev.StreamID)
	if !r.rooms.Contains(room, s.ID) {
		return domain.ErrAuthorization
	}
	r.emitRoom(room, s.ID, "stream-message", struct {
		viewerPayload
		Content string `json:"content"`
	}{viewerPayload{StreamID: ev.StreamID, UserID: s.User.ID, Username: s.User.Username}, ev.Content})
	return nil
}

// endStream is host-only: the broadcast reaches the whole ephemeral
// room, the ending caller included, and the room is torn down after.
func (r *Router) endStream(s *core.Session, ev *core.EndStream) error {
	if s.ActiveStream() != ev.StreamID {
		return domain.ErrAuthorization
	}
	s.SetActiveStream("")
	r.endStreamFanout(ev.StreamID, "")
	return nil
}

// endStreamFanout broadcasts stream-ended and evicts every member so
// the ephemeral room is garbage-collected. except skips the host's own
// dead connection on the disconnect path.
func (r *Router) endStreamFanout(streamID string, except core.ConnID) {
	room := domain.StreamRoom(streamID)
	r.emitRoom(room, except, "stream-ended", struct {
		StreamID string `json:"streamId"`
	}{streamID})
	for _, id := range r.rooms.MembersOf(room) {
		r.rooms.Leave(room, id)
	}
}
