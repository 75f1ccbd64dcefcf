// Package route implements the event-routing engine: every inbound
// client event runs validate -> authorize -> persist -> fan-out, and
// the single disconnect transition lives here too.
package route

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ledyaev/amity/internal/app"
	"github.com/ledyaev/amity/internal/core"
	"github.com/ledyaev/amity/internal/domain"
)

type Router struct {
	presence *app.Presence
	rooms    *app.Rooms
	typing   *app.Typing
	store    core.Persistence
	graph    core.SocialGraph
}

func New(presence *app.Presence, rooms *app.Rooms, typing *app.Typing, store core.Persistence, graph core.SocialGraph) *Router {
	return &Router{
		presence: presence,
		rooms:    rooms,
		typing:   typing,
		store:    store,
		graph:    graph,
	}
}

// Connect admits an authenticated session: registers presence, joins
// the personal room and, on the user's first connection, records the
// online transition and tells their friends.
func (r *Router) Connect(ctx context.Context, s *core.Session) {
	first := r.presence.Register(s)
	r.rooms.Join(domain.PersonalRoom(s.User.ID), s.ID)
	log.Info().Str("module", "route").Str("conn", string(s.ID)).Str("user", string(s.User.ID)).Bool("first", first).Msg("connected")

	if !first {
		return
	}
	now := time.Now().UTC()
	if err := r.store.UpdateUserPresence(ctx, s.User.ID, true, now); err != nil {
		log.Warn().Err(err).Str("module", "route").Str("user", string(s.User.ID)).Msg("mark online failed")
	}
	r.notifyFriends(ctx, s.User.ID, "user-online", struct {
		UserID domain.UserID `json:"userId"`
	}{s.User.ID})
}

// Disconnect runs the cleanup transition exactly once per connection,
// whether the transport closed gracefully or dropped.
func (r *Router) Disconnect(ctx context.Context, s *core.Session) {
	s.CloseOnce(func() {
		user, last, ok := r.presence.Unregister(s.ID)
		if !ok {
			return
		}

		if callID := s.ActiveCall(); callID != "" {
			r.emitRoom(domain.CallRoom(callID), s.ID, "call-ended", struct {
				CallID string `json:"callId"`
			}{callID})
		}
		if streamID := s.ActiveStream(); streamID != "" {
			r.endStreamFanout(streamID, s.ID)
		}

		r.rooms.LeaveAll(s.ID)

		for _, convo := range r.typing.ClearUser(user) {
			r.emitRoom(domain.ConversationRoom(convo), s.ID, "typing-stop", typingPayload{
				ConversationID: convo,
				UserID:         user,
				Username:       s.User.Username,
			})
		}

		if last {
			now := time.Now().UTC()
			if err := r.store.UpdateUserPresence(ctx, user, false, now); err != nil {
				log.Warn().Err(err).Str("module", "route").Str("user", string(user)).Msg("mark offline failed")
			}
			r.notifyFriends(ctx, user, "user-offline", struct {
				UserID   domain.UserID `json:"userId"`
				LastSeen time.Time     `json:"lastSeen"`
			}{user, now})
		}

		s.Signal().Close()
		log.Info().Str("module", "route").Str("conn", string(s.ID)).Str("user", string(user)).Bool("last", last).Msg("disconnected")
	})
}

// HandleFrame decodes one inbound wire frame and dispatches it. Every
// failure is reported to the originating connection only; nothing a
// single event does can terminate the connection or leak into another
// connection's processing.
func (r *Router) HandleFrame(ctx context.Context, s *core.Session, data []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("module", "route").Str("conn", string(s.ID)).Interface("panic", rec).Msg("event handler panicked")
			r.sendError(s, "internal error")
		}
	}()

	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.sendError(s, "invalid payload")
		return
	}

	ev, err := core.DecodeEvent(env)
	if err != nil {
		if errors.Is(err, core.ErrUnknownEvent) {
			log.Warn().Str("module", "route").Str("event", env.Event).Msg("unknown event ignored")
			return
		}
		r.sendError(s, "invalid payload")
		return
	}

	if err := r.handle(ctx, s, ev); err != nil {
		log.Debug().Err(err).Str("module", "route").Str("event", env.Event).Str("conn", string(s.ID)).Msg("event rejected")
		r.sendError(s, errMessage(err))
	}
}

func (r *Router) handle(ctx context.Context, s *core.Session, ev core.Event) error {
	switch e := ev.(type) {
	case *core.JoinConversation:
		return r.joinConversation(ctx, s, e)
	case *core.LeaveConversation:
		return r.leaveConversation(s, e)
	case *core.SendMessage:
		return r.sendMessage(ctx, s, e)
	case *core.MarkRead:
		return r.markRead(ctx, s, e)
	case *core.TypingStart:
		return r.typingStart(s, e)
	case *core.TypingStop:
		return r.typingStop(s, e)
	case *core.NewPost:
		return r.newPost(ctx, s, e)
	case *core.JoinPost:
		return r.joinPost(s, e)
	case *core.LeavePost:
		return r.leavePost(s, e)
	case *core.LikePost:
		return r.likePost(s, e)
	case *core.CommentPost:
		return r.commentPost(ctx, s, e)
	case *core.SendNotification:
		return r.sendNotification(ctx, s, e)
	case *core.MarkNotificationRead:
		return r.markNotificationRead(ctx, s, e)
	case *core.StartStream:
		return r.startStream(ctx, s, e)
	case *core.JoinStream:
		return r.joinStream(s, e)
	case *core.LeaveStream:
		return r.leaveStream(s, e)
	case *core.StreamMessage:
		return r.streamMessage(s, e)
	case *core.EndStream:
		return r.endStream(s, e)
	case *core.StartCall:
		return r.startCall(s, e)
	case *core.AcceptCall:
		return r.acceptCall(s, e)
	case *core.RejectCall:
		return r.rejectCall(s, e)
	case *core.EndCall:
		return r.endCall(s, e)
	case *core.WebRTCSignal:
		return r.relaySignal(s, e)
	}
	return nil
}

// alive reports whether the connection is still registered. Handlers
// that awaited the store re-check it and treat a vanished session as a
// no-op instead of mutating state for a dead connection.
func (r *Router) alive(s *core.Session) bool {
	_, ok := r.presence.Session(s.ID)
	return ok
}

func (r *Router) notifyFriends(ctx context.Context, user domain.UserID, event string, payload any) {
	friends, err := r.graph.FriendsOf(ctx, user)
	if err != nil {
		log.Debug().Err(err).Str("module", "route").Str("user", string(user)).Msg("friend lookup failed, skipping fan-out")
		return
	}
	for _, f := range friends {
		r.emitRoom(domain.PersonalRoom(f), "", event, payload)
	}
}

// --- emission ---

func (r *Router) encode(event string, payload any) (core.Frame, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("module", "route").Str("event", event).Msg("marshal payload")
		return nil, false
	}
	frame, err := json.Marshal(core.Envelope{Event: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("module", "route").Str("event", event).Msg("marshal envelope")
		return nil, false
	}
	return frame, true
}

// emitRoom fans one event out to every member of a room, resolving
// connection IDs to live sessions; except (when non-empty) is skipped.
func (r *Router) emitRoom(room domain.Room, except core.ConnID, event string, payload any) {
	frame, ok := r.encode(event, payload)
	if !ok {
		return
	}
	sent, dropped := 0, 0
	for _, id := range r.rooms.MembersOf(room) {
		if id == except {
			continue
		}
		s, ok := r.presence.Session(id)
		if !ok {
			continue
		}
		if err := s.Signal().TrySend(frame); err != nil {
			dropped++
			continue
		}
		sent++
	}
	log.Debug().Str("module", "route").Str("room", room.String()).Str("event", event).Int("sent", sent).Int("dropped", dropped).Msg("fan-out")
}

func (r *Router) emitConn(s *core.Session, event string, payload any) {
	frame, ok := r.encode(event, payload)
	if !ok {
		return
	}
	if err := s.Signal().TrySend(frame); err != nil {
		log.Debug().Err(err).Str("module", "route").Str("conn", string(s.ID)).Str("event", event).Msg("send failed")
	}
}

func (r *Router) sendError(s *core.Session, msg string) {
	r.emitConn(s, "error", struct {
		Message string `json:"message"`
	}{msg})
}

func errMessage(err error) string {
	var perr *domain.PersistenceError
	switch {
	case errors.Is(err, domain.ErrAuthorization):
		return "not authorized"
	case errors.Is(err, domain.ErrValidation):
		return "invalid payload"
	case errors.As(err, &perr):
		return "operation failed"
	}
	return "operation failed"
}
