package route

import (
	"encoding/json"

	"github.com/ledyaev/amity/internal/core"
	"github.com/ledyaev/amity/internal/domain"
)

func (r *Router) startCall(s *core.Session, ev *core.StartCall) error {
	s.SetActiveCall(ev.CallID)
	r.rooms.Join(domain.CallRoom(ev.CallID), s.ID)
	r.emitRoom(domain.PersonalRoom(ev.RecipientID), "", "incoming-call", struct {
		CallID     string        `json:"callId"`
		CallerID   domain.UserID `json:"callerId"`
		CallerName string        `json:"callerName"`
		CallType   string        `json:"callType,omitempty"`
	}{ev.CallID, s.User.ID, s.User.Username, ev.CallType})
	return nil
}

func (r *Router) acceptCall(s *core.Session, ev *core.AcceptCall) error {
	s.SetActiveCall(ev.CallID)
	r.rooms.Join(domain.CallRoom(ev.CallID), s.ID)
	r.emitRoom(domain.CallRoom(ev.CallID), s.ID, "call-accepted", struct {
		CallID   string        `json:"callId"`
		UserID   domain.UserID `json:"userId"`
		Username string        `json:"username"`
	}{ev.CallID, s.User.ID, s.User.Username})
	return nil
}

func (r *Router) rejectCall(s *core.Session, ev *core.RejectCall) error {
	r.emitRoom(domain.PersonalRoom(ev.CallerID), "", "call-rejected", struct {
		CallID   string        `json:"callId"`
		UserID   domain.UserID `json:"userId"`
		Username string        `json:"username"`
	}{ev.CallID, s.User.ID, s.User.Username})
	return nil
}

// endCall notifies the remaining parties, clears every participant's
// active-call marker and tears the ephemeral room down.
func (r *Router) endCall(s *core.Session, ev *core.EndCall) error {
	room := domain.CallRoom(ev.CallID)
	if !r.rooms.Contains(room, s.ID) {
		return domain.ErrAuthorization
	}
	r.emitRoom(room, s.ID, "call-ended", struct {
		CallID string `json:"callId"`
	}{ev.CallID})
	for _, id := range r.rooms.MembersOf(room) {
		if member, ok := r.presence.Session(id); ok && member.ActiveCall() == ev.CallID {
			member.SetActiveCall("")
		}
		r.rooms.Leave(room, id)
	}
	return nil
}

// relaySignal passes WebRTC offers, answers and ICE candidates through
// opaquely to the recipient's personal room.
func (r *Router) relaySignal(s *core.Session, ev *core.WebRTCSignal) error {
	r.emitRoom(domain.PersonalRoom(ev.To), "", ev.Kind, struct {
		From     domain.UserID   `json:"from"`
		FromName string          `json:"fromName"`
		Payload  json.RawMessage `json:"payload"`
	}{s.User.ID, s.User.Username, ev.Payload})
	return nil
}
