package core

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ledyaev/amity/internal/domain"
)

// ErrUnknownEvent marks an event name the server does not recognize.
// The router drops such frames without reporting an error.
var ErrUnknownEvent = errors.New("unknown event")

// Envelope is the wire frame for both directions: a named event with a
// structured payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is the closed set of inbound client events. Adding a variant
// means extending DecodeEvent and the router's type switch.
type Event interface{ isEvent() }

type JoinConversation struct {
	ConversationID string `json:"conversationId" validate:"required"`
}

type LeaveConversation struct {
	ConversationID string `json:"conversationId" validate:"required"`
}

type SendMessage struct {
	ConversationID string   `json:"conversationId" validate:"required"`
	Content        string   `json:"content" validate:"required"`
	Kind           string   `json:"type"`
	Attachments    []string `json:"attachments"`
}

type MarkRead struct {
	ConversationID string `json:"conversationId" validate:"required"`
}

type TypingStart struct {
	ConversationID string `json:"conversationId" validate:"required"`
}

type TypingStop struct {
	ConversationID string `json:"conversationId" validate:"required"`
}

type NewPost struct {
	PostID string `json:"postId" validate:"required"`
}

type JoinPost struct {
	PostID string `json:"postId" validate:"required"`
}

type LeavePost struct {
	PostID string `json:"postId" validate:"required"`
}

type LikePost struct {
	PostID   string        `json:"postId" validate:"required"`
	AuthorID domain.UserID `json:"authorId" validate:"required"`
}

type CommentPost struct {
	PostID   string        `json:"postId" validate:"required"`
	AuthorID domain.UserID `json:"authorId" validate:"required"`
	Content  string        `json:"content" validate:"required"`
}

type SendNotification struct {
	RecipientID domain.UserID `json:"recipientId" validate:"required"`
	Kind        string        `json:"type" validate:"required"`
	Reference   string        `json:"reference"`
}

type MarkNotificationRead struct {
	NotificationID string `json:"notificationId" validate:"required"`
}

type StartStream struct {
	StreamID string `json:"streamId" validate:"required"`
	Title    string `json:"title"`
	Private  bool   `json:"private"`
}

type JoinStream struct {
	StreamID string `json:"streamId" validate:"required"`
}

type LeaveStream struct {
	StreamID string `json:"streamId" validate:"required"`
}

type StreamMessage struct {
	StreamID string `json:"streamId" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

type EndStream struct {
	StreamID string `json:"streamId" validate:"required"`
}

type StartCall struct {
	CallID      string        `json:"callId" validate:"required"`
	RecipientID domain.UserID `json:"recipientId" validate:"required"`
	CallType    string        `json:"callType"`
}

type AcceptCall struct {
	CallID   string        `json:"callId" validate:"required"`
	CallerID domain.UserID `json:"callerId" validate:"required"`
}

type RejectCall struct {
	CallID   string        `json:"callId" validate:"required"`
	CallerID domain.UserID `json:"callerId" validate:"required"`
}

type EndCall struct {
	CallID string `json:"callId" validate:"required"`
}

// WebRTCSignal relays an offer, answer or ICE candidate to one peer.
// The payload is passed through opaquely.
type WebRTCSignal struct {
	Kind    string          `json:"-" validate:"required"`
	To      domain.UserID   `json:"to" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

func (JoinConversation) isEvent()     {}
func (LeaveConversation) isEvent()    {}
func (SendMessage) isEvent()          {}
func (MarkRead) isEvent()             {}
func (TypingStart) isEvent()          {}
func (TypingStop) isEvent()           {}
func (NewPost) isEvent()              {}
func (JoinPost) isEvent()             {}
func (LeavePost) isEvent()            {}
func (LikePost) isEvent()             {}
func (CommentPost) isEvent()          {}
func (SendNotification) isEvent()     {}
func (MarkNotificationRead) isEvent() {}
func (StartStream) isEvent()          {}
func (JoinStream) isEvent()           {}
func (LeaveStream) isEvent()          {}
func (StreamMessage) isEvent()        {}
func (EndStream) isEvent()            {}
func (StartCall) isEvent()            {}
func (AcceptCall) isEvent()           {}
func (RejectCall) isEvent()           {}
func (EndCall) isEvent()              {}
func (WebRTCSignal) isEvent()         {}

var validate = validator.New()

// DecodeEvent maps a wire envelope to its typed variant and checks the
// payload shape. Unknown names return ErrUnknownEvent; malformed or
// incomplete payloads wrap domain.ErrValidation.
func DecodeEvent(env Envelope) (Event, error) {
	var ev Event
	switch env.Event {
	case "join-conversation":
		ev = &JoinConversation{}
	case "leave-conversation":
		ev = &LeaveConversation{}
	case "send-message":
		ev = &SendMessage{}
	case "mark-read":
		ev = &MarkRead{}
	case "typing-start":
		ev = &TypingStart{}
	case "typing-stop":
		ev = &TypingStop{}
	case "new-post":
		ev = &NewPost{}
	case "join-post":
		ev = &JoinPost{}
	case "leave-post":
		ev = &LeavePost{}
	case "like-post":
		ev = &LikePost{}
	case "comment-post":
		ev = &CommentPost{}
	case "send-notification":
		ev = &SendNotification{}
	case "mark-notification-read":
		ev = &MarkNotificationRead{}
	case "start-stream":
		ev = &StartStream{}
	case "join-stream":
		ev = &JoinStream{}
	case "leave-stream":
		ev = &LeaveStream{}
	case "stream-message":
		ev = &StreamMessage{}
	case "end-stream":
		ev = &EndStream{}
	case "start-call":
		ev = &StartCall{}
	case "accept-call":
		ev = &AcceptCall{}
	case "reject-call":
		ev = &RejectCall{}
	case "end-call":
		ev = &EndCall{}
	case "webrtc-offer", "webrtc-answer", "webrtc-ice":
		ev = &WebRTCSignal{Kind: env.Event}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}

	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, ev); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}
	if err := validate.Struct(ev); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return ev, nil
}
