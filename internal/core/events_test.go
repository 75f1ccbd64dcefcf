package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ledyaev/amity/internal/domain"
)

func env(event, data string) Envelope {
	return Envelope{Event: event, Data: json.RawMessage(data)}
}

func TestDecodeEventKnown(t *testing.T) {
	ev, err := DecodeEvent(env("send-message", `{"conversationId":"7","content":"hi"}`))
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	msg, ok := ev.(*SendMessage)
	if !ok {
		t.Fatalf("got %T, want *SendMessage", ev)
	}
	if msg.ConversationID != "7" || msg.Content != "hi" {
		t.Errorf("decoded payload = %+v", msg)
	}
}

func TestDecodeEventUnknown(t *testing.T) {
	_, err := DecodeEvent(env("bogus-event", `{}`))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("err = %v, want ErrUnknownEvent", err)
	}
}

func TestDecodeEventMissingRequired(t *testing.T) {
	_, err := DecodeEvent(env("send-message", `{"conversationId":"7"}`))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestDecodeEventMalformedJSON(t *testing.T) {
	_, err := DecodeEvent(env("join-conversation", `{"conversationId":`))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestDecodeEventEmptyData(t *testing.T) {
	_, err := DecodeEvent(Envelope{Event: "typing-start"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for empty payload", err)
	}
}

func TestDecodeWebRTCSignalKinds(t *testing.T) {
	for _, name := range []string{"webrtc-offer", "webrtc-answer", "webrtc-ice"} {
		ev, err := DecodeEvent(env(name, `{"to":"u2","payload":{"sdp":"x"}}`))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		sig, ok := ev.(*WebRTCSignal)
		if !ok {
			t.Fatalf("%s: got %T", name, ev)
		}
		if sig.Kind != name {
			t.Errorf("Kind = %q, want %q", sig.Kind, name)
		}
		if sig.To != "u2" {
			t.Errorf("To = %q", sig.To)
		}
	}
}
