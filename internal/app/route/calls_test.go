package route

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ledyaev/amity/internal/domain"
)

func TestCallLifecycle(t *testing.T) {
	f := newFixture()
	sa, aliceConn := f.connect("ca", "alice")
	sb, bobConn := f.connect("cb", "bob")

	f.send(sa, "start-call", `{"callId":"x1","recipientId":"bob","callType":"video"}`)

	env := bobConn.last(t, "incoming-call")
	var incoming struct {
		CallID     string        `json:"callId"`
		CallerID   domain.UserID `json:"callerId"`
		CallerName string        `json:"callerName"`
		CallType   string        `json:"callType"`
	}
	if err := json.Unmarshal(env.Data, &incoming); err != nil {
		t.Fatal(err)
	}
	if incoming.CallID != "x1" || incoming.CallerID != "alice" || incoming.CallType != "video" {
		t.Errorf("incoming-call payload = %+v", incoming)
	}

	f.send(sb, "accept-call", `{"callId":"x1","callerId":"alice"}`)
	if got := aliceConn.count(t, "call-accepted"); got != 1 {
		t.Errorf("caller saw %d call-accepted frames, want 1", got)
	}
	if sa.ActiveCall() != "x1" || sb.ActiveCall() != "x1" {
		t.Errorf("active call markers = %q / %q", sa.ActiveCall(), sb.ActiveCall())
	}

	f.send(sb, "end-call", `{"callId":"x1"}`)
	if got := aliceConn.count(t, "call-ended"); got != 1 {
		t.Errorf("caller saw %d call-ended frames, want 1", got)
	}
	if sa.ActiveCall() != "" {
		t.Errorf("caller ActiveCall after end = %q", sa.ActiveCall())
	}
}

func TestRejectCallReachesCaller(t *testing.T) {
	f := newFixture()
	sa, aliceConn := f.connect("ca", "alice")
	sb, _ := f.connect("cb", "bob")

	f.send(sa, "start-call", `{"callId":"x1","recipientId":"bob"}`)
	f.send(sb, "reject-call", `{"callId":"x1","callerId":"alice"}`)

	if got := aliceConn.count(t, "call-rejected"); got != 1 {
		t.Errorf("caller saw %d call-rejected frames, want 1", got)
	}
}

func TestEndCallRequiresMembership(t *testing.T) {
	f := newFixture()
	s, conn := f.connect("ca", "alice")

	f.send(s, "end-call", `{"callId":"x1"}`)

	if got := conn.count(t, "error"); got != 1 {
		t.Errorf("saw %d error frames, want 1", got)
	}
}

func TestDisconnectDuringCall(t *testing.T) {
	f := newFixture()
	sa, _ := f.connect("ca", "alice")
	sb, bobConn := f.connect("cb", "bob")

	f.send(sa, "start-call", `{"callId":"x1","recipientId":"bob"}`)
	f.send(sb, "accept-call", `{"callId":"x1","callerId":"alice"}`)

	f.router.Disconnect(context.Background(), sa)

	if got := bobConn.count(t, "call-ended"); got != 1 {
		t.Errorf("peer saw %d call-ended frames after drop, want 1", got)
	}
}

func TestWebRTCSignalRelay(t *testing.T) {
	f := newFixture()
	sa, _ := f.connect("ca", "alice")
	_, bobConn := f.connect("cb", "bob")

	f.send(sa, "webrtc-offer", `{"to":"bob","payload":{"sdp":"v=0"}}`)

	env := bobConn.last(t, "webrtc-offer")
	var relayed struct {
		From     domain.UserID   `json:"from"`
		FromName string          `json:"fromName"`
		Payload  json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(env.Data, &relayed); err != nil {
		t.Fatal(err)
	}
	if relayed.From != "alice" {
		t.Errorf("From = %q", relayed.From)
	}
	var sdp struct {
		SDP string `json:"sdp"`
	}
	if err := json.Unmarshal(relayed.Payload, &sdp); err != nil || sdp.SDP != "v=0" {
		t.Errorf("payload not passed through opaquely: %s", relayed.Payload)
	}
}
