package route

import (
	"context"
	"testing"

	"github.com/ledyaev/amity/internal/domain"
)

func TestStartStreamAnnouncesToFollowers(t *testing.T) {
	f := newFixture()
	f.graph.followers["host"] = []domain.UserID{"bob"}

	sh, _ := f.connect("ch", "host")
	_, bobConn := f.connect("cb", "bob")

	f.send(sh, "start-stream", `{"streamId":"s1","title":"live"}`)

	if got := bobConn.count(t, "stream-started"); got != 1 {
		t.Errorf("follower saw %d stream-started frames, want 1", got)
	}
	if sh.ActiveStream() != "s1" {
		t.Errorf("host session ActiveStream = %q", sh.ActiveStream())
	}
}

func TestPrivateStreamStaysQuiet(t *testing.T) {
	f := newFixture()
	f.graph.followers["host"] = []domain.UserID{"bob"}

	sh, _ := f.connect("ch", "host")
	_, bobConn := f.connect("cb", "bob")

	f.send(sh, "start-stream", `{"streamId":"s1","private":true}`)

	if got := bobConn.count(t, "stream-started"); got != 0 {
		t.Errorf("private stream announced to %d followers, want 0", got)
	}
}

func TestStreamViewerFlow(t *testing.T) {
	f := newFixture()
	sh, hostConn := f.connect("ch", "host")
	sv, viewerConn := f.connect("cv", "viewer")

	f.send(sh, "start-stream", `{"streamId":"s1","private":true}`)
	f.send(sv, "join-stream", `{"streamId":"s1"}`)

	if got := hostConn.count(t, "viewer-joined"); got != 1 {
		t.Errorf("host saw %d viewer-joined frames, want 1", got)
	}
	if got := viewerConn.count(t, "viewer-joined"); got != 0 {
		t.Errorf("joining viewer echoed %d frames, want 0", got)
	}

	f.send(sv, "stream-message", `{"streamId":"s1","content":"hi"}`)
	if got := hostConn.count(t, "stream-message"); got != 1 {
		t.Errorf("host saw %d stream-message frames, want 1", got)
	}

	f.send(sv, "leave-stream", `{"streamId":"s1"}`)
	if got := hostConn.count(t, "viewer-left"); got != 1 {
		t.Errorf("host saw %d viewer-left frames, want 1", got)
	}
}

func TestStreamMessageRequiresMembership(t *testing.T) {
	f := newFixture()
	s, conn := f.connect("ca", "alice")

	f.send(s, "stream-message", `{"streamId":"s1","content":"hi"}`)

	if got := conn.count(t, "error"); got != 1 {
		t.Errorf("saw %d error frames, want 1", got)
	}
}

func TestEndStreamHostOnly(t *testing.T) {
	f := newFixture()
	sh, _ := f.connect("ch", "host")
	sv, viewerConn := f.connect("cv", "viewer")

	f.send(sh, "start-stream", `{"streamId":"s1","private":true}`)
	f.send(sv, "join-stream", `{"streamId":"s1"}`)

	f.send(sv, "end-stream", `{"streamId":"s1"}`)
	if got := viewerConn.count(t, "error"); got != 1 {
		t.Fatalf("non-host end-stream produced %d error frames, want 1", got)
	}

	f.send(sh, "end-stream", `{"streamId":"s1"}`)
	if got := viewerConn.count(t, "stream-ended"); got != 1 {
		t.Errorf("viewer saw %d stream-ended frames, want 1", got)
	}
	if sh.ActiveStream() != "" {
		t.Errorf("host ActiveStream after end = %q", sh.ActiveStream())
	}
}

func TestHostDisconnectEndsStream(t *testing.T) {
	f := newFixture()
	sh, _ := f.connect("ch", "host")
	sv, viewerConn := f.connect("cv", "viewer")

	f.send(sh, "start-stream", `{"streamId":"s1","private":true}`)
	f.send(sv, "join-stream", `{"streamId":"s1"}`)

	f.router.Disconnect(context.Background(), sh)

	if got := viewerConn.count(t, "stream-ended"); got != 1 {
		t.Errorf("viewer saw %d stream-ended frames after host drop, want 1", got)
	}
}
