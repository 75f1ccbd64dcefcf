package app

import (
	"testing"

	"github.com/ledyaev/amity/internal/core"
	"github.com/ledyaev/amity/internal/domain"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func session(conn core.ConnID, user domain.UserID) *core.Session {
	return core.NewSession(conn, domain.Profile{ID: user, Username: string(user)}, nopConn{})
}

func TestPresenceRegisterFirst(t *testing.T) {
	p := NewPresence()

	if !p.Register(session("c1", "alice")) {
		t.Error("first connection must report first=true")
	}
	if p.Register(session("c2", "alice")) {
		t.Error("second connection must report first=false")
	}
	if !p.IsOnline("alice") {
		t.Error("alice should be online")
	}
	if p.IsOnline("bob") {
		t.Error("bob should not be online")
	}
}

func TestPresenceUnregisterLast(t *testing.T) {
	p := NewPresence()
	p.Register(session("c1", "alice"))
	p.Register(session("c2", "alice"))

	user, last, ok := p.Unregister("c1")
	if !ok || user != "alice" || last {
		t.Fatalf("Unregister(c1) = (%q, %v, %v), want (alice, false, true)", user, last, ok)
	}
	if !p.IsOnline("alice") {
		t.Error("alice still has one connection")
	}

	user, last, ok = p.Unregister("c2")
	if !ok || user != "alice" || !last {
		t.Fatalf("Unregister(c2) = (%q, %v, %v), want (alice, true, true)", user, last, ok)
	}
	if p.IsOnline("alice") {
		t.Error("alice should be offline after last connection closes")
	}
}

func TestPresenceUnregisterTwice(t *testing.T) {
	p := NewPresence()
	p.Register(session("c1", "alice"))
	p.Unregister("c1")

	if _, _, ok := p.Unregister("c1"); ok {
		t.Error("second Unregister for the same connection must report ok=false")
	}
}

func TestPresenceSessionLookup(t *testing.T) {
	p := NewPresence()
	s := session("c1", "alice")
	p.Register(s)

	got, ok := p.Session("c1")
	if !ok || got != s {
		t.Fatal("Session(c1) should return the registered session")
	}
	if _, ok := p.Session("missing"); ok {
		t.Error("unknown connection must not resolve")
	}

	sessions := p.SessionsOf("alice")
	if len(sessions) != 1 || sessions[0] != s {
		t.Errorf("SessionsOf(alice) = %v", sessions)
	}
}

func TestPresenceListOnline(t *testing.T) {
	p := NewPresence()
	p.Register(session("c1", "alice"))
	p.Register(session("c2", "bob"))
	p.Register(session("c3", "bob"))

	online := p.ListOnline()
	if len(online) != 2 {
		t.Fatalf("ListOnline() = %v, want two users", online)
	}
	seen := map[domain.UserID]bool{}
	for _, u := range online {
		seen[u] = true
	}
	if !seen["alice"] || !seen["bob"] {
		t.Errorf("ListOnline() = %v", online)
	}
}
