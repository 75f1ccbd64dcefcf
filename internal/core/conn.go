// Package core holds the narrow interfaces the routing engine is built
// against: transport endpoints, sessions, the durable store and the
// social graph. Implementations live in internal/app, internal/postgres
// and internal/adapters.
package core

import (
	"sync"

	"github.com/ledyaev/amity/internal/domain"
)

// Frame is a raw serialized payload sent to a client.
type Frame []byte

// ConnID identifies one live transport session.
type ConnID string

// SignalConnection abstracts a client messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Session binds a resolved user profile to its transport endpoint.
// It is created only after authentication succeeds and is what the
// presence registry owns for the duration of the connection.
type Session struct {
	ID   ConnID
	User domain.Profile

	conn SignalConnection

	mu           sync.Mutex
	activeCall   string
	activeStream string
	cleanup      sync.Once
}

func NewSession(id ConnID, user domain.Profile, conn SignalConnection) *Session {
	return &Session{ID: id, User: user, conn: conn}
}

func (s *Session) Signal() SignalConnection { return s.conn }

// CloseOnce runs fn at most once per session lifetime. Disconnect
// handlers go through it so abrupt transport failures and graceful
// closes cannot run the cleanup transition twice.
func (s *Session) CloseOnce(fn func()) { s.cleanup.Do(fn) }

func (s *Session) SetActiveCall(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeCall = id
}

func (s *Session) ActiveCall() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeCall
}

func (s *Session) SetActiveStream(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeStream = id
}

func (s *Session) ActiveStream() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeStream
}
