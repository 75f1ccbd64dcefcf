// Package app holds the process-wide stateful services: the presence
// registry, the room membership tracker and the typing tracker. Each
// owns its maps outright; nothing outside its methods touches them.
// All state is in-memory only and rebuilt from empty on restart.
package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ledyaev/amity/internal/core"
	"github.com/ledyaev/amity/internal/domain"
)

// Presence is the bidirectional user<->connection mapping and the
// source of truth for who is online. A user may hold any number of
// simultaneous connections.
type Presence struct {
	mu     sync.RWMutex
	byUser map[domain.UserID]map[core.ConnID]struct{}
	byConn map[core.ConnID]*core.Session
}

func NewPresence() *Presence {
	return &Presence{
		byUser: make(map[domain.UserID]map[core.ConnID]struct{}),
		byConn: make(map[core.ConnID]*core.Session),
	}
}

// Register inserts both mapping directions atomically and reports
// whether this is the user's first live connection.
func (p *Presence) Register(s *core.Session) (first bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns, ok := p.byUser[s.User.ID]
	if !ok {
		conns = make(map[core.ConnID]struct{})
		p.byUser[s.User.ID] = conns
	}
	conns[s.ID] = struct{}{}
	p.byConn[s.ID] = s
	log.Debug().Str("module", "app.presence").Str("conn", string(s.ID)).Str("user", string(s.User.ID)).Msg("registered")
	return len(conns) == 1
}

// Unregister removes both mapping directions atomically. It reports
// the owning user and whether that user has no connections left.
// Calling it twice for the same connection is a harmless no-op.
func (p *Presence) Unregister(id core.ConnID) (user domain.UserID, last, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.byConn[id]
	if !ok {
		return "", false, false
	}
	delete(p.byConn, id)
	user = s.User.ID
	if conns, ok := p.byUser[user]; ok {
		delete(conns, id)
		if len(conns) == 0 {
			delete(p.byUser, user)
			last = true
		}
	}
	log.Debug().Str("module", "app.presence").Str("conn", string(id)).Str("user", string(user)).Bool("last", last).Msg("unregistered")
	return user, last, true
}

func (p *Presence) Session(id core.ConnID) (*core.Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.byConn[id]
	return s, ok
}

func (p *Presence) SessionsOf(user domain.UserID) []*core.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	conns := p.byUser[user]
	out := make([]*core.Session, 0, len(conns))
	for id := range conns {
		if s, ok := p.byConn[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (p *Presence) IsOnline(user domain.UserID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byUser[user]) > 0
}

// ListOnline returns a point-in-time copy of the online user set.
func (p *Presence) ListOnline() []domain.UserID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.UserID, 0, len(p.byUser))
	for id := range p.byUser {
		out = append(out, id)
	}
	return out
}
