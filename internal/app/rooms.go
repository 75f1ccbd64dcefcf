package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ledyaev/amity/internal/core"
	"github.com/ledyaev/amity/internal/domain"
)

// Rooms tracks which connections are joined to which broadcast groups.
// Rooms come into existence on first join and vanish when their last
// member leaves; absence from the map means empty.
type Rooms struct {
	mu      sync.RWMutex
	members map[domain.Room]map[core.ConnID]struct{}
	byConn  map[core.ConnID]map[domain.Room]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[domain.Room]map[core.ConnID]struct{}),
		byConn:  make(map[core.ConnID]map[domain.Room]struct{}),
	}
}

func (r *Rooms) Join(room domain.Room, id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ms, ok := r.members[room]
	if !ok {
		ms = make(map[core.ConnID]struct{})
		r.members[room] = ms
	}
	ms[id] = struct{}{}

	rs, ok := r.byConn[id]
	if !ok {
		rs = make(map[domain.Room]struct{})
		r.byConn[id] = rs
	}
	rs[room] = struct{}{}
	log.Debug().Str("module", "app.rooms").Str("room", room.String()).Str("conn", string(id)).Msg("joined")
}

func (r *Rooms) Leave(room domain.Room, id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leave(room, id)
}

func (r *Rooms) leave(room domain.Room, id core.ConnID) {
	if ms, ok := r.members[room]; ok {
		delete(ms, id)
		if len(ms) == 0 {
			delete(r.members, room)
		}
	}
	if rs, ok := r.byConn[id]; ok {
		delete(rs, room)
		if len(rs) == 0 {
			delete(r.byConn, id)
		}
	}
}

// LeaveAll removes the connection from every room it joined and
// returns those rooms, for the disconnect transition.
func (r *Rooms) LeaveAll(id core.ConnID) []domain.Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs := r.byConn[id]
	out := make([]domain.Room, 0, len(rs))
	for room := range rs {
		out = append(out, room)
	}
	for _, room := range out {
		r.leave(room, id)
	}
	return out
}

func (r *Rooms) Contains(room domain.Room, id core.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[room][id]
	return ok
}

// MembersOf returns a snapshot of the room's member connections.
func (r *Rooms) MembersOf(room domain.Room) []core.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ms := r.members[room]
	out := make([]core.ConnID, 0, len(ms))
	for id := range ms {
		out = append(out, id)
	}
	return out
}

// RoomsOf returns a snapshot of the rooms a connection has joined.
func (r *Rooms) RoomsOf(id core.ConnID) []domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs := r.byConn[id]
	out := make([]domain.Room, 0, len(rs))
	for room := range rs {
		out = append(out, room)
	}
	return out
}
