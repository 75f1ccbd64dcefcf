package app

import (
	"sync"

	"github.com/ledyaev/amity/internal/domain"
)

// Typing tracks, per conversation, which users are currently typing.
// It holds state only; the router decides what to emit.
type Typing struct {
	mu      sync.Mutex
	byConvo map[string]map[domain.UserID]struct{}
}

func NewTyping() *Typing {
	return &Typing{byConvo: make(map[string]map[domain.UserID]struct{})}
}

// Start records the user as typing and reports whether that changed
// anything (false means they were already typing there).
func (t *Typing) Start(conversationID string, user domain.UserID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	us, ok := t.byConvo[conversationID]
	if !ok {
		us = make(map[domain.UserID]struct{})
		t.byConvo[conversationID] = us
	}
	if _, ok := us[user]; ok {
		return false
	}
	us[user] = struct{}{}
	return true
}

// Stop removes the user from the conversation's typing set and reports
// whether they were in it.
func (t *Typing) Stop(conversationID string, user domain.UserID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	us, ok := t.byConvo[conversationID]
	if !ok {
		return false
	}
	if _, ok := us[user]; !ok {
		return false
	}
	delete(us, user)
	if len(us) == 0 {
		delete(t.byConvo, conversationID)
	}
	return true
}

// ClearUser removes the user from every conversation's typing set and
// returns the affected conversation IDs, each exactly once.
func (t *Typing) ClearUser(user domain.UserID) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var affected []string
	for convo, us := range t.byConvo {
		if _, ok := us[user]; !ok {
			continue
		}
		delete(us, user)
		if len(us) == 0 {
			delete(t.byConvo, convo)
		}
		affected = append(affected, convo)
	}
	return affected
}

// UsersIn returns a snapshot of the conversation's typing set.
func (t *Typing) UsersIn(conversationID string) []domain.UserID {
	t.mu.Lock()
	defer t.mu.Unlock()
	us := t.byConvo[conversationID]
	out := make([]domain.UserID, 0, len(us))
	for u := range us {
		out = append(out, u)
	}
	return out
}
