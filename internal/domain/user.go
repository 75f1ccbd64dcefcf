// Package domain contains entities without logic, just meta-data.
package domain

import "time"

type UserID string

// Profile is the minimal snapshot of a user resolved at connection time.
// It is immutable for the lifetime of the connection that carries it.
type Profile struct {
	ID        UserID `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Online    bool   `json:"online"`
}

// User is the persisted account row behind a Profile.
type User struct {
	Profile
	LastSeen time.Time `json:"lastSeen"`
}
