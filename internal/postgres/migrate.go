package postgres

import (
	"context"
	"fmt"
)

// Migrate bootstraps the schema. Idempotent; safe to run on every
// start.
func (d *DB) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			username   TEXT UNIQUE NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			online     BOOLEAN NOT NULL DEFAULT FALSE,
			last_seen  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS conversations (
			id         TEXT PRIMARY KEY,
			kind       TEXT NOT NULL DEFAULT 'private' CHECK (kind IN ('private', 'group')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS participants (
			conversation_id TEXT REFERENCES conversations(id) ON DELETE CASCADE,
			user_id         TEXT REFERENCES users(id) ON DELETE CASCADE,
			joined_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (conversation_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id              TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			sender_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content         TEXT NOT NULL,
			kind            TEXT NOT NULL DEFAULT 'text',
			attachments     TEXT[] NOT NULL DEFAULT '{}',
			read            BOOLEAN NOT NULL DEFAULT FALSE,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id           TEXT PRIMARY KEY,
			recipient_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			actor_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			kind         TEXT NOT NULL,
			reference    TEXT NOT NULL DEFAULT '',
			read         BOOLEAN NOT NULL DEFAULT FALSE,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS follows (
			follower_id TEXT REFERENCES users(id) ON DELETE CASCADE,
			followee_id TEXT REFERENCES users(id) ON DELETE CASCADE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (follower_id, followee_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages (conversation_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications (recipient_id, created_at)`,
	}

	for _, query := range queries {
		if _, err := d.Pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
