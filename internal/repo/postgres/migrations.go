package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	tg_id TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	display_name TEXT NOT NULL,
	birth_date DATE NOT NULL,
	city TEXT NOT NULL DEFAULT '',
	about TEXT NOT NULL DEFAULT '',
	profession TEXT NOT NULL DEFAULT '',
	avatar_key TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS swipes (
	actor_user_id BIGINT NOT NULL REFERENCES users(id),
	target_user_id BIGINT NOT NULL REFERENCES users(id),
	action TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (actor_user_id, target_user_id),
	CONSTRAINT valid_action CHECK (action IN ('LIKE', 'DISLIKE')),
	CONSTRAINT no_self_swipe CHECK (actor_user_id <> target_user_id)
);

CREATE INDEX IF NOT EXISTS idx_swipes_target ON swipes(target_user_id) WHERE action = 'LIKE';

CREATE TABLE IF NOT EXISTS posts (
	id BIGSERIAL PRIMARY KEY,
	author_user_id BIGINT NOT NULL REFERENCES users(id),
	kind TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT valid_kind CHECK (kind IN ('UPDATE', 'JOB_OFFER'))
);

CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_user_id);
CREATE INDEX IF NOT EXISTS idx_posts_feed ON posts(created_at, id);
`

// Migrate applies the schema idempotently at startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
