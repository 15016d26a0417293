package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE game_status AS ENUM ('running', 'completed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS players (
		id BIGSERIAL PRIMARY KEY,
		actor_id TEXT NOT NULL,
		chat_id TEXT NOT NULL,
		username TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'citizen',
		dead BOOLEAN NOT NULL DEFAULT FALSE,
		voted BOOLEAN NOT NULL DEFAULT FALSE,
		afk_count INTEGER NOT NULL DEFAULT 0,
		UNIQUE(actor_id, chat_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_players_chat ON players (chat_id, id)`,
	`CREATE TABLE IF NOT EXISTS votes (
		id BIGSERIAL PRIMARY KEY,
		category TEXT NOT NULL,
		target_name TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		chat_id TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_votes_chat_category ON votes (chat_id, category, id)`,
	`CREATE TABLE IF NOT EXISTS settings (
		chat_id TEXT PRIMARY KEY,
		timer_seconds INTEGER NOT NULL DEFAULT 30,
		mafia_count INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS stats (
		actor_id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		games INTEGER NOT NULL DEFAULT 0,
		wins INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id UUID PRIMARY KEY,
		chat_id TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		status game_status NOT NULL DEFAULT 'running',
		winner TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_games_running ON games (chat_id) WHERE status = 'running'`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
