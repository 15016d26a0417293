package repository

import (
	"context"
	"time"

	"github.com/clockworklab/mafiagram/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) UpsertPlayer(ctx context.Context, input repository.UpsertPlayerInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO players (actor_id, chat_id, username)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (actor_id, chat_id)
		 DO UPDATE SET username = EXCLUDED.username, voted = FALSE, afk_count = 0`,
		input.ActorID, input.ChatID, input.Username)
	return err
}

func (r *PostgresRepository) CountPlayers(ctx context.Context, chatID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM players WHERE chat_id = $1`, chatID).Scan(&count)
	return count, err
}

func (r *PostgresRepository) GetPlayer(ctx context.Context, actorID, chatID string) (*repository.Player, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT actor_id, chat_id, username, role, dead, voted, afk_count
		 FROM players WHERE actor_id = $1 AND chat_id = $2`,
		actorID, chatID)
	return scanPlayer(row)
}

func (r *PostgresRepository) FindPlayerByName(ctx context.Context, chatID, username string) (*repository.Player, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT actor_id, chat_id, username, role, dead, voted, afk_count
		 FROM players WHERE chat_id = $1 AND username = $2
		 ORDER BY id LIMIT 1`,
		chatID, username)
	return scanPlayer(row)
}

func scanPlayer(row pgx.Row) (*repository.Player, error) {
	var p repository.Player
	err := row.Scan(&p.ActorID, &p.ChatID, &p.Username, &p.Role, &p.Dead, &p.Voted, &p.AFKCount)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) ListPlayers(ctx context.Context, chatID string) ([]repository.Player, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT actor_id, chat_id, username, role, dead, voted, afk_count
		 FROM players WHERE chat_id = $1 ORDER BY id ASC`,
		chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Player
	for rows.Next() {
		var p repository.Player
		if err := rows.Scan(&p.ActorID, &p.ChatID, &p.Username, &p.Role, &p.Dead, &p.Voted, &p.AFKCount); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) ListAliveNames(ctx context.Context, chatID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT username FROM players WHERE chat_id = $1 AND dead = FALSE ORDER BY id ASC`,
		chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *PostgresRepository) AssignRole(ctx context.Context, actorID, chatID string, role repository.Role) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE players SET role = $3, dead = FALSE, voted = FALSE, afk_count = 0
		 WHERE actor_id = $1 AND chat_id = $2`,
		actorID, chatID, role)
	return err
}

func (r *PostgresRepository) MarkDeadByName(ctx context.Context, chatID, username string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE players SET dead = TRUE WHERE chat_id = $1 AND username = $2`,
		chatID, username)
	return err
}

func (r *PostgresRepository) TryMarkVoted(ctx context.Context, actorID, chatID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE players SET voted = TRUE
		 WHERE actor_id = $1 AND chat_id = $2 AND voted = FALSE AND dead = FALSE`,
		actorID, chatID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) ClearVoted(ctx context.Context, actorID, chatID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE players SET voted = FALSE WHERE actor_id = $1 AND chat_id = $2`,
		actorID, chatID)
	return err
}

func (r *PostgresRepository) SetAFKCount(ctx context.Context, actorID, chatID string, count int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE players SET afk_count = $3 WHERE actor_id = $1 AND chat_id = $2`,
		actorID, chatID, count)
	return err
}

func (r *PostgresRepository) ResetVotedFlags(ctx context.Context, chatID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE players SET voted = FALSE WHERE chat_id = $1`, chatID)
	return err
}

func (r *PostgresRepository) ResetPlayersForNewGame(ctx context.Context, chatID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE players SET dead = FALSE, voted = FALSE, afk_count = 0 WHERE chat_id = $1`,
		chatID)
	return err
}

func (r *PostgresRepository) InsertVote(ctx context.Context, input repository.InsertVoteInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO votes (category, target_name, actor_id, chat_id)
		 VALUES ($1, $2, $3, $4)`,
		input.Category, input.TargetName, input.ActorID, input.ChatID)
	return err
}

func (r *PostgresRepository) ListVotesByCategory(ctx context.Context, chatID string, category repository.VoteCategory) ([]repository.Vote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category, target_name, actor_id, chat_id
		 FROM votes WHERE chat_id = $1 AND category = $2 ORDER BY id ASC`,
		chatID, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Vote
	for rows.Next() {
		var v repository.Vote
		if err := rows.Scan(&v.ID, &v.Category, &v.TargetName, &v.ActorID, &v.ChatID); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) DeleteVotes(ctx context.Context, chatID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM votes WHERE chat_id = $1`, chatID)
	return err
}

func (r *PostgresRepository) GetSettings(ctx context.Context, chatID string) (*repository.Settings, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT chat_id, timer_seconds, mafia_count FROM settings WHERE chat_id = $1`,
		chatID)
	var s repository.Settings
	err := row.Scan(&s.ChatID, &s.TimerSeconds, &s.MafiaCount)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) UpsertSettings(ctx context.Context, chatID string, timerSeconds, mafiaCount *int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (chat_id, timer_seconds, mafia_count)
		 VALUES ($1, COALESCE($2, 30), COALESCE($3, 1))
		 ON CONFLICT (chat_id) DO UPDATE SET
		   timer_seconds = COALESCE($2, settings.timer_seconds),
		   mafia_count = COALESCE($3, settings.mafia_count)`,
		chatID, timerSeconds, mafiaCount)
	return err
}

func (r *PostgresRepository) AddGameResult(ctx context.Context, actorID, username string, won bool) error {
	wins := 0
	if won {
		wins = 1
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO stats (actor_id, username, games, wins)
		 VALUES ($1, $2, 1, $3)
		 ON CONFLICT (actor_id) DO UPDATE SET
		   username = EXCLUDED.username,
		   games = stats.games + 1,
		   wins = stats.wins + $3`,
		actorID, username, wins)
	return err
}

func (r *PostgresRepository) TopStats(ctx context.Context, limit int) ([]repository.StatsRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT actor_id, username, games, wins FROM stats ORDER BY wins DESC, games DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.StatsRow
	for rows.Next() {
		var s repository.StatsRow
		if err := rows.Scan(&s.ActorID, &s.Username, &s.Games, &s.Wins); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) CreateGame(ctx context.Context, input repository.CreateGameInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO games (id, chat_id, started_at, status)
		 VALUES ($1, $2, $3, 'running')`,
		input.ID, input.ChatID, input.StartedAt)
	return err
}

func (r *PostgresRepository) CompleteGame(ctx context.Context, input repository.CompleteGameInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE games SET status = 'completed', ended_at = $2, winner = $3 WHERE id = $1`,
		input.GameID, input.EndedAt, input.Winner)
	return err
}

func (r *PostgresRepository) GetRunningGameByChat(ctx context.Context, chatID string) (*repository.Game, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, chat_id, started_at, ended_at, status, winner
		 FROM games WHERE chat_id = $1 AND status = 'running'
		 LIMIT 1`,
		chatID)
	var g repository.Game
	var endedAt *time.Time
	var winner *string
	err := row.Scan(&g.ID, &g.ChatID, &g.StartedAt, &endedAt, &g.Status, &winner)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	g.EndedAt = endedAt
	if winner != nil {
		g.Winner = *winner
	}
	return &g, nil
}
