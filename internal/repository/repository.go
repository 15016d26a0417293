package repository

import (
	"context"
	"time"
)

type UpsertPlayerInput struct {
	ActorID  string
	Username string
	ChatID   string
}

type InsertVoteInput struct {
	Category   VoteCategory
	TargetName string
	ActorID    string
	ChatID     string
}

type CreateGameInput struct {
	ID        string
	ChatID    string
	StartedAt time.Time
}

type CompleteGameInput struct {
	GameID  string
	EndedAt time.Time
	Winner  string
}

// PlayerRepository stores per-chat participants. Registration upserts keep
// the dead flag of an existing row and reset the per-round fields.
type PlayerRepository interface {
	UpsertPlayer(ctx context.Context, input UpsertPlayerInput) error
	CountPlayers(ctx context.Context, chatID string) (int, error)
	GetPlayer(ctx context.Context, actorID, chatID string) (*Player, error)
	FindPlayerByName(ctx context.Context, chatID, username string) (*Player, error)
	// ListPlayers returns every player of the chat in registration order.
	ListPlayers(ctx context.Context, chatID string) ([]Player, error)
	ListAliveNames(ctx context.Context, chatID string) ([]string, error)
	// AssignRole sets the role and resets alive/voted/afk for one player.
	AssignRole(ctx context.Context, actorID, chatID string, role Role) error
	MarkDeadByName(ctx context.Context, chatID, username string) error
	// TryMarkVoted flips the voted flag only when it is currently unset and
	// reports whether this call claimed it.
	TryMarkVoted(ctx context.Context, actorID, chatID string) (bool, error)
	ClearVoted(ctx context.Context, actorID, chatID string) error
	SetAFKCount(ctx context.Context, actorID, chatID string, count int) error
	ResetVotedFlags(ctx context.Context, chatID string) error
	// ResetPlayersForNewGame clears dead/voted/afk for the whole chat.
	ResetPlayersForNewGame(ctx context.Context, chatID string) error
}

type VoteRepository interface {
	InsertVote(ctx context.Context, input InsertVoteInput) error
	// ListVotesByCategory returns votes in insertion order.
	ListVotesByCategory(ctx context.Context, chatID string, category VoteCategory) ([]Vote, error)
	DeleteVotes(ctx context.Context, chatID string) error
}

type SettingsRepository interface {
	// GetSettings returns nil when the chat has no settings row.
	GetSettings(ctx context.Context, chatID string) (*Settings, error)
	UpsertSettings(ctx context.Context, chatID string, timerSeconds, mafiaCount *int) error
}

type StatsRepository interface {
	AddGameResult(ctx context.Context, actorID, username string, won bool) error
	TopStats(ctx context.Context, limit int) ([]StatsRow, error)
}

type GameRepository interface {
	CreateGame(ctx context.Context, input CreateGameInput) error
	CompleteGame(ctx context.Context, input CompleteGameInput) error
	GetRunningGameByChat(ctx context.Context, chatID string) (*Game, error)
}

type Repository interface {
	PlayerRepository
	VoteRepository
	SettingsRepository
	StatsRepository
	GameRepository
}
