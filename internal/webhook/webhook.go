package webhook

import "context"

const GameResultSchemaVersion = 1

type GameResultPlayer struct {
	ActorID  string `json:"actor_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Alive    bool   `json:"alive"`
	Won      bool   `json:"won"`
}

type GameResultPayload struct {
	SchemaVersion   int                `json:"schema_version"`
	GameID          string             `json:"game_id"`
	ChatID          string             `json:"chat_id"`
	Winner          string             `json:"winner"`
	StartAt         string             `json:"start_at"`
	EndAt           string             `json:"end_at"`
	DurationSeconds int64              `json:"duration_seconds"`
	Players         []GameResultPlayer `json:"players"`
}

type Sender interface {
	SendGameResult(ctx context.Context, payload GameResultPayload) error
}
