package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/clockworklab/mafiagram/internal/repository"
	"github.com/clockworklab/mafiagram/internal/webhook"
)

func formatTopPlayers(rows []repository.StatsRow) string {
	lines := []string{"Топ игроков:"}
	if len(rows) == 0 {
		lines = append(lines, "Пока никто не доиграл ни одной игры.")
	}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s: Игр: %d, Побед: %d", row.Username, row.Games, row.Wins))
	}
	return strings.Join(lines, "\n")
}

func buildGameResultPayload(gameID, chatID string, winner Faction, startedAt, endedAt time.Time, players []repository.Player) webhook.GameResultPayload {
	durationSeconds := int64(endedAt.Sub(startedAt).Seconds())
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	details := make([]webhook.GameResultPlayer, 0, len(players))
	for _, p := range players {
		details = append(details, webhook.GameResultPlayer{
			ActorID:  p.ActorID,
			Username: p.Username,
			Role:     string(p.Role),
			Alive:    !p.Dead,
			Won:      winner.RoleWins(p.Role),
		})
	}

	return webhook.GameResultPayload{
		SchemaVersion:   webhook.GameResultSchemaVersion,
		GameID:          gameID,
		ChatID:          chatID,
		Winner:          string(winner),
		StartAt:         startedAt.UTC().Format(time.RFC3339),
		EndAt:           endedAt.UTC().Format(time.RFC3339),
		DurationSeconds: durationSeconds,
		Players:         details,
	}
}
