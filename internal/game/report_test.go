package game

import (
	"strings"
	"testing"
	"time"

	"github.com/clockworklab/mafiagram/internal/repository"
	"github.com/clockworklab/mafiagram/internal/webhook"
)

func TestFormatTopPlayers(t *testing.T) {
	got := formatTopPlayers([]repository.StatsRow{
		{Username: "anna", Games: 3, Wins: 2},
		{Username: "boris", Games: 3, Wins: 1},
	})
	if !strings.Contains(got, "anna: Игр: 3, Побед: 2") {
		t.Errorf("missing anna line in %q", got)
	}
	if !strings.Contains(got, "boris: Игр: 3, Побед: 1") {
		t.Errorf("missing boris line in %q", got)
	}
}

func TestFormatTopPlayers_Empty(t *testing.T) {
	got := formatTopPlayers(nil)
	if !strings.Contains(got, "Пока никто") {
		t.Errorf("empty stats message missing in %q", got)
	}
}

func TestBuildGameResultPayload(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	players := []repository.Player{
		{ActorID: "a1", Username: "anna", Role: repository.RoleCitizen, Dead: false},
		{ActorID: "m1", Username: "boris", Role: repository.RoleMafia, Dead: true},
	}

	payload := buildGameResultPayload("game-1", "chat-1", FactionTown, start, end, players)

	if payload.SchemaVersion != webhook.GameResultSchemaVersion {
		t.Errorf("schema version = %d", payload.SchemaVersion)
	}
	if payload.GameID != "game-1" || payload.ChatID != "chat-1" || payload.Winner != "town" {
		t.Errorf("header = %+v", payload)
	}
	if payload.DurationSeconds != 90 {
		t.Errorf("duration = %d, want 90", payload.DurationSeconds)
	}
	if payload.StartAt != "2026-03-01T12:00:00Z" {
		t.Errorf("start = %q", payload.StartAt)
	}
	if len(payload.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(payload.Players))
	}
	if !payload.Players[0].Won || !payload.Players[0].Alive {
		t.Errorf("anna entry = %+v, want alive winner", payload.Players[0])
	}
	if payload.Players[1].Won || payload.Players[1].Alive {
		t.Errorf("boris entry = %+v, want dead loser", payload.Players[1])
	}
}

func TestBuildGameResultPayload_NegativeDurationClamped(t *testing.T) {
	start := time.Now()
	payload := buildGameResultPayload("game-1", "chat-1", FactionMafia, start, start.Add(-time.Second), nil)
	if payload.DurationSeconds != 0 {
		t.Errorf("duration = %d, want clamped to 0", payload.DurationSeconds)
	}
}
