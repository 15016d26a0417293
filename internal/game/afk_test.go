package game

import (
	"context"
	"testing"

	"github.com/clockworklab/mafiagram/internal/repository"
)

func TestAFKTracker_FirstMissOnlyIncrements(t *testing.T) {
	repo := newFakeRepo()
	repo.addPlayer("chat-1", "a1", "anna", repository.RoleCitizen)

	kicked, err := NewAFKTracker(repo).Penalize(context.Background(), "chat-1", PhaseDay)
	if err != nil {
		t.Fatalf("Penalize returned error: %v", err)
	}
	if len(kicked) != 0 {
		t.Fatalf("kicked = %v, want none on the first miss", kicked)
	}
	p := repo.find("a1", "chat-1")
	if p.AFKCount != 1 {
		t.Errorf("afk count = %d, want 1", p.AFKCount)
	}
	if p.Dead {
		t.Error("anna should still be alive")
	}
}

func TestAFKTracker_SecondMissKicks(t *testing.T) {
	repo := newFakeRepo()
	p := repo.addPlayer("chat-1", "a1", "anna", repository.RoleCitizen)
	p.AFKCount = 1

	kicked, err := NewAFKTracker(repo).Penalize(context.Background(), "chat-1", PhaseDay)
	if err != nil {
		t.Fatalf("Penalize returned error: %v", err)
	}
	if len(kicked) != 1 || kicked[0] != "anna" {
		t.Fatalf("kicked = %v, want [anna]", kicked)
	}
	if !repo.find("a1", "chat-1").Dead {
		t.Error("anna should be dead after two misses")
	}
}

func TestAFKTracker_VotersAreNotPenalized(t *testing.T) {
	repo := newFakeRepo()
	p := repo.addPlayer("chat-1", "a1", "anna", repository.RoleCitizen)
	p.Voted = true
	p.AFKCount = 1

	kicked, err := NewAFKTracker(repo).Penalize(context.Background(), "chat-1", PhaseDay)
	if err != nil {
		t.Fatalf("Penalize returned error: %v", err)
	}
	if len(kicked) != 0 {
		t.Fatalf("kicked = %v, want none", kicked)
	}
	if p.AFKCount != 1 {
		t.Errorf("afk count = %d, want unchanged 1", p.AFKCount)
	}
}

func TestAFKTracker_CitizensExemptAtNight(t *testing.T) {
	repo := newFakeRepo()
	citizen := repo.addPlayer("chat-1", "a1", "anna", repository.RoleCitizen)
	mafia := repo.addPlayer("chat-1", "a2", "boris", repository.RoleMafia)

	kicked, err := NewAFKTracker(repo).Penalize(context.Background(), "chat-1", PhaseNight)
	if err != nil {
		t.Fatalf("Penalize returned error: %v", err)
	}
	if len(kicked) != 0 {
		t.Fatalf("kicked = %v, want none", kicked)
	}
	if citizen.AFKCount != 0 {
		t.Errorf("citizen afk count = %d, want 0 at night", citizen.AFKCount)
	}
	if mafia.AFKCount != 1 {
		t.Errorf("mafia afk count = %d, want 1", mafia.AFKCount)
	}
}

func TestAFKTracker_DeadPlayersAreSkipped(t *testing.T) {
	repo := newFakeRepo()
	p := repo.addPlayer("chat-1", "a1", "anna", repository.RoleCitizen)
	p.Dead = true
	p.AFKCount = 1

	kicked, err := NewAFKTracker(repo).Penalize(context.Background(), "chat-1", PhaseDay)
	if err != nil {
		t.Fatalf("Penalize returned error: %v", err)
	}
	if len(kicked) != 0 {
		t.Fatalf("kicked = %v, want none", kicked)
	}
	if p.AFKCount != 1 {
		t.Errorf("afk count = %d, want unchanged 1", p.AFKCount)
	}
}
