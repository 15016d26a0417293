package game

import (
	"context"
	"fmt"

	"github.com/clockworklab/mafiagram/internal/repository"
)

// Faction is the winning side of a finished game.
type Faction string

const (
	FactionMafia  Faction = "mafia"
	FactionManiac Faction = "maniac"
	FactionTown   Faction = "town"
)

// RoleWins reports whether a player holding the role is on the winning side.
func (f Faction) RoleWins(role repository.Role) bool {
	switch f {
	case FactionMafia:
		return role == repository.RoleMafia
	case FactionManiac:
		return role == repository.RoleManiac
	case FactionTown:
		return role != repository.RoleMafia && role != repository.RoleManiac
	default:
		return false
	}
}

// WinEvaluator decides whether a faction has met its win condition. Counts
// are always re-derived from the live player rows.
type WinEvaluator struct {
	repo repository.PlayerRepository
}

func NewWinEvaluator(repo repository.PlayerRepository) *WinEvaluator {
	return &WinEvaluator{repo: repo}
}

// Evaluate returns the winning faction, or ok=false while the game goes on.
// The maniac's lone-survivor win is checked before mafia dominance: a last
// maniac against one townsperson and no mafia wins outright.
func (e *WinEvaluator) Evaluate(ctx context.Context, chatID string) (Faction, bool, error) {
	players, err := e.repo.ListPlayers(ctx, chatID)
	if err != nil {
		return "", false, fmt.Errorf("failed to list players: %w", err)
	}

	var mafiaAlive, maniacAlive, otherAlive int
	for _, p := range players {
		if p.Dead {
			continue
		}
		switch p.Role {
		case repository.RoleMafia:
			mafiaAlive++
		case repository.RoleManiac:
			maniacAlive++
		default:
			otherAlive++
		}
	}

	switch {
	case maniacAlive > 0 && mafiaAlive == 0 && otherAlive <= 1:
		return FactionManiac, true, nil
	case mafiaAlive > 0 && mafiaAlive >= otherAlive+maniacAlive:
		return FactionMafia, true, nil
	case mafiaAlive == 0 && maniacAlive == 0:
		return FactionTown, true, nil
	default:
		return "", false, nil
	}
}
