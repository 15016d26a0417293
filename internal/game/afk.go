package game

import (
	"context"
	"fmt"

	"github.com/clockworklab/mafiagram/internal/repository"
)

// afkLimit is the number of consecutive missed rounds before elimination.
const afkLimit = 2

// AFKTracker escalates repeated non-voting to elimination. During the day
// every living player is expected to vote; at night only action roles are,
// since citizens have nothing to do.
type AFKTracker struct {
	repo repository.PlayerRepository
}

func NewAFKTracker(repo repository.PlayerRepository) *AFKTracker {
	return &AFKTracker{repo: repo}
}

// Penalize increments the miss counter of every eligible non-voter for the
// phase that just ended and kills those reaching the limit. Returns the
// eliminated names. Must run after resolution and before the round reset.
func (t *AFKTracker) Penalize(ctx context.Context, chatID string, phase Phase) ([]string, error) {
	players, err := t.repo.ListPlayers(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	var kicked []string
	for _, p := range players {
		if p.Dead || p.Voted {
			continue
		}
		if phase == PhaseNight && !p.Role.HasNightAction() {
			continue
		}
		count := p.AFKCount + 1
		if count >= afkLimit {
			if err := t.repo.MarkDeadByName(ctx, chatID, p.Username); err != nil {
				return kicked, fmt.Errorf("failed to kick %s: %w", p.Username, err)
			}
			kicked = append(kicked, p.Username)
			continue
		}
		if err := t.repo.SetAFKCount(ctx, p.ActorID, chatID, count); err != nil {
			return kicked, fmt.Errorf("failed to update afk count for %s: %w", p.ActorID, err)
		}
	}
	return kicked, nil
}
