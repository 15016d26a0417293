package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/clockworklab/mafiagram/internal/repository"
)

// RoleAssigner deals a shuffled role pool to the registered players of a
// chat at game start.
type RoleAssigner struct {
	repo repository.PlayerRepository

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRoleAssigner(repo repository.PlayerRepository, rng *rand.Rand) *RoleAssigner {
	return &RoleAssigner{repo: repo, rng: rng}
}

// Assign builds the role pool for the chat, shuffles it uniformly and writes
// one role per player in registration order. Every player's alive/voted/afk
// state is reset. Assigning to an empty chat is a no-op.
func (a *RoleAssigner) Assign(ctx context.Context, chatID string, mafiaCount int) error {
	players, err := a.repo.ListPlayers(ctx, chatID)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}
	if len(players) == 0 {
		return nil
	}

	pool := buildRolePool(len(players), mafiaCount)
	a.mu.Lock()
	a.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	a.mu.Unlock()

	for i, p := range players {
		if err := a.repo.AssignRole(ctx, p.ActorID, chatID, pool[i]); err != nil {
			return fmt.Errorf("failed to assign role to %s: %w", p.ActorID, err)
		}
	}
	return nil
}

// DefaultMafiaCount is used when the chat has no configured mafia count:
// roughly a third of the lobby, at least one.
func DefaultMafiaCount(n int) int {
	count := int(float64(n) * 0.3)
	if count < 1 {
		return 1
	}
	return count
}

// buildRolePool returns mafiaCount mafia slots, the special roles the lobby
// size unlocks (doctor at 5, sheriff at 6, maniac at 7, truncated from the
// tail when mafia already fills the lobby) and citizens for the rest.
func buildRolePool(n, mafiaCount int) []repository.Role {
	pool := make([]repository.Role, 0, n)
	for i := 0; i < mafiaCount; i++ {
		pool = append(pool, repository.RoleMafia)
	}

	var specials []repository.Role
	if n >= 5 {
		specials = append(specials, repository.RoleDoctor)
	}
	if n >= 6 {
		specials = append(specials, repository.RoleSheriff)
	}
	if n >= 7 {
		specials = append(specials, repository.RoleManiac)
	}
	if len(pool)+len(specials) > n {
		specials = specials[:max(0, n-len(pool))]
	}
	pool = append(pool, specials...)

	for len(pool) < n {
		pool = append(pool, repository.RoleCitizen)
	}
	return pool
}
