package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/clockworklab/mafiagram/internal/repository"
)

// AutoplayPolicy fills an under-sized lobby with synthetic players and votes
// on their behalf each round. The state machine never special-cases
// synthetic actors beyond consulting the policy.
type AutoplayPolicy interface {
	// FillLobby registers synthetic players until the lobby reaches min.
	FillLobby(ctx context.Context, chatID string, current, min int) error
	// Act casts votes for the living synthetic players of the chat.
	Act(ctx context.Context, chatID string, phase Phase) error
	// IsSynthetic reports whether the actor was created by this policy.
	IsSynthetic(actorID string) bool
}

const syntheticActorPrefix = "bot:"

var syntheticNames = []string{"Вася", "Петя", "Коля", "Света", "Оля", "Катя", "Дима", "Саша", "Лена", "Маша"}

// RandomAutoplay votes uniformly at random: lynch and kill targets exclude
// the voter, the doctor may heal anyone including themselves.
type RandomAutoplay struct {
	repo   repository.Repository
	ledger *VoteLedger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomAutoplay(repo repository.Repository, ledger *VoteLedger, rng *rand.Rand) *RandomAutoplay {
	return &RandomAutoplay{repo: repo, ledger: ledger, rng: rng}
}

func (a *RandomAutoplay) IsSynthetic(actorID string) bool {
	return strings.HasPrefix(actorID, syntheticActorPrefix)
}

func (a *RandomAutoplay) FillLobby(ctx context.Context, chatID string, current, min int) error {
	missing := min - current
	if missing <= 0 {
		return nil
	}

	a.mu.Lock()
	picks := a.rng.Perm(len(syntheticNames))
	a.mu.Unlock()

	added := 0
	for _, idx := range picks {
		if added == missing {
			break
		}
		name := syntheticNames[idx]
		existing, err := a.repo.FindPlayerByName(ctx, chatID, name)
		if err != nil {
			return fmt.Errorf("failed to check name %s: %w", name, err)
		}
		if existing != nil && !a.IsSynthetic(existing.ActorID) {
			continue
		}
		if err := a.repo.UpsertPlayer(ctx, repository.UpsertPlayerInput{
			ActorID:  fmt.Sprintf("%s%d", syntheticActorPrefix, idx),
			Username: name,
			ChatID:   chatID,
		}); err != nil {
			return fmt.Errorf("failed to register synthetic player %s: %w", name, err)
		}
		added++
	}
	if added < missing {
		slog.Warn("synthetic name pool exhausted; lobby stays under the minimum", "chat_id", chatID, "added", added, "missing", missing)
	}
	return nil
}

func (a *RandomAutoplay) Act(ctx context.Context, chatID string, phase Phase) error {
	players, err := a.repo.ListPlayers(ctx, chatID)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}

	var aliveNames []string
	for _, p := range players {
		if !p.Dead {
			aliveNames = append(aliveNames, p.Username)
		}
	}

	for _, p := range players {
		if p.Dead || !a.IsSynthetic(p.ActorID) {
			continue
		}
		category, target := a.pickAction(p, phase, aliveNames)
		if category == "" || target == "" {
			continue
		}
		accepted, err := a.ledger.Cast(ctx, category, target, p.ActorID, chatID)
		if err != nil {
			return err
		}
		if accepted {
			slog.Debug("autoplay vote cast", "chat_id", chatID, "actor_id", p.ActorID, "category", category, "target", target)
		}
	}
	return nil
}

func (a *RandomAutoplay) pickAction(p repository.Player, phase Phase, aliveNames []string) (repository.VoteCategory, string) {
	if phase == PhaseDay {
		return repository.VoteCitizen, a.pickTarget(aliveNames, p.Username)
	}
	switch p.Role {
	case repository.RoleMafia:
		return repository.VoteMafia, a.pickTarget(aliveNames, p.Username)
	case repository.RoleDoctor:
		return repository.VoteDoctor, a.pickTarget(aliveNames, "")
	case repository.RoleSheriff:
		return repository.VoteSheriff, a.pickTarget(aliveNames, p.Username)
	case repository.RoleManiac:
		return repository.VoteManiac, a.pickTarget(aliveNames, p.Username)
	default:
		return "", ""
	}
}

func (a *RandomAutoplay) pickTarget(aliveNames []string, exclude string) string {
	candidates := make([]string, 0, len(aliveNames))
	for _, name := range aliveNames {
		if name != exclude {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return candidates[a.rng.IntN(len(candidates))]
}
