package game

import (
	"context"
	"fmt"

	"github.com/clockworklab/mafiagram/internal/repository"
)

// VoteLedger validates and records a single vote for the current round.
type VoteLedger struct {
	repo repository.Repository
}

func NewVoteLedger(repo repository.Repository) *VoteLedger {
	return &VoteLedger{repo: repo}
}

// Cast applies the validation chain and records the vote. The boolean is the
// user-facing verdict: false means the vote was rejected (dead or already
// voted actor, role mismatch, dead or unknown target). A non-nil error is a
// storage fault, in which case no vote is recorded.
func (l *VoteLedger) Cast(ctx context.Context, category repository.VoteCategory, targetName, actorID, chatID string) (bool, error) {
	actor, err := l.repo.GetPlayer(ctx, actorID, chatID)
	if err != nil {
		return false, fmt.Errorf("failed to load voter: %w", err)
	}
	if actor == nil || actor.Dead || actor.Voted {
		return false, nil
	}
	if required, ok := category.RequiredRole(); ok && actor.Role != required {
		return false, nil
	}

	target, err := l.repo.FindPlayerByName(ctx, chatID, targetName)
	if err != nil {
		return false, fmt.Errorf("failed to load target: %w", err)
	}
	if target == nil || target.Dead {
		return false, nil
	}

	// Claim the voted flag first so two concurrent casts from the same actor
	// cannot both record a vote.
	claimed, err := l.repo.TryMarkVoted(ctx, actorID, chatID)
	if err != nil {
		return false, fmt.Errorf("failed to mark voter: %w", err)
	}
	if !claimed {
		return false, nil
	}
	if err := l.repo.InsertVote(ctx, repository.InsertVoteInput{
		Category:   category,
		TargetName: targetName,
		ActorID:    actorID,
		ChatID:     chatID,
	}); err != nil {
		_ = l.repo.ClearVoted(ctx, actorID, chatID)
		return false, fmt.Errorf("failed to insert vote: %w", err)
	}
	return true, nil
}
