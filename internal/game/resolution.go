package game

import (
	"context"
	"fmt"

	"github.com/clockworklab/mafiagram/internal/repository"
)

// Resolver tallies the round's votes and applies eliminations. Each entry
// point consumes the votes recorded so far and must run exactly once per
// round, before the votes are purged.
type Resolver struct {
	repo repository.Repository
}

func NewResolver(repo repository.Repository) *Resolver {
	return &Resolver{repo: repo}
}

// ResolveDay tallies the lynch vote. The target with a strict plurality is
// killed; a tie at the top means nobody is eliminated. Returns the lynched
// name, or "" when no one died.
func (r *Resolver) ResolveDay(ctx context.Context, chatID string) (string, error) {
	votes, err := r.repo.ListVotesByCategory(ctx, chatID, repository.VoteCitizen)
	if err != nil {
		return "", fmt.Errorf("failed to list lynch votes: %w", err)
	}
	target, ok := strictPluralityTarget(votes)
	if !ok {
		return "", nil
	}
	if err := r.repo.MarkDeadByName(ctx, chatID, target); err != nil {
		return "", fmt.Errorf("failed to mark %s dead: %w", target, err)
	}
	return target, nil
}

// ResolveNight computes the mafia, maniac and doctor plurality targets
// independently. A kill goes through unless the doctor healed the same
// target; a player targeted by both mafia and maniac dies once. Returns the
// newly dead names in mafia-then-maniac order.
func (r *Resolver) ResolveNight(ctx context.Context, chatID string) ([]string, error) {
	mafiaTarget, err := r.categoryTarget(ctx, chatID, repository.VoteMafia)
	if err != nil {
		return nil, err
	}
	maniacTarget, err := r.categoryTarget(ctx, chatID, repository.VoteManiac)
	if err != nil {
		return nil, err
	}
	doctorTarget, err := r.categoryTarget(ctx, chatID, repository.VoteDoctor)
	if err != nil {
		return nil, err
	}

	var dead []string
	if mafiaTarget != "" && mafiaTarget != doctorTarget {
		dead = append(dead, mafiaTarget)
	}
	if maniacTarget != "" && maniacTarget != doctorTarget && maniacTarget != mafiaTarget {
		dead = append(dead, maniacTarget)
	}
	for _, name := range dead {
		if err := r.repo.MarkDeadByName(ctx, chatID, name); err != nil {
			return nil, fmt.Errorf("failed to mark %s dead: %w", name, err)
		}
	}
	return dead, nil
}

func (r *Resolver) categoryTarget(ctx context.Context, chatID string, category repository.VoteCategory) (string, error) {
	votes, err := r.repo.ListVotesByCategory(ctx, chatID, category)
	if err != nil {
		return "", fmt.Errorf("failed to list %s votes: %w", category, err)
	}
	return pluralityTarget(votes), nil
}

// pluralityTarget returns the most-voted target; ties go to the target seen
// first in insertion order. Empty string when there are no votes.
func pluralityTarget(votes []repository.Vote) string {
	counts := make(map[string]int, len(votes))
	var order []string
	for _, v := range votes {
		if counts[v.TargetName] == 0 {
			order = append(order, v.TargetName)
		}
		counts[v.TargetName]++
	}
	best := ""
	bestCount := 0
	for _, name := range order {
		if counts[name] > bestCount {
			best = name
			bestCount = counts[name]
		}
	}
	return best
}

// strictPluralityTarget returns the top target only when its tally strictly
// beats every other target.
func strictPluralityTarget(votes []repository.Vote) (string, bool) {
	counts := make(map[string]int, len(votes))
	var order []string
	for _, v := range votes {
		if counts[v.TargetName] == 0 {
			order = append(order, v.TargetName)
		}
		counts[v.TargetName]++
	}
	if len(order) == 0 {
		return "", false
	}
	best := ""
	bestCount := 0
	tied := false
	for _, name := range order {
		switch {
		case counts[name] > bestCount:
			best = name
			bestCount = counts[name]
			tied = false
		case counts[name] == bestCount:
			tied = true
		}
	}
	if tied {
		return "", false
	}
	return best, true
}
