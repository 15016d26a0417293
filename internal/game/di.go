package game

import (
	"math/rand/v2"
	"time"

	"github.com/clockworklab/mafiagram/internal/config"
	"github.com/clockworklab/mafiagram/internal/discord"
	"github.com/clockworklab/mafiagram/internal/repository"
	"github.com/clockworklab/mafiagram/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*rand.Rand, error) {
		now := uint64(time.Now().UnixNano())
		return rand.New(rand.NewPCG(now, now>>32)), nil
	})
	do.Provide(injector, func(i do.Injector) (*VoteLedger, error) {
		return NewVoteLedger(do.MustInvoke[repository.Repository](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (AutoplayPolicy, error) {
		repo := do.MustInvoke[repository.Repository](i)
		ledger := do.MustInvoke[*VoteLedger](i)
		rng := do.MustInvoke[*rand.Rand](i)
		return NewRandomAutoplay(repo, ledger, rng), nil
	})
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		dc := do.MustInvoke[discord.Client](i)
		wh := do.MustInvoke[webhook.Sender](i)
		rng := do.MustInvoke[*rand.Rand](i)
		ledger := do.MustInvoke[*VoteLedger](i)
		autoplay := do.MustInvoke[AutoplayPolicy](i)
		return NewManager(
			cfg,
			repo,
			dc,
			wh,
			NewRoleAssigner(repo, rng),
			ledger,
			NewResolver(repo),
			NewAFKTracker(repo),
			NewWinEvaluator(repo),
			autoplay,
		), nil
	})
}
