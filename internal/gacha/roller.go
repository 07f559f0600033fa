// Package gacha implements the probabilistic card-generation pipeline:
// weighted rank selection, star rarity, mutation rolls with the
// flashback substitution, deterministic pricing and card identity.
package gacha

import (
	"errors"
	"fmt"

	"circlecrates/internal/gamedata"
	"circlecrates/internal/models"
)

// ErrPlayerUnresolved is returned when rolled ranks repeatedly resolve
// to nobody in the leaderboard cache.
var ErrPlayerUnresolved = errors.New("rolled rank could not be resolved from the leaderboard")

// ErrEmptyRoster is returned when the flashback mutation fires with no
// roster entries configured.
var ErrEmptyRoster = errors.New("flashback roster is empty")

// PlayerResolver resolves a rolled rank to a cached player snapshot.
type PlayerResolver interface {
	ByRank(rank int) (models.Player, bool)
}

// RollResult is one fully rolled card before pricing and identity.
type RollResult struct {
	Player        models.Player
	Stars         int
	RarityName    string
	RarityColor   string
	Mutation      string
	FlashbackYear string
	FlashbackEra  string
}

// IsFlashback reports whether the roll went through the substitution path.
func (r *RollResult) IsFlashback() bool {
	return r.Mutation == gamedata.MutationKeyFlashback
}

// Roller drives the per-card random pipeline.
type Roller struct {
	rng            RandomSource
	mutationChance float64 // global cap; crates may override
	playerRerolls  int     // re-rolls before giving up on a rank
}

// NewRoller creates a roller. A nil rng selects the crypto source.
func NewRoller(rng RandomSource, mutationChance float64, playerRerolls int) *Roller {
	if rng == nil {
		rng = DefaultRNG()
	}
	if playerRerolls < 0 {
		playerRerolls = 0
	}
	return &Roller{rng: rng, mutationChance: mutationChance, playerRerolls: playerRerolls}
}

// RollRank picks a rank range by weight, then a uniform rank within it.
func (ro *Roller) RollRank(crate gamedata.CrateDef) (int, error) {
	total := crate.TotalWeight()
	if total <= 0 {
		return 0, fmt.Errorf("crate %s has no positive-weight range", crate.Key)
	}

	target := ro.rng.Float64() * total
	var acc float64
	for _, rr := range crate.RankRanges {
		acc += rr.Weight
		if target < acc {
			return intBetween(ro.rng, rr.Min, rr.Max), nil
		}
	}
	// Floating point slack lands on the last range.
	last := crate.RankRanges[len(crate.RankRanges)-1]
	return intBetween(ro.rng, last.Min, last.Max), nil
}

// RollMutation decides the mutation for one card with a single uniform
// draw: u past the effective chance means no mutation, otherwise u
// rescaled into [0,1) selects among the configured mutations by their
// relative rarity weights.
func (ro *Roller) RollMutation(reg *gamedata.Registry, crate gamedata.CrateDef) string {
	chance := ro.mutationChance
	if crate.MutationChanceOverride != nil {
		chance = *crate.MutationChanceOverride
	}
	if chance <= 0 {
		return ""
	}

	u := ro.rng.Float64()
	if u >= chance {
		return ""
	}

	muts := reg.Mutations()
	var total float64
	for _, m := range muts {
		total += m.Rarity
	}
	if total <= 0 {
		return ""
	}

	target := (u / chance) * total
	var acc float64
	for _, m := range muts {
		acc += m.Rarity
		if target < acc {
			return m.Key
		}
	}
	return muts[len(muts)-1].Key
}

// Roll produces one card roll for the given crate. Flashback rolls
// discard the rolled rank and substitute a roster snapshot at forced
// max stars; all other rolls resolve the rank against the resolver,
// re-rolling a bounded number of times before failing.
func (ro *Roller) Roll(reg *gamedata.Registry, crate gamedata.CrateDef, resolver PlayerResolver) (RollResult, error) {
	mutation := ro.RollMutation(reg, crate)

	if mutation == gamedata.MutationKeyFlashback {
		return ro.rollFlashback(reg, mutation)
	}

	for attempt := 0; attempt <= ro.playerRerolls; attempt++ {
		rank, err := ro.RollRank(crate)
		if err != nil {
			return RollResult{}, err
		}
		player, ok := resolver.ByRank(rank)
		if !ok {
			continue
		}
		rarity := gamedata.RarityForRank(rank)
		return RollResult{
			Player:      player,
			Stars:       rarity.Stars,
			RarityName:  rarity.Name,
			RarityColor: rarity.Color,
			Mutation:    mutation,
		}, nil
	}
	return RollResult{}, ErrPlayerUnresolved
}

// rollFlashback substitutes a uniformly picked roster entry.
func (ro *Roller) rollFlashback(reg *gamedata.Registry, mutation string) (RollResult, error) {
	roster := reg.Flashbacks()
	if len(roster) == 0 {
		return RollResult{}, ErrEmptyRoster
	}
	entry := roster[intBetween(ro.rng, 0, len(roster)-1)]
	return RollResult{
		Player:        entry.Player,
		Stars:         gamedata.MaxStars,
		RarityName:    entry.Year,
		RarityColor:   "#8d6e63",
		Mutation:      mutation,
		FlashbackYear: entry.Year,
		FlashbackEra:  entry.Era,
	}, nil
}
