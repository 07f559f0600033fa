package engine

import (
	"context"
	"fmt"

	"circlecrates/internal/gacha"
	"circlecrates/internal/leaderboard"
	"circlecrates/internal/models"
)

// OpenResult reports the cards produced by one open call plus summary
// aggregates for presentation.
type OpenResult struct {
	Cards      []*models.Card `json:"cards"`
	Requested  int            `json:"requested"`
	Produced   int            `json:"produced"`
	ByRarity   map[string]int `json:"by_rarity"`
	Mutations  []string       `json:"mutations,omitempty"` // display names, in draw order
	TotalValue int64          `json:"total_value"`
	Best       *models.Card   `json:"best,omitempty"`
	Unlocked   []string       `json:"unlocked,omitempty"` // achievement ids earned by this open
	Partial    bool           `json:"partial"`            // some rolls failed mid-batch
}

// Open consumes count crates of the given type and mints cards.
//
// The crate debit, open counter and cooldown stamp are committed before
// any rolling happens so a crash mid-batch never duplicates inventory.
// If rolling fails partway the whole debit is compensated (crates,
// open counter and cooldown all return to their pre-call values) while
// the cards already produced are kept and returned alongside a wrapped
// ErrOpenFailed.
func (e *Engine) Open(ctx context.Context, userID, crateKey string, count int) (*OpenResult, error) {
	if count < 1 || count > e.cfg.Game.BulkOpenMax {
		return nil, fmt.Errorf("%w: count must be in 1..%d", ErrInvalidArgument, e.cfg.Game.BulkOpenMax)
	}
	reg := e.data.Current()
	crate, ok := reg.Crate(crateKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCrate, crateKey)
	}

	user, err := e.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Crates[crate.Key] < count {
		return nil, fmt.Errorf("%w: have %d %s, need %d",
			ErrInsufficientCrates, user.Crates[crate.Key], crate.Key, count)
	}
	if remaining := e.cooldown.Remaining(userID); remaining > 0 {
		return nil, &CooldownError{Remaining: remaining}
	}

	// Commit the debit before doing any work.
	user.Crates[crate.Key] -= count
	if user.Crates[crate.Key] == 0 {
		delete(user.Crates, crate.Key)
	}
	user.TotalOpens += int64(count)
	e.cooldown.Stamp(userID)
	if err := e.users.Save(ctx, user); err != nil {
		e.cooldown.Clear(userID)
		return nil, err
	}

	// One leaderboard refresh per transaction; every card in the batch
	// rolls against the same snapshot.
	state, ferr := e.board.EnsureFresh(ctx, e.cfg.Rankings.FetchRetries)
	if state == leaderboard.StateFailed {
		if rerr := e.compensate(ctx, user, crate.Key, count, count); rerr != nil {
			e.logger.Error("open compensation failed", "user", userID, "error", rerr)
		}
		return nil, fmt.Errorf("%w: %v", ErrLeaderboardUnavailable, ferr)
	}

	produced := make([]*models.Card, 0, count)
	var rollErr error
	now := e.now()
	for i := 0; i < count; i++ {
		roll, err := e.roller.Roll(reg, crate, e.board)
		if err != nil {
			rollErr = err
			break
		}
		card := gacha.NewCard(reg, roll, crate.Key, now)
		user.Cards[card.CardID] = card
		produced = append(produced, card)
	}

	if rollErr != nil {
		// Roll back the whole debit and reopen the cooldown; cards
		// already minted stay with the user.
		if rerr := e.compensate(ctx, user, crate.Key, count, count); rerr != nil {
			e.logger.Error("open compensation failed", "user", userID, "error", rerr)
		}
	}

	for _, card := range produced {
		updateCardStats(user, card, crate.Price)
	}
	refreshMaxima(user)
	unlocked := e.evaluateAchievements(reg, user)
	if err := e.users.Save(ctx, user); err != nil {
		return nil, err
	}

	result := summarize(e, produced, count)
	for _, def := range unlocked {
		result.Unlocked = append(result.Unlocked, def.ID)
	}
	if rollErr != nil {
		e.logger.Warn("open completed partially",
			"user", userID, "crate", crate.Key, "produced", len(produced), "requested", count, "error", rollErr)
		return result, fmt.Errorf("%w: produced %d of %d cards: %v", ErrOpenFailed, len(produced), count, rollErr)
	}
	return result, nil
}

// compensate reverses a committed debit and clears the cooldown so the
// user can retry immediately.
func (e *Engine) compensate(ctx context.Context, user *models.User, crateKey string, crates int, opens int) error {
	if crates > 0 {
		user.Crates[crateKey] += crates
	}
	user.TotalOpens -= int64(opens)
	e.cooldown.Clear(user.UserID)
	return e.users.Save(ctx, user)
}

// summarize builds presentation aggregates over the produced cards.
func summarize(e *Engine, cards []*models.Card, requested int) *OpenResult {
	reg := e.data.Current()
	result := &OpenResult{
		Cards:     cards,
		Requested: requested,
		Produced:  len(cards),
		ByRarity:  make(map[string]int),
		Partial:   len(cards) < requested,
	}
	for _, card := range cards {
		result.ByRarity[card.RarityName]++
		result.TotalValue += card.Price
		if card.HasMutation() {
			result.Mutations = append(result.Mutations, reg.MutationDisplay(card.Mutation))
		}
		if result.Best == nil || card.Price > result.Best.Price {
			result.Best = card
		}
	}
	return result
}
