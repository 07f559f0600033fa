// Package engine implements the gameplay core: the open transaction
// with compensation, the daily reward and streak logic, and the
// achievement evaluator. A user's operations are serialized by the
// outer dispatcher; the engine assumes exclusive access to one user
// record for the duration of a call.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"circlecrates/internal/config"
	"circlecrates/internal/gacha"
	"circlecrates/internal/gamedata"
	"circlecrates/internal/leaderboard"
	"circlecrates/internal/models"
	"circlecrates/internal/storage"
)

// Engine wires the gacha pipeline to the user store and the
// leaderboard cache.
type Engine struct {
	users    storage.UserRepository
	board    *leaderboard.Cache
	data     *gamedata.Store
	roller   *gacha.Roller
	cooldown *CooldownGate
	cfg      *config.Config
	logger   *slog.Logger
	now      func() time.Time
}

// Options tweaks engine construction; zero values select production
// behavior.
type Options struct {
	RNG gacha.RandomSource // deterministic source for tests
	Now func() time.Time   // clock override for tests
}

// New creates an engine over the given collaborators.
func New(users storage.UserRepository, board *leaderboard.Cache, data *gamedata.Store,
	cfg *config.Config, logger *slog.Logger, opts Options) *Engine {

	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	e := &Engine{
		users:    users,
		board:    board,
		data:     data,
		roller:   gacha.NewRoller(opts.RNG, cfg.Game.MutationChance, cfg.Game.PlayerRerolls),
		cooldown: NewCooldownGate(time.Duration(cfg.Game.CooldownSeconds) * time.Second),
		cfg:      cfg,
		logger:   logger,
		now:      now,
	}
	e.cooldown.now = now
	return e
}

// userDefaults returns the configured defaults for first-access users.
func (e *Engine) userDefaults() storage.UserDefaults {
	return storage.UserDefaults{
		StartingCoins:        e.cfg.Game.StartingCoins,
		ConfirmationsEnabled: e.cfg.Game.ConfirmationsEnabled,
	}
}

// User loads (or lazily creates) a user record.
func (e *Engine) User(ctx context.Context, userID string) (*models.User, error) {
	return e.users.GetOrCreate(ctx, userID, e.userDefaults())
}

// SearchPlayer resolves a rank or username against the leaderboard,
// refreshing it first if stale.
func (e *Engine) SearchPlayer(ctx context.Context, query string) (models.Player, error) {
	state, err := e.board.EnsureFresh(ctx, e.cfg.Rankings.FetchRetries)
	if state == leaderboard.StateFailed {
		return models.Player{}, fmt.Errorf("%w: %v", ErrLeaderboardUnavailable, err)
	}
	player, ok := e.board.Search(query)
	if !ok {
		return models.Player{}, fmt.Errorf("%w: no player matches %q", ErrNotFound, query)
	}
	return player, nil
}

// ToggleFavorite flips the favorite flag on an owned card and reports
// the new state.
func (e *Engine) ToggleFavorite(ctx context.Context, userID, cardID string) (bool, error) {
	user, err := e.User(ctx, userID)
	if err != nil {
		return false, err
	}
	if _, ok := user.Cards[cardID]; !ok {
		return false, fmt.Errorf("%w: card %s not owned", ErrNotFound, cardID)
	}
	favored := !user.Favorites[cardID]
	if favored {
		user.Favorites[cardID] = true
	} else {
		delete(user.Favorites, cardID)
	}
	return favored, e.users.Save(ctx, user)
}

// SetConfirmations toggles bulk-open confirmation prompts.
func (e *Engine) SetConfirmations(ctx context.Context, userID string, enabled bool) error {
	user, err := e.User(ctx, userID)
	if err != nil {
		return err
	}
	user.ConfirmationsEnabled = enabled
	return e.users.Save(ctx, user)
}

// Simulate runs a seeded odds simulation for the crate, capped by the
// configured trial limit.
func (e *Engine) Simulate(ctx context.Context, crateKey string, trials int, seed uint64) (gacha.SimResult, error) {
	reg := e.data.Current()
	crate, ok := reg.Crate(crateKey)
	if !ok {
		return gacha.SimResult{}, fmt.Errorf("%w: %q", ErrUnknownCrate, crateKey)
	}
	state, err := e.board.EnsureFresh(ctx, e.cfg.Rankings.FetchRetries)
	if state == leaderboard.StateFailed {
		return gacha.SimResult{}, fmt.Errorf("%w: %v", ErrLeaderboardUnavailable, err)
	}
	return gacha.Simulate(reg, crate, e.board, trials, e.cfg.Game.SimulationMax, seed, e.cfg.Game.MutationChance), nil
}

// BuyCrates exchanges coins for crates at the catalog price.
func (e *Engine) BuyCrates(ctx context.Context, userID, crateKey string, count int) (*models.User, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: count must be positive", ErrInvalidArgument)
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
	cost := crate.Price * int64(count)
	if user.Currency < cost {
		return nil, fmt.Errorf("%w: need %d coins, have %d", ErrInsufficientFunds, cost, user.Currency)
	}
	user.Currency -= cost
	user.Crates[crate.Key] += count
	refreshMaxima(user)
	if err := e.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AuthorizeOwner gates administrative operations on the configured
// owner identity. An unset owner id disables admin operations.
func (e *Engine) AuthorizeOwner(actorID string) error {
	if e.cfg.App.OwnerID == "" || actorID != e.cfg.App.OwnerID {
		return fmt.Errorf("%w: administrative operation requires the owner", ErrForbidden)
	}
	return nil
}

// GiveCrates grants crates to a user. Owner only.
func (e *Engine) GiveCrates(ctx context.Context, actorID, userID, crateKey string, count int) (*models.User, error) {
	if err := e.AuthorizeOwner(actorID); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: count must be positive", ErrInvalidArgument)
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
	user.Crates[crate.Key] += count
	if err := e.users.Save(ctx, user); err != nil {
		return nil, err
	}
	e.logger.Info("crates granted", "user", userID, "crate", crate.Key, "count", count)
	return user, nil
}

// GiveCard mints a card directly into a user's inventory. Owner only.
// A flashback card can only name players on the flashback roster; any
// other mutation resolves the player from the live leaderboard.
func (e *Engine) GiveCard(ctx context.Context, actorID, userID, playerQuery string, stars int, mutationKey string) (*models.Card, error) {
	if err := e.AuthorizeOwner(actorID); err != nil {
		return nil, err
	}
	if stars < 1 || stars > gamedata.MaxStars {
		return nil, fmt.Errorf("%w: stars must be in 1..%d", ErrInvalidArgument, gamedata.MaxStars)
	}
	reg := e.data.Current()
	if mutationKey != "" {
		if _, ok := reg.Mutation(mutationKey); !ok {
			return nil, fmt.Errorf("%w: unknown mutation %q", ErrInvalidArgument, mutationKey)
		}
	}

	var roll gacha.RollResult
	if mutationKey == gamedata.MutationKeyFlashback {
		entry, ok := reg.Flashback(playerQuery)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not on the flashback roster", ErrNotFound, playerQuery)
		}
		roll = gacha.RollResult{
			Player:        entry.Player,
			Stars:         gamedata.MaxStars,
			RarityName:    entry.Year,
			Mutation:      mutationKey,
			FlashbackYear: entry.Year,
			FlashbackEra:  entry.Era,
		}
	} else {
		player, err := e.SearchPlayer(ctx, playerQuery)
		if err != nil {
			return nil, err
		}
		rarity := gamedata.RarityForRank(player.Rank)
		roll = gacha.RollResult{
			Player:     player,
			Stars:      stars,
			RarityName: rarity.Name,
			Mutation:   mutationKey,
		}
	}

	user, err := e.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	card := gacha.NewCard(reg, roll, "granted", e.now())
	user.Cards[card.CardID] = card
	updateCardStats(user, card, 0)
	refreshMaxima(user)
	e.evaluateAchievements(reg, user)
	if err := e.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return card, nil
}

// WipeUser deletes a user record entirely. Owner only.
func (e *Engine) WipeUser(ctx context.Context, actorID, userID string) error {
	if err := e.AuthorizeOwner(actorID); err != nil {
		return err
	}
	if err := e.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return err
	}
	e.cooldown.Clear(userID)
	e.logger.Info("user wiped", "user", userID)
	return nil
}

// Registry exposes the live game tables for presentation layers.
func (e *Engine) Registry() *gamedata.Registry {
	return e.data.Current()
}

// Leaderboard exposes the cache for presentation layers.
func (e *Engine) Leaderboard() *leaderboard.Cache {
	return e.board
}
