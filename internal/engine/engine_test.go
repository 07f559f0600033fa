package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"circlecrates/internal/config"
	"circlecrates/internal/gacha"
	"circlecrates/internal/gamedata"
	"circlecrates/internal/leaderboard"
	"circlecrates/internal/models"
	"circlecrates/internal/storage"
)

// fakeClock is a controllable time source shared by the engine and its
// cooldown gate.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// stubFetcher serves a dense synthetic leaderboard, or fails on demand.
type stubFetcher struct {
	mu   sync.Mutex
	fail bool
}

func (f *stubFetcher) FetchTop(ctx context.Context, n int) ([]models.Player, error) {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return nil, errors.New("rankings api down")
	}
	players := make([]models.Player, 0, n)
	for rank := 1; rank <= n; rank++ {
		players = append(players, models.Player{
			UserID:   int64(10_000 + rank),
			Username: fmt.Sprintf("player%d", rank),
			Rank:     rank,
			PP:       float64(25_000 - rank),
			Country:  []string{"US", "KR", "DE", "JP", "PL", "FI", "AU", "BR", "FR", "CA"}[rank%10],
		})
	}
	return players, nil
}

type testRig struct {
	engine  *Engine
	users   storage.UserRepository
	fetcher *stubFetcher
	clock   *fakeClock
	cfg     *config.Config
}

func newTestRig(t *testing.T, seed uint64) *testRig {
	t.Helper()

	dbCfg := storage.DefaultConfig(":memory:")
	dbCfg.AutoMigrate = true
	db, err := storage.Open(dbCfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	users := storage.NewUserRepository(db.Conn())

	data, err := gamedata.NewStore("", slog.Default())
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Rankings.LeaderboardSize = 1000
	cfg.App.OwnerID = "owner"

	fetcher := &stubFetcher{}
	board := leaderboard.New(fetcher, cfg.Rankings.LeaderboardSize, time.Hour, slog.Default())

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	eng := New(users, board, data, cfg, slog.Default(), Options{
		RNG: gacha.NewSeededRNG(seed),
		Now: clock.Now,
	})
	return &testRig{engine: eng, users: users, fetcher: fetcher, clock: clock, cfg: cfg}
}

func (r *testRig) userWithCrates(t *testing.T, id, crate string, count int) *models.User {
	t.Helper()
	user, err := r.engine.User(context.Background(), id)
	require.NoError(t, err)
	user.Crates[crate] = count
	require.NoError(t, r.users.Save(context.Background(), user))
	return user
}

func TestOpenProducesCards(t *testing.T) {
	rig := newTestRig(t, 1)
	ctx := context.Background()
	rig.userWithCrates(t, "alice", "common", 5)

	result, err := rig.engine.Open(ctx, "alice", "common", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Produced)
	assert.Len(t, result.Cards, 3)
	assert.False(t, result.Partial)
	assert.NotNil(t, result.Best)

	user, err := rig.engine.User(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, user.Crates["common"])
	assert.Equal(t, int64(3), user.TotalOpens)
	assert.LessOrEqual(t, len(user.Cards), 3) // duplicates may collapse
	assert.Contains(t, user.Achievements, "first_open")

	// Stats picked up the crate spend per produced card.
	crate, _ := rig.engine.Registry().Crate("common")
	assert.Equal(t, crate.Price*3, user.Stats.CoinsSpent)
	assert.Greater(t, user.Stats.MaxCards, 0)
}

func TestOpenResolvesAliases(t *testing.T) {
	rig := newTestRig(t, 2)
	rig.userWithCrates(t, "bob", "divine", 1)

	result, err := rig.engine.Open(context.Background(), "bob", "god", 1)
	require.NoError(t, err)
	assert.Equal(t, "divine", result.Cards[0].CrateType)
}

func TestOpenInsufficientCrates(t *testing.T) {
	rig := newTestRig(t, 3)
	ctx := context.Background()
	rig.userWithCrates(t, "carol", "common", 2)

	_, err := rig.engine.Open(ctx, "carol", "common", 3)
	assert.ErrorIs(t, err, ErrInsufficientCrates)

	// Preflight failure leaves everything untouched.
	user, _ := rig.engine.User(ctx, "carol")
	assert.Equal(t, 2, user.Crates["common"])
	assert.Equal(t, int64(0), user.TotalOpens)
	assert.Empty(t, user.Cards)
}

func TestOpenRejectsBadCounts(t *testing.T) {
	rig := newTestRig(t, 4)
	ctx := context.Background()
	rig.userWithCrates(t, "dave", "common", 50)

	_, err := rig.engine.Open(ctx, "dave", "common", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = rig.engine.Open(ctx, "dave", "common", rig.cfg.Game.BulkOpenMax+1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = rig.engine.Open(ctx, "dave", "mystery", 1)
	assert.ErrorIs(t, err, ErrUnknownCrate)
}

func TestOpenCooldown(t *testing.T) {
	rig := newTestRig(t, 5)
	ctx := context.Background()
	rig.userWithCrates(t, "erin", "common", 10)

	_, err := rig.engine.Open(ctx, "erin", "common", 1)
	require.NoError(t, err)

	_, err = rig.engine.Open(ctx, "erin", "common", 1)
	var cooldown *CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.Greater(t, cooldown.Remaining, time.Duration(0))

	// The failed attempt must not have consumed anything.
	user, _ := rig.engine.User(ctx, "erin")
	assert.Equal(t, 9, user.Crates["common"])
	assert.Equal(t, int64(1), user.TotalOpens)

	rig.clock.Advance(time.Duration(rig.cfg.Game.CooldownSeconds+1) * time.Second)
	_, err = rig.engine.Open(ctx, "erin", "common", 1)
	assert.NoError(t, err)
}

func TestOpenRollbackWhenLeaderboardUnavailable(t *testing.T) {
	rig := newTestRig(t, 6)
	ctx := context.Background()
	rig.fetcher.fail = true
	rig.userWithCrates(t, "frank", "rare", 1)

	_, err := rig.engine.Open(ctx, "frank", "rare", 1)
	assert.ErrorIs(t, err, ErrLeaderboardUnavailable)

	// Compensation restored the debit and re-armed the gate.
	user, _ := rig.engine.User(ctx, "frank")
	assert.Equal(t, 1, user.Crates["rare"])
	assert.Equal(t, int64(0), user.TotalOpens)
	assert.Empty(t, user.Cards)

	// Immediately retryable once the source recovers.
	rig.fetcher.mu.Lock()
	rig.fetcher.fail = false
	rig.fetcher.mu.Unlock()
	result, err := rig.engine.Open(ctx, "frank", "rare", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Produced)
}

// scriptedRNG replays a fixed value sequence, then repeats the last
// value once exhausted.
type scriptedRNG struct {
	vals []float64
	i    int
}

func (s *scriptedRNG) Float64() float64 {
	if s.i < len(s.vals) {
		v := s.vals[s.i]
		s.i++
		return v
	}
	return s.vals[len(s.vals)-1]
}

func TestOpenPartialFailureCompensation(t *testing.T) {
	dbCfg := storage.DefaultConfig(":memory:")
	dbCfg.AutoMigrate = true
	db, err := storage.Open(dbCfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	users := storage.NewUserRepository(db.Conn())

	data, err := gamedata.NewStore("", slog.Default())
	require.NoError(t, err)

	// Only ranks 1..10 are cached, so the common crate's 1001..10000
	// band can never resolve.
	cfg := config.DefaultConfig()
	cfg.Rankings.LeaderboardSize = 10
	board := leaderboard.New(&stubFetcher{}, cfg.Rankings.LeaderboardSize, time.Hour, slog.Default())

	// Card 1: no mutation, lowest-weight band, rank 1 (resolves).
	// Card 2: no mutation, then every re-roll lands in the 1001..10000
	// band and misses the board.
	script := []float64{0.5, 0.995, 0.0, 0.5}
	for i := 0; i <= cfg.Game.PlayerRerolls; i++ {
		script = append(script, 0.5, 0.0)
	}

	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	eng := New(users, board, data, cfg, slog.Default(), Options{
		RNG: &scriptedRNG{vals: script},
		Now: clock.Now,
	})

	ctx := context.Background()
	user, err := eng.User(ctx, "nora")
	require.NoError(t, err)
	user.Crates["common"] = 2
	require.NoError(t, users.Save(ctx, user))

	result, err := eng.Open(ctx, "nora", "common", 2)
	require.ErrorIs(t, err, ErrOpenFailed)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Produced)
	assert.True(t, result.Partial)

	// The whole debit is compensated even though one card succeeded:
	// crates, open counter and cooldown return to their pre-call
	// values while the minted card stays with the user.
	user, err = eng.User(ctx, "nora")
	require.NoError(t, err)
	assert.Equal(t, 2, user.Crates["common"])
	assert.Equal(t, int64(0), user.TotalOpens)
	assert.Len(t, user.Cards, 1)
	assert.Zero(t, eng.cooldown.Remaining("nora"))

	// The kept card still feeds achievement stats.
	crate, _ := eng.Registry().Crate("common")
	assert.Equal(t, crate.Price, user.Stats.CoinsSpent)
}

func TestOpenStaleLeaderboardProceeds(t *testing.T) {
	rig := newTestRig(t, 7)
	ctx := context.Background()
	rig.userWithCrates(t, "gina", "common", 2)

	// First open builds the snapshot.
	_, err := rig.engine.Open(ctx, "gina", "common", 1)
	require.NoError(t, err)

	// Expire the snapshot and break the source: opens still work on
	// the stale copy.
	rig.clock.Advance(2 * time.Hour)
	rig.fetcher.mu.Lock()
	rig.fetcher.fail = true
	rig.fetcher.mu.Unlock()

	result, err := rig.engine.Open(ctx, "gina", "common", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Produced)
}

func TestOpenCurrencyUntouched(t *testing.T) {
	rig := newTestRig(t, 8)
	ctx := context.Background()
	rig.userWithCrates(t, "hank", "epic", 3)

	before, _ := rig.engine.User(ctx, "hank")
	coins := before.Currency

	_, err := rig.engine.Open(ctx, "hank", "epic", 2)
	require.NoError(t, err)

	after, _ := rig.engine.User(ctx, "hank")
	assert.Equal(t, coins, after.Currency, "open must spend crates, not coins")
}

func TestBuyCrates(t *testing.T) {
	rig := newTestRig(t, 9)
	ctx := context.Background()

	crate, _ := rig.engine.Registry().Crate("common")
	user, err := rig.engine.BuyCrates(ctx, "iris", "common", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, user.Crates["common"])
	assert.Equal(t, rig.cfg.Game.StartingCoins-2*crate.Price, user.Currency)

	_, err = rig.engine.BuyCrates(ctx, "iris", "divine", 100)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	_, err = rig.engine.BuyCrates(ctx, "iris", "common", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSearchPlayer(t *testing.T) {
	rig := newTestRig(t, 10)
	ctx := context.Background()

	p, err := rig.engine.SearchPlayer(ctx, "17")
	require.NoError(t, err)
	assert.Equal(t, 17, p.Rank)

	p, err = rig.engine.SearchPlayer(ctx, "PLAYER23")
	require.NoError(t, err)
	assert.Equal(t, 23, p.Rank)

	_, err = rig.engine.SearchPlayer(ctx, "nosuchplayer")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleFavorite(t *testing.T) {
	rig := newTestRig(t, 11)
	ctx := context.Background()
	rig.userWithCrates(t, "jack", "common", 1)

	result, err := rig.engine.Open(ctx, "jack", "common", 1)
	require.NoError(t, err)
	cardID := result.Cards[0].CardID

	on, err := rig.engine.ToggleFavorite(ctx, "jack", cardID)
	require.NoError(t, err)
	assert.True(t, on)
	off, err := rig.engine.ToggleFavorite(ctx, "jack", cardID)
	require.NoError(t, err)
	assert.False(t, off)

	_, err = rig.engine.ToggleFavorite(ctx, "jack", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminGating(t *testing.T) {
	rig := newTestRig(t, 12)
	ctx := context.Background()

	_, err := rig.engine.GiveCrates(ctx, "intruder", "kate", "common", 1)
	assert.ErrorIs(t, err, ErrForbidden)

	user, err := rig.engine.GiveCrates(ctx, "owner", "kate", "leg", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, user.Crates["legendary"])
}

func TestGiveCardFlashbackRosterOnly(t *testing.T) {
	rig := newTestRig(t, 13)
	ctx := context.Background()

	// Roster member works and forces max stars with the year rarity.
	card, err := rig.engine.GiveCard(ctx, "owner", "kate", "cookiezi", 3, "flashback")
	require.NoError(t, err)
	assert.Equal(t, gamedata.MaxStars, card.Stars)
	assert.NotEmpty(t, card.FlashbackYear)
	assert.Equal(t, card.FlashbackYear, card.RarityName)

	// A live-leaderboard name is not grantable as flashback.
	_, err = rig.engine.GiveCard(ctx, "owner", "kate", "player5", 3, "flashback")
	assert.ErrorIs(t, err, ErrNotFound)

	// Other mutations resolve against the live leaderboard.
	card, err = rig.engine.GiveCard(ctx, "owner", "kate", "player5", 4, "golden")
	require.NoError(t, err)
	assert.Equal(t, 4, card.Stars)
	assert.Equal(t, "golden", card.Mutation)

	_, err = rig.engine.GiveCard(ctx, "owner", "kate", "player5", 4, "vaporwave")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWipeUser(t *testing.T) {
	rig := newTestRig(t, 14)
	ctx := context.Background()
	rig.userWithCrates(t, "mona", "common", 1)

	require.NoError(t, rig.engine.WipeUser(ctx, "owner", "mona"))

	// A fresh record with defaults appears on next access.
	user, err := rig.engine.User(ctx, "mona")
	require.NoError(t, err)
	assert.Empty(t, user.Crates)
	assert.Equal(t, rig.cfg.Game.StartingCoins, user.Currency)

	assert.ErrorIs(t, rig.engine.WipeUser(ctx, "intruder", "mona"), ErrForbidden)
}

func TestSimulateRespectsConfigCap(t *testing.T) {
	rig := newTestRig(t, 15)
	rig.cfg.Game.SimulationMax = 2000

	result, err := rig.engine.Simulate(context.Background(), "epic", 1_000_000, 7)
	require.NoError(t, err)
	assert.Equal(t, 2000, result.Trials)

	_, err = rig.engine.Simulate(context.Background(), "mystery", 100, 7)
	assert.ErrorIs(t, err, ErrUnknownCrate)
}
