// Package leaderboard maintains the process-wide cache of top players.
// The cache rebuilds on expiry with bounded retries; a failed rebuild
// never evicts the previous snapshot, and partial leaderboards are
// never installed because rank-range rolls assume density.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"circlecrates/internal/models"
)

// Fetcher retrieves the top n players from the external source.
// Implementations must return either all n ranks or an error.
type Fetcher interface {
	FetchTop(ctx context.Context, n int) ([]models.Player, error)
}

// State is the outcome of a freshness check.
type State int

const (
	// StateFresh means the snapshot is within its TTL (possibly after
	// a successful rebuild).
	StateFresh State = iota
	// StateStaleOK means the rebuild failed but an older snapshot
	// remains valid and is still served.
	StateStaleOK
	// StateFailed means no snapshot has ever been built and the
	// rebuild failed; lookups cannot proceed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateStaleOK:
		return "stale-ok"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const rebuildBackoff = 500 * time.Millisecond

// snapshot is an immutable, fully built leaderboard view. Readers get
// the whole struct through one atomic pointer load.
type snapshot struct {
	players []models.Player
	byRank  map[int]models.Player
	byName  map[string]models.Player
	builtAt time.Time
}

// flight tracks one in-progress rebuild so concurrent callers can
// coalesce onto it and observe the same result.
type flight struct {
	done chan struct{}
	err  error
}

// Cache is the process-wide leaderboard cache.
type Cache struct {
	fetcher Fetcher
	size    int
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	snap atomic.Pointer[snapshot]

	mu       sync.Mutex
	inflight *flight
}

// New creates a cache over the given fetcher. size is the number of
// ranks to maintain; ttl is the staleness budget.
func New(fetcher Fetcher, size int, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		fetcher: fetcher,
		size:    size,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Snapshot returns the current cached players ordered by rank. It is
// empty only if no successful build has ever completed.
func (c *Cache) Snapshot() []models.Player {
	if s := c.snap.Load(); s != nil {
		return s.players
	}
	return nil
}

// BuiltAt returns when the current snapshot was installed.
func (c *Cache) BuiltAt() (time.Time, bool) {
	if s := c.snap.Load(); s != nil {
		return s.builtAt, true
	}
	return time.Time{}, false
}

// ByRank looks up the player at the given rank.
func (c *Cache) ByRank(rank int) (models.Player, bool) {
	s := c.snap.Load()
	if s == nil {
		return models.Player{}, false
	}
	p, ok := s.byRank[rank]
	return p, ok
}

// Search resolves an integer rank or a case-insensitive username.
// Exact username matches win over prefix matches; a prefix match is
// returned only when it is unique.
func (c *Cache) Search(query string) (models.Player, bool) {
	s := c.snap.Load()
	if s == nil {
		return models.Player{}, false
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return models.Player{}, false
	}

	if rank, err := strconv.Atoi(q); err == nil {
		p, ok := s.byRank[rank]
		return p, ok
	}

	if p, ok := s.byName[q]; ok {
		return p, ok
	}

	var match models.Player
	var found bool
	for name, p := range s.byName {
		if strings.HasPrefix(name, q) {
			if found {
				// Ambiguous prefix.
				return models.Player{}, false
			}
			match, found = p, true
		}
	}
	return match, found
}

// EnsureFresh rebuilds the cache if the snapshot is past its TTL,
// attempting up to retries fetches. Concurrent callers coalesce onto
// one rebuild and observe its result. The call is advisory: StateStaleOK
// means the caller may proceed on the previous snapshot.
func (c *Cache) EnsureFresh(ctx context.Context, retries int) (State, error) {
	if c.isFresh() {
		return StateFresh, nil
	}

	c.mu.Lock()
	if f := c.inflight; f != nil {
		c.mu.Unlock()
		select {
		case <-f.done:
			return c.outcome(f.err)
		case <-ctx.Done():
			return c.outcome(ctx.Err())
		}
	}
	f := &flight{done: make(chan struct{})}
	c.inflight = f
	c.mu.Unlock()

	f.err = c.rebuild(ctx, retries)

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()
	close(f.done)

	return c.outcome(f.err)
}

func (c *Cache) isFresh() bool {
	s := c.snap.Load()
	return s != nil && c.now().Sub(s.builtAt) <= c.ttl
}

// outcome classifies a rebuild result against the cache contents.
func (c *Cache) outcome(err error) (State, error) {
	if err == nil {
		return StateFresh, nil
	}
	if c.snap.Load() != nil {
		return StateStaleOK, err
	}
	return StateFailed, err
}

// rebuild fetches the full leaderboard and atomically swaps it in.
func (c *Cache) rebuild(ctx context.Context, retries int) error {
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		players, err := c.fetcher.FetchTop(ctx, c.size)
		if err == nil {
			if len(players) < c.size {
				err = fmt.Errorf("leaderboard fetch returned %d of %d ranks", len(players), c.size)
			} else {
				c.install(players)
				c.logger.Info("leaderboard rebuilt", "ranks", len(players), "attempt", attempt)
				return nil
			}
		}
		lastErr = err
		c.logger.Warn("leaderboard rebuild attempt failed", "attempt", attempt, "error", err)

		if attempt < retries {
			select {
			case <-time.After(rebuildBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

func (c *Cache) install(players []models.Player) {
	s := &snapshot{
		players: players,
		byRank:  make(map[int]models.Player, len(players)),
		byName:  make(map[string]models.Player, len(players)),
		builtAt: c.now(),
	}
	for _, p := range players {
		s.byRank[p.Rank] = p
		s.byName[strings.ToLower(p.Username)] = p
	}
	c.snap.Store(s)
}
