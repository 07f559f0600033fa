package engine

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds surfaced to callers. Preflight failures leave the user
// record untouched; ErrOpenFailed means the debit was compensated.
var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrUnknownCrate           = errors.New("unknown crate")
	ErrInsufficientCrates     = errors.New("insufficient crates")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrLeaderboardUnavailable = errors.New("leaderboard unavailable")
	ErrOpenFailed             = errors.New("open failed")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
)

// CooldownError rejects an open while the per-user cooldown is active.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active: %.1fs remaining", e.Remaining.Seconds())
}

// AlreadyClaimedError rejects a second daily claim within one UTC day.
type AlreadyClaimedError struct {
	UntilReset time.Duration
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("daily reward already claimed: resets in %s", e.UntilReset.Round(time.Second))
}
