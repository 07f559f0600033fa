package engine

import (
	"context"
	"fmt"
	"time"
)

// DailyResult reports the outcome of a daily claim.
type DailyResult struct {
	Coins      int64  `json:"coins"`
	CrateKey   string `json:"crate_key"`
	BonusCrate string `json:"bonus_crate,omitempty"`
	Streak     int      `json:"streak"`
	DaysMissed int      `json:"days_missed"` // gap that reset the streak
	Unlocked   []string `json:"unlocked,omitempty"`
}

// ClaimDaily grants the daily reward. Days are UTC calendar days: a
// claim on the day after the last one extends the streak, any larger
// gap resets it to one, and a second claim on the same day fails with
// the time until the next UTC midnight.
func (e *Engine) ClaimDaily(ctx context.Context, userID string) (*DailyResult, error) {
	user, err := e.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	today := dayNumber(now)

	result := &DailyResult{}
	if user.DailyLastClaimed > 0 {
		last := dayNumber(time.Unix(user.DailyLastClaimed, 0).UTC())
		switch gap := today - last; {
		case gap <= 0:
			nextMidnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
			return nil, &AlreadyClaimedError{UntilReset: nextMidnight.Sub(now)}
		case gap == 1:
			user.DailyCount++
		default:
			result.DaysMissed = gap - 1
			user.DailyCount = 1
		}
	} else {
		user.DailyCount = 1
	}
	user.DailyLastClaimed = now.Unix()
	result.Streak = user.DailyCount

	bonusDays := user.DailyCount
	if limit := e.cfg.Daily.StreakBonusCap; limit > 0 && bonusDays > limit {
		bonusDays = limit
	}
	result.Coins = e.cfg.Daily.BaseCoins + e.cfg.Daily.StreakBonus*int64(bonusDays-1)
	user.Currency += result.Coins

	reg := e.data.Current()
	if crate, ok := reg.Crate(e.cfg.Daily.CrateKey); ok {
		user.Crates[crate.Key]++
		result.CrateKey = crate.Key
	}
	if every := e.cfg.Daily.BonusCrateEvery; every > 0 && user.DailyCount%every == 0 {
		if crate, ok := reg.Crate(e.cfg.Daily.BonusCrateKey); ok {
			user.Crates[crate.Key]++
			result.BonusCrate = crate.Key
		}
	}

	refreshMaxima(user)
	for _, def := range e.evaluateAchievements(reg, user) {
		result.Unlocked = append(result.Unlocked, def.ID)
	}
	if err := e.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save daily claim: %w", err)
	}
	e.logger.Info("daily claimed", "user", userID, "streak", user.DailyCount, "coins", result.Coins)
	return result, nil
}

// dayNumber converts a UTC instant to a monotonic calendar day index.
func dayNumber(t time.Time) int {
	return int(t.Unix() / 86400)
}
