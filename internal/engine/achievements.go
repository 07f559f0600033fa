package engine

import (
	"circlecrates/internal/gamedata"
	"circlecrates/internal/models"
)

// updateCardStats folds one newly produced card into the user's
// lifetime stats. cratePrice is the coin cost attributed to the card;
// zero for granted cards.
func updateCardStats(user *models.User, card *models.Card, cratePrice int64) {
	user.Normalize()

	user.Stats.CoinsSpent += cratePrice
	if card.HasMutation() {
		user.Stats.MutationStreak++
		user.Stats.MutationsEver[card.Mutation] = true
	} else {
		user.Stats.MutationStreak = 0
	}
	if card.Player.Country != "" {
		user.Stats.CountriesEver[card.Player.Country] = true
	}
	if rank := card.Player.Rank; rank > 0 {
		if user.Stats.BestRankEver == 0 || rank < user.Stats.BestRankEver {
			user.Stats.BestRankEver = rank
		}
	}
	if card.Price > user.Stats.HighestCardValue {
		user.Stats.HighestCardValue = card.Price
	}
}

// refreshMaxima raises the high-water marks from the user's current
// holdings. Called after any mutation of currency, cards or crates.
func refreshMaxima(user *models.User) {
	if n := len(user.Cards); n > user.Stats.MaxCards {
		user.Stats.MaxCards = n
	}
	if user.Currency > user.Stats.MaxCurrency {
		user.Stats.MaxCurrency = user.Currency
	}
	if v := user.CollectionValue(); v > user.Stats.MaxCollectionValue {
		user.Stats.MaxCollectionValue = v
	}
}

// evaluateAchievements checks every locked achievement and records the
// unlock time for any predicate that now holds. Unlocks are permanent;
// stats shrinking later never revokes one.
func (e *Engine) evaluateAchievements(reg *gamedata.Registry, user *models.User) []gamedata.AchievementDef {
	var unlocked []gamedata.AchievementDef
	now := e.now().Unix()
	for _, def := range reg.Achievements() {
		if user.HasAchievement(def.ID) {
			continue
		}
		if def.Check(user) {
			user.Achievements[def.ID] = now
			unlocked = append(unlocked, def)
			e.logger.Info("achievement unlocked", "user", user.UserID, "achievement", def.ID)
		}
	}
	return unlocked
}
