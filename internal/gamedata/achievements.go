package gamedata

import "circlecrates/internal/models"

// AchievementDef pairs an achievement with the predicate that unlocks
// it. Predicates read the user's current state and lifetime stats and
// must be side-effect free.
type AchievementDef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Check       func(*models.User) bool `json:"-"`
}

func defaultAchievements() []AchievementDef {
	return []AchievementDef{
		{ID: "first_open", Name: "Fresh Unboxer", Description: "Open your first crate.",
			Check: func(u *models.User) bool { return u.TotalOpens >= 1 }},
		{ID: "opens_100", Name: "Crate Addict", Description: "Open 100 crates.",
			Check: func(u *models.User) bool { return u.TotalOpens >= 100 }},
		{ID: "opens_1000", Name: "Cardboard Mountain", Description: "Open 1,000 crates.",
			Check: func(u *models.User) bool { return u.TotalOpens >= 1000 }},
		{ID: "collector_50", Name: "Collector", Description: "Hold 50 distinct cards at once.",
			Check: func(u *models.User) bool { return u.Stats.MaxCards >= 50 }},
		{ID: "collector_500", Name: "Archivist", Description: "Hold 500 distinct cards at once.",
			Check: func(u *models.User) bool { return u.Stats.MaxCards >= 500 }},
		{ID: "rich_100k", Name: "Six Figures Soon", Description: "Hold 100,000 coins at once.",
			Check: func(u *models.User) bool { return u.Stats.MaxCurrency >= 100_000 }},
		{ID: "rich_1m", Name: "Coin Dragon", Description: "Hold 1,000,000 coins at once.",
			Check: func(u *models.User) bool { return u.Stats.MaxCurrency >= 1_000_000 }},
		{ID: "spender_1m", Name: "High Roller", Description: "Spend 1,000,000 coins on crates.",
			Check: func(u *models.User) bool { return u.Stats.CoinsSpent >= 1_000_000 }},
		{ID: "vault_1m", Name: "Museum Wing", Description: "Collection worth 1,000,000 coins.",
			Check: func(u *models.User) bool { return u.Stats.MaxCollectionValue >= 1_000_000 }},
		{ID: "top_100", Name: "Double Digits", Description: "Pull a player ranked in the top 100.",
			Check: func(u *models.User) bool { return u.Stats.BestRankEver >= 1 && u.Stats.BestRankEver <= 100 }},
		{ID: "the_one", Name: "Limit Breaker", Description: "Pull the #1 player.",
			Check: func(u *models.User) bool { return u.Stats.BestRankEver == 1 }},
		{ID: "jackpot_card", Name: "Jackpot", Description: "Pull a single card worth 100,000 coins.",
			Check: func(u *models.User) bool { return u.Stats.HighestCardValue >= 100_000 }},
		{ID: "mutation_streak_3", Name: "Hot Hands", Description: "Pull mutated cards three opens in a row.",
			Check: func(u *models.User) bool { return u.Stats.MutationStreak >= 3 }},
		{ID: "world_tour", Name: "World Tour", Description: "Pull players from 10 different countries.",
			Check: func(u *models.User) bool { return len(u.Stats.CountriesEver) >= 10 }},
		{ID: "mutation_hunter", Name: "Mutation Hunter", Description: "Pull 5 different mutation types.",
			Check: func(u *models.User) bool { return len(u.Stats.MutationsEver) >= 5 }},
		{ID: "time_traveler", Name: "Time Traveler", Description: "Pull a flashback card.",
			Check: func(u *models.User) bool { return u.Stats.MutationsEver[MutationKeyFlashback] }},
		{ID: "streak_7", Name: "Regular", Description: "Claim dailies 7 days in a row.",
			Check: func(u *models.User) bool { return u.DailyCount >= 7 }},
		{ID: "streak_30", Name: "No Life", Description: "Claim dailies 30 days in a row.",
			Check: func(u *models.User) bool { return u.DailyCount >= 30 }},
	}
}
