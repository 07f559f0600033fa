// Package models defines the domain records shared across the gacha engine:
// leaderboard players, owned cards, and per-user state.
package models

import "time"

// Player is an immutable snapshot of a leaderboard entry at fetch time.
// Snapshots embedded in cards are frozen; later leaderboard refreshes
// never mutate owned cards.
type Player struct {
	UserID         int64   `json:"user_id"`
	Username       string  `json:"username"`
	Rank           int     `json:"rank"`
	PP             float64 `json:"pp"`
	Accuracy       float64 `json:"accuracy"`
	PlayCount      int     `json:"play_count"`
	Country        string  `json:"country"`
	Level          float64 `json:"level"`
	ProfilePicture string  `json:"profile_picture,omitempty"`
}

// Card is a user-owned instance produced by an open.
type Card struct {
	CardID        string  `json:"card_id"`
	Player        Player  `json:"player"`
	Stars         int     `json:"stars"`
	RarityName    string  `json:"rarity_name"`
	Mutation      string  `json:"mutation,omitempty"` // empty = no mutation
	Price         int64   `json:"price"`
	ObtainedAt    int64   `json:"obtained_at"` // epoch seconds
	CrateType     string  `json:"crate_type"`
	FlashbackYear string  `json:"flashback_year,omitempty"`
	FlashbackEra  string  `json:"flashback_era,omitempty"`
}

// HasMutation reports whether the card carries any mutation variant.
func (c *Card) HasMutation() bool {
	return c.Mutation != ""
}

// AchievementStats are lifetime per-user aggregates. The max_* fields,
// CoinsSpent and the two sets only grow; BestRankEver only shrinks.
type AchievementStats struct {
	MaxCards           int              `json:"max_cards"`
	MaxCurrency        int64            `json:"max_currency"`
	MaxCollectionValue int64            `json:"max_collection_value"`
	BestRankEver       int              `json:"best_rank_ever"` // 0 = never pulled
	HighestCardValue   int64            `json:"highest_card_value"`
	CoinsSpent         int64            `json:"coins_spent"`
	MutationStreak     int              `json:"mutation_streak"`
	CountriesEver      map[string]bool  `json:"countries_ever,omitempty"`
	MutationsEver      map[string]bool  `json:"mutations_ever,omitempty"`
}

// User is the per-user persisted record. Created lazily with defaults
// on first access and rewritten wholesale on save.
type User struct {
	UserID               string           `json:"user_id"`
	Currency             int64            `json:"currency"`
	Cards                map[string]*Card `json:"cards"`
	Crates               map[string]int   `json:"crates"`
	DailyLastClaimed     int64            `json:"daily_last_claimed"` // epoch seconds, 0 = never
	DailyCount           int              `json:"daily_count"`
	TotalOpens           int64            `json:"total_opens"`
	Achievements         map[string]int64 `json:"achievements"` // id -> unlock epoch
	Stats                AchievementStats `json:"achievement_stats"`
	Favorites            map[string]bool  `json:"favorites,omitempty"`
	ConfirmationsEnabled bool             `json:"confirmations_enabled"`
	CreatedAt            int64            `json:"created_at"`
}

// NewUser creates a user record with configured defaults.
func NewUser(id string, startingCoins int64, confirmations bool) *User {
	return &User{
		UserID:               id,
		Currency:             startingCoins,
		Cards:                make(map[string]*Card),
		Crates:               make(map[string]int),
		Achievements:         make(map[string]int64),
		Favorites:            make(map[string]bool),
		ConfirmationsEnabled: confirmations,
		CreatedAt:            time.Now().Unix(),
	}
}

// Normalize backfills nil maps on records loaded from older documents.
func (u *User) Normalize() {
	if u.Cards == nil {
		u.Cards = make(map[string]*Card)
	}
	if u.Crates == nil {
		u.Crates = make(map[string]int)
	}
	if u.Achievements == nil {
		u.Achievements = make(map[string]int64)
	}
	if u.Favorites == nil {
		u.Favorites = make(map[string]bool)
	}
	if u.Stats.CountriesEver == nil {
		u.Stats.CountriesEver = make(map[string]bool)
	}
	if u.Stats.MutationsEver == nil {
		u.Stats.MutationsEver = make(map[string]bool)
	}
}

// CollectionValue returns the summed coin value of all owned cards.
func (u *User) CollectionValue() int64 {
	var total int64
	for _, c := range u.Cards {
		total += c.Price
	}
	return total
}

// CrateCount returns how many crates of the given type the user holds.
func (u *User) CrateCount(key string) int {
	return u.Crates[key]
}

// HasAchievement reports whether the achievement has been unlocked.
func (u *User) HasAchievement(id string) bool {
	_, ok := u.Achievements[id]
	return ok
}
