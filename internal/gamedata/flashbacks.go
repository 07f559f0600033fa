package gamedata

import (
	"strings"

	"circlecrates/internal/models"
)

// FlashbackEntry is a curated historical snapshot of a named player.
// Flashback cards are only obtainable through the flashback mutation.
type FlashbackEntry struct {
	Player models.Player `json:"player"`
	Year   string        `json:"year"`
	Era    string        `json:"era"`
}

// Frozen snapshots of era-defining players. Ranks and pp reflect the
// listed year, not the live leaderboard.
func defaultFlashbacks() map[string]FlashbackEntry {
	entries := []FlashbackEntry{
		{Player: models.Player{UserID: 900001, Username: "cookiezi", Rank: 1, PP: 13400, Accuracy: 99.12, PlayCount: 28413, Country: "KR", Level: 101}, Year: "2012", Era: "HD era"},
		{Player: models.Player{UserID: 900002, Username: "rrtyui", Rank: 1, PP: 9800, Accuracy: 98.77, PlayCount: 61024, Country: "JP", Level: 100}, Year: "2013", Era: "stream era"},
		{Player: models.Player{UserID: 900003, Username: "hvick225", Rank: 1, PP: 11900, Accuracy: 98.45, PlayCount: 47350, Country: "TW", Level: 101}, Year: "2015", Era: "DT era"},
		{Player: models.Player{UserID: 900004, Username: "Rafis", Rank: 1, PP: 12650, Accuracy: 99.02, PlayCount: 89211, Country: "PL", Level: 102}, Year: "2016", Era: "farm era"},
		{Player: models.Player{UserID: 900005, Username: "Vaxei", Rank: 1, PP: 14800, Accuracy: 98.91, PlayCount: 103442, Country: "US", Level: 103}, Year: "2019", Era: "pp race era"},
		{Player: models.Player{UserID: 900006, Username: "WhiteCat", Rank: 1, PP: 16900, Accuracy: 99.04, PlayCount: 64120, Country: "DE", Level: 103}, Year: "2020", Era: "tablet era"},
		{Player: models.Player{UserID: 900007, Username: "mrekk", Rank: 1, PP: 24100, Accuracy: 98.83, PlayCount: 141230, Country: "AU", Level: 105}, Year: "2023", Era: "lazer era"},
	}
	roster := make(map[string]FlashbackEntry, len(entries))
	for _, e := range entries {
		roster[canonicalName(e.Player.Username)] = e
	}
	return roster
}

// canonicalName normalizes a username for roster lookup.
func canonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
