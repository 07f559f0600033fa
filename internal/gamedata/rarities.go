package gamedata

// Rarity is the star band derived from a rolled leaderboard rank.
type Rarity struct {
	Stars int    `json:"stars"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// rarityBand maps a closed rank interval to a star rarity. Bands are
// checked in order; the first band whose MaxRank covers the rank wins.
type rarityBand struct {
	MaxRank int
	Rarity  Rarity
}

// Rank 1 and ranks 2-5 share six stars but carry distinct names; the
// remaining thresholds follow the crate odds table.
var rarityBands = []rarityBand{
	{1, Rarity{6, "Limit Breaker", "#ff1744"}},
	{5, Rarity{6, "Divine", "#ffd600"}},
	{10, Rarity{5, "Transcendent", "#d500f9"}},
	{50, Rarity{4, "Mythical", "#651fff"}},
	{100, Rarity{4, "Legend", "#2979ff"}},
	{500, Rarity{3, "Epic", "#00e5ff"}},
	{2500, Rarity{3, "Rare", "#1de9b6"}},
	{5000, Rarity{2, "Uncommon", "#76ff03"}},
	{10000, Rarity{1, "Common", "#9e9e9e"}},
}

// MaxStars is the highest star band; flashback cards are forced to it.
const MaxStars = 6

// RarityForRank maps a leaderboard rank to its star band. Ranks past
// the configured leaderboard size clamp to the lowest band.
func RarityForRank(rank int) Rarity {
	for _, band := range rarityBands {
		if rank <= band.MaxRank {
			return band.Rarity
		}
	}
	return rarityBands[len(rarityBands)-1].Rarity
}
