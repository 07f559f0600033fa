package gamedata

// RankRange is a contiguous rank interval with a roll weight. Ranges
// within a crate may overlap; each roll is independent.
type RankRange struct {
	Min    int     `json:"min" toml:"min"`
	Max    int     `json:"max" toml:"max"`
	Weight float64 `json:"weight" toml:"weight"`
}

// CrateDef describes a purchasable crate type.
type CrateDef struct {
	Key                    string      `json:"key" toml:"key"`
	DisplayName            string      `json:"display_name" toml:"display_name"`
	Emoji                  string      `json:"emoji" toml:"emoji"`
	Color                  string      `json:"color" toml:"color"`
	Price                  int64       `json:"price" toml:"price"`
	RankRanges             []RankRange `json:"rank_ranges" toml:"rank_ranges"`
	MutationChanceOverride *float64    `json:"mutation_chance_override,omitempty" toml:"mutation_chance_override"`
}

// TotalWeight sums the roll weights of all rank ranges.
func (c *CrateDef) TotalWeight() float64 {
	var total float64
	for _, r := range c.RankRanges {
		total += r.Weight
	}
	return total
}

// defaultCrates lists crate types from cheapest to most expensive.
// Weights skew each crate toward its tier while leaving a small chance
// of jackpot ranks even in the common crate.
func defaultCrates() []CrateDef {
	return []CrateDef{
		{
			Key: "common", DisplayName: "Common Crate", Emoji: "📦", Color: "#9e9e9e", Price: 500,
			RankRanges: []RankRange{
				{Min: 1001, Max: 10000, Weight: 0.85},
				{Min: 501, Max: 1000, Weight: 0.10},
				{Min: 101, Max: 500, Weight: 0.04},
				{Min: 1, Max: 100, Weight: 0.01},
			},
		},
		{
			Key: "rare", DisplayName: "Rare Crate", Emoji: "🎁", Color: "#1de9b6", Price: 1500,
			RankRanges: []RankRange{
				{Min: 501, Max: 5000, Weight: 0.70},
				{Min: 101, Max: 500, Weight: 0.20},
				{Min: 51, Max: 100, Weight: 0.07},
				{Min: 1, Max: 50, Weight: 0.03},
			},
		},
		{
			Key: "epic", DisplayName: "Epic Crate", Emoji: "💠", Color: "#00e5ff", Price: 4000,
			RankRanges: []RankRange{
				{Min: 101, Max: 2500, Weight: 0.60},
				{Min: 51, Max: 100, Weight: 0.25},
				{Min: 11, Max: 50, Weight: 0.10},
				{Min: 1, Max: 10, Weight: 0.05},
			},
		},
		{
			Key: "legendary", DisplayName: "Legendary Crate", Emoji: "🏆", Color: "#ffd600", Price: 10000,
			RankRanges: []RankRange{
				{Min: 51, Max: 500, Weight: 0.50},
				{Min: 11, Max: 50, Weight: 0.30},
				{Min: 6, Max: 10, Weight: 0.12},
				{Min: 1, Max: 5, Weight: 0.08},
			},
		},
		{
			Key: "divine", DisplayName: "Divine Crate", Emoji: "✨", Color: "#ff1744", Price: 25000,
			RankRanges: []RankRange{
				{Min: 11, Max: 100, Weight: 0.50},
				{Min: 6, Max: 10, Weight: 0.25},
				{Min: 2, Max: 5, Weight: 0.15},
				{Min: 1, Max: 1, Weight: 0.10},
			},
		},
	}
}

// defaultCrateAliases maps shorthand names to crate keys.
var defaultCrateAliases = map[string]string{
	"c":   "common",
	"com": "common",
	"r":   "rare",
	"e":   "epic",
	"l":   "legendary",
	"leg": "legendary",
	"d":   "divine",
	"div": "divine",
	"god": "divine",
}
