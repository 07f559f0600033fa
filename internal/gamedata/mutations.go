package gamedata

// MutationKeyFlashback is the mutation that substitutes the rolled
// player with a curated historical snapshot and forces max stars.
const MutationKeyFlashback = "flashback"

// MutationDef describes an optional rare variant layered on a card.
// Rarity is the relative selection weight within the global mutation
// chance; ValueMultiplier is multiplicative on the card price.
type MutationDef struct {
	Key             string  `json:"key" toml:"key"`
	DisplayName     string  `json:"display_name" toml:"display_name"`
	Emoji           string  `json:"emoji" toml:"emoji"`
	Color           string  `json:"color" toml:"color"`
	Rarity          float64 `json:"rarity" toml:"rarity"`
	Description     string  `json:"description" toml:"description"`
	ValueMultiplier float64 `json:"value_multiplier" toml:"value_multiplier"`
}

// IsFlashback reports whether this mutation triggers player substitution.
func (m *MutationDef) IsFlashback() bool {
	return m.Key == MutationKeyFlashback
}

func defaultMutations() []MutationDef {
	return []MutationDef{
		{Key: "shiny", DisplayName: "Shiny", Emoji: "✨", Color: "#fff176", Rarity: 0.30,
			Description: "Polished to a mirror finish.", ValueMultiplier: 2.0},
		{Key: "holographic", DisplayName: "Holographic", Emoji: "🌈", Color: "#80deea", Rarity: 0.15,
			Description: "Shifts colors under the light.", ValueMultiplier: 2.5},
		{Key: "crystalline", DisplayName: "Crystalline", Emoji: "💎", Color: "#b39ddb", Rarity: 0.10,
			Description: "Cut from pure crystal.", ValueMultiplier: 3.0},
		{Key: "shadow", DisplayName: "Shadow", Emoji: "🌑", Color: "#37474f", Rarity: 0.12,
			Description: "Swallowed by darkness.", ValueMultiplier: 1.8},
		{Key: "golden", DisplayName: "Golden", Emoji: "🏅", Color: "#ffb300", Rarity: 0.05,
			Description: "Plated in 24 karat gold.", ValueMultiplier: 5.0},
		{Key: "rainbow", DisplayName: "Rainbow", Emoji: "🌈", Color: "#f06292", Rarity: 0.02,
			Description: "Every color at once.", ValueMultiplier: 10.0},
		{Key: "cosmic", DisplayName: "Cosmic", Emoji: "🌌", Color: "#7c4dff", Rarity: 0.08,
			Description: "Stardust swirls across the print.", ValueMultiplier: 3.5},
		{Key: "shocked", DisplayName: "Shocked", Emoji: "⚡", Color: "#ffee58", Rarity: 0.09,
			Description: "Crackles with static.", ValueMultiplier: 2.2},
		{Key: "spectral", DisplayName: "Spectral", Emoji: "👻", Color: "#cfd8dc", Rarity: 0.06,
			Description: "Half here, half elsewhere.", ValueMultiplier: 2.8},
		{Key: "immortal", DisplayName: "Immortal", Emoji: "🔱", Color: "#ff6f00", Rarity: 0.005,
			Description: "It will outlive us all.", ValueMultiplier: 50.0},
		{Key: MutationKeyFlashback, DisplayName: "Flashback", Emoji: "⏳", Color: "#8d6e63", Rarity: 0.015,
			Description: "A legend frozen at their peak.", ValueMultiplier: 20.0},
	}
}

// legacyMutationAliases maps retired mutation keys that may still
// appear on owned cards to their current definitions.
var legacyMutationAliases = map[string]string{
	"neon":      "shocked",
	"prismatic": "rainbow",
}

// LegacyMutationDisplay is shown for mutation keys that no longer
// resolve to any configured or aliased definition.
const LegacyMutationDisplay = "Legacy"
