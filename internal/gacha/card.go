package gacha

import (
	"fmt"
	"hash/fnv"
	"time"

	"circlecrates/internal/gamedata"
	"circlecrates/internal/models"
)

// CardID derives the stable identity of a card from the player, star
// band and mutation. Obtained time and price deliberately do not
// participate: re-rolling the same combination collapses into one
// inventory slot.
func CardID(playerID int64, stars int, mutationKey string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%d|%s", playerID, stars, mutationKey)
	return fmt.Sprintf("%016x", h.Sum64())
}

// NewCard composes a card record from a finished roll.
func NewCard(reg *gamedata.Registry, roll RollResult, crateKey string, obtainedAt time.Time) *models.Card {
	price := Price(reg, roll.Player, roll.Stars, roll.Mutation)
	return &models.Card{
		CardID:        CardID(roll.Player.UserID, roll.Stars, roll.Mutation),
		Player:        roll.Player,
		Stars:         roll.Stars,
		RarityName:    roll.RarityName,
		Mutation:      roll.Mutation,
		Price:         price,
		ObtainedAt:    obtainedAt.Unix(),
		CrateType:     crateKey,
		FlashbackYear: roll.FlashbackYear,
		FlashbackEra:  roll.FlashbackEra,
	}
}
