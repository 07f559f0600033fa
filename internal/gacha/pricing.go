package gacha

import (
	"math"

	"circlecrates/internal/gamedata"
	"circlecrates/internal/models"
)

// Pricing coefficients. Base value decays with rank and grows with pp;
// star multipliers are strictly increasing so a higher band always
// prices above a lower one for the same player.
const (
	priceRankScale = 50000.0
	priceRankDecay = 0.6
	pricePPFactor  = 0.4
)

var starMultipliers = [gamedata.MaxStars + 1]float64{
	0,    // unused
	1.0,  // 1 star
	1.5,  // 2 stars
	2.2,  // 3 stars
	3.5,  // 4 stars
	6.0,  // 5 stars
	10.0, // 6 stars
}

// BasePrice is the pre-multiplier coin value of a player snapshot.
// Monotonically decreasing in rank and increasing in pp.
func BasePrice(player models.Player) float64 {
	rank := player.Rank
	if rank < 1 {
		rank = 1
	}
	pp := player.PP
	if pp < 0 {
		pp = 0
	}
	return priceRankScale/math.Pow(float64(rank), priceRankDecay) + pp*pricePPFactor
}

// Price computes the coin value of (player, stars, mutation). It is
// pure: equal inputs always produce equal output, and the result is
// always positive.
func Price(reg *gamedata.Registry, player models.Player, stars int, mutationKey string) int64 {
	if stars < 1 {
		stars = 1
	}
	if stars > gamedata.MaxStars {
		stars = gamedata.MaxStars
	}

	mult := 1.0
	if mutationKey != "" {
		if m, ok := reg.Mutation(mutationKey); ok {
			mult = m.ValueMultiplier
		}
	}

	price := int64(math.Round(BasePrice(player) * starMultipliers[stars] * mult))
	if price < 1 {
		price = 1
	}
	return price
}
