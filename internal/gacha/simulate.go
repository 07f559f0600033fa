package gacha

import (
	"math"
	"sort"

	"circlecrates/internal/gamedata"
)

// SimResult summarizes a seeded Monte Carlo run over one crate.
type SimResult struct {
	Crate         string         `json:"crate"`
	Trials        int            `json:"trials"`
	StarCounts    map[int]int    `json:"star_counts"`
	RarityCounts  map[string]int `json:"rarity_counts"`
	MutationCount int            `json:"mutation_count"`
	MutationRate  float64        `json:"mutation_rate"`
	Flashbacks    int            `json:"flashbacks"`
	Unresolved    int            `json:"unresolved"` // trials lost to rank resolution failures
	PriceMean     float64        `json:"price_mean"`
	PriceStdDev   float64        `json:"price_stddev"`
	PriceP50      float64        `json:"price_p50"`
	PriceP90      float64        `json:"price_p90"`
	PriceP99      float64        `json:"price_p99"`
	BestPrice     int64          `json:"best_price"`
}

// Simulate rolls the crate trials times under a seeded RNG and reports
// band frequencies, mutation rate and price percentiles. Trials are
// clamped to maxTrials.
func Simulate(reg *gamedata.Registry, crate gamedata.CrateDef, resolver PlayerResolver,
	trials, maxTrials int, seed uint64, mutationChance float64) SimResult {

	if trials <= 0 {
		trials = 1000
	}
	if maxTrials > 0 && trials > maxTrials {
		trials = maxTrials
	}

	roller := NewRoller(NewSeededRNG(seed), mutationChance, 3)
	result := SimResult{
		Crate:        crate.Key,
		Trials:       trials,
		StarCounts:   make(map[int]int),
		RarityCounts: make(map[string]int),
	}

	prices := make([]int64, 0, trials)
	for i := 0; i < trials; i++ {
		roll, err := roller.Roll(reg, crate, resolver)
		if err != nil {
			result.Unresolved++
			continue
		}
		result.StarCounts[roll.Stars]++
		result.RarityCounts[roll.RarityName]++
		if roll.Mutation != "" {
			result.MutationCount++
		}
		if roll.IsFlashback() {
			result.Flashbacks++
		}
		price := Price(reg, roll.Player, roll.Stars, roll.Mutation)
		prices = append(prices, price)
		if price > result.BestPrice {
			result.BestPrice = price
		}
	}

	resolved := trials - result.Unresolved
	if resolved > 0 {
		result.MutationRate = float64(result.MutationCount) / float64(resolved)
	}
	result.PriceMean, result.PriceStdDev = meanStdDev(prices)
	result.PriceP50 = percentile(prices, 0.50)
	result.PriceP90 = percentile(prices, 0.90)
	result.PriceP99 = percentile(prices, 0.99)
	return result
}

func meanStdDev(xs []int64) (mean, stddev float64) {
	n := len(xs)
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean = sum / float64(n)

	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	return mean, math.Sqrt(acc / float64(n))
}

// percentile interpolates linearly between order statistics.
func percentile(xs []int64, p float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	cp := append([]int64(nil), xs...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	if n == 1 || p <= 0 {
		return float64(cp[0])
	}
	if p >= 1 {
		return float64(cp[n-1])
	}
	pos := p * float64(n-1)
	i := int(math.Floor(pos))
	f := pos - float64(i)
	if i+1 >= n {
		return float64(cp[i])
	}
	return float64(cp[i])*(1-f) + float64(cp[i+1])*f
}
