package gacha

import (
	"testing"

	"circlecrates/internal/gamedata"
)

func TestSimulateClampsTrials(t *testing.T) {
	reg := gamedata.Default()
	crate, _ := reg.Crate("common")
	resolver := &fakeResolver{}

	result := Simulate(reg, crate, resolver, 50_000, 10_000, 1, 0.08)
	if result.Trials != 10_000 {
		t.Errorf("trials = %d, want clamped 10000", result.Trials)
	}
	result = Simulate(reg, crate, resolver, 0, 10_000, 1, 0.08)
	if result.Trials != 1000 {
		t.Errorf("trials = %d, want default 1000", result.Trials)
	}
}

func TestSimulateDeterministicUnderSeed(t *testing.T) {
	reg := gamedata.Default()
	crate, _ := reg.Crate("epic")
	resolver := &fakeResolver{}

	a := Simulate(reg, crate, resolver, 5_000, 0, 99, 0.08)
	b := Simulate(reg, crate, resolver, 5_000, 0, 99, 0.08)
	if a.PriceMean != b.PriceMean || a.MutationCount != b.MutationCount || a.BestPrice != b.BestPrice {
		t.Errorf("same seed diverged: %+v vs %+v", a, b)
	}

	c := Simulate(reg, crate, resolver, 5_000, 0, 100, 0.08)
	if a.PriceMean == c.PriceMean && a.MutationCount == c.MutationCount {
		t.Error("different seeds produced identical runs")
	}
}

func TestSimulatePercentilesOrdered(t *testing.T) {
	reg := gamedata.Default()
	crate, _ := reg.Crate("divine")
	resolver := &fakeResolver{}

	r := Simulate(reg, crate, resolver, 20_000, 0, 7, 0.08)
	if r.PriceP50 > r.PriceP90 || r.PriceP90 > r.PriceP99 || float64(r.BestPrice) < r.PriceP99 {
		t.Errorf("percentiles out of order: p50=%.0f p90=%.0f p99=%.0f best=%d",
			r.PriceP50, r.PriceP90, r.PriceP99, r.BestPrice)
	}
	if r.PriceMean <= 0 || r.PriceStdDev < 0 {
		t.Errorf("degenerate price stats: mean=%.2f stddev=%.2f", r.PriceMean, r.PriceStdDev)
	}
}

func TestPercentileInterpolation(t *testing.T) {
	xs := []int64{10, 20, 30, 40}
	if got := percentile(xs, 0.5); got != 25 {
		t.Errorf("p50 = %v, want 25", got)
	}
	if got := percentile(xs, 0); got != 10 {
		t.Errorf("p0 = %v, want 10", got)
	}
	if got := percentile(xs, 1); got != 40 {
		t.Errorf("p100 = %v, want 40", got)
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("empty percentile = %v, want 0", got)
	}
}
