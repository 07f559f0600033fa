package gacha

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstracts the uniform source behind every roll so
// statistical tests and simulations can run reproducibly.
type RandomSource interface {
	Float64() float64 // [0, 1)
}

// cryptoRNG draws 53 random bits per call from crypto/rand.
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// Fall back to math/rand/v2 if the entropy source fails.
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

// DefaultRNG returns the production random source.
func DefaultRNG() RandomSource { return cryptoRNG{} }

// seededRNG is a replicable source for tests and Monte Carlo runs.
type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a deterministic source for the given seed.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// intBetween returns a uniform integer in [min, max].
func intBetween(rng RandomSource, min, max int) int {
	if max <= min {
		return min
	}
	n := min + int(rng.Float64()*float64(max-min+1))
	if n > max {
		n = max
	}
	return n
}
