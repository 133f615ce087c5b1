// Package entropy provides the random source shared by job generation,
// quality noise, and failure rolls. A seeded source makes runs reproducible.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// Source is the randomness the simulation consumes.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). n must be > 0.
	IntN(n int) int
}

// Seeded is a deterministic Source backed by math/rand.
type Seeded struct {
	rng *mrand.Rand
}

// NewSeeded creates a deterministic source from seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewSource(seed))}
}

// NewDefault creates a source seeded from crypto/rand.
func NewDefault() *Seeded {
	return NewSeeded(CryptoSeed())
}

func (s *Seeded) Float64() float64 { return s.rng.Float64() }

func (s *Seeded) IntN(n int) int { return s.rng.Intn(n) }

// Range returns a uniform integer in [lo, hi). hi <= lo yields lo.
func Range(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo)
}

// RangeInclusive returns a uniform integer in [lo, hi].
func RangeInclusive(src Source, lo, hi int) int {
	return Range(src, lo, hi+1)
}

// CryptoSeed returns a seed drawn from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed seed.
		return 1
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}
