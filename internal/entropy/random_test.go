package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededIsDeterministic(t *testing.T) {
	a := NewSeeded(7)
	b := NewSeeded(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.IntN(100), b.IntN(100))
	}
}

func TestRangeBounds(t *testing.T) {
	src := NewSeeded(11)
	for i := 0; i < 500; i++ {
		v := Range(src, 4000, 9000)
		assert.GreaterOrEqual(t, v, 4000)
		assert.Less(t, v, 9000)

		n := RangeInclusive(src, -4, 4)
		assert.GreaterOrEqual(t, n, -4)
		assert.LessOrEqual(t, n, 4)
	}
	assert.Equal(t, 5, Range(src, 5, 5))
}

func TestCryptoSeedIsNonNegative(t *testing.T) {
	for i := 0; i < 50; i++ {
		assert.GreaterOrEqual(t, CryptoSeed(), int64(0))
	}
	f := NewDefault().Float64()
	assert.GreaterOrEqual(t, f, 0.0)
	assert.Less(t, f, 1.0)
}
