package cpc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairRowColMakePair(t *testing.T) {
	for row := 0; row < 10; row++ {
		for col := 0; col < 64; col++ {
			p := makePair(row, col)
			assert.Equal(t, row, pairRow(p))
			assert.Equal(t, col, pairCol(p))
		}
	}
}

func TestGolombChooseNumberOfBaseBitsMonotonic(t *testing.T) {
	// More pairs over the same k means smaller row gaps, so b never grows.
	prev := 64
	for numPairs := 1; numPairs <= 1000; numPairs *= 2 {
		k := 4096
		b := golombChooseNumberOfBaseBits(k+numPairs, numPairs)
		assert.GreaterOrEqual(t, b, 0)
		assert.LessOrEqual(t, b, prev)
		prev = b
	}
}

func genSortedPairs(rng *rand.Rand, lgK, numPairs int) []int {
	k := 1 << uint(lgK)
	seen := make(map[int]bool)
	pairs := make([]int, 0, numPairs)
	for len(pairs) < numPairs {
		row := rng.Intn(k)
		col := rng.Intn(64)
		p := makePair(row, col)
		if seen[p] {
			continue
		}
		seen[p] = true
		pairs = append(pairs, p)
	}
	introspectiveInsertionSort(pairs, 0, len(pairs)-1)
	return pairs
}

func TestCompressUncompressPairsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, numPairs := range []int{0, 1, 5, 50, 500} {
		lgK := 10
		k := 1 << uint(lgK)
		pairs := genSortedPairs(rng, lgK, numPairs)
		numBaseBits := 0
		if numPairs > 0 {
			numBaseBits = golombChooseNumberOfBaseBits(k+numPairs, numPairs)
		}
		buf := make([]uint32, safeLengthForCompressedPairBuf(k, numPairs, numBaseBits))
		used := compressPairs(pairs, numPairs, numBaseBits, buf)
		assert.GreaterOrEqual(t, used, 0)

		decoded := make([]int, numPairs)
		uncompressPairs(decoded, numPairs, numBaseBits, buf)
		assert.Equal(t, pairs, decoded, "numPairs=%d", numPairs)
	}
}
