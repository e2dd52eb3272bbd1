package cpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFixtureSketch assembles a CpcSketch fixture directly from its fields.
// windowBits holds (row, relativeCol) pairs with relativeCol in [0,8),
// i.e. already relative to windowOffset, matching how slidingWindow bytes
// are laid out (bit i means absolute column windowOffset+i).
func buildFixtureSketch(t *testing.T, lgK int, numCoupons uint64, windowOffset int, windowBits []int, tablePairs []int) *CpcSketch {
	t.Helper()
	sk := &CpcSketch{
		lgK:          lgK,
		seed:         internalTestSeed,
		numCoupons:   numCoupons,
		windowOffset: windowOffset,
	}
	if windowBits != nil {
		k := 1 << uint(lgK)
		sk.slidingWindow = make([]byte, k)
		for _, rc := range windowBits {
			row, relCol := pairRow(rc), pairCol(rc)
			require.Less(t, relCol, 8)
			sk.slidingWindow[row] |= 1 << uint(relCol)
		}
	}
	table, err := NewPairTable(2, 6+lgK)
	require.NoError(t, err)
	for _, p := range tablePairs {
		require.NoError(t, table.mustInsert(p))
	}
	table.numPairs = len(tablePairs)
	sk.pairTable = table
	return sk
}

const internalTestSeed = 0x9747B28C

func roundTripViaDriver(t *testing.T, sk *CpcSketch) *CpcSketch {
	t.Helper()
	flavor := sk.getFlavor()
	driver, ok := flavorDrivers[flavor]
	require.True(t, ok, "flavor %v", flavor)
	state, err := driver.compress(sk)
	require.NoError(t, err)
	assert.Equal(t, sk.lgK, state.LgK)
	assert.Equal(t, sk.numCoupons, state.NumCoupons)

	out, err := driver.decompress(state, sk.seed)
	require.NoError(t, err)
	assert.Equal(t, flavor, out.getFlavor())
	return out
}

func TestEmptyFlavorRoundTrip(t *testing.T) {
	sk := &CpcSketch{lgK: 8, seed: internalTestSeed}
	out := roundTripViaDriver(t, sk)
	assert.True(t, specialEquals(sk, out, false, false))
}

func TestSparseFlavorRoundTrip(t *testing.T) {
	lgK := 8
	sk := buildFixtureSketch(t, lgK, 10, 0, nil, []int{
		makePair(0, 1), makePair(3, 20), makePair(40, 63),
	})
	out := roundTripViaDriver(t, sk)
	assert.True(t, specialEquals(sk, out, false, false))
}

func TestHybridFlavorRoundTrip(t *testing.T) {
	lgK := 8
	sk := buildFixtureSketch(t, lgK, 50, 0,
		[]int{makePair(0, 0), makePair(1, 3), makePair(2, 7)},
		[]int{makePair(5, 10), makePair(6, 40), makePair(7, 63)},
	)
	out := roundTripViaDriver(t, sk)
	assert.True(t, specialEquals(sk, out, false, false))
}

func TestPinnedFlavorRoundTrip(t *testing.T) {
	lgK := 8
	sk := buildFixtureSketch(t, lgK, 200, 0,
		[]int{makePair(0, 0), makePair(1, 4), makePair(2, 7)},
		[]int{makePair(9, 8), makePair(20, 30), makePair(100, 63)},
	)
	out := roundTripViaDriver(t, sk)
	assert.True(t, specialEquals(sk, out, false, false))
}

func TestSlidingFlavorRoundTrip(t *testing.T) {
	lgK := 8
	offset := 10
	sk := buildFixtureSketch(t, lgK, 1000, offset,
		[]int{makePair(0, 0), makePair(1, 3), makePair(2, 7)},
		[]int{makePair(5, 0), makePair(6, 5), makePair(9, 30), makePair(20, 50)},
	)
	out := roundTripViaDriver(t, sk)
	assert.True(t, specialEquals(sk, out, false, false))
}

func TestNewCpcCompressedStateFromSketchDispatchesAndUncompresses(t *testing.T) {
	lgK := 8
	sk := buildFixtureSketch(t, lgK, 200, 0,
		[]int{makePair(0, 0)},
		[]int{makePair(9, 8), makePair(20, 30)},
	)
	state, err := NewCpcCompressedStateFromSketch(sk)
	require.NoError(t, err)

	out, err := uncompressSketch(state, sk.seed)
	require.NoError(t, err)
	assert.True(t, specialEquals(sk, out, false, false))

	mem, err := state.exportToMemory()
	require.NoError(t, err)
	roundTripped, err := importFromMemory(mem)
	require.NoError(t, err)
	assert.Equal(t, state, roundTripped)
}
