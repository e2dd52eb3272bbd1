package cpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportMemoryRoundTrip(t *testing.T) {
	sk := buildFixtureSketch(t, 8, 10, 0, nil, []int{makePair(0, 1), makePair(3, 20)})
	state, err := NewCpcCompressedStateFromSketch(sk)
	require.NoError(t, err)

	mem, err := state.exportToMemory()
	require.NoError(t, err)
	assert.NotEmpty(t, mem)

	roundTripped, err := importFromMemory(mem)
	require.NoError(t, err)
	assert.Equal(t, state, roundTripped)

	out, err := roundTripped.uncompress(sk.seed)
	require.NoError(t, err)
	assert.True(t, specialEquals(sk, out, false, false))
}

func TestSketchResetReturnsToEmpty(t *testing.T) {
	sk, err := NewCpcSketch(8, 1)
	require.NoError(t, err)
	for i := uint64(0); i < 50; i++ {
		require.NoError(t, sk.UpdateUint64(i))
	}
	assert.NotEqual(t, flavor_empty, sk.getFlavor())

	sk.Reset()
	assert.Equal(t, flavor_empty, sk.getFlavor())
	assert.Equal(t, uint64(0), sk.numCoupons)
	assert.Nil(t, sk.pairTable)
	assert.Nil(t, sk.slidingWindow)
}

func TestImportFromMemoryRejectsGarbage(t *testing.T) {
	_, err := importFromMemory([]byte{0x01, 0x02, 0x03})
	assert.Error(t, err)
}

func TestSpecialEqualsDetectsDifference(t *testing.T) {
	a := buildFixtureSketch(t, 8, 10, 0, nil, []int{makePair(0, 1)})
	b := buildFixtureSketch(t, 8, 10, 0, nil, []int{makePair(0, 2)})
	assert.False(t, specialEquals(a, b, false, false))
}

func TestSpecialEqualsMergeFlagMustMatchClaim(t *testing.T) {
	a := buildFixtureSketch(t, 8, 10, 0, nil, []int{makePair(0, 1)})
	a.mergeFlag = true
	assert.False(t, specialEquals(a, a, false, false))
	assert.True(t, specialEquals(a, a, true, true))
}

// TestRealUpdatePathThroughEveryFlavor drives a sketch through its actual
// Update path until it reaches Sliding flavor, exercising
// promoteEmptyToSparse, promoteSparseToWindowed, updateWindowed, and
// moveWindowIfNeeded with real coupons rather than hand-built fixtures, then
// confirms the compressed round trip still reproduces the sketch exactly.
func TestRealUpdatePathThroughEveryFlavor(t *testing.T) {
	lgK := 4 // k=16, small enough to reach Sliding with a modest update count
	sk, err := NewCpcSketch(lgK, 0xDEADBEEF)
	require.NoError(t, err)

	seenFlavors := map[cpcFlavor]bool{}
	var i uint64
	for i = 0; i < 200000 && sk.getFlavor() != flavor_sliding; i++ {
		require.NoError(t, sk.UpdateUint64(i))
		seenFlavors[sk.getFlavor()] = true
	}
	require.Equal(t, flavor_sliding, sk.getFlavor(), "did not reach Sliding flavor in time")
	assert.True(t, seenFlavors[flavor_sparse] || seenFlavors[flavor_empty])

	state, err := NewCpcCompressedStateFromSketch(sk)
	require.NoError(t, err)
	assert.Equal(t, "Sliding", sk.getFlavor().String())

	out, err := uncompressSketch(state, sk.seed)
	require.NoError(t, err)
	assert.True(t, specialEquals(sk, out, false, false))
}
