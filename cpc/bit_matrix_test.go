package cpc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBitMatrixAgreesWithSketchCouponCount cross-checks the independent
// BitMatrix reference implementation against CpcSketch's own coupon count
// for the same stream of updates, as a sanity check on the column-selection
// formula both share.
func TestBitMatrixAgreesWithSketchCouponCount(t *testing.T) {
	const seed = 0x1234ABCD
	lgK := 6
	sk, err := NewCpcSketch(lgK, seed)
	require.NoError(t, err)
	bm := NewBitMatrixWithSeed(lgK, seed)

	for i := int64(0); i < 500; i++ {
		require.NoError(t, sk.UpdateInt64(i))
		bm.Update(i)
	}

	assert.Equal(t, sk.numCoupons, bm.GetNumCoupons())
	assert.Equal(t, bm.GetNumCoupons(), CountCoupons(bm.GetMatrix()))
}

func TestBitMatrixResetClearsState(t *testing.T) {
	bm := NewBitMatrixWithSeed(6, 1)
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], 42)
	bm.Update(42)
	assert.Greater(t, bm.GetNumCoupons(), uint64(0))
	bm.Reset()
	assert.Equal(t, uint64(0), bm.GetNumCoupons())
}
