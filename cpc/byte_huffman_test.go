package cpc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompressUncompressBytesRoundTripAllPhases(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for phase := 0; phase < 22; phase++ {
		k := 256
		original := make([]byte, k)
		rng.Read(original)

		buf := make([]uint32, safeLengthForCompressedWindowBuf(k))
		used := compressBytes(original, phase, buf)
		assert.Greater(t, used, 0)

		decoded := make([]byte, k)
		uncompressBytes(decoded, phase, buf)
		assert.Equal(t, original, decoded, "phase %d", phase)
	}
}

func TestCompressBytesEmptyInput(t *testing.T) {
	buf := make([]uint32, safeLengthForCompressedWindowBuf(0))
	used := compressBytes(nil, 0, buf)
	assert.GreaterOrEqual(t, used, 0)
	var decoded []byte
	uncompressBytes(decoded, 0, buf)
}

func TestSafeLengthForCompressedWindowBufGrowsWithK(t *testing.T) {
	assert.Less(t, safeLengthForCompressedWindowBuf(16), safeLengthForCompressedWindowBuf(1024))
}
