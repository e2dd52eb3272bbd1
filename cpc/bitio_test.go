package cpc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitWriterReaderRoundTripFixedWidth(t *testing.T) {
	words := make([]uint32, 64)
	w := newBitWriter(words)
	values := []uint32{0, 1, 7, 255, 1023, 4095}
	widths := []uint{1, 1, 3, 8, 10, 12}
	for i, v := range values {
		w.write(v, widths[i])
	}
	used := w.flush()
	assert.Greater(t, used, 0)

	r := newBitReader(words)
	for i, v := range values {
		r.ensure(widths[i])
		assert.Equal(t, v, r.peek(widths[i]), "value %d", i)
		r.consume(widths[i])
	}
}

func TestBitWriterReaderUnaryRoundTrip(t *testing.T) {
	ns := []int{0, 1, 5, 15, 16, 17, 31, 32, 100, 1000}
	words := make([]uint32, 256)
	w := newBitWriter(words)
	for _, n := range ns {
		w.writeUnary(n)
	}
	w.flush()

	r := newBitReader(words)
	for _, n := range ns {
		assert.Equal(t, n, r.readUnary())
	}
}

func TestBitWriterReaderRandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	const count = 500
	values := make([]uint32, count)
	widths := make([]uint, count)
	for i := 0; i < count; i++ {
		width := uint(1 + rng.Intn(16))
		widths[i] = width
		values[i] = uint32(rng.Int63n(int64(1) << width))
	}
	words := make([]uint32, count) // generous upper bound
	w := newBitWriter(words)
	for i := range values {
		w.write(values[i], widths[i])
	}
	w.flush()

	r := newBitReader(words)
	for i := range values {
		r.ensure(widths[i])
		assert.Equal(t, values[i], r.peek(widths[i]))
		r.consume(widths[i])
	}
}

func TestByteTrailingZerosTable(t *testing.T) {
	assert.Equal(t, uint8(8), byteTrailingZerosTable[0])
	assert.Equal(t, uint8(0), byteTrailingZerosTable[1])
	assert.Equal(t, uint8(1), byteTrailingZerosTable[2])
	assert.Equal(t, uint8(4), byteTrailingZerosTable[16])
	assert.Equal(t, uint8(0), byteTrailingZerosTable[0xFF])
}
