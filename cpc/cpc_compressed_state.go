package cpc

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// CpcCompressedState is the caller-facing assembly point for a compressed
// sketch: the scalar fields a caller must store out-of-band, plus the two
// optional word streams the flavor drivers in flavor_drivers.go fill in or
// consume. It carries no self-describing framing; see exportToMemory for the
// one internal round-trip helper this package does provide.
type CpcCompressedState struct {
	LgK          int
	NumCoupons   uint64
	FiCol        int
	WindowOffset int
	MergeFlag    bool

	NumCsv        int
	CsvStream     []uint32
	CsvLengthInts int

	CwStream     []uint32
	CwLengthInts int
}

// NewCpcCompressedStateFromSketch compresses sk by dispatching on its
// current flavor to the matching driver in flavor_drivers.go.
func NewCpcCompressedStateFromSketch(sk *CpcSketch) (*CpcCompressedState, error) {
	driver, ok := flavorDrivers[sk.getFlavor()]
	if !ok {
		return nil, errUnknownFlavor
	}
	return driver.compress(sk)
}

// uncompress reverses NewCpcCompressedStateFromSketch, reconstructing a
// CpcSketch with the given update seed. The flavor is re-derived from the
// state's own (lgK, numCoupons), matching the codec's stance
// that flavor is a pure function of sketch state, never stored directly.
func (state *CpcCompressedState) uncompress(seed uint64) (*CpcSketch, error) {
	flavor := determineFlavor(state.LgK, int64(state.NumCoupons))
	driver, ok := flavorDrivers[flavor]
	if !ok {
		return nil, errUnknownFlavor
	}
	return driver.decompress(state, seed)
}

// uncompressSketch is a convenience wrapper exercised by the benchmarking
// harness and by tests that prefer a free function over a method.
func uncompressSketch(state *CpcCompressedState, seed uint64) (*CpcSketch, error) {
	return state.uncompress(seed)
}

// exportToMemory serializes state into an opaque byte blob via encoding/gob.
// This is deliberately not a bit-packed preamble/wire format: framing for
// disk or network transport is out of scope for this codec, and gob already
// supplies type-safe, self-describing framing for the one caller (tests and
// the benchmarking harness) that needs raw bytes rather than the struct
// itself.
func (state *CpcCompressedState) exportToMemory() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("cpc: exportToMemory: %w", err)
	}
	return buf.Bytes(), nil
}

// importFromMemory is the inverse of exportToMemory.
func importFromMemory(mem []byte) (*CpcCompressedState, error) {
	var state CpcCompressedState
	if err := gob.NewDecoder(bytes.NewReader(mem)).Decode(&state); err != nil {
		return nil, fmt.Errorf("cpc: importFromMemory: %w", err)
	}
	return &state, nil
}

// specialEquals compares two sketches for structural equality of the fields
// the codec round-trips: lgK, numCoupons, windowOffset, the window contents,
// and the surprising-value table as a set. It also returns false unless
// sk1.mergeFlag equals sk1WasMerged and sk2.mergeFlag equals sk2WasMerged,
// matching the teacher's naming for this comparison helper.
func specialEquals(sk1, sk2 *CpcSketch, sk1WasMerged, sk2WasMerged bool) bool {
	if sk1 == nil || sk2 == nil {
		return sk1 == sk2
	}
	if sk1.lgK != sk2.lgK || sk1.numCoupons != sk2.numCoupons || sk1.windowOffset != sk2.windowOffset {
		return false
	}
	if sk1.mergeFlag != sk1WasMerged || sk2.mergeFlag != sk2WasMerged {
		return false
	}
	if (sk1.slidingWindow == nil) != (sk2.slidingWindow == nil) {
		return false
	}
	if sk1.slidingWindow != nil && !bytes.Equal(sk1.slidingWindow, sk2.slidingWindow) {
		return false
	}
	return sk1.pairTable.equals(sk2.pairTable)
}
